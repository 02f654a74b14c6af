package server

import "github.com/gin-gonic/gin"

// errorBody is the JSON error envelope for the tenant-facing API.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody{
		Status:  "error",
		Message: message,
	})
}
