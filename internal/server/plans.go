package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vayron-digital/modulyn-one-sub003/internal/plan"
)

// HandleListPlans returns the plan catalog. Public: the upgrade page reads it
// before the visitor has an API key.
func (s *Server) HandleListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"plans":  plan.List(),
	})
}
