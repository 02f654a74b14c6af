package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type trialLockedBody struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	UpgradeURL string `json:"upgradeUrl"`
}

const trialLockedMessage = "Your trial has ended. Upgrade to keep using Modulyn."

// TrialGate blocks tenants whose trial has lapsed without payment. It must
// run after TenantAuthRequired. Paid tenants pass regardless of trial dates.
func (s *Server) TrialGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := CurrentTenant(c)
		if tenant == nil {
			respondError(c, http.StatusUnauthorized, "missing API key")
			return
		}
		if tenant.TrialLapsed(s.clock.Now()) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, trialLockedBody{
				Status:     "error",
				Message:    trialLockedMessage,
				UpgradeURL: s.cfg.UpgradeURL,
			})
			return
		}
		c.Next()
	}
}
