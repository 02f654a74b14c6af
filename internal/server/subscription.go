package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/vayron-digital/modulyn-one-sub003/internal/tenant/domain"
)

type subscriptionBody struct {
	TenantID       string     `json:"tenantId"`
	Status         string     `json:"status"`
	IsPaid         bool       `json:"isPaid"`
	Plan           string     `json:"plan"`
	SubscriptionID string     `json:"subscriptionId,omitempty"`
	TrialEnds      *time.Time `json:"trialEnds,omitempty"`
	StartDate      *time.Time `json:"subscriptionStartDate,omitempty"`
	EndDate        *time.Time `json:"subscriptionEndDate,omitempty"`
	LastPayment    *time.Time `json:"lastPaymentDate,omitempty"`
	NextBilling    *time.Time `json:"nextBillingDate,omitempty"`
}

// HandleGetSubscription returns the authenticated tenant's subscription
// state. Deliberately not behind the trial gate: a locked-out tenant still
// needs to see why.
func (s *Server) HandleGetSubscription(c *gin.Context) {
	tenant := CurrentTenant(c)
	if tenant == nil {
		respondError(c, http.StatusUnauthorized, "missing API key")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"subscription": subscriptionFor(tenant),
	})
}

// HandleGetProfile is a representative gated endpoint: any product surface
// behind the trial gate looks like this.
func (s *Server) HandleGetProfile(c *gin.Context) {
	tenant := CurrentTenant(c)
	if tenant == nil {
		respondError(c, http.StatusUnauthorized, "missing API key")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"tenant": gin.H{
			"id":     tenant.ID.String(),
			"slug":   tenant.Slug,
			"name":   tenant.Name,
			"status": tenant.Status,
			"isPaid": tenant.IsPaid,
		},
	})
}

func subscriptionFor(tenant *tenantdomain.Tenant) subscriptionBody {
	return subscriptionBody{
		TenantID:       tenant.ID.String(),
		Status:         string(tenant.Status),
		IsPaid:         tenant.IsPaid,
		Plan:           tenant.Plan,
		SubscriptionID: tenant.SubscriptionID,
		TrialEnds:      tenant.TrialEnds,
		StartDate:      tenant.SubscriptionStartDate,
		EndDate:        tenant.SubscriptionEndDate,
		LastPayment:    tenant.LastPaymentDate,
		NextBilling:    tenant.NextBillingDate,
	}
}
