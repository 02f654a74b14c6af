package service

import (
	"time"

	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
	"github.com/vayron-digital/modulyn-one-sub003/internal/plan"
	tenantdomain "github.com/vayron-digital/modulyn-one-sub003/internal/tenant/domain"
)

// applyTransition applies one event's bounded field update to the tenant.
// The transition table is last-write-wins over the prior status: no state is
// terminal, and the provider's sequence number is not consulted.
func applyTransition(tenant *tenantdomain.Tenant, event *billingdomain.Event, now time.Time, cycleDays int) {
	if cycleDays <= 0 {
		cycleDays = 30
	}

	var status tenantdomain.SubscriptionStatus

	switch event.Type {
	case billingdomain.EventOrderCompleted:
		status = tenantdomain.StatusActive
		tenant.Plan = resolvePlan(tenant, event)
		if event.SubscriptionID != "" {
			tenant.SubscriptionID = event.SubscriptionID
		}
		if tenant.FastSpringCustomerID == "" {
			tenant.FastSpringCustomerID = event.CustomerEmail
		}
		start := now
		tenant.SubscriptionStartDate = &start
		next := now.AddDate(0, 0, cycleDays)
		tenant.NextBillingDate = &next

	case billingdomain.EventSubscriptionActivated:
		status = tenantdomain.StatusActive
		start := now
		tenant.SubscriptionStartDate = &start

	case billingdomain.EventSubscriptionDeactivated:
		status = tenantdomain.StatusInactive

	case billingdomain.EventSubscriptionUpdated:
		status = tenantdomain.StatusActive
		tenant.Plan = resolvePlan(tenant, event)
		if event.SubscriptionID != "" {
			tenant.SubscriptionID = event.SubscriptionID
		}

	case billingdomain.EventSubscriptionCancelled:
		status = tenantdomain.StatusCancelled
		// Provider value or null; a missing end date clears any stale one.
		tenant.SubscriptionEndDate = event.SubscriptionEndDate

	case billingdomain.EventChargeCompleted:
		status = tenantdomain.StatusActive
		paid := now
		tenant.LastPaymentDate = &paid
		tenant.NextBillingDate = event.NextChargeDate

	case billingdomain.EventChargeFailed:
		status = tenantdomain.StatusPastDue

	default:
		return
	}

	tenant.Status = status
	tenant.IsPaid = status.Paid()
	tenant.UpdatedAt = now
}

// resolvePlan maps the event's product onto a plan id. An unmapped product
// falls back to the base plan for brand-new tenants and otherwise keeps the
// tenant's current plan.
func resolvePlan(tenant *tenantdomain.Tenant, event *billingdomain.Event) string {
	planID, ok := plan.Resolve(event.ProductPath)
	if ok {
		return planID
	}
	if tenant.Plan != "" {
		return tenant.Plan
	}
	return plan.DefaultPlanID
}
