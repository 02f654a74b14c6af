package domain

import "time"

// Event types delivered by the billing provider.
const (
	EventOrderCompleted          = "order.completed"
	EventSubscriptionActivated   = "subscription.activated"
	EventSubscriptionDeactivated = "subscription.deactivated"
	EventSubscriptionUpdated     = "subscription.updated"
	EventSubscriptionCancelled   = "subscription.cancelled"
	EventChargeCompleted         = "subscription.charge.completed"
	EventChargeFailed            = "subscription.charge.failed"
	EventUnknown                 = "unknown"
)

// KnownEventType reports whether a handler exists for the event type.
func KnownEventType(eventType string) bool {
	switch eventType {
	case EventOrderCompleted,
		EventSubscriptionActivated,
		EventSubscriptionDeactivated,
		EventSubscriptionUpdated,
		EventSubscriptionCancelled,
		EventChargeCompleted,
		EventChargeFailed:
		return true
	}
	return false
}

// Event is a classified webhook payload: the known provider fields, typed,
// plus an Extensions bucket for everything the provider sent that the
// classifier does not model.
type Event struct {
	Type string

	// Reference is the provider's order/reference id and doubles as the
	// idempotency key.
	Reference      string
	SubscriptionID string
	ProductPath    string

	CustomerEmail string
	Company       string
	CustomerName  string

	AmountCents int64
	Currency    string

	// Sequence is recorded but not enforced; ordering remains last-write-wins.
	Sequence int64
	Periods  int64
	Test     bool

	// Provider-supplied dates, when present.
	SubscriptionEndDate *time.Time
	NextChargeDate      *time.Time

	Extensions map[string]string
}
