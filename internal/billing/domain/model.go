package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SubscriptionEvent is one row of the audit/idempotency ledger. Rows are
// inserted before any tenant mutation and never deleted.
type SubscriptionEvent struct {
	ID      snowflake.ID `gorm:"column:id;primaryKey"`
	EventID string       `gorm:"column:event_id"`

	TenantID  *snowflake.ID `gorm:"column:tenant_id"`
	EventType string        `gorm:"column:event_type"`

	FastSpringOrderID        string `gorm:"column:fastspring_order_id"`
	FastSpringSubscriptionID string `gorm:"column:fastspring_subscription_id"`

	// CustomerID is the billing email, the provider's customer identity.
	CustomerID string `gorm:"column:customer_id"`
	ProductID  string `gorm:"column:product_id"`

	AmountCents int64  `gorm:"column:amount"`
	Currency    string `gorm:"column:currency"`

	Sequence int64 `gorm:"column:sequence"`
	Periods  int64 `gorm:"column:periods"`
	IsTest   bool  `gorm:"column:is_test"`

	EventData datatypes.JSON `gorm:"column:event_data"`

	Processed   bool       `gorm:"column:processed"`
	ProcessedAt *time.Time `gorm:"column:processed_at"`

	Attempts       int64      `gorm:"column:attempts"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`

	ReceivedAt time.Time `gorm:"column:received_at"`
}

func (SubscriptionEvent) TableName() string {
	return "subscription_events"
}
