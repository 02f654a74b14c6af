package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SubscriptionStatus is the tenant's billing lifecycle state.
type SubscriptionStatus string

const (
	StatusTrialing  SubscriptionStatus = "trialing"
	StatusActive    SubscriptionStatus = "active"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusInactive  SubscriptionStatus = "inactive"
)

// Paid reports whether the status implies a paying tenant. is_paid is always
// derived from this so the two fields cannot drift apart.
func (s SubscriptionStatus) Paid() bool {
	return s == StatusActive
}

// Tenant is a billed customer organization.
type Tenant struct {
	ID           snowflake.ID       `gorm:"column:id;primaryKey"`
	Slug         string             `gorm:"column:slug"`
	Name         string             `gorm:"column:name"`
	BillingEmail string             `gorm:"column:billing_email"`
	APIKeyHash   string             `gorm:"column:api_key_hash"`
	Status       SubscriptionStatus `gorm:"column:subscription_status"`
	IsPaid       bool               `gorm:"column:is_paid"`
	Plan         string             `gorm:"column:subscription_plan"`

	SubscriptionID       string `gorm:"column:subscription_id"`
	FastSpringCustomerID string `gorm:"column:fastspring_customer_id"`

	TrialStart            *time.Time `gorm:"column:trial_start"`
	TrialEnds             *time.Time `gorm:"column:trial_ends"`
	SubscriptionStartDate *time.Time `gorm:"column:subscription_start_date"`
	SubscriptionEndDate   *time.Time `gorm:"column:subscription_end_date"`
	LastPaymentDate       *time.Time `gorm:"column:last_payment_date"`
	NextBillingDate       *time.Time `gorm:"column:next_billing_date"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// TrialLapsed reports whether the tenant's trial has ended without payment.
func (t *Tenant) TrialLapsed(now time.Time) bool {
	if t == nil || t.IsPaid || t.TrialEnds == nil {
		return false
	}
	return now.After(*t.TrialEnds)
}
