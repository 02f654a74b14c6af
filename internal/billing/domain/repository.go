package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Repository is the subscription event ledger.
type Repository interface {
	// Insert upserts on event_id and reports whether the row was newly
	// written. A false return means the event was delivered before.
	Insert(ctx context.Context, event *SubscriptionEvent) (bool, error)

	FindByEventID(ctx context.Context, eventID string) (*SubscriptionEvent, error)
	FindByID(ctx context.Context, id snowflake.ID) (*SubscriptionEvent, error)

	LinkTenant(ctx context.Context, id snowflake.ID, tenantID snowflake.ID) error

	// MarkProcessed is idempotent; re-marking only refreshes the timestamp.
	MarkProcessed(ctx context.Context, id snowflake.ID, processedAt time.Time) error

	// MarkAttempt bumps the failure counter and returns the new value.
	MarkAttempt(ctx context.Context, id snowflake.ID) (int64, error)

	MarkDeadLettered(ctx context.Context, id snowflake.ID, at time.Time) error

	// LockUnprocessed claims a batch of unprocessed, non-dead-lettered rows
	// received before the cutoff, for the reconciliation sweep.
	LockUnprocessed(ctx context.Context, cutoff time.Time, maxAttempts int, limit int) ([]SubscriptionEvent, error)
}
