package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) billingdomain.Repository {
	return &Repository{db: db}
}

// Insert upserts on event_id. The conflict target is the unique index on
// event_id, so a redelivered event leaves the original row untouched and
// reports inserted=false.
func (r *Repository) Insert(ctx context.Context, event *billingdomain.SubscriptionEvent) (bool, error) {
	if event == nil || strings.TrimSpace(event.EventID) == "" {
		return false, billingdomain.ErrInvalidEvent
	}

	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO subscription_events (
			id, event_id, tenant_id, event_type,
			fastspring_order_id, fastspring_subscription_id,
			customer_id, product_id, amount, currency,
			sequence, periods, is_test, event_data,
			processed, attempts, received_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`,
		event.ID,
		event.EventID,
		event.TenantID,
		event.EventType,
		event.FastSpringOrderID,
		event.FastSpringSubscriptionID,
		event.CustomerID,
		event.ProductID,
		event.AmountCents,
		event.Currency,
		event.Sequence,
		event.Periods,
		event.IsTest,
		event.EventData,
		event.Processed,
		event.Attempts,
		event.ReceivedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) FindByEventID(ctx context.Context, eventID string) (*billingdomain.SubscriptionEvent, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, nil
	}
	var event billingdomain.SubscriptionEvent
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *Repository) FindByID(ctx context.Context, id snowflake.ID) (*billingdomain.SubscriptionEvent, error) {
	var event billingdomain.SubscriptionEvent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *Repository) LinkTenant(ctx context.Context, id snowflake.ID, tenantID snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE subscription_events SET tenant_id = ? WHERE id = ?`,
		tenantID,
		id,
	).Error
}

func (r *Repository) MarkProcessed(ctx context.Context, id snowflake.ID, processedAt time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE subscription_events
		 SET processed = ?, processed_at = ?
		 WHERE id = ?`,
		true,
		processedAt.UTC(),
		id,
	).Error
}

func (r *Repository) MarkAttempt(ctx context.Context, id snowflake.ID) (int64, error) {
	if err := r.db.WithContext(ctx).Exec(
		`UPDATE subscription_events
		 SET attempts = attempts + 1
		 WHERE id = ?`,
		id,
	).Error; err != nil {
		return 0, err
	}

	var attempts int64
	if err := r.db.WithContext(ctx).Raw(
		`SELECT attempts FROM subscription_events WHERE id = ?`,
		id,
	).Scan(&attempts).Error; err != nil {
		return 0, err
	}
	return attempts, nil
}

func (r *Repository) MarkDeadLettered(ctx context.Context, id snowflake.ID, at time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE subscription_events
		 SET dead_lettered_at = COALESCE(dead_lettered_at, ?)
		 WHERE id = ?`,
		at.UTC(),
		id,
	).Error
}

func (r *Repository) LockUnprocessed(ctx context.Context, cutoff time.Time, maxAttempts int, limit int) ([]billingdomain.SubscriptionEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT * FROM subscription_events
		 WHERE processed = ? AND dead_lettered_at IS NULL
		   AND received_at < ? AND attempts < ?
		 ORDER BY received_at ASC, id ASC
		 LIMIT ?`
	// Row locks only exist on postgres; sqlite serializes writers anyway.
	if r.db.Dialector.Name() == "postgres" {
		query += ` FOR UPDATE SKIP LOCKED`
	}

	var events []billingdomain.SubscriptionEvent
	err := r.db.WithContext(ctx).Raw(
		query,
		false,
		cutoff.UTC(),
		maxAttempts,
		limit,
	).Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
