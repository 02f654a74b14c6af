package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrMissingPrivateKey = errors.New("missing_private_key")
	ErrInvalidSignature  = errors.New("invalid_signature")
	ErrInvalidEvent      = errors.New("invalid_event")
	ErrEventNotFound     = errors.New("event_not_found")
)

// IngestResult reports the outcome of a webhook delivery. It reflects only
// verification and the durable ledger write; tenant mutation happens after
// the delivery is acknowledged.
type IngestResult struct {
	EventID   snowflake.ID
	EventType string
	Duplicate bool
}

// Service is the webhook ingestion pipeline.
type Service interface {
	// IngestWebhook authenticates a delivery, classifies it, and records it
	// in the ledger. Errors are limited to ErrMissingPrivateKey,
	// ErrInvalidSignature, and ledger write failures; handler outcomes never
	// surface here.
	IngestWebhook(ctx context.Context, params map[string]string) (*IngestResult, error)

	// ProcessEvent resolves the tenant and applies the state transition for
	// one ledger row. It is safe to call any number of times for the same
	// event.
	ProcessEvent(ctx context.Context, eventID snowflake.ID) error
}

// Dispatcher hands acknowledged events to the background processing pool.
// Enqueue reports false when the queue is full; the reconciliation sweep
// picks those events up later.
type Dispatcher interface {
	Enqueue(eventID snowflake.ID) bool
}
