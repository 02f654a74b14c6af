package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrTenantNotFound = errors.New("tenant_not_found")
	ErrInvalidTenant  = errors.New("invalid_tenant")
)

// Repository persists tenants. Lookups return (nil, nil) when no row matches
// so callers can distinguish "absent" from storage failures.
type Repository interface {
	FindByID(ctx context.Context, id snowflake.ID) (*Tenant, error)
	FindByBillingEmail(ctx context.Context, email string) (*Tenant, error)
	FindByAPIKeyHash(ctx context.Context, hash string) (*Tenant, error)

	// CreateActive inserts a tenant, relying on the billing_email uniqueness
	// constraint: when a concurrent insert wins, the surviving row is
	// returned instead of an error.
	CreateActive(ctx context.Context, tenant *Tenant) (*Tenant, error)

	Update(ctx context.Context, tenant *Tenant) error
}
