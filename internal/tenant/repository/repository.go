package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/vayron-digital/modulyn-one-sub003/internal/tenant/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) tenantdomain.Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, id snowflake.ID) (*tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&tenant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *Repository) FindByBillingEmail(ctx context.Context, email string) (*tenantdomain.Tenant, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	var tenant tenantdomain.Tenant
	err := r.db.WithContext(ctx).
		Where("billing_email = ?", email).
		First(&tenant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *Repository) FindByAPIKeyHash(ctx context.Context, hash string) (*tenantdomain.Tenant, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, nil
	}
	var tenant tenantdomain.Tenant
	err := r.db.WithContext(ctx).
		Where("api_key_hash = ?", hash).
		First(&tenant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// CreateActive inserts the tenant, deferring to the billing_email uniqueness
// constraint: if another webhook created the row first, that row wins and is
// returned.
func (r *Repository) CreateActive(ctx context.Context, tenant *tenantdomain.Tenant) (*tenantdomain.Tenant, error) {
	if tenant == nil {
		return nil, tenantdomain.ErrInvalidTenant
	}
	tenant.BillingEmail = normalizeEmail(tenant.BillingEmail)
	if tenant.BillingEmail == "" || tenant.ID == 0 {
		return nil, tenantdomain.ErrInvalidTenant
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "billing_email"}},
			DoNothing: true,
		}).
		Create(tenant).Error
	if err != nil {
		return nil, err
	}

	return r.FindByBillingEmail(ctx, tenant.BillingEmail)
}

func (r *Repository) Update(ctx context.Context, tenant *tenantdomain.Tenant) error {
	if tenant == nil || tenant.ID == 0 {
		return tenantdomain.ErrInvalidTenant
	}
	result := r.db.WithContext(ctx).Exec(
		`UPDATE tenants
		 SET subscription_status = ?, is_paid = ?, subscription_plan = ?,
		     subscription_id = ?, fastspring_customer_id = ?,
		     trial_start = ?, trial_ends = ?,
		     subscription_start_date = ?, subscription_end_date = ?,
		     last_payment_date = ?, next_billing_date = ?,
		     updated_at = ?
		 WHERE id = ?`,
		tenant.Status,
		tenant.IsPaid,
		tenant.Plan,
		tenant.SubscriptionID,
		tenant.FastSpringCustomerID,
		tenant.TrialStart,
		tenant.TrialEnds,
		tenant.SubscriptionStartDate,
		tenant.SubscriptionEndDate,
		tenant.LastPaymentDate,
		tenant.NextBillingDate,
		tenant.UpdatedAt,
		tenant.ID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tenantdomain.ErrTenantNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
