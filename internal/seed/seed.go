package seed

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/vayron-digital/modulyn-one-sub003/internal/auth/password"
	"github.com/vayron-digital/modulyn-one-sub003/internal/clock"
	"github.com/vayron-digital/modulyn-one-sub003/internal/config"
	tenantdomain "github.com/vayron-digital/modulyn-one-sub003/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@modulyn.local"
	defaultAdminPassword = "ChangeMe123!"

	demoTenantEmail = "demo@modulyn.local"
	demoTenantSlug  = "demo"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	DB      *gorm.DB
	Cfg     config.Config
	Clock   clock.Clock
	GenID   *snowflake.Node
	Tenants tenantdomain.Repository
}

type Seeder struct {
	log     *zap.Logger
	db      *gorm.DB
	cfg     config.Config
	clock   clock.Clock
	genID   *snowflake.Node
	tenants tenantdomain.Repository
}

func New(p Params) *Seeder {
	return &Seeder{
		log:     p.Log.Named("seed"),
		db:      p.DB,
		cfg:     p.Cfg,
		clock:   p.Clock,
		genID:   p.GenID,
		tenants: p.Tenants,
	}
}

// Run applies configured bootstrap seeding. All steps are idempotent.
func (s *Seeder) Run(ctx context.Context) error {
	if s.cfg.Bootstrap.EnsureDefaultAdmin {
		if err := s.ensureDefaultAdmin(ctx); err != nil {
			return err
		}
	}
	if s.cfg.Bootstrap.EnsureDemoTenant {
		if err := s.ensureDemoTenant(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) ensureDefaultAdmin(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).
		Raw(`SELECT COUNT(1) FROM users WHERE is_default = ?`, true).
		Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Exec(`
INSERT INTO users (id, email, display_name, password_hash, is_default, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (email) DO NOTHING`,
		s.genID.Generate().Int64(), defaultAdminEmail, "Default Admin", hash, true, now, now,
	).Error
	if err != nil {
		return err
	}

	s.log.Info("seeded default admin user",
		zap.String("email", defaultAdminEmail),
	)
	return nil
}

// ensureDemoTenant creates a trialing tenant for local walkthroughs of the
// trial gate and upgrade flow.
func (s *Seeder) ensureDemoTenant(ctx context.Context) error {
	existing, err := s.tenants.FindByBillingEmail(ctx, demoTenantEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	now := s.clock.Now()
	trialEnds := now.AddDate(0, 0, s.cfg.TrialDays)
	tenant := &tenantdomain.Tenant{
		ID:           s.genID.Generate(),
		Slug:         demoTenantSlug,
		Name:         "Demo Workspace",
		BillingEmail: demoTenantEmail,
		Status:       tenantdomain.StatusTrialing,
		IsPaid:       false,
		TrialStart:   &now,
		TrialEnds:    &trialEnds,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.tenants.CreateActive(ctx, tenant); err != nil {
		return err
	}

	s.log.Info("seeded demo tenant",
		zap.String("billing_email", demoTenantEmail),
		zap.Time("trial_ends", trialEnds),
	)
	return nil
}
