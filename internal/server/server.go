package server

import (
	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
	"github.com/vayron-digital/modulyn-one-sub003/internal/cache"
	"github.com/vayron-digital/modulyn-one-sub003/internal/clock"
	"github.com/vayron-digital/modulyn-one-sub003/internal/config"
	tenantdomain "github.com/vayron-digital/modulyn-one-sub003/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Clock   clock.Clock
	Billing billingdomain.Service
	Tenants tenantdomain.Repository
}

// Server holds the HTTP handlers for webhook ingestion and the tenant-facing
// subscription API.
type Server struct {
	log     *zap.Logger
	cfg     config.Config
	clock   clock.Clock
	billing billingdomain.Service
	tenants tenantdomain.Repository

	// tenantCache keeps the auth and trial-gate middleware from re-reading
	// the tenant row on every request. Keyed by API key hash.
	tenantCache *cache.TTL[string, *tenantdomain.Tenant]
}

func NewServer(p Params) *Server {
	return &Server{
		log:         p.Log.Named("http"),
		cfg:         p.Cfg,
		clock:       p.Clock,
		billing:     p.Billing,
		tenants:     p.Tenants,
		tenantCache: cache.NewTTL[string, *tenantdomain.Tenant](),
	}
}
