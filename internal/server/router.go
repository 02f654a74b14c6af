package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vayron-digital/modulyn-one-sub003/internal/observability/logger"
	"github.com/vayron-digital/modulyn-one-sub003/internal/observability/metrics"
	"github.com/vayron-digital/modulyn-one-sub003/internal/observability/tracing"
	"go.uber.org/zap"
)

// Router assembles the gin engine: observability middleware, the webhook
// ingestion endpoint, and the tenant-facing API.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Logger:    s.log,
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	router.Use(tracing.GinMiddleware(s.cfg.ServiceName))

	if httpMetrics, err := metrics.NewHTTPMetrics(s.cfg.ServiceName); err != nil {
		s.log.Warn("http metrics disabled", zap.Error(err))
	} else {
		router.Use(metrics.GinMiddleware(httpMetrics))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Provider-facing. No tenant auth: deliveries authenticate with the
	// payload signature.
	router.POST("/webhook", s.HandleWebhook)
	router.POST("/api/v1/webhooks/fastspring", s.HandleWebhook)

	api := router.Group("/api/v1")
	api.GET("/plans", s.HandleListPlans)

	authed := api.Group("")
	authed.Use(s.TenantAuthRequired())
	authed.GET("/subscription", s.HandleGetSubscription)

	gated := authed.Group("")
	gated.Use(s.TrialGate())
	gated.GET("/me", s.HandleGetProfile)

	return router
}
