package main

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/vayron-digital/modulyn-one-sub003/internal/billing"
	"github.com/vayron-digital/modulyn-one-sub003/internal/billing/worker"
	"github.com/vayron-digital/modulyn-one-sub003/internal/clock"
	"github.com/vayron-digital/modulyn-one-sub003/internal/config"
	"github.com/vayron-digital/modulyn-one-sub003/internal/migration"
	"github.com/vayron-digital/modulyn-one-sub003/internal/observability/logger"
	"github.com/vayron-digital/modulyn-one-sub003/internal/observability/tracing"
	"github.com/vayron-digital/modulyn-one-sub003/internal/seed"
	"github.com/vayron-digital/modulyn-one-sub003/internal/server"
	"github.com/vayron-digital/modulyn-one-sub003/internal/tenant"
	"github.com/vayron-digital/modulyn-one-sub003/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		db.Module,
		tenant.Module,
		billing.Module,
		worker.Module,
		seed.Module,
		server.Module,

		fx.Provide(newSnowflakeNode),
		fx.Invoke(tracing.NewProvider),
		fx.Invoke(runMigrations),
	)
	app.Run()
}

// newSnowflakeNode derives a node id from the hostname so replicas generate
// non-colliding ids without coordination.
func newSnowflakeNode() (*snowflake.Node, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "modulyn"
	}
	h := fnv.New32a()
	h.Write([]byte(hostname))
	return snowflake.NewNode(int64(h.Sum32() % 1024))
}

func runMigrations(conn *gorm.DB, log *zap.Logger) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	if err := migration.RunMigrations(sqlDB); err != nil {
		return err
	}
	log.Info("database migrations applied")
	return nil
}
