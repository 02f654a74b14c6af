package worker

import (
	"context"

	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
	"github.com/vayron-digital/modulyn-one-sub003/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.worker",
	fx.Provide(NewPool),
	fx.Provide(func(pool *Pool) billingdomain.Dispatcher {
		return pool
	}),
	fx.Invoke(runPool),
)

func runPool(lc fx.Lifecycle, pool *Pool, svc billingdomain.Service, cfg config.Config) {
	pool.SetProcessor(svc)

	workers := cfg.Worker.Workers
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for i := 0; i < workers; i++ {
				go pool.Run(ctx)
			}
			go pool.SweepForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
