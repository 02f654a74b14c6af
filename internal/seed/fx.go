package seed

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("seed",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, seeder *Seeder) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return seeder.Run(ctx)
			},
		})
	}),
)
