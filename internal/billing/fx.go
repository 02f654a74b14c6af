package billing

import (
	"github.com/vayron-digital/modulyn-one-sub003/internal/billing/repository"
	"github.com/vayron-digital/modulyn-one-sub003/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
