package tenant

import (
	"github.com/vayron-digital/modulyn-one-sub003/internal/tenant/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant",
	fx.Provide(repository.Provide),
)
