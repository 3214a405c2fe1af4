package commission

import (
	"github.com/renolink/renolink/internal/commission/repository"
	"github.com/renolink/renolink/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
