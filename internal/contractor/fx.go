package contractor

import (
	"github.com/renolink/renolink/internal/contractor/repository"
	"github.com/renolink/renolink/internal/contractor/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contractor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
