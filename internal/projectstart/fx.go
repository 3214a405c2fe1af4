package projectstart

import (
	"github.com/renolink/renolink/internal/projectstart/service"
	"go.uber.org/fx"
)

var Module = fx.Module("projectstart.service",
	fx.Provide(service.New),
)
