package project

import (
	"github.com/renolink/renolink/internal/project/repository"
	"github.com/renolink/renolink/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
