package quote

import (
	"github.com/renolink/renolink/internal/quote/repository"
	"github.com/renolink/renolink/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
