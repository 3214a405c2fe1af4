package user

import (
	"github.com/renolink/renolink/internal/user/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("user.repository",
	fx.Provide(repository.Provide),
)
