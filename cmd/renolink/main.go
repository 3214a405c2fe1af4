package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/renolink/renolink/internal/clock"
	"github.com/renolink/renolink/internal/config"
	"github.com/renolink/renolink/internal/migration"
	"github.com/renolink/renolink/internal/observability"
	"github.com/renolink/renolink/internal/server"
	"github.com/renolink/renolink/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
