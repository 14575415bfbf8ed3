package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/retailgrid/orderdesk/internal/config"
	"github.com/retailgrid/orderdesk/internal/migration"
	"github.com/retailgrid/orderdesk/internal/observability"
	"github.com/retailgrid/orderdesk/internal/ratelimit"
	"github.com/retailgrid/orderdesk/internal/server"
	"github.com/retailgrid/orderdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		ratelimit.Module,
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
