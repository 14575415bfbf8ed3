package transfer

import (
	"github.com/retailgrid/orderdesk/internal/transfer/repository"
	"github.com/retailgrid/orderdesk/internal/transfer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transfer",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
