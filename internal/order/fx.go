package order

import (
	"github.com/retailgrid/orderdesk/internal/order/repository"
	"github.com/retailgrid/orderdesk/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
