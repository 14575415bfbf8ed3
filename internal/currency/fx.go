package currency

import (
	currencydomain "github.com/retailgrid/orderdesk/internal/currency/domain"
	"github.com/retailgrid/orderdesk/internal/currency/repository"
	"github.com/retailgrid/orderdesk/internal/currency/service"
	"go.uber.org/fx"
)

var Module = fx.Module("currency",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
		func(s currencydomain.Service) currencydomain.RateProvider { return s },
	),
)
