package catalog

import (
	catalogdomain "github.com/retailgrid/orderdesk/internal/catalog/domain"
	"github.com/retailgrid/orderdesk/internal/catalog/repository"
	"github.com/retailgrid/orderdesk/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
		func(s catalogdomain.Service) catalogdomain.Quoter { return s },
	),
)
