package pricecategory

import (
	pcdomain "github.com/retailgrid/orderdesk/internal/pricecategory/domain"
	"github.com/retailgrid/orderdesk/internal/pricecategory/repository"
	"github.com/retailgrid/orderdesk/internal/pricecategory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricecategory",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
		func(s pcdomain.Service) pcdomain.PriceLookup { return s },
	),
)
