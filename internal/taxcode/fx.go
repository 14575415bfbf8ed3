package taxcode

import (
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	"github.com/retailgrid/orderdesk/internal/taxcode/repository"
	"github.com/retailgrid/orderdesk/internal/taxcode/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxcode",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
		func(s taxdomain.Service) taxdomain.RateResolver { return s },
	),
)
