package migration

import (
	catalogdomain "github.com/retailgrid/orderdesk/internal/catalog/domain"
	"github.com/retailgrid/orderdesk/internal/config"
	currencydomain "github.com/retailgrid/orderdesk/internal/currency/domain"
	orderdomain "github.com/retailgrid/orderdesk/internal/order/domain"
	pcdomain "github.com/retailgrid/orderdesk/internal/pricecategory/domain"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	transferdomain "github.com/retailgrid/orderdesk/internal/transfer/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Versioned SQL migrations target PostgreSQL; other dialects
			// (sqlite for local development and tests) auto-migrate.
			return conn.AutoMigrate(
				&taxdomain.TaxCode{},
				&catalogdomain.Product{},
				&pcdomain.PriceCategory{},
				&pcdomain.CategoryPrice{},
				&currencydomain.Currency{},
				&currencydomain.ExchangeRate{},
				&orderdomain.Order{},
				&orderdomain.LineItem{},
				&transferdomain.Transfer{},
				&transferdomain.TransferLine{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
