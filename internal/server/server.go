package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/retailgrid/orderdesk/internal/catalog"
	catalogdomain "github.com/retailgrid/orderdesk/internal/catalog/domain"
	"github.com/retailgrid/orderdesk/internal/config"
	"github.com/retailgrid/orderdesk/internal/currency"
	currencydomain "github.com/retailgrid/orderdesk/internal/currency/domain"
	"github.com/retailgrid/orderdesk/internal/observability"
	"github.com/retailgrid/orderdesk/internal/observability/logger"
	"github.com/retailgrid/orderdesk/internal/observability/metrics"
	"github.com/retailgrid/orderdesk/internal/observability/tracing"
	"github.com/retailgrid/orderdesk/internal/order"
	orderdomain "github.com/retailgrid/orderdesk/internal/order/domain"
	"github.com/retailgrid/orderdesk/internal/pricecategory"
	pcdomain "github.com/retailgrid/orderdesk/internal/pricecategory/domain"
	"github.com/retailgrid/orderdesk/internal/ratelimit"
	"github.com/retailgrid/orderdesk/internal/taxcode"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	"github.com/retailgrid/orderdesk/internal/transfer"
	transferdomain "github.com/retailgrid/orderdesk/internal/transfer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	taxcode.Module,
	catalog.Module,
	pricecategory.Module,
	currency.Module,
	order.Module,
	transfer.Module,
	fx.Provide(NewEngine, NewServer),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with the shared middleware chain. Route
// registration happens in NewServer so handlers can be tested against a
// bare engine.
func NewEngine(obsCfg observability.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	engine.Use(tracing.GinMiddleware())
	engine.Use(httpMetrics.GinMiddleware())
	engine.Use(ErrorHandlingMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return engine
}

type ServerParams struct {
	fx.In

	Log    *zap.Logger
	Engine *gin.Engine
	Config config.Config
	Policy *config.PricingPolicyHolder

	TaxCodeService       taxdomain.Service
	CatalogService       catalogdomain.Service
	PriceCategoryService pcdomain.Service
	CurrencyService      currencydomain.Service
	OrderService         orderdomain.Service
	TransferService      transferdomain.Service

	Limiter *ratelimit.Limiter `optional:"true"`
}

type Server struct {
	log    *zap.Logger
	engine *gin.Engine
	policy *config.PricingPolicyHolder

	taxCodes        taxdomain.Service
	catalog         catalogdomain.Service
	priceCategories pcdomain.Service
	currencies      currencydomain.Service
	orders          orderdomain.Service
	transfers       transferdomain.Service

	limiter *ratelimit.Limiter
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		log:             p.Log,
		engine:          p.Engine,
		policy:          p.Policy,
		taxCodes:        p.TaxCodeService,
		catalog:         p.CatalogService,
		priceCategories: p.PriceCategoryService,
		currencies:      p.CurrencyService,
		orders:          p.OrderService,
		transfers:       p.TransferService,
		limiter:         p.Limiter,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.GET("/config/pricing", s.getPricingPolicy)
	api.POST("/pricing/preview", s.previewPricing)

	taxCodes := api.Group("/tax-codes")
	{
		taxCodes.POST("", s.createTaxCode)
		taxCodes.GET("", s.listTaxCodes)
		taxCodes.GET("/:id", s.getTaxCode)
		taxCodes.PATCH("/:id", s.updateTaxCode)
		taxCodes.DELETE("/:id", s.disableTaxCode)
	}

	products := api.Group("/products")
	{
		products.POST("", s.createProduct)
		products.GET("", s.limiter.ProductSearch(), s.listProducts)
		products.GET("/:id", s.getProduct)
		products.PATCH("/:id", s.updateProduct)
		products.DELETE("/:id", s.disableProduct)
		products.GET("/:id/quote", s.quoteProduct)
	}

	categories := api.Group("/price-categories")
	{
		categories.POST("", s.createPriceCategory)
		categories.GET("", s.listPriceCategories)
		categories.GET("/:id", s.getPriceCategory)
		categories.PATCH("/:id", s.updatePriceCategory)
		categories.PUT("/:id/prices", s.setCategoryPrice)
		categories.GET("/:id/prices", s.listCategoryPrices)
		categories.DELETE("/:id/prices/:product_id", s.removeCategoryPrice)
	}

	currencies := api.Group("/currencies")
	{
		currencies.POST("", s.createCurrency)
		currencies.GET("", s.listCurrencies)
		currencies.GET("/:id", s.getCurrency)
		currencies.PATCH("/:id", s.updateCurrency)
		currencies.PUT("/:id/rates", s.setExchangeRate)
		currencies.GET("/:id/rates", s.listExchangeRates)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", s.createOrder)
		orders.GET("", s.listOrders)
		orders.GET("/:id", s.getOrder)
		orders.PATCH("/:id", s.updateOrder)
		orders.POST("/:id/submit", s.limiter.OrderSubmit(), s.submitOrder)
		orders.DELETE("/:id", s.deleteOrder)
	}

	transfers := api.Group("/transfers")
	{
		transfers.POST("", s.createTransfer)
		transfers.GET("", s.listTransfers)
		transfers.GET("/:id", s.getTransfer)
		transfers.POST("/:id/send", s.sendTransfer)
		transfers.POST("/:id/receive", s.receiveTransfer)
		transfers.DELETE("/:id", s.deleteTransfer)
	}
}

func (s *Server) getPricingPolicy(c *gin.Context) {
	c.JSON(http.StatusOK, s.policy.Get())
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine, _ *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
