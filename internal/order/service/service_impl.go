package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	catalogdomain "github.com/retailgrid/orderdesk/internal/catalog/domain"
	"github.com/retailgrid/orderdesk/internal/config"
	currencydomain "github.com/retailgrid/orderdesk/internal/currency/domain"
	"github.com/retailgrid/orderdesk/internal/observability/metrics"
	orderdomain "github.com/retailgrid/orderdesk/internal/order/domain"
	"github.com/retailgrid/orderdesk/internal/pricing"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    orderdomain.Repository
	Rates   taxdomain.RateResolver
	FXRates currencydomain.RateProvider
	Quotes  catalogdomain.Quoter
	Policy  *config.PricingPolicyHolder `optional:"true"`
	Metrics *metrics.Metrics            `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	repo    orderdomain.Repository
	rates   taxdomain.RateResolver
	fxRates currencydomain.RateProvider
	quotes  catalogdomain.Quoter
	policy  *config.PricingPolicyHolder
	metrics *metrics.Metrics
}

func NewService(p serviceParams) orderdomain.Service {
	return &Service{
		log:     p.Log.Named("order.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		rates:   p.Rates,
		fxRates: p.FXRates,
		quotes:  p.Quotes,
		policy:  p.Policy,
		metrics: p.Metrics,
	}
}

func (s *Service) pricingPolicy() config.PricingPolicy {
	if s.policy == nil {
		return config.DefaultPricingPolicy()
	}
	return s.policy.Get()
}

func (s *Service) Create(ctx context.Context, req orderdomain.CreateRequest) (*orderdomain.Response, error) {
	storeID, err := snowflake.ParseString(strings.TrimSpace(req.StoreID))
	if err != nil || storeID == 0 {
		return nil, orderdomain.ErrInvalidStore
	}

	orderType := req.Type
	switch orderType {
	case orderdomain.TypeSales, orderdomain.TypePurchase:
	default:
		return nil, orderdomain.ErrInvalidType
	}

	counterparty := strings.TrimSpace(req.CounterpartyName)
	if counterparty == "" {
		return nil, orderdomain.ErrInvalidCounterparty
	}

	currencyID, err := parseOptionalID(req.CurrencyID)
	if err != nil {
		return nil, orderdomain.ErrInvalidID
	}
	categoryID, err := parseOptionalID(req.PriceCategoryID)
	if err != nil {
		return nil, orderdomain.ErrInvalidID
	}

	now := time.Now().UTC()
	orderDate := now
	if req.OrderDate != nil {
		orderDate = req.OrderDate.UTC()
	}

	order := &orderdomain.Order{
		ID:               s.genID.Generate(),
		Number:           orderNumber(orderType),
		StoreID:          storeID,
		Type:             orderType,
		Status:           orderdomain.StatusDraft,
		CounterpartyName: counterparty,
		CurrencyID:       currencyID,
		ExchangeRate:     s.resolveExchangeRate(ctx, currencyID, req.ExchangeRate),
		PriceCategoryID:  categoryID,
		OrderDate:        orderDate,
		ExpectedDate:     req.ExpectedDate,
		ShippingAddress:  trimOptional(req.ShippingAddress),
		Notes:            trimOptional(req.Notes),
		Terms:            trimOptional(req.Terms),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	order.Lines, err = s.buildLines(ctx, order.ID, order.PriceCategoryID, req.Lines, now)
	if err != nil {
		return nil, err
	}
	s.applyTotals(order)

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.metrics.RecordOrderCreated(ctx, string(order.Type))
	s.log.Info("order created",
		zap.String("number", order.Number),
		zap.String("type", string(order.Type)),
		zap.Int("lines", len(order.Lines)),
	)

	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*orderdomain.Response, error) {
	order, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req orderdomain.ListRequest) ([]orderdomain.Response, error) {
	filter := orderdomain.ListRequest{
		StoreID: strings.TrimSpace(req.StoreID),
		Type:    strings.ToUpper(strings.TrimSpace(req.Type)),
		Status:  strings.ToUpper(strings.TrimSpace(req.Status)),
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]orderdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req orderdomain.UpdateRequest) (*orderdomain.Response, error) {
	order, err := s.findByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if order.Status != orderdomain.StatusDraft {
		return nil, orderdomain.ErrOrderSubmitted
	}

	if req.CounterpartyName != nil {
		counterparty := strings.TrimSpace(*req.CounterpartyName)
		if counterparty == "" {
			return nil, orderdomain.ErrInvalidCounterparty
		}
		order.CounterpartyName = counterparty
	}
	if req.CurrencyID != nil {
		currencyID, err := parseOptionalID(req.CurrencyID)
		if err != nil {
			return nil, orderdomain.ErrInvalidID
		}
		order.CurrencyID = currencyID
	}
	if req.PriceCategoryID != nil {
		categoryID, err := parseOptionalID(req.PriceCategoryID)
		if err != nil {
			return nil, orderdomain.ErrInvalidID
		}
		order.PriceCategoryID = categoryID
	}
	switch {
	case req.ExchangeRate != nil:
		order.ExchangeRate = s.resolveExchangeRate(ctx, order.CurrencyID, req.ExchangeRate)
	case req.CurrencyID != nil:
		order.ExchangeRate = s.resolveExchangeRate(ctx, order.CurrencyID, nil)
	}

	if req.OrderDate != nil {
		order.OrderDate = req.OrderDate.UTC()
	}
	if req.ExpectedDate != nil {
		order.ExpectedDate = req.ExpectedDate
	}
	if req.ShippingAddress != nil {
		order.ShippingAddress = trimOptional(req.ShippingAddress)
	}
	if req.Notes != nil {
		order.Notes = trimOptional(req.Notes)
	}
	if req.Terms != nil {
		order.Terms = trimOptional(req.Terms)
	}

	now := time.Now().UTC()
	if req.Lines != nil {
		order.Lines, err = s.buildLines(ctx, order.ID, order.PriceCategoryID, *req.Lines, now)
		if err != nil {
			return nil, err
		}
	} else {
		// Recompute the retained lines against the possibly changed
		// exchange rate.
		s.recomputeLines(order, now)
	}
	order.UpdatedAt = now
	s.applyTotals(order)

	if err := s.repo.Replace(ctx, order); err != nil {
		return nil, err
	}

	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) Submit(ctx context.Context, id string) (*orderdomain.Response, error) {
	order, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != orderdomain.StatusDraft {
		return nil, orderdomain.ErrOrderSubmitted
	}
	if len(order.Lines) == 0 {
		return nil, orderdomain.ErrNoLineItems
	}
	for i := range order.Lines {
		if err := order.Lines[i].ValidateForSubmit(); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	order.Status = orderdomain.StatusSubmitted
	order.SubmittedAt = &now
	order.UpdatedAt = now

	if err := s.repo.UpdateStatus(ctx, order); err != nil {
		return nil, err
	}

	s.metrics.RecordOrderSubmitted(ctx, string(order.Type))
	s.log.Info("order submitted",
		zap.String("number", order.Number),
		zap.String("total", order.Total.String()),
	)

	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	order, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != orderdomain.StatusDraft {
		return orderdomain.ErrOrderSubmitted
	}
	return s.repo.Delete(ctx, order.ID)
}

// Preview runs the pricing engine over arbitrary input lines without
// touching storage. Used by order forms for continuous recomputation.
func (s *Service) Preview(ctx context.Context, req orderdomain.PreviewRequest) (*orderdomain.PreviewResponse, error) {
	currencyID, err := parseOptionalID(req.CurrencyID)
	if err != nil {
		return nil, orderdomain.ErrInvalidID
	}
	rate := s.resolveExchangeRate(ctx, currencyID, req.ExchangeRate)

	now := time.Now().UTC()
	lines, err := s.buildLines(ctx, 0, nil, req.Lines, now)
	if err != nil {
		return nil, err
	}

	order := &orderdomain.Order{ExchangeRate: rate, Lines: lines}
	s.applyTotals(order)

	if s.metrics != nil && len(lines) > 0 {
		s.metrics.RecordPricingPreview(ctx, string(lines[0].DiscountMode))
	}

	resp := s.toResponse(order)
	return &orderdomain.PreviewResponse{Lines: resp.Lines, Totals: resp.Totals}, nil
}

// buildLines maps request lines onto records, resolving tax and
// withholding rates from the selected codes. A selected tax code always
// wins over a caller-provided rate; a missing code resolves to the
// provided rate, then zero. Lines that carry only a product reference are
// priced through the catalog quote once, at creation time.
func (s *Service) buildLines(ctx context.Context, orderID snowflake.ID, categoryID *snowflake.ID, reqs []orderdomain.LineRequest, now time.Time) ([]orderdomain.LineItem, error) {
	defaultMode := defaultDiscountMode(s.pricingPolicy())

	lines := make([]orderdomain.LineItem, 0, len(reqs))
	for _, req := range reqs {
		productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
		if err != nil {
			return nil, orderdomain.ErrInvalidProduct
		}

		taxCodeID, err := parseOptionalID(req.TaxCodeID)
		if err != nil {
			return nil, orderdomain.ErrInvalidID
		}
		whtCodeID, err := parseOptionalID(req.WHTCodeID)
		if err != nil {
			return nil, orderdomain.ErrInvalidID
		}

		unitPrice := pricing.NonNegative(req.UnitPrice)
		priceTaxInclusive := req.PriceTaxInclusive

		if unitPrice.IsZero() {
			quote, err := s.quoteLine(ctx, productID, categoryID)
			if err != nil {
				return nil, err
			}
			unitPrice = quote.UnitPrice
			priceTaxInclusive = quote.PriceTaxInclusive
			if taxCodeID == nil && req.TaxRate == nil {
				if taxCodeID, err = parseOptionalID(quote.TaxCodeID); err != nil {
					return nil, orderdomain.ErrInvalidID
				}
			}
			if whtCodeID == nil {
				if whtCodeID, err = parseOptionalID(quote.WHTCodeID); err != nil {
					return nil, orderdomain.ErrInvalidID
				}
			}
		}

		taxRate := decimal.Zero
		if taxCodeID != nil {
			taxRate = s.rates.ResolveRate(ctx, taxCodeID, false)
		} else if req.TaxRate != nil {
			taxRate = pricing.ClampPercent(*req.TaxRate)
		}
		whtRate := s.rates.ResolveRate(ctx, whtCodeID, true)

		mode := req.DiscountMode
		if mode != pricing.DiscountPercentage && mode != pricing.DiscountAmount {
			mode = defaultMode
		}

		lines = append(lines, orderdomain.LineItem{
			ID:                 s.genID.Generate(),
			OrderID:            orderID,
			ProductID:          productID,
			Description:        strings.TrimSpace(req.Description),
			Quantity:           pricing.NonNegative(req.Quantity),
			UnitPrice:          unitPrice,
			DiscountMode:       mode,
			DiscountPercentage: pricing.ClampPercent(req.DiscountPercentage),
			DiscountAmount:     pricing.NonNegative(req.DiscountAmount),
			TaxCodeID:          taxCodeID,
			TaxRate:            taxRate,
			WHTCodeID:          whtCodeID,
			WHTRate:            whtRate,
			PriceTaxInclusive:  priceTaxInclusive,
			SerialNumbers:      orderdomain.FilterSerialNumbers(req.SerialNumbers),
			BatchNumber:        trimOptional(req.BatchNumber),
			ExpiryDate:         req.ExpiryDate,
			Notes:              trimOptional(req.Notes),
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	return lines, nil
}

// quoteLine prices a product-only line from the catalog. The quote's unit
// price is already normalized to a tax-exclusive base.
func (s *Service) quoteLine(ctx context.Context, productID snowflake.ID, categoryID *snowflake.ID) (*catalogdomain.QuoteResponse, error) {
	req := catalogdomain.QuoteRequest{ProductID: productID.String()}
	if categoryID != nil {
		category := categoryID.String()
		req.PriceCategoryID = &category
	}

	quote, err := s.quotes.Quote(ctx, req)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) {
			return nil, orderdomain.ErrInvalidProduct
		}
		return nil, err
	}
	return quote, nil
}

func defaultDiscountMode(policy config.PricingPolicy) pricing.DiscountMode {
	if strings.EqualFold(policy.DefaultDiscountMode, string(pricing.DiscountPercentage)) {
		return pricing.DiscountPercentage
	}
	return pricing.DefaultDiscountMode
}

// applyTotals runs the pricing engine over the order's lines and writes
// the derived amounts back onto the records.
func (s *Service) applyTotals(order *orderdomain.Order) {
	inputs := make([]pricing.LineInput, 0, len(order.Lines))
	for i := range order.Lines {
		line := &order.Lines[i]
		inputs = append(inputs, pricing.LineInput{
			Quantity:           line.Quantity,
			UnitPrice:          line.UnitPrice,
			DiscountMode:       line.DiscountMode,
			DiscountPercentage: line.DiscountPercentage,
			DiscountAmount:     line.DiscountAmount,
			TaxRate:            line.TaxRate,
			WHTRate:            line.WHTRate,
		})
	}

	lineTotals, totals := pricing.ComputeTotals(pricing.OrderContext{ExchangeRate: order.ExchangeRate}, inputs)
	for i := range order.Lines {
		order.Lines[i].Subtotal = lineTotals[i].Subtotal
		order.Lines[i].Discount = lineTotals[i].Discount
		order.Lines[i].Tax = lineTotals[i].Tax
		order.Lines[i].WHT = lineTotals[i].WHT
		order.Lines[i].Total = lineTotals[i].Total
		order.Lines[i].EquivalentAmount = lineTotals[i].EquivalentAmount
	}

	order.Subtotal = totals.Subtotal
	order.TotalDiscount = totals.TotalDiscount
	order.TotalTax = totals.TotalTax
	order.TotalWHT = totals.TotalWHT
	order.AmountAfterDiscount = totals.AmountAfterDiscount
	order.AmountAfterWHT = totals.AmountAfterWHT
	order.Total = totals.Total
	order.EquivalentTotal = totals.EquivalentTotal
}

func (s *Service) recomputeLines(order *orderdomain.Order, now time.Time) {
	for i := range order.Lines {
		order.Lines[i].UpdatedAt = now
	}
}

// resolveExchangeRate prefers an explicit positive rate, then the stored
// rate for the order currency, and finally 1.0.
func (s *Service) resolveExchangeRate(ctx context.Context, currencyID *snowflake.ID, explicit *decimal.Decimal) decimal.Decimal {
	if explicit != nil && explicit.IsPositive() {
		return *explicit
	}
	if currencyID != nil {
		return s.fxRates.RateToBase(ctx, *currencyID)
	}
	return decimal.NewFromInt(1)
}

func (s *Service) findByID(ctx context.Context, id string) (*orderdomain.Order, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, orderdomain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}
	return order, nil
}

func orderNumber(orderType orderdomain.Type) string {
	prefix := "SO"
	if orderType == orderdomain.TypePurchase {
		prefix = "PO"
	}
	return prefix + "-" + ulid.Make().String()
}

// toResponse renders an order for the API, rounding derived amounts at
// the policy display scale. Stored amounts keep full precision.
func (s *Service) toResponse(order *orderdomain.Order) orderdomain.Response {
	scale := s.pricingPolicy().DisplayScale

	lines := make([]orderdomain.LineResponse, 0, len(order.Lines))
	for i := range order.Lines {
		line := &order.Lines[i]
		lines = append(lines, orderdomain.LineResponse{
			ID:                 line.ID.String(),
			ProductID:          line.ProductID.String(),
			Description:        line.Description,
			Quantity:           line.Quantity,
			UnitPrice:          line.UnitPrice,
			DiscountMode:       line.DiscountMode,
			DiscountPercentage: line.DiscountPercentage,
			DiscountAmount:     line.DiscountAmount,
			TaxCodeID:          idToString(line.TaxCodeID),
			TaxRate:            line.TaxRate,
			WHTCodeID:          idToString(line.WHTCodeID),
			WHTRate:            line.WHTRate,
			PriceTaxInclusive:  line.PriceTaxInclusive,
			SerialNumbers:      line.SerialNumbers,
			BatchNumber:        line.BatchNumber,
			ExpiryDate:         line.ExpiryDate,
			Notes:              line.Notes,
			Subtotal:           line.Subtotal.Round(scale),
			LineDiscount:       line.Discount.Round(scale),
			LineTax:            line.Tax.Round(scale),
			LineWHT:            line.WHT.Round(scale),
			LineTotal:          line.Total.Round(scale),
			EquivalentAmount:   line.EquivalentAmount.Round(scale),
		})
	}

	effectiveVAT := decimal.Zero
	if order.AmountAfterDiscount.IsPositive() {
		effectiveVAT = order.TotalTax.Div(order.AmountAfterDiscount).Mul(decimal.NewFromInt(100))
	}

	return orderdomain.Response{
		ID:               order.ID.String(),
		Number:           order.Number,
		StoreID:          order.StoreID.String(),
		Type:             order.Type,
		Status:           order.Status,
		CounterpartyName: order.CounterpartyName,
		CurrencyID:       idToString(order.CurrencyID),
		ExchangeRate:     order.ExchangeRate,
		PriceCategoryID:  idToString(order.PriceCategoryID),
		OrderDate:        order.OrderDate,
		ExpectedDate:     order.ExpectedDate,
		ShippingAddress:  order.ShippingAddress,
		Notes:            order.Notes,
		Terms:            order.Terms,
		Lines:            lines,
		Totals: orderdomain.TotalsResponse{
			Subtotal:            order.Subtotal.Round(scale),
			TotalDiscount:       order.TotalDiscount.Round(scale),
			TotalTax:            order.TotalTax.Round(scale),
			TotalWHT:            order.TotalWHT.Round(scale),
			AmountAfterDiscount: order.AmountAfterDiscount.Round(scale),
			AmountAfterWHT:      order.AmountAfterWHT.Round(scale),
			Total:               order.Total.Round(scale),
			EquivalentTotal:     order.EquivalentTotal.Round(scale),
			EffectiveVATPercent: effectiveVAT.Round(scale),
		},
		SubmittedAt: order.SubmittedAt,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func parseOptionalID(value *string) (*snowflake.ID, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func idToString(id *snowflake.ID) *string {
	if id == nil {
		return nil
	}
	value := id.String()
	return &value
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
