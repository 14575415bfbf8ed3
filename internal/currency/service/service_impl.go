package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	currencydomain "github.com/retailgrid/orderdesk/internal/currency/domain"
	"github.com/retailgrid/orderdesk/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  currencydomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  currencydomain.Repository
}

func NewService(p serviceParams) currencydomain.Service {
	return &Service{
		log:   p.Log.Named("currency.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req currencydomain.CreateRequest) (*currencydomain.Response, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if len(code) != 3 {
		return nil, currencydomain.ErrInvalidCode
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, currencydomain.ErrInvalidName
	}

	decimalPlaces := 2
	if req.DecimalPlaces != nil && *req.DecimalPlaces >= 0 {
		decimalPlaces = *req.DecimalPlaces
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now().UTC()
	record := &currencydomain.Currency{
		ID:            s.genID.Generate(),
		Code:          code,
		Name:          name,
		Symbol:        strings.TrimSpace(req.Symbol),
		DecimalPlaces: decimalPlaces,
		IsBase:        req.IsBase,
		IsActive:      isActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, currencydomain.ErrCodeExists
		}
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*currencydomain.Response, error) {
	currencyID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, currencydomain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, currencyID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, currencydomain.ErrNotFound
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req currencydomain.ListRequest) ([]currencydomain.Response, error) {
	filter := currencydomain.ListRequest{
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		IsActive: req.IsActive,
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]currencydomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req currencydomain.UpdateRequest) (*currencydomain.Response, error) {
	currencyID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, currencydomain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, currencyID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, currencydomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, currencydomain.ErrInvalidName
		}
		record.Name = name
	}
	if req.Symbol != nil {
		record.Symbol = strings.TrimSpace(*req.Symbol)
	}
	if req.DecimalPlaces != nil && *req.DecimalPlaces >= 0 {
		record.DecimalPlaces = *req.DecimalPlaces
	}
	if req.IsActive != nil {
		record.IsActive = *req.IsActive
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) SetRate(ctx context.Context, req currencydomain.SetRateRequest) (*currencydomain.RateResponse, error) {
	fromID, err := snowflake.ParseString(strings.TrimSpace(req.FromCurrencyID))
	if err != nil {
		return nil, currencydomain.ErrInvalidID
	}
	toID, err := snowflake.ParseString(strings.TrimSpace(req.ToCurrencyID))
	if err != nil {
		return nil, currencydomain.ErrInvalidID
	}
	if fromID == toID {
		return nil, currencydomain.ErrSamePair
	}
	if !req.Rate.IsPositive() {
		return nil, currencydomain.ErrInvalidRate
	}

	now := time.Now().UTC()
	record := &currencydomain.ExchangeRate{
		ID:             s.genID.Generate(),
		FromCurrencyID: fromID,
		ToCurrencyID:   toID,
		Rate:           req.Rate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.UpsertRate(ctx, record); err != nil {
		return nil, err
	}

	return &currencydomain.RateResponse{
		FromCurrencyID: record.FromCurrencyID.String(),
		ToCurrencyID:   record.ToCurrencyID.String(),
		Rate:           record.Rate,
		UpdatedAt:      record.UpdatedAt,
	}, nil
}

func (s *Service) ListRates(ctx context.Context, fromCurrencyID string) ([]currencydomain.RateResponse, error) {
	fromID, err := snowflake.ParseString(strings.TrimSpace(fromCurrencyID))
	if err != nil {
		return nil, currencydomain.ErrInvalidID
	}

	items, err := s.repo.ListRates(ctx, fromID)
	if err != nil {
		return nil, err
	}

	resp := make([]currencydomain.RateResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, currencydomain.RateResponse{
			FromCurrencyID: item.FromCurrencyID.String(),
			ToCurrencyID:   item.ToCurrencyID.String(),
			Rate:           item.Rate,
			UpdatedAt:      item.UpdatedAt,
		})
	}
	return resp, nil
}

// RateToBase degrades to 1.0 whenever the base currency is unknown, the
// currency is the base itself, or no positive rate is recorded.
func (s *Service) RateToBase(ctx context.Context, currencyID snowflake.ID) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if currencyID == 0 {
		return one
	}

	base, err := s.repo.FindBase(ctx)
	if err != nil {
		s.log.Warn("base currency lookup failed", zap.Error(err))
		return one
	}
	if base == nil || base.ID == currencyID {
		return one
	}

	rate, err := s.repo.FindRate(ctx, currencyID, base.ID)
	if err != nil {
		s.log.Warn("exchange rate lookup failed",
			zap.Int64("from_currency_id", int64(currencyID)),
			zap.Error(err),
		)
		return one
	}
	if rate == nil || !rate.Rate.IsPositive() {
		return one
	}
	return rate.Rate
}

func toResponse(record *currencydomain.Currency) currencydomain.Response {
	return currencydomain.Response{
		ID:            record.ID.String(),
		Code:          record.Code,
		Name:          record.Name,
		Symbol:        record.Symbol,
		DecimalPlaces: record.DecimalPlaces,
		IsBase:        record.IsBase,
		IsActive:      record.IsActive,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}
