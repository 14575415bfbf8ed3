package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	catalogdomain "github.com/retailgrid/orderdesk/internal/catalog/domain"
	pcdomain "github.com/retailgrid/orderdesk/internal/pricecategory/domain"
	"github.com/retailgrid/orderdesk/internal/pricing"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	"github.com/retailgrid/orderdesk/pkg/db"
	"github.com/retailgrid/orderdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        catalogdomain.Repository
	Rates       taxdomain.RateResolver
	PriceLookup pcdomain.PriceLookup
}

type Service struct {
	log         *zap.Logger
	genID       *snowflake.Node
	repo        catalogdomain.Repository
	rates       taxdomain.RateResolver
	priceLookup pcdomain.PriceLookup
}

func NewService(p serviceParams) catalogdomain.Service {
	return &Service{
		log:         p.Log.Named("catalog.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		rates:       p.Rates,
		priceLookup: p.PriceLookup,
	}
}

func (s *Service) Create(ctx context.Context, req catalogdomain.CreateRequest) (*catalogdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalogdomain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = slug.Make(name)
	} else {
		code = slug.Make(code)
	}

	taxCodeID, err := parseOptionalID(req.DefaultTaxCodeID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}
	whtCodeID, err := parseOptionalID(req.DefaultWHTCodeID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}

	tracking := req.TrackingMode
	if tracking == "" {
		tracking = catalogdomain.TrackingNone
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	description := strings.TrimSpace(ptrToString(req.Description))
	var descriptionPtr *string
	if description != "" {
		descriptionPtr = &description
	}

	now := time.Now().UTC()
	record := &catalogdomain.Product{
		ID:                s.genID.Generate(),
		Code:              code,
		Name:              name,
		Description:       descriptionPtr,
		SellingPrice:      pricing.NonNegative(req.SellingPrice),
		AverageCost:       pricing.NonNegative(req.AverageCost),
		PriceTaxInclusive: req.PriceTaxInclusive,
		DefaultTaxCodeID:  taxCodeID,
		DefaultWHTCodeID:  whtCodeID,
		TrackingMode:      tracking,
		IsActive:          isActive,
		Metadata:          req.Metadata,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrCodeExists
		}
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*catalogdomain.Response, error) {
	record, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req catalogdomain.ListRequest) (*catalogdomain.ListResponse, error) {
	filter := catalogdomain.ListRequest{
		Search:   strings.TrimSpace(req.Search),
		IsActive: req.IsActive,
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 20
	}
	if limit > 250 {
		limit = 250
	}
	filter.Limit = limit

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, catalogdomain.ErrInvalidID
		}
		filter.Cursor = cursor
		// Cursor paging requires a stable id ordering.
		filter.SortBy = "id"
		filter.OrderBy = "ASC"
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(limit), func(p *catalogdomain.Product) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: p.ID.String()})
		return token
	})
	if len(items) > limit {
		items = items[:limit]
	}

	resp := make([]catalogdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}

	return &catalogdomain.ListResponse{Products: resp, PageInfo: pageInfo}, nil
}

func (s *Service) Update(ctx context.Context, req catalogdomain.UpdateRequest) (*catalogdomain.Response, error) {
	record, err := s.findByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, catalogdomain.ErrInvalidName
		}
		record.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			record.Description = nil
		} else {
			record.Description = &description
		}
	}
	if req.SellingPrice != nil {
		record.SellingPrice = pricing.NonNegative(*req.SellingPrice)
	}
	if req.AverageCost != nil {
		record.AverageCost = pricing.NonNegative(*req.AverageCost)
	}
	if req.PriceTaxInclusive != nil {
		record.PriceTaxInclusive = *req.PriceTaxInclusive
	}
	if req.DefaultTaxCodeID != nil {
		taxCodeID, err := parseOptionalID(req.DefaultTaxCodeID)
		if err != nil {
			return nil, catalogdomain.ErrInvalidID
		}
		record.DefaultTaxCodeID = taxCodeID
	}
	if req.DefaultWHTCodeID != nil {
		whtCodeID, err := parseOptionalID(req.DefaultWHTCodeID)
		if err != nil {
			return nil, catalogdomain.ErrInvalidID
		}
		record.DefaultWHTCodeID = whtCodeID
	}
	if req.TrackingMode != nil {
		record.TrackingMode = *req.TrackingMode
	}
	if req.IsActive != nil {
		record.IsActive = *req.IsActive
	}
	record.UpdatedAt = time.Now().UTC()

	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Disable(ctx context.Context, id string) (*catalogdomain.Response, error) {
	isActive := false
	return s.Update(ctx, catalogdomain.UpdateRequest{ID: id, IsActive: &isActive})
}

// Quote normalizes the product's price to a tax-exclusive base and
// resolves the default tax and withholding rates for a new order line.
func (s *Service) Quote(ctx context.Context, req catalogdomain.QuoteRequest) (*catalogdomain.QuoteResponse, error) {
	record, err := s.findByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	quote := pricing.PriceQuote{
		SellingPrice: record.SellingPrice,
		AverageCost:  record.AverageCost,
		TaxInclusive: record.PriceTaxInclusive,
		TaxRate:      s.rates.ResolveRate(ctx, record.DefaultTaxCodeID, false),
	}

	if req.PriceCategoryID != nil {
		categoryID, err := parseOptionalID(req.PriceCategoryID)
		if err != nil {
			return nil, catalogdomain.ErrInvalidID
		}
		if categoryID != nil {
			categoryPrice, err := s.priceLookup.CategoryPriceFor(ctx, *categoryID, record.ID)
			if err != nil {
				return nil, err
			}
			quote.CategoryPrice = categoryPrice
		}
	}

	whtRate := s.rates.ResolveRate(ctx, record.DefaultWHTCodeID, true)

	return &catalogdomain.QuoteResponse{
		ProductID:         record.ID.String(),
		UnitPrice:         pricing.NormalizeUnitPrice(quote),
		PriceTaxInclusive: record.PriceTaxInclusive,
		TaxCodeID:         idToString(record.DefaultTaxCodeID),
		TaxRate:           quote.TaxRate,
		WHTCodeID:         idToString(record.DefaultWHTCodeID),
		WHTRate:           whtRate,
		TrackingMode:      record.TrackingMode,
	}, nil
}

func (s *Service) findByID(ctx context.Context, id string) (*catalogdomain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, catalogdomain.ErrNotFound
	}
	return record, nil
}

func toResponse(record *catalogdomain.Product) catalogdomain.Response {
	return catalogdomain.Response{
		ID:                record.ID.String(),
		Code:              record.Code,
		Name:              record.Name,
		Description:       record.Description,
		SellingPrice:      record.SellingPrice,
		AverageCost:       record.AverageCost,
		PriceTaxInclusive: record.PriceTaxInclusive,
		DefaultTaxCodeID:  idToString(record.DefaultTaxCodeID),
		DefaultWHTCodeID:  idToString(record.DefaultWHTCodeID),
		TrackingMode:      record.TrackingMode,
		IsActive:          record.IsActive,
		Metadata:          record.Metadata,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
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

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
