package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	pcdomain "github.com/retailgrid/orderdesk/internal/pricecategory/domain"
	"github.com/retailgrid/orderdesk/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  pcdomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  pcdomain.Repository
}

func NewService(p serviceParams) pcdomain.Service {
	return &Service{
		log:   p.Log.Named("pricecategory.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req pcdomain.CreateRequest) (*pcdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pcdomain.ErrInvalidName
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
	record := &pcdomain.PriceCategory{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: descriptionPtr,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, pcdomain.ErrNameExists
		}
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*pcdomain.Response, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, pcdomain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, pcdomain.ErrNotFound
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req pcdomain.ListRequest) ([]pcdomain.Response, error) {
	filter := pcdomain.ListRequest{
		Name:     strings.TrimSpace(req.Name),
		IsActive: req.IsActive,
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]pcdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req pcdomain.UpdateRequest) (*pcdomain.Response, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, pcdomain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, pcdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pcdomain.ErrInvalidName
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
	if req.IsActive != nil {
		record.IsActive = *req.IsActive
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, pcdomain.ErrNameExists
		}
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) SetPrice(ctx context.Context, req pcdomain.SetPriceRequest) (*pcdomain.PriceResponse, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(req.CategoryID))
	if err != nil {
		return nil, pcdomain.ErrInvalidID
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, pcdomain.ErrInvalidProduct
	}
	if req.Price.IsNegative() {
		return nil, pcdomain.ErrInvalidPrice
	}

	category, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, pcdomain.ErrNotFound
	}

	now := time.Now().UTC()
	record := &pcdomain.CategoryPrice{
		ID:         s.genID.Generate(),
		CategoryID: categoryID,
		ProductID:  productID,
		Price:      req.Price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.UpsertPrice(ctx, record); err != nil {
		return nil, err
	}

	return &pcdomain.PriceResponse{
		CategoryID: record.CategoryID.String(),
		ProductID:  record.ProductID.String(),
		Price:      record.Price,
		UpdatedAt:  record.UpdatedAt,
	}, nil
}

func (s *Service) ListPrices(ctx context.Context, categoryID string) ([]pcdomain.PriceResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(categoryID))
	if err != nil {
		return nil, pcdomain.ErrInvalidID
	}

	items, err := s.repo.ListPrices(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := make([]pcdomain.PriceResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, pcdomain.PriceResponse{
			CategoryID: item.CategoryID.String(),
			ProductID:  item.ProductID.String(),
			Price:      item.Price,
			UpdatedAt:  item.UpdatedAt,
		})
	}
	return resp, nil
}

func (s *Service) RemovePrice(ctx context.Context, categoryID, productID string) error {
	catID, err := snowflake.ParseString(strings.TrimSpace(categoryID))
	if err != nil {
		return pcdomain.ErrInvalidID
	}
	prodID, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil {
		return pcdomain.ErrInvalidProduct
	}
	return s.repo.DeletePrice(ctx, catID, prodID)
}

// CategoryPriceFor returns nil without error when the category carries no
// override, so callers fall through to the product's own price.
func (s *Service) CategoryPriceFor(ctx context.Context, categoryID, productID snowflake.ID) (*decimal.Decimal, error) {
	if categoryID == 0 || productID == 0 {
		return nil, nil
	}

	record, err := s.repo.FindPrice(ctx, categoryID, productID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	price := record.Price
	return &price, nil
}

func toResponse(record *pcdomain.PriceCategory) pcdomain.Response {
	return pcdomain.Response{
		ID:          record.ID.String(),
		Name:        record.Name,
		Description: record.Description,
		IsActive:    record.IsActive,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
