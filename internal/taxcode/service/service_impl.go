package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	"github.com/retailgrid/orderdesk/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  taxdomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  taxdomain.Repository
}

func NewService(p serviceParams) taxdomain.Service {
	return &Service{
		log:   p.Log.Named("taxcode.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req taxdomain.CreateRequest) (*taxdomain.Response, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, taxdomain.ErrInvalidCode
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, taxdomain.ErrInvalidName
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
	record := &taxdomain.TaxCode{
		ID:            s.genID.Generate(),
		Code:          code,
		Name:          name,
		Rate:          req.Rate,
		IsWithholding: req.IsWithholding,
		IsActive:      isActive,
		Description:   descriptionPtr,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, taxdomain.ErrCodeExists
		}
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*taxdomain.Response, error) {
	codeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, taxdomain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, codeID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, taxdomain.ErrNotFound
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req taxdomain.ListRequest) ([]taxdomain.Response, error) {
	filter := taxdomain.ListRequest{
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		IsWithholding: req.IsWithholding,
		IsActive:      req.IsActive,
		SortBy:        strings.TrimSpace(req.SortBy),
		OrderBy:       strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]taxdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req taxdomain.UpdateRequest) (*taxdomain.Response, error) {
	codeID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, taxdomain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, codeID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, taxdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, taxdomain.ErrInvalidName
		}
		record.Name = name
	}
	if req.Rate != nil {
		record.Rate = *req.Rate
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

	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Disable(ctx context.Context, id string) (*taxdomain.Response, error) {
	isActive := false
	return s.Update(ctx, taxdomain.UpdateRequest{ID: id, IsActive: &isActive})
}

// ResolveRate degrades to zero whenever the code is missing, unknown,
// disabled, or of the wrong class for the requested slot. Order pricing
// never fails on a dangling tax reference.
func (s *Service) ResolveRate(ctx context.Context, id *snowflake.ID, withholding bool) decimal.Decimal {
	if id == nil || *id == 0 {
		return decimal.Zero
	}

	record, err := s.repo.FindByID(ctx, *id)
	if err != nil {
		s.log.Warn("tax rate lookup failed", zap.Int64("tax_code_id", int64(*id)), zap.Error(err))
		return decimal.Zero
	}
	if record == nil || !record.IsActive {
		return decimal.Zero
	}
	if record.IsWithholding != withholding {
		return decimal.Zero
	}
	if record.Rate.IsNegative() {
		return decimal.Zero
	}
	return record.Rate
}

func toResponse(record *taxdomain.TaxCode) taxdomain.Response {
	return taxdomain.Response{
		ID:            record.ID.String(),
		Code:          record.Code,
		Name:          record.Name,
		Rate:          record.Rate,
		IsWithholding: record.IsWithholding,
		IsActive:      record.IsActive,
		Description:   record.Description,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
