package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/retailgrid/orderdesk/internal/observability/metrics"
	orderdomain "github.com/retailgrid/orderdesk/internal/order/domain"
	transferdomain "github.com/retailgrid/orderdesk/internal/transfer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    transferdomain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	repo    transferdomain.Repository
	metrics *metrics.Metrics
}

func NewService(p serviceParams) transferdomain.Service {
	return &Service{
		log:     p.Log.Named("transfer.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req transferdomain.CreateRequest) (*transferdomain.Response, error) {
	fromID, err := snowflake.ParseString(strings.TrimSpace(req.FromStoreID))
	if err != nil || fromID == 0 {
		return nil, transferdomain.ErrInvalidStore
	}
	toID, err := snowflake.ParseString(strings.TrimSpace(req.ToStoreID))
	if err != nil || toID == 0 {
		return nil, transferdomain.ErrInvalidStore
	}
	if fromID == toID {
		return nil, transferdomain.ErrSameStore
	}
	if len(req.Lines) == 0 {
		return nil, transferdomain.ErrNoLineItems
	}

	now := time.Now().UTC()
	transfer := &transferdomain.Transfer{
		ID:          s.genID.Generate(),
		Number:      "TR-" + ulid.Make().String(),
		FromStoreID: fromID,
		ToStoreID:   toID,
		Status:      transferdomain.StatusDraft,
		Notes:       trimOptional(req.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, lineReq := range req.Lines {
		productID, err := snowflake.ParseString(strings.TrimSpace(lineReq.ProductID))
		if err != nil {
			return nil, transferdomain.ErrInvalidProduct
		}

		line := transferdomain.TransferLine{
			ID:            s.genID.Generate(),
			TransferID:    transfer.ID,
			ProductID:     productID,
			Description:   strings.TrimSpace(lineReq.Description),
			Quantity:      lineReq.Quantity,
			SerialNumbers: orderdomain.FilterSerialNumbers(lineReq.SerialNumbers),
			BatchNumber:   trimOptional(lineReq.BatchNumber),
			ExpiryDate:    lineReq.ExpiryDate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := line.Validate(); err != nil {
			return nil, err
		}
		transfer.Lines = append(transfer.Lines, line)
	}

	if err := s.repo.Create(ctx, transfer); err != nil {
		return nil, err
	}

	s.metrics.RecordTransfer(ctx, "created")
	s.log.Info("transfer created",
		zap.String("number", transfer.Number),
		zap.Int("lines", len(transfer.Lines)),
	)

	resp := toResponse(transfer)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*transferdomain.Response, error) {
	transfer, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(transfer)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req transferdomain.ListRequest) ([]transferdomain.Response, error) {
	filter := transferdomain.ListRequest{
		FromStoreID: strings.TrimSpace(req.FromStoreID),
		ToStoreID:   strings.TrimSpace(req.ToStoreID),
		Status:      strings.ToUpper(strings.TrimSpace(req.Status)),
		SortBy:      strings.TrimSpace(req.SortBy),
		OrderBy:     strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]transferdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Send(ctx context.Context, id string) (*transferdomain.Response, error) {
	transfer, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer.Status != transferdomain.StatusDraft {
		return nil, transferdomain.ErrNotDraft
	}
	if len(transfer.Lines) == 0 {
		return nil, transferdomain.ErrNoLineItems
	}

	now := time.Now().UTC()
	transfer.Status = transferdomain.StatusSent
	transfer.SentAt = &now
	transfer.UpdatedAt = now

	if err := s.repo.UpdateStatus(ctx, transfer); err != nil {
		return nil, err
	}

	s.metrics.RecordTransfer(ctx, "sent")
	resp := toResponse(transfer)
	return &resp, nil
}

func (s *Service) Receive(ctx context.Context, req transferdomain.ReceiveRequest) (*transferdomain.Response, error) {
	transfer, err := s.findByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != transferdomain.StatusSent {
		return nil, transferdomain.ErrNotSent
	}

	now := time.Now().UTC()

	if len(req.Lines) == 0 {
		// No delivery detail means the whole shipment arrived.
		for i := range transfer.Lines {
			transfer.Lines[i].ReceivedQuantity = transfer.Lines[i].Quantity
			transfer.Lines[i].UpdatedAt = now
		}
	} else {
		byID := make(map[snowflake.ID]*transferdomain.TransferLine, len(transfer.Lines))
		for i := range transfer.Lines {
			byID[transfer.Lines[i].ID] = &transfer.Lines[i]
		}
		for _, lineReq := range req.Lines {
			lineID, err := snowflake.ParseString(strings.TrimSpace(lineReq.LineID))
			if err != nil {
				return nil, transferdomain.ErrInvalidLine
			}
			line, ok := byID[lineID]
			if !ok {
				return nil, transferdomain.ErrInvalidLine
			}
			if lineReq.ReceivedQuantity.IsNegative() {
				return nil, transferdomain.ErrInvalidQuantity
			}
			received := line.ReceivedQuantity.Add(lineReq.ReceivedQuantity)
			if received.GreaterThan(line.Quantity) {
				return nil, transferdomain.ErrInvalidQuantity
			}
			line.ReceivedQuantity = received
			line.UpdatedAt = now
		}
	}

	complete := true
	for i := range transfer.Lines {
		if transfer.Lines[i].ReceivedQuantity.LessThan(transfer.Lines[i].Quantity) {
			complete = false
			break
		}
	}

	transfer.UpdatedAt = now
	if complete {
		transfer.Status = transferdomain.StatusReceived
		transfer.ReceivedAt = &now
	}

	if err := s.repo.UpdateReceipt(ctx, transfer); err != nil {
		return nil, err
	}

	if complete {
		s.metrics.RecordTransfer(ctx, "received")
		s.log.Info("transfer received", zap.String("number", transfer.Number))
	} else {
		s.log.Info("transfer partially received", zap.String("number", transfer.Number))
	}

	resp := toResponse(transfer)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	transfer, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if transfer.Status != transferdomain.StatusDraft {
		return transferdomain.ErrNotDraft
	}
	return s.repo.Delete(ctx, transfer.ID)
}

func (s *Service) findByID(ctx context.Context, id string) (*transferdomain.Transfer, error) {
	transferID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, transferdomain.ErrInvalidID
	}

	transfer, err := s.repo.FindByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, transferdomain.ErrNotFound
	}
	return transfer, nil
}

func toResponse(transfer *transferdomain.Transfer) transferdomain.Response {
	lines := make([]transferdomain.LineResponse, 0, len(transfer.Lines))
	for i := range transfer.Lines {
		line := &transfer.Lines[i]
		lines = append(lines, transferdomain.LineResponse{
			ID:               line.ID.String(),
			ProductID:        line.ProductID.String(),
			Description:      line.Description,
			Quantity:         line.Quantity,
			ReceivedQuantity: line.ReceivedQuantity,
			SerialNumbers:    line.SerialNumbers,
			BatchNumber:      line.BatchNumber,
			ExpiryDate:       line.ExpiryDate,
		})
	}

	return transferdomain.Response{
		ID:          transfer.ID.String(),
		Number:      transfer.Number,
		FromStoreID: transfer.FromStoreID.String(),
		ToStoreID:   transfer.ToStoreID.String(),
		Status:      transfer.Status,
		Notes:       transfer.Notes,
		Lines:       lines,
		SentAt:      transfer.SentAt,
		ReceivedAt:  transfer.ReceivedAt,
		CreatedAt:   transfer.CreatedAt,
		UpdatedAt:   transfer.UpdatedAt,
	}
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
