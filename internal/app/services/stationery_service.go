package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/events"
	"github.com/yigit/placement/internal/pkg/metrics"
)

// Request actions
const (
	ActionForward = "forward"
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// NextRequestStatus returns the status a request moves to when action is applied
func NextRequestStatus(current models.RequestStatus, action string) (models.RequestStatus, error) {
	switch action {
	case ActionForward:
		if current == models.RequestPending {
			return models.RequestForwarded, nil
		}
	case ActionApprove, ActionReject:
		if current == models.RequestPending || current == models.RequestForwarded {
			if action == ActionApprove {
				return models.RequestApproved, nil
			}
			return models.RequestRejected, nil
		}
	default:
		return "", fmt.Errorf("%w: unknown action %q", apperrors.ErrValidationFailed, action)
	}
	return "", fmt.Errorf("%w: cannot %s a %s request", apperrors.ErrInvalidTransition, action, current)
}

// StationeryService runs the stationery inventory workflow
type StationeryService interface {
	ListItems(ctx context.Context) ([]models.StationeryItem, error)
	CreateItem(ctx context.Context, staffID int64, req *dto.CreateItemRequest) (*models.StationeryItem, error)
	AddStock(ctx context.Context, staffID int64, req *dto.AddStockRequest) (*models.StationeryItem, error)
	ListHistory(ctx context.Context, itemID *int64) ([]models.StockHistory, error)
	ListCommitteeRequests(ctx context.Context, status string) ([]*models.StationeryRequest, error)
	ListRequests(ctx context.Context, status string) ([]*models.StationeryRequest, error)
	CreateCommitteeRequest(ctx context.Context, staffID int64, req *dto.CommitteeRequest) (*models.StationeryRequest, error)
	CreateTechnicalRequest(ctx context.Context, staffID int64, req *dto.TechnicalRequest) (*models.StationeryRequest, error)
	Forward(ctx context.Context, id int64) (*models.StationeryRequest, error)
	Review(ctx context.Context, staffID, id int64, req *dto.ReviewRequest) (*models.StationeryRequest, error)
}

type stationeryServiceImpl struct {
	db        *db.PostgresDB
	repo      *repositories.StationeryRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewStationeryService creates a new StationeryService
func NewStationeryService(
	database *db.PostgresDB,
	repo *repositories.StationeryRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) StationeryService {
	return &stationeryServiceImpl{
		db:        database,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func (s *stationeryServiceImpl) ListItems(ctx context.Context) ([]models.StationeryItem, error) {
	return s.repo.ListItems(ctx)
}

// CreateItem adds an item with its opening stock and a matching history row
func (s *stationeryServiceImpl) CreateItem(ctx context.Context, staffID int64, req *dto.CreateItemRequest) (*models.StationeryItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed)
	}
	if req.InitialQuantity < 0 {
		return nil, fmt.Errorf("%w: initial_quantity cannot be negative", apperrors.ErrValidationFailed)
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "pcs"
	}

	item := &models.StationeryItem{
		Name:              name,
		Unit:              unit,
		TotalQuantity:     req.InitialQuantity,
		AvailableQuantity: req.InitialQuantity,
	}
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.CreateItem(ctx, tx, item); err != nil {
			return err
		}
		return s.repo.InsertHistory(ctx, tx, &models.StockHistory{
			ItemID:    item.ID,
			Change:    req.InitialQuantity,
			Reason:    "initial stock",
			CreatedBy: &staffID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("itemID", item.ID).Str("name", name).Int("quantity", item.TotalQuantity).Msg("Stationery item created")
	return item, nil
}

// AddStock increases total and available quantities and records the change
func (s *stationeryServiceImpl) AddStock(ctx context.Context, staffID int64, req *dto.AddStockRequest) (*models.StationeryItem, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidationFailed)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "restock"
	}

	var item *models.StationeryItem
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.AddStock(ctx, tx, req.ItemID, req.Quantity); err != nil {
			return err
		}
		if err := s.repo.InsertHistory(ctx, tx, &models.StockHistory{
			ItemID:    req.ItemID,
			Change:    req.Quantity,
			Reason:    reason,
			CreatedBy: &staffID,
		}); err != nil {
			return err
		}
		var err error
		item, err = s.repo.GetItem(ctx, tx, req.ItemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *stationeryServiceImpl) ListHistory(ctx context.Context, itemID *int64) ([]models.StockHistory, error) {
	return s.repo.ListHistory(ctx, itemID)
}

func parseStatusFilter(status string) (models.RequestStatus, error) {
	switch st := models.RequestStatus(strings.TrimSpace(status)); st {
	case "", models.RequestPending, models.RequestForwarded, models.RequestApproved, models.RequestRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", apperrors.ErrValidationFailed, status)
	}
}

// ListCommitteeRequests lists requests raised through the committee desk
func (s *stationeryServiceImpl) ListCommitteeRequests(ctx context.Context, status string) ([]*models.StationeryRequest, error) {
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRequests(ctx, repositories.RequestFilter{
		Status:         st,
		RequesterTypes: []models.RequesterType{models.RequesterPersonnel, models.RequesterCommittee},
	})
}

// ListRequests lists every request for the technical store
func (s *stationeryServiceImpl) ListRequests(ctx context.Context, status string) ([]*models.StationeryRequest, error) {
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRequests(ctx, repositories.RequestFilter{Status: st})
}

func (s *stationeryServiceImpl) createRequest(ctx context.Context, rq *models.StationeryRequest) (*models.StationeryRequest, error) {
	if rq.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidationFailed)
	}
	rq.Purpose = strings.TrimSpace(rq.Purpose)
	if err := s.repo.CreateRequest(ctx, rq); err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("requestID", rq.ID).
		Int64("itemID", rq.ItemID).
		Str("requesterType", string(rq.RequesterType)).
		Msg("Stationery request created")
	return s.repo.GetRequest(ctx, s.db.Pool, rq.ID, false)
}

// CreateCommitteeRequest raises a pending request for personnel or the committee itself
func (s *stationeryServiceImpl) CreateCommitteeRequest(ctx context.Context, staffID int64, req *dto.CommitteeRequest) (*models.StationeryRequest, error) {
	rt := models.RequesterType(req.RequesterType)
	if rt != models.RequesterPersonnel && rt != models.RequesterCommittee {
		return nil, fmt.Errorf("%w: requester_type must be personnel or committee", apperrors.ErrValidationFailed)
	}
	return s.createRequest(ctx, &models.StationeryRequest{
		ItemID:        req.ItemID,
		Quantity:      req.Quantity,
		RequesterType: rt,
		RequestedBy:   staffID,
		Purpose:       req.Purpose,
		Status:        models.RequestPending,
	})
}

// CreateTechnicalRequest raises a request that is already forwarded
func (s *stationeryServiceImpl) CreateTechnicalRequest(ctx context.Context, staffID int64, req *dto.TechnicalRequest) (*models.StationeryRequest, error) {
	return s.createRequest(ctx, &models.StationeryRequest{
		ItemID:        req.ItemID,
		Quantity:      req.Quantity,
		RequesterType: models.RequesterTechnicalForwarded,
		RequestedBy:   staffID,
		Purpose:       req.Purpose,
		Status:        models.RequestForwarded,
	})
}

// Forward hands a pending personnel request to the technical store
func (s *stationeryServiceImpl) Forward(ctx context.Context, id int64) (*models.StationeryRequest, error) {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rq, err := s.repo.GetRequest(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if rq.RequesterType != models.RequesterPersonnel {
			return fmt.Errorf("%w: only personnel requests are forwarded", apperrors.ErrInvalidTransition)
		}
		next, err := NextRequestStatus(rq.Status, ActionForward)
		if err != nil {
			return err
		}
		return s.repo.SetRequestStatus(ctx, tx, id, next, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("requestID", id).Msg("Stationery request forwarded")
	return s.repo.GetRequest(ctx, s.db.Pool, id, false)
}

// Review approves or rejects a request. Approval takes the stock in the same transaction.
func (s *stationeryServiceImpl) Review(ctx context.Context, staffID, id int64, req *dto.ReviewRequest) (*models.StationeryRequest, error) {
	var reason *string
	if req.Action == ActionReject {
		r := strings.TrimSpace(req.RejectionReason)
		if r == "" {
			return nil, fmt.Errorf("%w: rejection_reason is required", apperrors.ErrValidationFailed)
		}
		reason = &r
	}

	var reviewed *models.StationeryRequest
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rq, err := s.repo.GetRequest(ctx, tx, id, true)
		if err != nil {
			return err
		}
		next, err := NextRequestStatus(rq.Status, req.Action)
		if err != nil {
			return err
		}
		if next == models.RequestApproved {
			if err := s.repo.TakeStock(ctx, tx, rq.ItemID, rq.Quantity); err != nil {
				return err
			}
			requestID := rq.ID
			if err := s.repo.InsertHistory(ctx, tx, &models.StockHistory{
				ItemID:    rq.ItemID,
				Change:    -rq.Quantity,
				Reason:    "request approved",
				RequestID: &requestID,
				CreatedBy: &staffID,
			}); err != nil {
				return err
			}
		}
		if err := s.repo.SetRequestStatus(ctx, tx, id, next, reason, &staffID); err != nil {
			return err
		}
		reviewed = rq
		reviewed.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStationeryReviewed(ctx, string(reviewed.Status))
	publish(ctx, s.publisher, s.logger, events.StationeryReviewed, events.StationeryReviewedEvent{
		RequestID: reviewed.ID,
		ItemID:    reviewed.ItemID,
		Quantity:  reviewed.Quantity,
		Status:    string(reviewed.Status),
	})
	s.logger.Info().Int64("requestID", id).Str("status", string(reviewed.Status)).Int64("reviewedBy", staffID).Msg("Stationery request reviewed")

	return s.repo.GetRequest(ctx, s.db.Pool, id, false)
}
