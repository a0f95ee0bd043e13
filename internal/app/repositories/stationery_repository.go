package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

// RequestFilter narrows stationery request lists
type RequestFilter struct {
	Status         models.RequestStatus
	RequesterTypes []models.RequesterType
}

// StationeryRepository handles the stationery inventory workflow
type StationeryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStationeryRepository creates a new StationeryRepository
func NewStationeryRepository(db *pgxpool.Pool) *StationeryRepository {
	return &StationeryRepository{db: db, sb: newStatementBuilder()}
}

// CreateItem inserts an item
func (r *StationeryRepository) CreateItem(ctx context.Context, q db.Querier, item *models.StationeryItem) error {
	sql, args, err := r.sb.Insert("stationery_items").
		Columns("name", "unit", "total_quantity", "available_quantity").
		Values(item.Name, item.Unit, item.TotalQuantity, item.AvailableQuantity).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create item SQL")
		return err
	}
	if err := q.QueryRow(ctx, sql, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		return translateWriteError(err, "item", nil)
	}
	return nil
}

// ListItems returns every item by name
func (r *StationeryRepository) ListItems(ctx context.Context) ([]models.StationeryItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, unit, total_quantity, available_quantity, created_at FROM stationery_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.StationeryItem{}
	for rows.Next() {
		var it models.StationeryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Unit, &it.TotalQuantity, &it.AvailableQuantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetItem retrieves an item
func (r *StationeryRepository) GetItem(ctx context.Context, q db.Querier, id int64) (*models.StationeryItem, error) {
	var it models.StationeryItem
	err := q.QueryRow(ctx,
		`SELECT id, name, unit, total_quantity, available_quantity, created_at FROM stationery_items WHERE id = $1`, id,
	).Scan(&it.ID, &it.Name, &it.Unit, &it.TotalQuantity, &it.AvailableQuantity, &it.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrItemNotFound)
	}
	return &it, nil
}

// AddStock increases both total and available quantities
func (r *StationeryRepository) AddStock(ctx context.Context, q db.Querier, itemID int64, quantity int) error {
	tag, err := q.Exec(ctx,
		`UPDATE stationery_items
		 SET total_quantity = total_quantity + $1, available_quantity = available_quantity + $1
		 WHERE id = $2`,
		quantity, itemID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrItemNotFound
	}
	return nil
}

// TakeStock decreases the available quantity only when enough is in stock
func (r *StationeryRepository) TakeStock(ctx context.Context, q db.Querier, itemID int64, quantity int) error {
	tag, err := q.Exec(ctx,
		`UPDATE stationery_items SET available_quantity = available_quantity - $1
		 WHERE id = $2 AND available_quantity >= $1`,
		quantity, itemID,
	)
	if err != nil {
		return translateWriteError(err, "stock", apperrors.ErrItemNotFound)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetItem(ctx, q, itemID); err != nil {
		return err
	}
	return apperrors.ErrInsufficientStock
}

// InsertHistory records a stock change
func (r *StationeryRepository) InsertHistory(ctx context.Context, q db.Querier, h *models.StockHistory) error {
	sql, args, err := r.sb.Insert("stock_history").
		Columns("item_id", "change", "reason", "request_id", "created_by").
		Values(h.ItemID, h.Change, h.Reason, h.RequestID, h.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building stock history SQL")
		return err
	}
	if err := q.QueryRow(ctx, sql, args...).Scan(&h.ID, &h.CreatedAt); err != nil {
		return translateWriteError(err, "stock history", apperrors.ErrItemNotFound)
	}
	return nil
}

// ListHistory returns stock changes, newest first
func (r *StationeryRepository) ListHistory(ctx context.Context, itemID *int64) ([]models.StockHistory, error) {
	builder := r.sb.Select("h.id", "h.item_id", "it.name", "h.change", "h.reason", "h.request_id", "h.created_by", "h.created_at").
		From("stock_history h").
		Join("stationery_items it ON it.id = h.item_id")
	if itemID != nil {
		builder = builder.Where(squirrel.Eq{"h.item_id": *itemID})
	}

	sql, args, err := builder.OrderBy("h.created_at DESC", "h.id DESC").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list history SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []models.StockHistory{}
	for rows.Next() {
		var h models.StockHistory
		if err := rows.Scan(&h.ID, &h.ItemID, &h.ItemName, &h.Change, &h.Reason, &h.RequestID, &h.CreatedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// CreateRequest inserts a request
func (r *StationeryRepository) CreateRequest(ctx context.Context, req *models.StationeryRequest) error {
	sql, args, err := r.sb.Insert("stationery_requests").
		Columns("item_id", "quantity", "requester_type", "requested_by", "purpose", "status").
		Values(req.ItemID, req.Quantity, req.RequesterType, req.RequestedBy, req.Purpose, req.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create request SQL")
		return err
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID, &req.CreatedAt); err != nil {
		return translateWriteError(err, "request", apperrors.ErrItemNotFound)
	}
	return nil
}

func (r *StationeryRepository) selectRequests() squirrel.SelectBuilder {
	return r.sb.Select(
		"rq.id", "rq.item_id", "it.name", "rq.quantity", "rq.requester_type", "rq.requested_by", "su.username",
		"rq.purpose", "rq.status", "rq.rejection_reason", "rq.reviewed_by", "rq.created_at", "rq.reviewed_at",
	).
		From("stationery_requests rq").
		Join("stationery_items it ON it.id = rq.item_id").
		Join("staff_users su ON su.id = rq.requested_by")
}

func scanRequest(row pgx.Row) (*models.StationeryRequest, error) {
	var rq models.StationeryRequest
	err := row.Scan(
		&rq.ID, &rq.ItemID, &rq.ItemName, &rq.Quantity, &rq.RequesterType, &rq.RequestedBy, &rq.RequestedByName,
		&rq.Purpose, &rq.Status, &rq.RejectionReason, &rq.ReviewedBy, &rq.CreatedAt, &rq.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rq, nil
}

// GetRequest retrieves a request. Inside a transaction the row is locked.
func (r *StationeryRepository) GetRequest(ctx context.Context, q db.Querier, id int64, lock bool) (*models.StationeryRequest, error) {
	builder := r.selectRequests().Where(squirrel.Eq{"rq.id": id})
	if lock {
		builder = builder.Suffix("FOR UPDATE OF rq")
	}
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get request SQL")
		return nil, err
	}

	rq, err := scanRequest(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrRequestNotFound)
	}
	return rq, nil
}

// ListRequests returns requests, newest first
func (r *StationeryRepository) ListRequests(ctx context.Context, filter RequestFilter) ([]*models.StationeryRequest, error) {
	builder := r.selectRequests()
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"rq.status": filter.Status})
	}
	if len(filter.RequesterTypes) > 0 {
		builder = builder.Where(squirrel.Eq{"rq.requester_type": filter.RequesterTypes})
	}

	sql, args, err := builder.OrderBy("rq.created_at DESC", "rq.id DESC").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list requests SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []*models.StationeryRequest{}
	for rows.Next() {
		rq, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, rq)
	}
	return requests, rows.Err()
}

// SetRequestStatus moves a request to status. reviewedBy stamps the review when non-nil.
func (r *StationeryRepository) SetRequestStatus(ctx context.Context, q db.Querier, id int64, status models.RequestStatus, rejectionReason *string, reviewedBy *int64) error {
	builder := r.sb.Update("stationery_requests").
		Set("status", status).
		Set("rejection_reason", rejectionReason).
		Where(squirrel.Eq{"id": id})
	if reviewedBy != nil {
		builder = builder.Set("reviewed_by", *reviewedBy).Set("reviewed_at", squirrel.Expr("NOW()"))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building request status SQL")
		return err
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRequestNotFound
	}
	return nil
}
