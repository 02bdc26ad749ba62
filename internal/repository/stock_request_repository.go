package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type StockRequestRepository struct {
	DB *db.Postgres
}

const stockRequestColumns = `
	r.id, r.code, r.requesting_branch_id, r.target_branch_id, r.item_id, i.name,
	r.requested_quantity, r.approved_quantity, r.status, r.urgency, r.notes,
	r.rejection_reason, r.requested_by, r.decided_by, r.created_at, r.updated_at`

type CreateStockRequestInput struct {
	Code               string
	RequestingBranchID int64
	TargetBranchID     int64
	ItemID             int64
	RequestedQuantity  int
	Urgency            domain.RequestUrgency
	Notes              string
	RequestedByUserID  int64
}

func (r StockRequestRepository) Create(ctx context.Context, in CreateStockRequestInput) (*domain.StockRequest, error) {
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO stock_requests
			(code, requesting_branch_id, target_branch_id, item_id, requested_quantity,
			 status, urgency, notes, requested_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,'pending',$6,$7,$8, now(), now())
		RETURNING id
	`, in.Code, in.RequestingBranchID, in.TargetBranchID, in.ItemID, in.RequestedQuantity,
		string(in.Urgency), in.Notes, in.RequestedByUserID).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r StockRequestRepository) GetByID(ctx context.Context, id int64) (*domain.StockRequest, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+stockRequestColumns+`
		FROM stock_requests r
		JOIN inventory_items i ON i.id = r.item_id
		WHERE r.id=$1 AND r.deleted_at IS NULL
	`, id)
	req, err := scanStockRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r StockRequestRepository) List(ctx context.Context, limit int) ([]domain.StockRequest, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+stockRequestColumns+`
		FROM stock_requests r
		JOIN inventory_items i ON i.id = r.item_id
		WHERE r.deleted_at IS NULL
		ORDER BY r.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.StockRequest
	for rows.Next() {
		req, err := scanStockRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *req)
	}
	return items, rows.Err()
}

// MarkApproved records an approval decision. The guard on status keeps a
// concurrent decision from overwriting a terminal state.
func (r StockRequestRepository) MarkApproved(ctx context.Context, id int64, approvedQuantity int, notes string, decidedBy int64) (*domain.StockRequest, error) {
	return r.decide(ctx, id, `
		UPDATE stock_requests
		SET status='approved', approved_quantity=$2, notes=$3, decided_by=$4, updated_at=now()
		WHERE id=$1 AND status='pending' AND deleted_at IS NULL
	`, approvedQuantity, notes, decidedBy)
}

func (r StockRequestRepository) MarkRejected(ctx context.Context, id int64, reason string, decidedBy int64) (*domain.StockRequest, error) {
	return r.decide(ctx, id, `
		UPDATE stock_requests
		SET status='rejected', rejection_reason=$2, decided_by=$3, updated_at=now()
		WHERE id=$1 AND status='pending' AND deleted_at IS NULL
	`, reason, decidedBy)
}

func (r StockRequestRepository) MarkCancelled(ctx context.Context, id int64) (*domain.StockRequest, error) {
	return r.decide(ctx, id, `
		UPDATE stock_requests
		SET status='cancelled', updated_at=now()
		WHERE id=$1 AND status='pending' AND deleted_at IS NULL
	`)
}

func (r StockRequestRepository) decide(ctx context.Context, id int64, query string, args ...any) (*domain.StockRequest, error) {
	ct, err := r.DB.Pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, domain.ErrRequestNotPending
	}
	return r.GetByID(ctx, id)
}

func scanStockRequest(row pgx.Row) (*domain.StockRequest, error) {
	var req domain.StockRequest
	var approved pgtype.Int4
	var decidedBy pgtype.Int8
	if err := row.Scan(
		&req.ID, &req.Code, &req.RequestingBranchID, &req.TargetBranchID, &req.ItemID, &req.ItemName,
		&req.RequestedQuantity, &approved, (*string)(&req.Status), (*string)(&req.Urgency), &req.Notes,
		&req.RejectionReason, &req.RequestedByUserID, &decidedBy, &req.CreatedAt, &req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if approved.Valid {
		v := int(approved.Int32)
		req.ApprovedQuantity = &v
	}
	if decidedBy.Valid {
		req.DecidedByUserID = &decidedBy.Int64
	}
	return &req, nil
}
