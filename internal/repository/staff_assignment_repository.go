package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type StaffAssignmentRepository struct {
	DB *db.Postgres
}

func (r StaffAssignmentRepository) List(ctx context.Context, limit int) ([]domain.StaffAssignment, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, branch_id, role, created_at
		FROM staff_assignments
		WHERE deleted_at IS NULL
		ORDER BY id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.StaffAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// GetByUserID returns the staff member's branch assignment. When a user
// carries more than one row the earliest one wins; multi-branch staff are
// not supported.
func (r StaffAssignmentRepository) GetByUserID(ctx context.Context, userID int64) (*domain.StaffAssignment, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, user_id, branch_id, role, created_at
		FROM staff_assignments
		WHERE deleted_at IS NULL AND user_id=$1
		ORDER BY id ASC
		LIMIT 1
	`, userID)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r StaffAssignmentRepository) Assign(ctx context.Context, userID int64, branchID *int64, role domain.UserRole) (*domain.StaffAssignment, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO staff_assignments (user_id, branch_id, role, created_at)
		VALUES ($1,$2,$3, now())
		ON CONFLICT (user_id) WHERE deleted_at IS NULL DO UPDATE SET
			branch_id=EXCLUDED.branch_id,
			role=EXCLUDED.role
		RETURNING id, user_id, branch_id, role, created_at
	`, userID, branchID, string(role))
	return scanAssignment(row)
}

// ListUserIDsByBranch returns the staff user ids assigned to a branch.
// Used to address branch-wide notifications.
func (r StaffAssignmentRepository) ListUserIDsByBranch(ctx context.Context, branchID int64) ([]int64, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT user_id
		FROM staff_assignments
		WHERE deleted_at IS NULL AND branch_id=$1
		ORDER BY user_id ASC
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r StaffAssignmentRepository) Remove(ctx context.Context, userID int64) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE staff_assignments SET deleted_at=now()
		WHERE user_id=$1 AND deleted_at IS NULL
	`, userID)
	return err
}

func scanAssignment(row pgx.Row) (*domain.StaffAssignment, error) {
	var a domain.StaffAssignment
	var branchID pgtype.Int8
	if err := row.Scan(&a.ID, &a.UserID, &branchID, (*string)(&a.Role), &a.CreatedAt); err != nil {
		return nil, err
	}
	if branchID.Valid {
		a.BranchID = &branchID.Int64
	}
	return &a, nil
}
