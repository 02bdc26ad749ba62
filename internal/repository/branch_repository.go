package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type BranchRepository struct {
	DB *db.Postgres
}

// List returns all active branches ordered alphabetically.
func (r BranchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, type, address, phone, created_at, updated_at
		FROM branches
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, (*string)(&b.Type), &b.Address, &b.Phone, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r BranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, type, address, phone, created_at, updated_at
		FROM branches
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	var b domain.Branch
	if err := row.Scan(&b.ID, &b.Name, (*string)(&b.Type), &b.Address, &b.Phone, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r BranchRepository) Create(ctx context.Context, name string, typ domain.BranchType, address, phone string) (*domain.Branch, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO branches (name, type, address, phone, created_at, updated_at)
		VALUES ($1,$2,$3,$4, now(), now())
		RETURNING id, name, type, address, phone, created_at, updated_at
	`, name, string(typ), address, phone)
	var b domain.Branch
	if err := row.Scan(&b.ID, &b.Name, (*string)(&b.Type), &b.Address, &b.Phone, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
