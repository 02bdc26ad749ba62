package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type UserRepository struct {
	DB *db.Postgres
}

type CreateUserParams struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	Role         domain.UserRole
	PasswordHash *string
	IsGoogle     bool
}

func (r UserRepository) Create(ctx context.Context, p CreateUserParams) (*domain.User, error) {
	query := `
		INSERT INTO users (name, email, phone, address, role, password_hash, is_google, photo_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'', now(), now())
		RETURNING id, name, email, phone, address, role, is_google, password_hash, photo_url, created_at, updated_at
	`
	row := r.DB.Pool.QueryRow(ctx, query, p.Name, p.Email, p.Phone, p.Address, p.Role, p.PasswordHash, p.IsGoogle)
	return scanUser(row)
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, phone, address, role, is_google, password_hash, photo_url, created_at, updated_at
		FROM users
		WHERE email=$1 AND deleted_at IS NULL
	`
	user, err := scanUser(r.DB.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, name, email, phone, address, role, is_google, password_hash, photo_url, created_at, updated_at
		FROM users
		WHERE id=$1 AND deleted_at IS NULL
	`
	user, err := scanUser(r.DB.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) UpdateProfile(ctx context.Context, id int64, name, phone, address string) (*domain.User, error) {
	query := `
		UPDATE users
		SET name=$1, phone=$2, address=$3, updated_at=now()
		WHERE id=$4 AND deleted_at IS NULL
		RETURNING id, name, email, phone, address, role, is_google, password_hash, photo_url, created_at, updated_at
	`
	user, err := scanUser(r.DB.Pool.QueryRow(ctx, query, name, phone, address, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE users SET password_hash=$1, updated_at=now()
		WHERE id=$2 AND deleted_at IS NULL
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r UserRepository) UpdatePhotoURL(ctx context.Context, id int64, url string) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE users SET photo_url=$1, updated_at=now()
		WHERE id=$2 AND deleted_at IS NULL
	`, url, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, (*string)(&u.Role), &u.IsGoogle, &u.PasswordHash, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
