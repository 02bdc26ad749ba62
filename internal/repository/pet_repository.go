package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type PetRepository struct {
	DB *db.Postgres
}

const petColumns = `id, owner_user_id, name, species, breed, age_months, weight_kg, health_notes, photo_url, created_at, updated_at`

func (r PetRepository) List(ctx context.Context, limit int) ([]domain.Pet, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPets(rows)
}

func (r PetRepository) ListByOwner(ctx context.Context, ownerUserID int64) ([]domain.Pet, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE deleted_at IS NULL AND owner_user_id=$1
		ORDER BY name ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPets(rows)
}

func (r PetRepository) GetByID(ctx context.Context, id int64) (*domain.Pet, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	p, err := scanPet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r PetRepository) Save(ctx context.Context, p domain.Pet) (*domain.Pet, error) {
	var row pgx.Row
	if p.ID == 0 {
		row = r.DB.Pool.QueryRow(ctx, `
			INSERT INTO pets (owner_user_id, name, species, breed, age_months, weight_kg, health_notes, photo_url, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now(), now())
			RETURNING `+petColumns+`
		`, p.OwnerUserID, p.Name, p.Species, p.Breed, p.AgeMonths, p.WeightKg, p.HealthNotes, p.PhotoURL)
	} else {
		row = r.DB.Pool.QueryRow(ctx, `
			UPDATE pets
			SET name=$1, species=$2, breed=$3, age_months=$4, weight_kg=$5, health_notes=$6, updated_at=now()
			WHERE id=$7 AND deleted_at IS NULL
			RETURNING `+petColumns+`
		`, p.Name, p.Species, p.Breed, p.AgeMonths, p.WeightKg, p.HealthNotes, p.ID)
	}
	saved, err := scanPet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return saved, nil
}

func (r PetRepository) UpdatePhotoURL(ctx context.Context, id int64, url string) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE pets SET photo_url=$1, updated_at=now()
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

func (r PetRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `UPDATE pets SET deleted_at=now() WHERE id=$1`, id)
	return err
}

func collectPets(rows pgx.Rows) ([]domain.Pet, error) {
	var items []domain.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func scanPet(row pgx.Row) (*domain.Pet, error) {
	var p domain.Pet
	if err := row.Scan(&p.ID, &p.OwnerUserID, &p.Name, &p.Species, &p.Breed, &p.AgeMonths, &p.WeightKg, &p.HealthNotes, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
