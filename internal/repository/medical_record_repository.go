package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type MedicalRecordRepository struct {
	DB *db.Postgres
}

type CreateMedicalRecordInput struct {
	PetID     int64
	VisitDate time.Time
	Findings  string
	Diagnosis string
	Treatment string
	VetName   string
	BranchID  *int64
}

func (r MedicalRecordRepository) Create(ctx context.Context, in CreateMedicalRecordInput) (*domain.MedicalRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO medical_records (pet_id, visit_date, findings, diagnosis, treatment, vet_name, branch_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now(), now())
		RETURNING id, pet_id, visit_date, findings, diagnosis, treatment, vet_name, branch_id, created_at, updated_at
	`, in.PetID, in.VisitDate, in.Findings, in.Diagnosis, in.Treatment, in.VetName, in.BranchID)
	return scanMedicalRecord(row)
}

func (r MedicalRecordRepository) ListByPet(ctx context.Context, petID int64) ([]domain.MedicalRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, pet_id, visit_date, findings, diagnosis, treatment, vet_name, branch_id, created_at, updated_at
		FROM medical_records
		WHERE deleted_at IS NULL AND pet_id=$1
		ORDER BY visit_date DESC, id DESC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MedicalRecord
	for rows.Next() {
		rec, err := scanMedicalRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, rows.Err()
}

func (r MedicalRecordRepository) Update(ctx context.Context, id int64, in CreateMedicalRecordInput) (*domain.MedicalRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE medical_records
		SET visit_date=$1, findings=$2, diagnosis=$3, treatment=$4, vet_name=$5, updated_at=now()
		WHERE id=$6 AND deleted_at IS NULL
		RETURNING id, pet_id, visit_date, findings, diagnosis, treatment, vet_name, branch_id, created_at, updated_at
	`, in.VisitDate, in.Findings, in.Diagnosis, in.Treatment, in.VetName, id)
	rec, err := scanMedicalRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r MedicalRecordRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `UPDATE medical_records SET deleted_at=now() WHERE id=$1`, id)
	return err
}

type CreateVaccinationInput struct {
	PetID       int64
	VaccineName string
	GivenAt     time.Time
	NextDueAt   *time.Time
	VetName     string
	Notes       string
}

func (r MedicalRecordRepository) CreateVaccination(ctx context.Context, in CreateVaccinationInput) (*domain.Vaccination, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO vaccinations (pet_id, vaccine_name, given_at, next_due_at, vet_name, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6, now())
		RETURNING id, pet_id, vaccine_name, given_at, next_due_at, vet_name, notes, created_at
	`, in.PetID, in.VaccineName, in.GivenAt, in.NextDueAt, in.VetName, in.Notes)
	var v domain.Vaccination
	if err := row.Scan(&v.ID, &v.PetID, &v.VaccineName, &v.GivenAt, &v.NextDueAt, &v.VetName, &v.Notes, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r MedicalRecordRepository) ListVaccinations(ctx context.Context, petID int64) ([]domain.Vaccination, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, pet_id, vaccine_name, given_at, next_due_at, vet_name, notes, created_at
		FROM vaccinations
		WHERE deleted_at IS NULL AND pet_id=$1
		ORDER BY given_at DESC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Vaccination
	for rows.Next() {
		var v domain.Vaccination
		if err := rows.Scan(&v.ID, &v.PetID, &v.VaccineName, &v.GivenAt, &v.NextDueAt, &v.VetName, &v.Notes, &v.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func scanMedicalRecord(row pgx.Row) (*domain.MedicalRecord, error) {
	var rec domain.MedicalRecord
	var branchID pgtype.Int8
	if err := row.Scan(&rec.ID, &rec.PetID, &rec.VisitDate, &rec.Findings, &rec.Diagnosis, &rec.Treatment, &rec.VetName, &branchID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if branchID.Valid {
		rec.BranchID = &branchID.Int64
	}
	return &rec, nil
}
