package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type AppointmentRepository struct {
	DB *db.Postgres
}

const appointmentColumns = `id, pet_id, owner_user_id, branch_id, scheduled_at, status, reason, cost_estimate, notes, created_at, updated_at`

type CreateAppointmentInput struct {
	PetID       int64
	OwnerUserID int64
	BranchID    int64
	ScheduledAt time.Time
	Reason      string
	CostEst     int64
	Notes       string
}

func (r AppointmentRepository) Create(ctx context.Context, in CreateAppointmentInput) (*domain.Appointment, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO appointments (pet_id, owner_user_id, branch_id, scheduled_at, status, reason, cost_estimate, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now(), now())
		RETURNING `+appointmentColumns+`
	`, in.PetID, in.OwnerUserID, in.BranchID, in.ScheduledAt, domain.AppointmentScheduled, in.Reason, in.CostEst, in.Notes)
	return scanAppointment(row)
}

func (r AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r AppointmentRepository) List(ctx context.Context, limit int) ([]domain.Appointment, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE deleted_at IS NULL
		ORDER BY scheduled_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r AppointmentRepository) ListByOwner(ctx context.Context, ownerUserID int64) ([]domain.Appointment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE deleted_at IS NULL AND owner_user_id=$1
		ORDER BY scheduled_at DESC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r AppointmentRepository) ListByBranch(ctx context.Context, branchID int64) ([]domain.Appointment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE deleted_at IS NULL AND branch_id=$1
		ORDER BY scheduled_at DESC
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// HasActive reports whether the pet already holds a scheduled or confirmed
// appointment.
func (r AppointmentRepository) HasActive(ctx context.Context, petID int64) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE deleted_at IS NULL AND pet_id=$1 AND status IN ('scheduled','confirmed')
		)
	`, petID).Scan(&exists)
	return exists, err
}

func (r AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) (*domain.Appointment, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE appointments
		SET status=$1, updated_at=now()
		WHERE id=$2 AND deleted_at IS NULL
		RETURNING `+appointmentColumns+`
	`, string(status), id)
	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// Reschedule moves the appointment and returns it to the scheduled state.
func (r AppointmentRepository) Reschedule(ctx context.Context, id int64, at time.Time) (*domain.Appointment, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE appointments
		SET scheduled_at=$1, status='scheduled', updated_at=now()
		WHERE id=$2 AND deleted_at IS NULL
		RETURNING `+appointmentColumns+`
	`, at, id)
	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r AppointmentRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `UPDATE appointments SET deleted_at=now() WHERE id=$1`, id)
	return err
}

func collectAppointments(rows pgx.Rows) ([]domain.Appointment, error) {
	var items []domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := row.Scan(&a.ID, &a.PetID, &a.OwnerUserID, &a.BranchID, &a.ScheduledAt, (*string)(&a.Status), &a.Reason, &a.CostEst.Amount, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
