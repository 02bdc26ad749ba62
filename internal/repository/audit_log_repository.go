package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type AuditLogRepository struct {
	DB *db.Postgres
}

type CreateAuditLogInput struct {
	ActorID    *int64
	ActorName  string
	Action     domain.AuditAction
	EntityType string
	EntityID   string
	EntityName string
	Before     []byte
	After      []byte
	Summary    string
	Severity   domain.AuditSeverity
	Timestamp  time.Time
}

func (r AuditLogRepository) Create(ctx context.Context, in CreateAuditLogInput) (int64, error) {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO audit_logs (actor_id, actor_name, action, entity_type, entity_id, entity_name, before_value, after_value, summary, severity, logged_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now())
		RETURNING id
	`, in.ActorID, in.ActorName, string(in.Action), in.EntityType, in.EntityID, in.EntityName, in.Before, in.After, in.Summary, string(in.Severity), ts).Scan(&id)
	return id, err
}

type AuditLogFilter struct {
	EntityType string
	Action     string
	Start      *time.Time
	End        *time.Time
	Limit      int
}

func (r AuditLogRepository) List(ctx context.Context, f AuditLogFilter) ([]domain.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 200
	}
	query := `
		SELECT id, actor_id, actor_name, action, entity_type, entity_id, entity_name, before_value, after_value, summary, severity, logged_at
		FROM audit_logs
		WHERE deleted_at IS NULL
	`
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		query += clause + "$" + strconv.Itoa(len(args))
	}
	if f.EntityType != "" {
		add(` AND entity_type=`, f.EntityType)
	}
	if f.Action != "" {
		add(` AND action=`, f.Action)
	}
	if f.Start != nil {
		add(` AND logged_at >= `, *f.Start)
	}
	if f.End != nil {
		add(` AND logged_at < `, f.End.AddDate(0, 0, 1))
	}
	add(` ORDER BY logged_at DESC, id DESC LIMIT `, limit)

	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		var actorID pgtype.Int8
		if err := rows.Scan(&l.ID, &actorID, &l.ActorName, (*string)(&l.Action), &l.EntityType, &l.EntityID, &l.EntityName, &l.Before, &l.After, &l.Summary, (*string)(&l.Severity), &l.LoggedAt); err != nil {
			return nil, err
		}
		if actorID.Valid {
			l.ActorID = &actorID.Int64
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
