package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type NotificationRepository struct {
	DB *db.Postgres
}

type CreateNotificationInput struct {
	UserID   int64
	Title    string
	Message  string
	Type     domain.NotificationType
	Priority domain.NotificationPriority
	Created  time.Time
}

func (r NotificationRepository) Create(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error) {
	var n domain.Notification
	var userID pgtype.Int8
	createdAt := in.Created
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, type, priority, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, user_id, title, message, type, priority, created_at, read_at
	`, in.UserID, in.Title, in.Message, string(in.Type), string(priority), createdAt).Scan(
		&n.ID, &userID, &n.Title, &n.Message, (*string)(&n.Type), (*string)(&n.Priority), &n.CreatedAt, &n.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		n.UserID = &userID.Int64
	}
	return &n, nil
}

func (r NotificationRepository) List(ctx context.Context, userID int64, limit int, unreadOnly bool) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `
		SELECT id, user_id, title, message, type, priority, created_at, read_at
		FROM notifications
		WHERE deleted_at IS NULL AND user_id = $1
	`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += `
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.DB.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var uid pgtype.Int8
		if err := rows.Scan(&n.ID, &uid, &n.Title, &n.Message, (*string)(&n.Type), (*string)(&n.Priority), &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		if uid.Valid {
			n.UserID = &uid.Int64
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE deleted_at IS NULL AND user_id=$1 AND read_at IS NULL
	`, userID).Scan(&count)
	return count, err
}

func (r NotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications SET read_at=now()
		WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL AND read_at IS NULL
	`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications SET read_at=now()
		WHERE user_id=$1 AND deleted_at IS NULL AND read_at IS NULL
	`, userID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// DeleteAll is the explicit bulk delete offered in the notification UI.
func (r NotificationRepository) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications SET deleted_at=now()
		WHERE user_id=$1 AND deleted_at IS NULL
	`, userID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
