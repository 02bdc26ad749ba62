package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
)

type PreferencesRepository struct {
	DB *db.Postgres
}

// Preferences is the per-user settings row behind the dashboard
// preferences tab.
type Preferences struct {
	UserID              int64
	EmailNotifications  bool
	InAppNotifications  bool
	AppointmentReminder bool
	LowStockAlerts      bool
	Language            string
	Timezone            string
}

func defaultPreferences(userID int64) Preferences {
	return Preferences{
		UserID:              userID,
		EmailNotifications:  true,
		InAppNotifications:  true,
		AppointmentReminder: true,
		LowStockAlerts:      true,
		Language:            "en",
		Timezone:            "Asia/Manila",
	}
}

// Get returns the user's preferences, falling back to defaults when the
// row does not exist yet.
func (r PreferencesRepository) Get(ctx context.Context, userID int64) (Preferences, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT user_id, email_notifications, in_app_notifications, appointment_reminder, low_stock_alerts, language, timezone
		FROM user_preferences
		WHERE user_id=$1
	`, userID)
	var p Preferences
	err := row.Scan(&p.UserID, &p.EmailNotifications, &p.InAppNotifications, &p.AppointmentReminder, &p.LowStockAlerts, &p.Language, &p.Timezone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return defaultPreferences(userID), nil
		}
		return Preferences{}, err
	}
	return p, nil
}

func (r PreferencesRepository) Save(ctx context.Context, p Preferences) (Preferences, error) {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, email_notifications, in_app_notifications, appointment_reminder, low_stock_alerts, language, timezone, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now())
		ON CONFLICT (user_id) DO UPDATE SET
			email_notifications=EXCLUDED.email_notifications,
			in_app_notifications=EXCLUDED.in_app_notifications,
			appointment_reminder=EXCLUDED.appointment_reminder,
			low_stock_alerts=EXCLUDED.low_stock_alerts,
			language=EXCLUDED.language,
			timezone=EXCLUDED.timezone,
			updated_at=now()
	`, p.UserID, p.EmailNotifications, p.InAppNotifications, p.AppointmentReminder, p.LowStockAlerts, p.Language, p.Timezone)
	if err != nil {
		return Preferences{}, err
	}
	return p, nil
}
