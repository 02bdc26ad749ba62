package repository

import (
	"context"

	"github.com/rangerisrael/pet-portal-sub000/internal/db"
)

type DashboardRepository struct {
	DB *db.Postgres
}

type DashboardSummary struct {
	TotalPets           int64
	AppointmentsToday   int64
	PendingRequests     int64
	LowStockItems       int64
	OutstandingBalance  int64
	UnreadNotifications int64
}

// Summary gathers the portal dashboard counters. Branch-level callers pass
// their branch id to narrow appointment/inventory/request counts; vet owners
// pass nil for a network-wide view.
func (r DashboardRepository) Summary(ctx context.Context, userID int64, branchID *int64) (DashboardSummary, error) {
	var s DashboardSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM pets WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM appointments
				WHERE deleted_at IS NULL
				  AND scheduled_at::date = CURRENT_DATE
				  AND ($2::bigint IS NULL OR branch_id = $2)),
			(SELECT COUNT(*) FROM stock_requests
				WHERE deleted_at IS NULL AND status = 'pending'
				  AND ($2::bigint IS NULL OR target_branch_id = $2 OR requesting_branch_id = $2)),
			(SELECT COUNT(*) FROM inventory_items
				WHERE deleted_at IS NULL AND current_stock <= min_threshold
				  AND ($2::bigint IS NULL OR branch_id = $2)),
			(SELECT COALESCE(SUM(balance_due),0) FROM invoices
				WHERE deleted_at IS NULL AND status <> 'paid'),
			(SELECT COUNT(*) FROM notifications
				WHERE deleted_at IS NULL AND read_at IS NULL AND user_id = $1)
	`, userID, branchID).Scan(
		&s.TotalPets, &s.AppointmentsToday, &s.PendingRequests,
		&s.LowStockItems, &s.OutstandingBalance, &s.UnreadNotifications,
	)
	return s, err
}

type SpeciesCount struct {
	Species string
	Count   int64
}

func (r DashboardRepository) PetsBySpecies(ctx context.Context, limit int) ([]SpeciesCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT species, COUNT(*) AS cnt
		FROM pets
		WHERE deleted_at IS NULL
		GROUP BY species
		ORDER BY cnt DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SpeciesCount
	for rows.Next() {
		var sc SpeciesCount
		if err := rows.Scan(&sc.Species, &sc.Count); err != nil {
			return nil, err
		}
		items = append(items, sc)
	}
	return items, rows.Err()
}
