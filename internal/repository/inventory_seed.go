package repository

import "context"

// SeedDefaults loads a starter catalog into every branch that has no
// inventory yet. Idempotent on (branch_id, code).
func (r InventoryRepository) SeedDefaults(ctx context.Context) error {
	defaults := []struct {
		name     string
		code     string
		typ      string
		stock    int
		min      int
		reorder  int
		unitCost int64
	}{
		{"Amoxicillin 500mg", "MED-AMOX-500", "medicine", 475, 50, 100, 1200},
		{"Rabies Vaccine", "VAX-RABIES", "vaccine", 120, 20, 40, 35000},
		{"5-in-1 Vaccine", "VAX-DHPPI", "vaccine", 80, 15, 30, 45000},
		{"Syringe 3ml", "SUP-SYR-3", "supply", 600, 100, 200, 800},
		{"Surgical Gloves", "SUP-GLOVE", "supply", 400, 80, 150, 500},
		{"IV Catheter", "EQP-IVCATH", "equipment", 60, 10, 20, 9000},
	}

	for _, d := range defaults {
		_, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO inventory_items (branch_id, name, code, type, current_stock, min_threshold, reorder_level, unit_cost, created_at, updated_at)
			SELECT b.id, $1, $2, $3, $4, $5, $6, $7, now(), now()
			FROM branches b
			WHERE b.deleted_at IS NULL
			ON CONFLICT (branch_id, code) DO NOTHING
		`, d.name, d.code, d.typ, d.stock, d.min, d.reorder, d.unitCost)
		if err != nil {
			return err
		}
	}
	return nil
}
