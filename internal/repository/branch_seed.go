package repository

import "context"

// SeedDefaults ensures the default clinic network exists: one main branch
// and its provincial sub branches.
func (r BranchRepository) SeedDefaults(ctx context.Context) error {
	branches := []struct {
		name string
		typ  string
	}{
		{"Naga Main", "main"},
		{"Pili", "sub"},
		{"Legazpi", "sub"},
		{"Iriga", "sub"},
	}

	for _, b := range branches {
		_, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO branches (name, type, address, phone, created_at, updated_at)
			VALUES ($1, $2, '', '', now(), now())
			ON CONFLICT (name) DO NOTHING
		`, b.name, b.typ)
		if err != nil {
			return err
		}
	}
	return nil
}
