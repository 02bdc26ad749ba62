package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type InventoryRepository struct {
	DB *db.Postgres
}

const inventoryColumns = `id, branch_id, name, code, type, current_stock, min_threshold, reorder_level, unit_cost, created_at, updated_at`

func (r InventoryRepository) List(ctx context.Context, limit int) ([]domain.InventoryItem, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE deleted_at IS NULL
		ORDER BY name ASC, branch_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r InventoryRepository) ListByBranch(ctx context.Context, branchID int64) ([]domain.InventoryItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE deleted_at IS NULL AND branch_id=$1
		ORDER BY name ASC
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r InventoryRepository) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r InventoryRepository) Save(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	var row pgx.Row
	if item.ID == 0 {
		row = r.DB.Pool.QueryRow(ctx, `
			INSERT INTO inventory_items (branch_id, name, code, type, current_stock, min_threshold, reorder_level, unit_cost, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now(), now())
			RETURNING `+inventoryColumns+`
		`, item.BranchID, item.Name, item.Code, string(item.Type), item.CurrentStock, item.MinThreshold, item.ReorderLevel, item.UnitCost.Amount)
	} else {
		row = r.DB.Pool.QueryRow(ctx, `
			UPDATE inventory_items
			SET name=$1, code=$2, type=$3, min_threshold=$4, reorder_level=$5, unit_cost=$6, updated_at=now()
			WHERE id=$7 AND deleted_at IS NULL
			RETURNING `+inventoryColumns+`
		`, item.Name, item.Code, string(item.Type), item.MinThreshold, item.ReorderLevel, item.UnitCost.Amount, item.ID)
	}
	saved, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return saved, nil
}

func (r InventoryRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `UPDATE inventory_items SET deleted_at=now() WHERE id=$1`, id)
	return err
}

// AdjustStock commits one operator stock change. The row-locked read, the
// arithmetic via domain rules, the update, and the ledger insert share one
// transaction.
func (r InventoryRepository) AdjustStock(ctx context.Context, in AdjustStockInput) (*StockChange, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	item, err := lockItem(ctx, tx, in.ItemID)
	if err != nil {
		return nil, err
	}

	newStock, delta, err := domain.ApplyStockOperation(item.CurrentStock, in.Operation, in.Amount)
	if err != nil {
		return nil, err
	}

	before := item.CurrentStock
	if err := writeStockChange(ctx, tx, *item, in.Operation, delta, newStock, in.Reason, in.OperatorID, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	item.CurrentStock = newStock
	return &StockChange{
		Item:        *item,
		StockBefore: before,
		StockAfter:  newStock,
		Delta:       delta,
		Warnings:    domain.EvaluateStockWarnings(*item, newStock),
	}, nil
}

type AdjustStockInput struct {
	ItemID     int64
	Operation  domain.StockOperation
	Amount     int
	Reason     string
	OperatorID int64
}

// StockChange is the committed outcome handed back to the caller.
type StockChange struct {
	Item        domain.InventoryItem
	StockBefore int
	StockAfter  int
	Delta       int
	Warnings    []domain.StockWarning
}

// TransferStock moves quantity units between two branch rows of an item
// inside one transaction. The source decrement must not go negative.
// Used by stock-request fulfillment; both legs land in the ledger.
func (r InventoryRepository) TransferStock(ctx context.Context, fromItemID, toItemID int64, quantity int, reason string, operatorID int64, requestID int64) error {
	if quantity <= 0 {
		return errors.New("transfer quantity must be positive")
	}
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock in id order to avoid deadlock between concurrent transfers.
	firstID, secondID := fromItemID, toItemID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := lockItem(ctx, tx, firstID)
	if err != nil {
		return err
	}
	second, err := lockItem(ctx, tx, secondID)
	if err != nil {
		return err
	}
	source, dest := first, second
	if source.ID != fromItemID {
		source, dest = second, first
	}

	if source.CurrentStock < quantity {
		return domain.ErrNegativeStock
	}

	if err := writeStockChange(ctx, tx, *source, domain.StockSubtract, -quantity, source.CurrentStock-quantity, reason, operatorID, &requestID); err != nil {
		return err
	}
	if err := writeStockChange(ctx, tx, *dest, domain.StockAdd, quantity, dest.CurrentStock+quantity, reason, operatorID, &requestID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE stock_requests SET status='fulfilled', updated_at=now()
		WHERE id=$1 AND status='approved'
	`, requestID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// EnsureBranchItem returns the branch's row for the template's item code,
// creating a zero-stock row when the branch has never carried the item.
func (r InventoryRepository) EnsureBranchItem(ctx context.Context, branchID int64, template domain.InventoryItem) (*domain.InventoryItem, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE branch_id=$1 AND code=$2 AND deleted_at IS NULL
	`, branchID, template.Code)
	item, err := scanItem(row)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	row = r.DB.Pool.QueryRow(ctx, `
		INSERT INTO inventory_items (branch_id, name, code, type, current_stock, min_threshold, reorder_level, unit_cost, created_at, updated_at)
		VALUES ($1,$2,$3,$4, 0, $5, $6, $7, now(), now())
		RETURNING `+inventoryColumns+`
	`, branchID, template.Name, template.Code, string(template.Type), template.MinThreshold, template.ReorderLevel, template.UnitCost.Amount)
	created, err := scanItem(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return r.EnsureBranchItem(ctx, branchID, template)
		}
		return nil, err
	}
	return created, nil
}

func lockItem(ctx context.Context, tx pgx.Tx, id int64) (*domain.InventoryItem, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE id=$1 AND deleted_at IS NULL
		FOR UPDATE
	`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func writeStockChange(ctx context.Context, tx pgx.Tx, item domain.InventoryItem, op domain.StockOperation, delta, newStock int, reason string, operatorID int64, requestID *int64) error {
	if _, err := tx.Exec(ctx, `
		UPDATE inventory_items SET current_stock=$1, updated_at=now() WHERE id=$2
	`, newStock, item.ID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_transactions (item_id, branch_id, operation, delta, stock_before, stock_after, reason, operator_id, request_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
	`, item.ID, item.BranchID, string(op), delta, item.CurrentStock, newStock, reason, operatorID, requestID)
	return err
}

// ListTransactions returns the ledger for one item, newest first. Display
// only; never used to recompute stock.
func (r InventoryRepository) ListTransactions(ctx context.Context, itemID int64, limit int) ([]domain.StockTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, item_id, branch_id, operation, delta, stock_before, stock_after, reason, operator_id, request_id, created_at
		FROM stock_transactions
		WHERE item_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, itemID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.StockTransaction
	for rows.Next() {
		var t domain.StockTransaction
		if err := rows.Scan(&t.ID, &t.ItemID, &t.BranchID, (*string)(&t.Operation), &t.Delta, &t.StockBefore, &t.StockAfter, &t.Reason, &t.OperatorID, &t.RequestID, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func collectItems(rows pgx.Rows) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (*domain.InventoryItem, error) {
	var i domain.InventoryItem
	if err := row.Scan(&i.ID, &i.BranchID, &i.Name, &i.Code, (*string)(&i.Type), &i.CurrentStock, &i.MinThreshold, &i.ReorderLevel, &i.UnitCost.Amount, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}
