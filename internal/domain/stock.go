package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrReasonRequired = errors.New("a reason is required for stock changes")
	ErrNegativeStock  = errors.New("resulting stock would be negative")
)

// ApplyStockOperation computes the stock level after one operator action.
// `subtract` clamps at zero instead of failing; expiring more units than are
// on hand is a legitimate correction. `set` and `add` reject a negative
// target outright.
func ApplyStockOperation(current int, op StockOperation, amount int) (newStock int, delta int, err error) {
	switch op {
	case StockSet:
		if amount < 0 {
			return 0, 0, ErrNegativeStock
		}
		newStock = amount
	case StockAdd:
		if amount <= 0 {
			return 0, 0, fmt.Errorf("add amount must be positive")
		}
		newStock = current + amount
	case StockSubtract:
		if amount <= 0 {
			return 0, 0, fmt.Errorf("subtract amount must be positive")
		}
		newStock = current - amount
		if newStock < 0 {
			newStock = 0
		}
	default:
		return 0, 0, fmt.Errorf("unknown stock operation %q", op)
	}
	return newStock, newStock - current, nil
}

// StockWarning is a non-blocking advisory attached to a committed change.
type StockWarning string

const (
	WarnOutOfStock    StockWarning = "out_of_stock"
	WarnBelowMinimum  StockWarning = "below_minimum"
	WarnAtReorderMark StockWarning = "at_reorder_level"
)

// EvaluateStockWarnings reports advisories for the post-change stock level.
// Out of stock supersedes the minimum-threshold warning.
func EvaluateStockWarnings(item InventoryItem, newStock int) []StockWarning {
	var warnings []StockWarning
	switch {
	case newStock == 0:
		warnings = append(warnings, WarnOutOfStock)
	case newStock <= item.MinThreshold:
		warnings = append(warnings, WarnBelowMinimum)
	}
	if item.ReorderLevel > 0 && newStock <= item.ReorderLevel && newStock > 0 {
		warnings = append(warnings, WarnAtReorderMark)
	}
	return warnings
}

// ValidateStockChangeReason enforces the mandatory free-text reason.
func ValidateStockChangeReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

// ValidateItemType checks against the closed item taxonomy.
func ValidateItemType(t InventoryItemType) error {
	switch t {
	case ItemMedicine, ItemVaccine, ItemSupply, ItemEquipment:
		return nil
	}
	return fmt.Errorf("unknown item type %q", t)
}
