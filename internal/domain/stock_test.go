package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStockOperationSet(t *testing.T) {
	newStock, delta, err := ApplyStockOperation(40, StockSet, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, newStock)
	assert.Equal(t, 60, delta)

	_, _, err = ApplyStockOperation(40, StockSet, -1)
	assert.ErrorIs(t, err, ErrNegativeStock)
}

func TestApplyStockOperationAdd(t *testing.T) {
	newStock, delta, err := ApplyStockOperation(40, StockAdd, 10)
	require.NoError(t, err)
	assert.Equal(t, 50, newStock)
	assert.Equal(t, 10, delta)

	_, _, err = ApplyStockOperation(40, StockAdd, 0)
	assert.Error(t, err)
	_, _, err = ApplyStockOperation(40, StockAdd, -5)
	assert.Error(t, err)
}

func TestApplyStockOperationSubtractClampsAtZero(t *testing.T) {
	newStock, delta, err := ApplyStockOperation(475, StockSubtract, 500)
	require.NoError(t, err)
	assert.Equal(t, 0, newStock)
	assert.Equal(t, -475, delta)

	newStock, delta, err = ApplyStockOperation(475, StockSubtract, 75)
	require.NoError(t, err)
	assert.Equal(t, 400, newStock)
	assert.Equal(t, -75, delta)
}

func TestApplyStockOperationUnknown(t *testing.T) {
	_, _, err := ApplyStockOperation(10, StockOperation("divide"), 2)
	assert.Error(t, err)
}

func TestEvaluateStockWarnings(t *testing.T) {
	item := InventoryItem{MinThreshold: 50, ReorderLevel: 100}

	assert.Equal(t, []StockWarning{WarnOutOfStock}, EvaluateStockWarnings(item, 0))
	assert.Equal(t, []StockWarning{WarnBelowMinimum, WarnAtReorderMark}, EvaluateStockWarnings(item, 30))
	assert.Equal(t, []StockWarning{WarnAtReorderMark}, EvaluateStockWarnings(item, 80))
	assert.Empty(t, EvaluateStockWarnings(item, 200))
}

func TestEvaluateStockWarningsOutOfStockSupersedesMinimum(t *testing.T) {
	item := InventoryItem{MinThreshold: 50}
	warnings := EvaluateStockWarnings(item, 0)
	assert.NotContains(t, warnings, WarnBelowMinimum)
	assert.Contains(t, warnings, WarnOutOfStock)
}

func TestValidateItemType(t *testing.T) {
	for _, typ := range []InventoryItemType{ItemMedicine, ItemVaccine, ItemSupply, ItemEquipment} {
		assert.NoError(t, ValidateItemType(typ), "type %s", typ)
	}
	assert.Error(t, ValidateItemType(InventoryItemType("snacks")))
	assert.Error(t, ValidateItemType(InventoryItemType("")))
}

func TestValidateStockChangeReason(t *testing.T) {
	assert.NoError(t, ValidateStockChangeReason("expired units discarded"))
	assert.ErrorIs(t, ValidateStockChangeReason(""), ErrReasonRequired)
	assert.ErrorIs(t, ValidateStockChangeReason("   "), ErrReasonRequired)
}
