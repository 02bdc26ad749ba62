package service

import (
	"context"
	"testing"

	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memInventoryStore struct {
	items map[int64]*domain.InventoryItem
}

func (s *memInventoryStore) GetByID(_ context.Context, id int64) (*domain.InventoryItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *item
	return &out, nil
}

func (s *memInventoryStore) AdjustStock(_ context.Context, in repository.AdjustStockInput) (*repository.StockChange, error) {
	item, ok := s.items[in.ItemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	before := item.CurrentStock
	after, delta, err := domain.ApplyStockOperation(before, in.Operation, in.Amount)
	if err != nil {
		return nil, err
	}
	item.CurrentStock = after
	return &repository.StockChange{
		Item:        *item,
		StockBefore: before,
		StockAfter:  after,
		Delta:       delta,
		Warnings:    domain.EvaluateStockWarnings(*item, after),
	}, nil
}

func newInventoryFixture(stock int) (InventoryService, *memInventoryStore) {
	store := &memInventoryStore{items: map[int64]*domain.InventoryItem{
		1: {ID: 1, BranchID: 2, Name: "Amoxicillin 500mg", Code: "MED-AMOX-500", CurrentStock: stock, MinThreshold: 50, ReorderLevel: 100},
	}}
	return InventoryService{Items: store}, store
}

func TestPreviewStockDoesNotCommit(t *testing.T) {
	svc, store := newInventoryFixture(475)

	preview, err := svc.PreviewStock(context.Background(), 1, domain.StockSubtract, 500)
	require.NoError(t, err)
	assert.Equal(t, 475, preview.CurrentStock)
	assert.Equal(t, 0, preview.NewStock)
	assert.Equal(t, -475, preview.Delta)
	assert.Contains(t, preview.Warnings, domain.WarnOutOfStock)

	// Nothing was written.
	assert.Equal(t, 475, store.items[1].CurrentStock)
}

func TestUpdateStockRequiresReason(t *testing.T) {
	svc, store := newInventoryFixture(475)

	_, err := svc.UpdateStock(context.Background(), UpdateStockInput{
		ItemID:    1,
		Operation: domain.StockSubtract,
		Amount:    75,
		Reason:    "  ",
	})
	assert.ErrorIs(t, err, domain.ErrReasonRequired)
	assert.Equal(t, 475, store.items[1].CurrentStock)
}

func TestUpdateStockCommitsAndWarns(t *testing.T) {
	svc, store := newInventoryFixture(120)

	change, err := svc.UpdateStock(context.Background(), UpdateStockInput{
		ItemID:     1,
		Operation:  domain.StockSubtract,
		Amount:     80,
		Reason:     "dispensed for treatments",
		OperatorID: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 120, change.StockBefore)
	assert.Equal(t, 40, change.StockAfter)
	assert.Equal(t, []domain.StockWarning{domain.WarnBelowMinimum, domain.WarnAtReorderMark}, change.Warnings)
	assert.Equal(t, 40, store.items[1].CurrentStock)
}

func TestUpdateStockRejectsNegativeSet(t *testing.T) {
	svc, store := newInventoryFixture(40)

	_, err := svc.UpdateStock(context.Background(), UpdateStockInput{
		ItemID:    1,
		Operation: domain.StockSet,
		Amount:    -10,
		Reason:    "typo",
	})
	assert.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.Equal(t, 40, store.items[1].CurrentStock)
}
