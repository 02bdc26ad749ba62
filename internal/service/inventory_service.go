package service

import (
	"context"

	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
)

// InventoryStore is the slice of the inventory repository the service needs.
type InventoryStore interface {
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
	AdjustStock(ctx context.Context, in repository.AdjustStockInput) (*repository.StockChange, error)
}

type InventoryService struct {
	Items InventoryStore
	Audit *AuditService
}

type UpdateStockInput struct {
	ItemID     int64
	Operation  domain.StockOperation
	Amount     int
	Reason     string
	OperatorID int64
	Operator   string
}

// StockPreview shows the effect of an operation before committing it.
type StockPreview struct {
	ItemID       int64
	CurrentStock int
	NewStock     int
	Delta        int
	Warnings     []domain.StockWarning
}

// PreviewStock computes the would-be delta without touching the row.
func (s InventoryService) PreviewStock(ctx context.Context, itemID int64, op domain.StockOperation, amount int) (*StockPreview, error) {
	item, err := s.Items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	newStock, delta, err := domain.ApplyStockOperation(item.CurrentStock, op, amount)
	if err != nil {
		return nil, err
	}
	return &StockPreview{
		ItemID:       item.ID,
		CurrentStock: item.CurrentStock,
		NewStock:     newStock,
		Delta:        delta,
		Warnings:     domain.EvaluateStockWarnings(*item, newStock),
	}, nil
}

// UpdateStock validates and commits one operator stock change. Warnings on
// the result are advisory; a returned error means nothing was written.
func (s InventoryService) UpdateStock(ctx context.Context, in UpdateStockInput) (*repository.StockChange, error) {
	if err := domain.ValidateStockChangeReason(in.Reason); err != nil {
		return nil, err
	}
	change, err := s.Items.AdjustStock(ctx, repository.AdjustStockInput{
		ItemID:     in.ItemID,
		Operation:  in.Operation,
		Amount:     in.Amount,
		Reason:     in.Reason,
		OperatorID: in.OperatorID,
	})
	if err != nil {
		return nil, err
	}

	if s.Audit != nil {
		s.Audit.Record(AuditEntry{
			ActorID:    &in.OperatorID,
			ActorName:  in.Operator,
			Action:     domain.ActionUpdate,
			EntityType: "inventory_item",
			EntityID:   change.Item.ID,
			EntityName: change.Item.Name,
			Summary:    "stock " + string(in.Operation) + ": " + in.Reason,
			Severity:   domain.SeverityInfo,
		})
	}
	return change, nil
}
