package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/server/authctx"
	"github.com/rangerisrael/pet-portal-sub000/internal/service"
)

// InventoryHandler serves branch-partitioned inventory. Every read and write
// passes through the caller's resolved branch scope; staff with no resolvable
// branch get empty lists, never another branch's rows.
type InventoryHandler struct {
	Repo     repository.InventoryRepository
	Staff    repository.StaffAssignmentRepository
	Branches repository.BranchRepository
	Service  service.InventoryService
}

func (h InventoryHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/inventory", h.list)
	r.Get("/inventory/alerts", h.alerts)
	r.Post("/inventory", h.create)
	r.Get("/inventory/{id}", h.get)
	r.Put("/inventory/{id}", h.update)
	r.Post("/inventory/{id}/stock", h.updateStock)
	r.Post("/inventory/{id}/stock/preview", h.previewStock)
	r.Get("/inventory/{id}/transactions", h.transactions)
}

func (h InventoryHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Delete("/inventory/{id}", h.remove)
}

func (h InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	scope, err := resolveScope(r.Context(), *user, h.Staff, h.Branches)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := []domain.InventoryItem{}
	switch {
	case scope.All:
		items, err = h.Repo.List(r.Context(), 1000)
	case scope.Resolved:
		items, err = h.Repo.ListByBranch(r.Context(), scope.BranchID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]map[string]any, 0, len(items))
	for _, item := range items {
		resp = append(resp, inventoryPayload(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h InventoryHandler) alerts(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	scope, err := resolveScope(r.Context(), *user, h.Staff, h.Branches)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items, err := h.Repo.List(r.Context(), 5000)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	alerts := service.FilterAlertsByBranch(service.BuildLowStockAlerts(items), scope)

	resp := make([]map[string]any, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, map[string]any{
			"itemId":       a.ItemID,
			"branchId":     a.BranchID,
			"itemName":     a.ItemName,
			"currentStock": a.CurrentStock,
			"minThreshold": a.MinThreshold,
			"outOfStock":   a.OutOfStock,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h InventoryHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	scope, err := resolveScope(r.Context(), *user, h.Staff, h.Branches)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req inventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "name and code are required")
		return
	}
	if req.CurrentStock < 0 || req.MinThreshold < 0 || req.ReorderLevel < 0 {
		writeError(w, http.StatusBadRequest, "stock values must not be negative")
		return
	}
	if err := domain.ValidateItemType(domain.InventoryItemType(req.Type)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	branchID := req.BranchID
	if !scope.All {
		if !scope.Resolved {
			writeError(w, http.StatusForbidden, "no branch assignment")
			return
		}
		branchID = scope.BranchID
	}
	if branchID == 0 {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}

	item, err := h.Repo.Save(r.Context(), domain.InventoryItem{
		BranchID:     branchID,
		Name:         req.Name,
		Code:         req.Code,
		Type:         domain.InventoryItemType(req.Type),
		CurrentStock: req.CurrentStock,
		MinThreshold: req.MinThreshold,
		ReorderLevel: req.ReorderLevel,
		UnitCost:     domain.Money{Amount: req.UnitCost},
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "item code already exists for this branch")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, inventoryPayload(*item))
}

func (h InventoryHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	item, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, inventoryPayload(*item))
}

func (h InventoryHandler) update(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	item, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	var req inventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.MinThreshold < 0 || req.ReorderLevel < 0 {
		writeError(w, http.StatusBadRequest, "thresholds must not be negative")
		return
	}
	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Code != "" {
		item.Code = req.Code
	}
	if req.Type != "" {
		if err := domain.ValidateItemType(domain.InventoryItemType(req.Type)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item.Type = domain.InventoryItemType(req.Type)
	}
	item.MinThreshold = req.MinThreshold
	item.ReorderLevel = req.ReorderLevel
	item.UnitCost.Amount = req.UnitCost

	saved, err := h.Repo.Save(r.Context(), *item)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, inventoryPayload(*saved))
}

func (h InventoryHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h InventoryHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	item, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	var req stockChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	change, err := h.Service.UpdateStock(r.Context(), service.UpdateStockInput{
		ItemID:     item.ID,
		Operation:  domain.StockOperation(req.Operation),
		Amount:     req.Amount,
		Reason:     req.Reason,
		OperatorID: user.ID,
		Operator:   user.Name,
	})
	if err != nil {
		writeError(w, stockErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"item":        inventoryPayload(change.Item),
		"stockBefore": change.StockBefore,
		"stockAfter":  change.StockAfter,
		"delta":       change.Delta,
		"warnings":    warningPayload(change.Warnings),
	})
}

func (h InventoryHandler) previewStock(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	item, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	var req stockChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	preview, err := h.Service.PreviewStock(r.Context(), item.ID, domain.StockOperation(req.Operation), req.Amount)
	if err != nil {
		writeError(w, stockErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"itemId":       preview.ItemID,
		"currentStock": preview.CurrentStock,
		"newStock":     preview.NewStock,
		"delta":        preview.Delta,
		"warnings":     warningPayload(preview.Warnings),
	})
}

func (h InventoryHandler) transactions(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	item, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	items, err := h.Repo.ListTransactions(r.Context(), item.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, t := range items {
		resp = append(resp, map[string]any{
			"id":          t.ID,
			"itemId":      t.ItemID,
			"branchId":    t.BranchID,
			"operation":   string(t.Operation),
			"delta":       t.Delta,
			"stockBefore": t.StockBefore,
			"stockAfter":  t.StockAfter,
			"reason":      t.Reason,
			"operatorId":  t.OperatorID,
			"requestId":   t.RequestID,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadScoped fetches the item and rejects rows outside the caller's branch.
func (h InventoryHandler) loadScoped(w http.ResponseWriter, r *http.Request, user authctx.CurrentUser) (*domain.InventoryItem, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	item, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	scope, err := resolveScope(r.Context(), user, h.Staff, h.Branches)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if !scope.All && (!scope.Resolved || item.BranchID != scope.BranchID) {
		writeError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

type inventoryRequest struct {
	BranchID     int64  `json:"branchId"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Type         string `json:"type"`
	CurrentStock int    `json:"currentStock"`
	MinThreshold int    `json:"minThreshold"`
	ReorderLevel int    `json:"reorderLevel"`
	UnitCost     int64  `json:"unitCost"`
}

type stockChangeRequest struct {
	Operation string `json:"operation"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
}

func stockErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNegativeStock),
		errors.Is(err, domain.ErrReasonRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func warningPayload(warnings []domain.StockWarning) []string {
	resp := make([]string, 0, len(warnings))
	for _, warn := range warnings {
		resp = append(resp, string(warn))
	}
	return resp
}

func inventoryPayload(item domain.InventoryItem) map[string]any {
	return map[string]any{
		"id":           item.ID,
		"branchId":     item.BranchID,
		"name":         item.Name,
		"code":         item.Code,
		"type":         string(item.Type),
		"currentStock": item.CurrentStock,
		"minThreshold": item.MinThreshold,
		"reorderLevel": item.ReorderLevel,
		"unitCost":     item.UnitCost.Amount,
		"lowOnStock":   item.LowOnStock(),
	}
}
