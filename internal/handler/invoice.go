package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/server/authctx"
	"github.com/rangerisrael/pet-portal-sub000/internal/service"
)

type InvoiceHandler struct {
	Repo  repository.InvoiceRepository
	Audit *service.AuditService
}

func (h InvoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/invoices", h.list)
	r.Get("/invoices/{id}", h.get)
	r.Get("/invoices/{id}/payments", h.payments)
	r.Post("/invoices/{id}/payments", h.pay)
}

func (h InvoiceHandler) RegisterStaffRoutes(r chi.Router) {
	r.Post("/invoices", h.create)
}

func (h InvoiceHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var (
		items []domain.Invoice
		err   error
	)
	if user.Role == domain.RolePetOwner {
		items, err = h.Repo.ListByOwner(r.Context(), user.ID)
	} else {
		items, err = h.Repo.List(r.Context(), 500)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, inv := range items {
		resp = append(resp, invoicePayload(inv))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h InvoiceHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		OwnerUserID int64  `json:"ownerUserId"`
		BranchID    *int64 `json:"branchId"`
		Items       []struct {
			Description string `json:"description"`
			Quantity    int    `json:"quantity"`
			UnitPrice   int64  `json:"unitPrice"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.OwnerUserID == 0 || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "ownerUserId and items are required")
		return
	}
	in := repository.CreateInvoiceInput{
		OwnerUserID: req.OwnerUserID,
		BranchID:    req.BranchID,
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			writeError(w, http.StatusBadRequest, "item quantity must be positive and unit price non-negative")
			return
		}
		in.Items = append(in.Items, repository.CreateInvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	inv, err := h.Repo.Create(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.Audit != nil {
		h.Audit.Record(service.AuditEntry{
			ActorID:    &user.ID,
			ActorName:  user.Name,
			Action:     domain.ActionCreate,
			EntityType: "invoice",
			EntityID:   inv.ID,
			EntityName: inv.Number,
			After:      inv,
			Summary:    "invoice issued",
			Severity:   domain.SeverityInfo,
		})
		h.Audit.Notify(service.NotificationEntry{
			UserID:  inv.OwnerUserID,
			Title:   "New invoice " + inv.Number,
			Message: "An invoice of " + strconv.FormatInt(inv.Total.Amount, 10) + " was issued to you",
			Type:    domain.NotificationInfo,
		})
	}
	writeJSON(w, http.StatusCreated, invoicePayload(*inv))
}

func (h InvoiceHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	inv, ok := h.loadOwned(w, r, *user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, invoicePayload(*inv))
}

func (h InvoiceHandler) payments(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	inv, ok := h.loadOwned(w, r, *user)
	if !ok {
		return
	}
	items, err := h.Repo.ListPayments(r.Context(), inv.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, p := range items {
		resp = append(resp, map[string]any{
			"id":        p.ID,
			"invoiceId": p.InvoiceID,
			"amount":    p.Amount.Amount,
			"method":    p.Method,
			"reference": p.Reference,
			"paidAt":    p.PaidAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h InvoiceHandler) pay(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	inv, ok := h.loadOwned(w, r, *user)
	if !ok {
		return
	}
	var req struct {
		Amount    int64  `json:"amount"`
		Method    string `json:"method"`
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Method == "" {
		req.Method = "cash"
	}
	updated, payment, err := h.Repo.ApplyPayment(r.Context(), inv.ID, req.Amount, req.Method, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaymentNotPositive),
			errors.Is(err, domain.ErrPaymentExceedsDue):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrInvoiceSettled):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "invoice not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if h.Audit != nil {
		h.Audit.Record(service.AuditEntry{
			ActorID:    &user.ID,
			ActorName:  user.Name,
			Action:     domain.ActionUpdate,
			EntityType: "invoice",
			EntityID:   updated.ID,
			EntityName: updated.Number,
			After:      updated,
			Summary:    "payment of " + strconv.FormatInt(payment.Amount.Amount, 10) + " recorded",
			Severity:   domain.SeverityInfo,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"invoice": invoicePayload(*updated),
		"payment": map[string]any{
			"id":        payment.ID,
			"amount":    payment.Amount.Amount,
			"method":    payment.Method,
			"reference": payment.Reference,
			"paidAt":    payment.PaidAt.Format(time.RFC3339),
		},
	})
}

func (h InvoiceHandler) loadOwned(w http.ResponseWriter, r *http.Request, user authctx.CurrentUser) (*domain.Invoice, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	inv, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if user.Role == domain.RolePetOwner && inv.OwnerUserID != user.ID {
		writeError(w, http.StatusNotFound, "invoice not found")
		return nil, false
	}
	return inv, true
}

func invoicePayload(inv domain.Invoice) map[string]any {
	items := make([]map[string]any, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, map[string]any{
			"id":          item.ID,
			"description": item.Description,
			"quantity":    item.Quantity,
			"unitPrice":   item.UnitPrice.Amount,
		})
	}
	return map[string]any{
		"id":          inv.ID,
		"number":      inv.Number,
		"ownerUserId": inv.OwnerUserID,
		"branchId":    inv.BranchID,
		"total":       inv.Total.Amount,
		"balanceDue":  inv.BalanceDue.Amount,
		"status":      string(inv.Status),
		"issuedAt":    inv.IssuedAt.Format(time.RFC3339),
		"items":       items,
	}
}
