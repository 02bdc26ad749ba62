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

type StockRequestHandler struct {
	Repo     repository.StockRequestRepository
	Staff    repository.StaffAssignmentRepository
	Branches repository.BranchRepository
	Service  service.StockRequestService
}

func (h StockRequestHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/stock-requests", h.list)
	r.Post("/stock-requests", h.create)
	r.Get("/stock-requests/{id}", h.get)
	r.Put("/stock-requests/{id}/approve", h.approve)
	r.Put("/stock-requests/{id}/reject", h.reject)
	r.Put("/stock-requests/{id}/cancel", h.cancel)
	r.Put("/stock-requests/{id}/fulfill", h.fulfill)
}

func (h StockRequestHandler) list(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.Repo.List(r.Context(), 500)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items = service.FilterRequestsByBranch(items, scope)

	resp := make([]map[string]any, 0, len(items))
	for _, req := range items {
		resp = append(resp, stockRequestPayload(req))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h StockRequestHandler) create(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		RequestingBranchID int64  `json:"requestingBranchId"`
		TargetBranchID     int64  `json:"targetBranchId"`
		ItemID             int64  `json:"itemId"`
		Quantity           int    `json:"quantity"`
		Urgency            string `json:"urgency"`
		Notes              string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	requestingBranchID := req.RequestingBranchID
	if !scope.All {
		if !scope.Resolved {
			writeError(w, http.StatusForbidden, "no branch assignment")
			return
		}
		requestingBranchID = scope.BranchID
	}

	urgency := domain.RequestUrgency(req.Urgency)
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}
	created, err := h.Service.Create(r.Context(), service.CreateRequestInput{
		RequestingBranchID: requestingBranchID,
		TargetBranchID:     req.TargetBranchID,
		ItemID:             req.ItemID,
		Quantity:           req.Quantity,
		Urgency:            urgency,
		Notes:              req.Notes,
		RequestedBy:        user.ID,
		RequestedByName:    user.Name,
	})
	if err != nil {
		writeError(w, requestErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, stockRequestPayload(*created))
}

func (h StockRequestHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stockRequestPayload(*req))
}

// approve records the decision on the fulfilling side. Partial approvals
// carry an explanatory note; the response includes the assessed percentage.
func (h StockRequestHandler) approve(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	var body struct {
		ApprovedQuantity int    `json:"approvedQuantity"`
		Notes            string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.Service.Approve(r.Context(), req.ID, body.ApprovedQuantity, body.Notes, user.ID, user.Name)
	if err != nil {
		writeError(w, requestErrorStatus(err), err.Error())
		return
	}
	payload := stockRequestPayload(*result.Request)
	payload["isPartialApproval"] = result.Assessment.IsPartialApproval
	payload["approvalPercentage"] = result.Assessment.ApprovalPercentage
	writeJSON(w, http.StatusOK, payload)
}

func (h StockRequestHandler) reject(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	updated, err := h.Service.Reject(r.Context(), req.ID, body.Reason, user.ID, user.Name)
	if err != nil {
		writeError(w, requestErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stockRequestPayload(*updated))
}

func (h StockRequestHandler) cancel(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	updated, err := h.Service.Cancel(r.Context(), req.ID, user.ID, user.Name)
	if err != nil {
		writeError(w, requestErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stockRequestPayload(*updated))
}

func (h StockRequestHandler) fulfill(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := h.loadScoped(w, r, *user)
	if !ok {
		return
	}
	updated, err := h.Service.Fulfill(r.Context(), req.ID, user.ID, user.Name)
	if err != nil {
		writeError(w, requestErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stockRequestPayload(*updated))
}

// loadScoped fetches the request and hides rows where the caller's branch is
// on neither side.
func (h StockRequestHandler) loadScoped(w http.ResponseWriter, r *http.Request, user authctx.CurrentUser) (*domain.StockRequest, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	req, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "request not found")
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
	if !scope.All {
		if !scope.Resolved ||
			(req.RequestingBranchID != scope.BranchID && req.TargetBranchID != scope.BranchID) {
			writeError(w, http.StatusNotFound, "request not found")
			return nil, false
		}
	}
	return req, true
}

func requestErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRequestNotPending),
		errors.Is(err, domain.ErrRequestNotApproved),
		errors.Is(err, domain.ErrNegativeStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotRequester):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrApprovalOutOfRange),
		errors.Is(err, domain.ErrPartialNeedsNotes),
		errors.Is(err, domain.ErrRejectNeedsReason):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

func stockRequestPayload(req domain.StockRequest) map[string]any {
	return map[string]any{
		"id":                 req.ID,
		"code":               req.Code,
		"requestingBranchId": req.RequestingBranchID,
		"targetBranchId":     req.TargetBranchID,
		"itemId":             req.ItemID,
		"itemName":           req.ItemName,
		"requestedQuantity":  req.RequestedQuantity,
		"approvedQuantity":   req.ApprovedQuantity,
		"status":             string(req.Status),
		"urgency":            string(req.Urgency),
		"notes":              req.Notes,
		"rejectionReason":    req.RejectionReason,
		"requestedBy":        req.RequestedByUserID,
		"decidedBy":          req.DecidedByUserID,
		"createdAt":          req.CreatedAt.Format(time.RFC3339),
		"updatedAt":          req.UpdatedAt.Format(time.RFC3339),
	}
}
