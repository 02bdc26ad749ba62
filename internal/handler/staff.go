package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/service"
)

// StaffHandler provisions staff accounts and manages branch assignments.
// Clinic-owner only.
type StaffHandler struct {
	Auth        *service.AuthService
	Assignments repository.StaffAssignmentRepository
}

func (h StaffHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/staff", h.list)
	r.Post("/staff", h.provision)
	r.Put("/staff/{userID}/branch", h.assign)
	r.Delete("/staff/{userID}/branch", h.unassign)
}

func (h StaffHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Assignments.List(r.Context(), 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, a := range items {
		resp = append(resp, map[string]any{
			"id":       a.ID,
			"userId":   a.UserID,
			"branchId": a.BranchID,
			"role":     string(a.Role),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h StaffHandler) provision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
		BranchID *int64 `json:"branchId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.Auth.ProvisionStaff(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    strings.ToLower(req.Email),
		Password: req.Password,
		Phone:    req.Phone,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		if errors.Is(err, service.ErrRoleNotAllowed) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if user.Role.StaffRole() {
		if _, err := h.Assignments.Assign(r.Context(), user.ID, req.BranchID, user.Role); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusCreated, userPayload(*user))
}

func (h StaffHandler) assign(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userID")
		return
	}
	var req struct {
		BranchID *int64 `json:"branchId"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	role := domain.UserRole(req.Role)
	if !role.StaffRole() {
		writeError(w, http.StatusBadRequest, "role must be main_branch or sub_branch")
		return
	}
	a, err := h.Assignments.Assign(r.Context(), userID, req.BranchID, role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       a.ID,
		"userId":   a.UserID,
		"branchId": a.BranchID,
		"role":     string(a.Role),
	})
}

func (h StaffHandler) unassign(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userID")
		return
	}
	if err := h.Assignments.Remove(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
