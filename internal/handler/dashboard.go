package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/server/authctx"
)

type DashboardHandler struct {
	Repo     repository.DashboardRepository
	Staff    repository.StaffAssignmentRepository
	Branches repository.BranchRepository
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.summary)
	r.Get("/dashboard/pets-by-species", h.petsBySpecies)
}

func (h DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var branchID *int64
	if user.Role.StaffRole() {
		scope, err := resolveScope(r.Context(), *user, h.Staff, h.Branches)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if scope.Resolved && !scope.All {
			branchID = &scope.BranchID
		}
	}

	s, err := h.Repo.Summary(r.Context(), user.ID, branchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalPets":           s.TotalPets,
		"appointmentsToday":   s.AppointmentsToday,
		"pendingRequests":     s.PendingRequests,
		"lowStockItems":       s.LowStockItems,
		"outstandingBalance":  s.OutstandingBalance,
		"unreadNotifications": s.UnreadNotifications,
	})
}

func (h DashboardHandler) petsBySpecies(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.PetsBySpecies(r.Context(), 10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, sc := range items {
		resp = append(resp, map[string]any{
			"species": sc.Species,
			"count":   sc.Count,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
