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

type AppointmentHandler struct {
	Repo     repository.AppointmentRepository
	Pets     repository.PetRepository
	Staff    repository.StaffAssignmentRepository
	Branches repository.BranchRepository
	Audit    *service.AuditService
}

func (h AppointmentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/appointments", h.list)
	r.Post("/appointments", h.create)
	r.Get("/appointments/{id}", h.get)
	r.Put("/appointments/{id}/reschedule", h.reschedule)
	r.Put("/appointments/{id}/cancel", h.cancel)
}

func (h AppointmentHandler) RegisterStaffRoutes(r chi.Router) {
	r.Put("/appointments/{id}/status", h.updateStatus)
}

func (h AppointmentHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var (
		items []domain.Appointment
		err   error
	)
	switch {
	case user.Role == domain.RolePetOwner:
		items, err = h.Repo.ListByOwner(r.Context(), user.ID)
	case user.Role == domain.RoleVetOwner:
		items, err = h.Repo.List(r.Context(), 500)
	default:
		scope, scopeErr := resolveScope(r.Context(), *user, h.Staff, h.Branches)
		if scopeErr != nil {
			writeError(w, http.StatusInternalServerError, scopeErr.Error())
			return
		}
		if !scope.Resolved {
			items = []domain.Appointment{}
		} else {
			items, err = h.Repo.ListByBranch(r.Context(), scope.BranchID)
		}
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]map[string]any, 0, len(items))
	for _, a := range items {
		resp = append(resp, appointmentPayload(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h AppointmentHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		PetID       int64  `json:"petId"`
		BranchID    int64  `json:"branchId"`
		ScheduledAt string `json:"scheduledAt"`
		Reason      string `json:"reason"`
		CostEst     int64  `json:"costEstimate"`
		Notes       string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "scheduledAt must be RFC3339")
		return
	}
	if at.Before(time.Now()) {
		writeError(w, http.StatusBadRequest, "scheduledAt must be in the future")
		return
	}

	pet, err := h.Pets.GetByID(r.Context(), req.PetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user.Role == domain.RolePetOwner && pet.OwnerUserID != user.ID {
		writeError(w, http.StatusNotFound, "pet not found")
		return
	}

	busy, err := h.Repo.HasActive(r.Context(), pet.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if busy {
		writeError(w, http.StatusConflict, "pet already has an active appointment")
		return
	}

	a, err := h.Repo.Create(r.Context(), repository.CreateAppointmentInput{
		PetID:       pet.ID,
		OwnerUserID: pet.OwnerUserID,
		BranchID:    req.BranchID,
		ScheduledAt: at,
		Reason:      req.Reason,
		CostEst:     req.CostEst,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.record(*user, domain.ActionCreate, a, "appointment booked")
	writeJSON(w, http.StatusCreated, appointmentPayload(*a))
}

func (h AppointmentHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, ok := h.load(w, r, *user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, appointmentPayload(*a))
}

func (h AppointmentHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, ok := h.load(w, r, *user)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	next := domain.AppointmentStatus(req.Status)
	if !domain.CanTransitionAppointment(a.Status, next) {
		writeError(w, http.StatusConflict, "invalid status transition")
		return
	}
	updated, err := h.Repo.UpdateStatus(r.Context(), a.ID, next)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.record(*user, domain.ActionUpdate, updated, "appointment "+string(next))
	h.notifyOwner(updated, "Appointment "+string(next),
		"Your appointment on "+updated.ScheduledAt.Format("Jan 2 15:04")+" is now "+string(next))
	writeJSON(w, http.StatusOK, appointmentPayload(*updated))
}

func (h AppointmentHandler) reschedule(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, ok := h.load(w, r, *user)
	if !ok {
		return
	}
	if a.Status == domain.AppointmentCompleted || a.Status == domain.AppointmentCancelled {
		writeError(w, http.StatusConflict, "appointment can no longer be rescheduled")
		return
	}
	var req struct {
		ScheduledAt string `json:"scheduledAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "scheduledAt must be RFC3339")
		return
	}
	if at.Before(time.Now()) {
		writeError(w, http.StatusBadRequest, "scheduledAt must be in the future")
		return
	}
	updated, err := h.Repo.Reschedule(r.Context(), a.ID, at)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.record(*user, domain.ActionUpdate, updated, "appointment rescheduled")
	writeJSON(w, http.StatusOK, appointmentPayload(*updated))
}

func (h AppointmentHandler) cancel(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, ok := h.load(w, r, *user)
	if !ok {
		return
	}
	if !domain.CanTransitionAppointment(a.Status, domain.AppointmentCancelled) {
		writeError(w, http.StatusConflict, "appointment can no longer be cancelled")
		return
	}
	updated, err := h.Repo.UpdateStatus(r.Context(), a.ID, domain.AppointmentCancelled)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.record(*user, domain.ActionUpdate, updated, "appointment cancelled")
	writeJSON(w, http.StatusOK, appointmentPayload(*updated))
}

func (h AppointmentHandler) load(w http.ResponseWriter, r *http.Request, user authctx.CurrentUser) (*domain.Appointment, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	a, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "appointment not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if user.Role == domain.RolePetOwner && a.OwnerUserID != user.ID {
		writeError(w, http.StatusNotFound, "appointment not found")
		return nil, false
	}
	return a, true
}

func (h AppointmentHandler) record(user authctx.CurrentUser, action domain.AuditAction, a *domain.Appointment, summary string) {
	if h.Audit == nil {
		return
	}
	h.Audit.Record(service.AuditEntry{
		ActorID:    &user.ID,
		ActorName:  user.Name,
		Action:     action,
		EntityType: "appointment",
		EntityID:   a.ID,
		After:      a,
		Summary:    summary,
		Severity:   domain.SeverityInfo,
	})
}

func (h AppointmentHandler) notifyOwner(a *domain.Appointment, title, message string) {
	if h.Audit == nil {
		return
	}
	h.Audit.Notify(service.NotificationEntry{
		UserID:  a.OwnerUserID,
		Title:   title,
		Message: message,
		Type:    domain.NotificationInfo,
	})
}

func appointmentPayload(a domain.Appointment) map[string]any {
	return map[string]any{
		"id":           a.ID,
		"petId":        a.PetID,
		"ownerUserId":  a.OwnerUserID,
		"branchId":     a.BranchID,
		"scheduledAt":  a.ScheduledAt.Format(time.RFC3339),
		"status":       string(a.Status),
		"reason":       a.Reason,
		"costEstimate": a.CostEst.Amount,
		"notes":        a.Notes,
	}
}
