package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/server/authctx"
)

type PreferencesHandler struct {
	Repo repository.PreferencesRepository
}

func (h PreferencesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/preferences", h.get)
	r.Put("/preferences", h.save)
}

func (h PreferencesHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.Repo.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preferencesPayload(p))
}

func (h PreferencesHandler) save(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		EmailNotifications  bool   `json:"emailNotifications"`
		InAppNotifications  bool   `json:"inAppNotifications"`
		AppointmentReminder bool   `json:"appointmentReminder"`
		LowStockAlerts      bool   `json:"lowStockAlerts"`
		Language            string `json:"language"`
		Timezone            string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if req.Timezone == "" {
		req.Timezone = "Asia/Manila"
	}
	p, err := h.Repo.Save(r.Context(), repository.Preferences{
		UserID:              user.ID,
		EmailNotifications:  req.EmailNotifications,
		InAppNotifications:  req.InAppNotifications,
		AppointmentReminder: req.AppointmentReminder,
		LowStockAlerts:      req.LowStockAlerts,
		Language:            req.Language,
		Timezone:            req.Timezone,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preferencesPayload(p))
}

func preferencesPayload(p repository.Preferences) map[string]any {
	return map[string]any{
		"emailNotifications":  p.EmailNotifications,
		"inAppNotifications":  p.InAppNotifications,
		"appointmentReminder": p.AppointmentReminder,
		"lowStockAlerts":      p.LowStockAlerts,
		"language":            p.Language,
		"timezone":            p.Timezone,
	}
}
