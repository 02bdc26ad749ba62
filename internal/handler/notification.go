package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/server/authctx"
)

type NotificationHandler struct {
	Repo repository.NotificationRepository
}

func (h NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.list)
	r.Get("/notifications/unread-count", h.unreadCount)
	r.Put("/notifications/{id}/read", h.markRead)
	r.Put("/notifications/read-all", h.markAllRead)
	r.Delete("/notifications", h.deleteAll)
}

func (h NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := 200
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, err := h.Repo.List(r.Context(), user.ID, limit, unreadOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, n := range items {
		resp = append(resp, notificationPayload(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h NotificationHandler) unreadCount(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	count, err := h.Repo.UnreadCount(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (h NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.MarkRead(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	count, err := h.Repo.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": count})
}

func (h NotificationHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	count, err := h.Repo.DeleteAll(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": count})
}

func notificationPayload(n domain.Notification) map[string]any {
	payload := map[string]any{
		"id":        n.ID,
		"title":     n.Title,
		"message":   n.Message,
		"type":      string(n.Type),
		"priority":  string(n.Priority),
		"timestamp": n.CreatedAt.Format(time.RFC3339),
		"read":      n.ReadAt != nil,
	}
	if n.ReadAt != nil {
		payload["readAt"] = n.ReadAt.Format(time.RFC3339)
	}
	return payload
}
