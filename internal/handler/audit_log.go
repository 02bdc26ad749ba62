package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
)

// AuditLogHandler exposes the audit trail to the clinic owner.
type AuditLogHandler struct {
	Repo repository.AuditLogRepository
}

func (h AuditLogHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/audit-logs", h.list)
}

func (h AuditLogHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := auditFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, l := range items {
		resp = append(resp, auditLogPayload(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

func auditFilterFromQuery(r *http.Request) (repository.AuditLogFilter, error) {
	filter := repository.AuditLogFilter{
		EntityType: r.URL.Query().Get("entityType"),
		Action:     r.URL.Query().Get("action"),
	}
	start, err := parseDateQuery(r, "startDate")
	if err != nil {
		return filter, err
	}
	end, err := parseDateQuery(r, "endDate")
	if err != nil {
		return filter, err
	}
	filter.Start = start
	filter.End = end
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}
	return filter, nil
}

func auditLogPayload(l domain.AuditLog) map[string]any {
	payload := map[string]any{
		"id":         l.ID,
		"actorId":    l.ActorID,
		"actorName":  l.ActorName,
		"action":     string(l.Action),
		"entityType": l.EntityType,
		"entityId":   l.EntityID,
		"entityName": l.EntityName,
		"summary":    l.Summary,
		"severity":   string(l.Severity),
		"loggedAt":   l.LoggedAt.Format(time.RFC3339),
	}
	if len(l.Before) > 0 {
		payload["before"] = json.RawMessage(l.Before)
	}
	if len(l.After) > 0 {
		payload["after"] = json.RawMessage(l.After)
	}
	return payload
}
