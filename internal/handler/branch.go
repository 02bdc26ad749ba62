package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
)

type BranchHandler struct {
	Repo repository.BranchRepository
}

func (h BranchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/branches", h.list)
	r.Get("/branches/{id}", h.get)
}

func (h BranchHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Post("/branches", h.create)
}

func (h BranchHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, b := range items {
		resp = append(resp, branchPayload(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h BranchHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	b, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, branchPayload(*b))
}

func (h BranchHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	typ := domain.BranchType(req.Type)
	if typ != domain.BranchMain && typ != domain.BranchSub {
		writeError(w, http.StatusBadRequest, "type must be main or sub")
		return
	}
	b, err := h.Repo.Create(r.Context(), req.Name, typ, req.Address, req.Phone)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, branchPayload(*b))
}

func branchPayload(b domain.Branch) map[string]any {
	return map[string]any{
		"id":      b.ID,
		"name":    b.Name,
		"type":    string(b.Type),
		"address": b.Address,
		"phone":   b.Phone,
	}
}
