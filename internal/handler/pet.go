package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/config"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/server/authctx"
)

type PetHandler struct {
	Repo         repository.PetRepository
	Appointments repository.AppointmentRepository
	Config       config.Config
}

func (h PetHandler) RegisterRoutes(r chi.Router) {
	r.Get("/pets", h.list)
	r.Post("/pets", h.create)
	r.Get("/pets/{id}", h.get)
	r.Put("/pets/{id}", h.update)
	r.Delete("/pets/{id}", h.remove)
	r.Post("/pets/{id}/photo", h.uploadPhoto)
}

// Pet owners see their own pets; clinic roles see the whole registry.
func (h PetHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var (
		items []domain.Pet
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
	for _, p := range items {
		resp = append(resp, petPayload(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h PetHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Species == "" {
		writeError(w, http.StatusBadRequest, "name and species are required")
		return
	}
	p, err := h.Repo.Save(r.Context(), domain.Pet{
		OwnerUserID: user.ID,
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		AgeMonths:   req.AgeMonths,
		WeightKg:    req.WeightKg,
		HealthNotes: req.HealthNotes,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, petPayload(*p))
}

func (h PetHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, ok := h.loadOwned(w, r, *user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, petPayload(*p))
}

func (h PetHandler) update(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, ok := h.loadOwned(w, r, *user)
	if !ok {
		return
	}
	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Species != "" {
		p.Species = req.Species
	}
	p.Breed = req.Breed
	p.AgeMonths = req.AgeMonths
	p.WeightKg = req.WeightKg
	p.HealthNotes = req.HealthNotes

	saved, err := h.Repo.Save(r.Context(), *p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, petPayload(*saved))
}

func (h PetHandler) remove(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, ok := h.loadOwned(w, r, *user)
	if !ok {
		return
	}
	active, err := h.Appointments.HasActive(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if active {
		writeError(w, http.StatusConflict, "pet has an active appointment")
		return
	}
	if err := h.Repo.Delete(r.Context(), p.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h PetHandler) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, ok := h.loadOwned(w, r, *user)
	if !ok {
		return
	}
	path, err := saveUploadedImage(r, "file", h.Config.UploadDir, h.Config.MaxUploadBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	url := h.Config.PublicBaseURL + path
	if err := h.Repo.UpdatePhotoURL(r.Context(), p.ID, url); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"photoUrl": url})
}

// loadOwned fetches the pet and enforces ownership for pet-owner callers.
// Clinic roles may touch any pet.
func (h PetHandler) loadOwned(w http.ResponseWriter, r *http.Request, user authctx.CurrentUser) (*domain.Pet, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pet not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if user.Role == domain.RolePetOwner && p.OwnerUserID != user.ID {
		writeError(w, http.StatusNotFound, "pet not found")
		return nil, false
	}
	return p, true
}

type petRequest struct {
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Breed       string   `json:"breed"`
	AgeMonths   *int     `json:"ageMonths"`
	WeightKg    *float64 `json:"weightKg"`
	HealthNotes string   `json:"healthNotes"`
}

func petPayload(p domain.Pet) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"ownerUserId": p.OwnerUserID,
		"name":        p.Name,
		"species":     p.Species,
		"breed":       p.Breed,
		"ageMonths":   p.AgeMonths,
		"weightKg":    p.WeightKg,
		"healthNotes": p.HealthNotes,
		"photoUrl":    p.PhotoURL,
	}
}
