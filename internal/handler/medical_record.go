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

// MedicalRecordHandler serves visit records and vaccinations per pet.
// Owners read their own pets' history; clinic staff write it.
type MedicalRecordHandler struct {
	Repo  repository.MedicalRecordRepository
	Pets  repository.PetRepository
	Audit *service.AuditService
}

func (h MedicalRecordHandler) RegisterRoutes(r chi.Router) {
	r.Get("/pets/{petID}/records", h.list)
	r.Get("/pets/{petID}/vaccinations", h.listVaccinations)
}

func (h MedicalRecordHandler) RegisterStaffRoutes(r chi.Router) {
	r.Post("/pets/{petID}/records", h.create)
	r.Put("/records/{id}", h.update)
	r.Delete("/records/{id}", h.remove)
	r.Post("/pets/{petID}/vaccinations", h.createVaccination)
}

func (h MedicalRecordHandler) list(w http.ResponseWriter, r *http.Request) {
	pet, ok := h.loadPet(w, r)
	if !ok {
		return
	}
	items, err := h.Repo.ListByPet(r.Context(), pet.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, rec := range items {
		resp = append(resp, recordPayload(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h MedicalRecordHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	pet, ok := h.loadPet(w, r)
	if !ok {
		return
	}
	req, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}
	rec, err := h.Repo.Create(r.Context(), repository.CreateMedicalRecordInput{
		PetID:     pet.ID,
		VisitDate: req.visitDate,
		Findings:  req.Findings,
		Diagnosis: req.Diagnosis,
		Treatment: req.Treatment,
		VetName:   req.VetName,
		BranchID:  req.BranchID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.Audit != nil {
		h.Audit.Record(service.AuditEntry{
			ActorID:    &user.ID,
			ActorName:  user.Name,
			Action:     domain.ActionCreate,
			EntityType: "medical_record",
			EntityID:   rec.ID,
			After:      rec,
			Summary:    "visit record added for " + pet.Name,
			Severity:   domain.SeverityInfo,
		})
		h.Audit.Notify(service.NotificationEntry{
			UserID:  pet.OwnerUserID,
			Title:   "New medical record",
			Message: "A visit record was added for " + pet.Name,
			Type:    domain.NotificationInfo,
		})
	}
	writeJSON(w, http.StatusCreated, recordPayload(*rec))
}

func (h MedicalRecordHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	req, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}
	rec, err := h.Repo.Update(r.Context(), id, repository.CreateMedicalRecordInput{
		VisitDate: req.visitDate,
		Findings:  req.Findings,
		Diagnosis: req.Diagnosis,
		Treatment: req.Treatment,
		VetName:   req.VetName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recordPayload(*rec))
}

func (h MedicalRecordHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h MedicalRecordHandler) listVaccinations(w http.ResponseWriter, r *http.Request) {
	pet, ok := h.loadPet(w, r)
	if !ok {
		return
	}
	items, err := h.Repo.ListVaccinations(r.Context(), pet.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, v := range items {
		resp = append(resp, vaccinationPayload(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h MedicalRecordHandler) createVaccination(w http.ResponseWriter, r *http.Request) {
	pet, ok := h.loadPet(w, r)
	if !ok {
		return
	}
	var req struct {
		VaccineName string `json:"vaccineName"`
		GivenAt     string `json:"givenAt"`
		NextDueAt   string `json:"nextDueAt"`
		VetName     string `json:"vetName"`
		Notes       string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.VaccineName == "" {
		writeError(w, http.StatusBadRequest, "vaccineName is required")
		return
	}
	givenAt := time.Now()
	if req.GivenAt != "" {
		t, err := time.Parse(dateLayout, req.GivenAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "givenAt must be YYYY-MM-DD")
			return
		}
		givenAt = t
	}
	var nextDue *time.Time
	if req.NextDueAt != "" {
		t, err := time.Parse(dateLayout, req.NextDueAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "nextDueAt must be YYYY-MM-DD")
			return
		}
		nextDue = &t
	}
	v, err := h.Repo.CreateVaccination(r.Context(), repository.CreateVaccinationInput{
		PetID:       pet.ID,
		VaccineName: req.VaccineName,
		GivenAt:     givenAt,
		NextDueAt:   nextDue,
		VetName:     req.VetName,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, vaccinationPayload(*v))
}

func (h MedicalRecordHandler) loadPet(w http.ResponseWriter, r *http.Request) (*domain.Pet, bool) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	petID, err := strconv.ParseInt(chi.URLParam(r, "petID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid petID")
		return nil, false
	}
	pet, err := h.Pets.GetByID(r.Context(), petID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pet not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if user.Role == domain.RolePetOwner && pet.OwnerUserID != user.ID {
		writeError(w, http.StatusNotFound, "pet not found")
		return nil, false
	}
	return pet, true
}

type recordRequest struct {
	VisitDate string `json:"visitDate"`
	Findings  string `json:"findings"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
	VetName   string `json:"vetName"`
	BranchID  *int64 `json:"branchId"`

	visitDate time.Time
}

func decodeRecordRequest(w http.ResponseWriter, r *http.Request) (*recordRequest, bool) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return nil, false
	}
	req.visitDate = time.Now()
	if req.VisitDate != "" {
		t, err := time.Parse(dateLayout, req.VisitDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "visitDate must be YYYY-MM-DD")
			return nil, false
		}
		req.visitDate = t
	}
	return &req, true
}

func recordPayload(rec domain.MedicalRecord) map[string]any {
	return map[string]any{
		"id":        rec.ID,
		"petId":     rec.PetID,
		"visitDate": rec.VisitDate.Format(dateLayout),
		"findings":  rec.Findings,
		"diagnosis": rec.Diagnosis,
		"treatment": rec.Treatment,
		"vetName":   rec.VetName,
		"branchId":  rec.BranchID,
	}
}

func vaccinationPayload(v domain.Vaccination) map[string]any {
	payload := map[string]any{
		"id":          v.ID,
		"petId":       v.PetID,
		"vaccineName": v.VaccineName,
		"givenAt":     v.GivenAt.Format(dateLayout),
		"vetName":     v.VetName,
		"notes":       v.Notes,
	}
	if v.NextDueAt != nil {
		payload["nextDueAt"] = v.NextDueAt.Format(dateLayout)
	}
	return payload
}
