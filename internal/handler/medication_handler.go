package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"patient-care-api/internal/medication"
	"patient-care-api/internal/middleware"
	"patient-care-api/internal/model"
)

func (h *Handler) listMedications(w http.ResponseWriter, r *http.Request) {
	meds, err := h.meds.ListActive(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if meds == nil {
		meds = []model.Medication{}
	}
	writeJSON(w, http.StatusOK, meds)
}

func (h *Handler) addMedication(w http.ResponseWriter, r *http.Request) {
	var req medication.AddRequest
	if err := decode(r, w, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.meds.Add(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) logMedication(w http.ResponseWriter, r *http.Request) {
	m, err := h.meds.LogTaken(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMedication(w http.ResponseWriter, r *http.Request) {
	if err := h.meds.Deactivate(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Medication removed"})
}
