package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"patient-care-api/internal/apperr"
	"patient-care-api/internal/insight"
	"patient-care-api/internal/middleware"
	"patient-care-api/internal/model"
)

func (h *Handler) getInsights(w http.ResponseWriter, r *http.Request) {
	res, err := h.insights.Compute(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		if !errors.Is(err, insight.ErrUserNotFound) {
			err = &apperr.AppError{
				Err:        err,
				Message:    "Error calculating health insights",
				Code:       "INTERNAL_ERROR",
				HTTPStatus: http.StatusInternalServerError,
			}
		}
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type statusRequest struct {
	Status model.AppointmentStatus `json:"status"`
}

func (h *Handler) adminUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, w, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	apt, err := h.scheduler.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}
