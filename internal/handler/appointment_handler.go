package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"patient-care-api/internal/middleware"
	"patient-care-api/internal/model"
	"patient-care-api/internal/scheduler"
)

func (h *Handler) bookAppointment(w http.ResponseWriter, r *http.Request) {
	var req scheduler.BookRequest
	if err := decode(r, w, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	apt, err := h.scheduler.Book(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, apt)
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.scheduler.ListAll)
}

func (h *Handler) upcomingAppointments(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.scheduler.ListUpcoming)
}

func (h *Handler) appointmentHistory(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.scheduler.ListHistory)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID string) ([]model.Appointment, error)) {
	apts, err := list(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if apts == nil {
		apts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, apts)
}

func (h *Handler) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	apt, err := h.scheduler.Cancel(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (h *Handler) rescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := decode(r, w, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	apt, err := h.scheduler.Reschedule(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req.Date, req.Time)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}
