package handler

import (
	"net/http"

	"patient-care-api/internal/account"
	"patient-care-api/internal/middleware"
	"patient-care-api/internal/model"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req account.RegisterRequest
	if err := decode(r, w, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sess, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, w, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sess, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.accounts.Profile(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) updateVitals(w http.ResponseWriter, r *http.Request) {
	var v model.Vitals
	if err := decode(r, w, &v); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.accounts.UpdateVitals(r.Context(), middleware.UserID(r.Context()), v)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
