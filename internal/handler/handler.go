// Package handler is the JSON HTTP surface of the API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"patient-care-api/internal/account"
	"patient-care-api/internal/apperr"
	"patient-care-api/internal/insight"
	"patient-care-api/internal/medication"
	"patient-care-api/internal/metrics"
	"patient-care-api/internal/middleware"
	"patient-care-api/internal/model"
	"patient-care-api/internal/scheduler"
)

const maxBody = 1 << 20

// StatsSource backs the admin dashboard.
type StatsSource interface {
	Stats(ctx context.Context) (model.Stats, error)
}

// Pinger reports backing store readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	accounts  *account.Service
	scheduler *scheduler.Service
	insights  *insight.Engine
	meds      *medication.Service
	stats     StatsSource
	db        Pinger
	dev       bool
}

type Deps struct {
	Accounts    *account.Service
	Scheduler   *scheduler.Service
	Insights    *insight.Engine
	Medications *medication.Service
	Stats       StatsSource
	DB          Pinger
	// Development exposes internal error detail on 5xx responses.
	Development bool
}

func New(d Deps) *Handler {
	return &Handler{
		accounts:  d.Accounts,
		scheduler: d.Scheduler,
		insights:  d.Insights,
		meds:      d.Medications,
		stats:     d.Stats,
		db:        d.DB,
		dev:       d.Development,
	}
}

type RouterOptions struct {
	Secret         string
	AuthLimiter    *middleware.RateLimiter
	RequestTimeout time.Duration
}

func (h *Handler) Routes(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", h.health)
	r.Get("/ready", h.ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if opts.AuthLimiter != nil {
				r.Use(opts.AuthLimiter.Middleware)
			}
			r.Post("/signup", h.signup)
			r.Post("/login", h.login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(opts.Secret))

			r.Get("/users/me", h.profile)
			r.Patch("/users/me/vitals", h.updateVitals)

			r.Route("/appointments", func(r chi.Router) {
				r.Post("/book", h.bookAppointment)
				r.Get("/", h.listAppointments)
				r.Get("/upcoming", h.upcomingAppointments)
				r.Get("/history", h.appointmentHistory)
				r.Patch("/{id}/cancel", h.cancelAppointment)
				r.Patch("/{id}/reschedule", h.rescheduleAppointment)
			})

			r.Get("/insights", h.getInsights)

			r.Route("/medications", func(r chi.Router) {
				r.Get("/", h.listMedications)
				r.Post("/", h.addMedication)
				r.Patch("/{id}/log", h.logMedication)
				r.Delete("/{id}", h.deleteMedication)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Get("/stats", h.adminStats)
				r.Patch("/appointments/{id}", h.adminUpdateAppointment)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperr.Write(w, apperr.NotFound("Not found", nil), false)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"message": "Database connection is not ready. Please try again in a moment.",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := toAppError(err)
	if ae.HTTPStatus >= 500 {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	apperr.Write(w, ae, h.dev)
}

func decode(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("Invalid request body", err)
	}
	return nil
}

// toAppError maps service sentinels to status codes and client messages.
// Anything else keeps its own AppError or becomes a 500.
func toAppError(err error) *apperr.AppError {
	switch {
	case errors.Is(err, scheduler.ErrMissingFields):
		return apperr.BadRequest("Please provide all fields", err)
	case errors.Is(err, scheduler.ErrInvalidDate):
		return apperr.BadRequest("Date must be in YYYY-MM-DD format", err)
	case errors.Is(err, scheduler.ErrInvalidID):
		return apperr.BadRequest("Invalid appointment id", err)
	case errors.Is(err, scheduler.ErrInvalidStatus):
		return apperr.BadRequest("Invalid appointment status", err)
	case errors.Is(err, scheduler.ErrSlotConflict):
		return apperr.BadRequest("This slot is already booked for this doctor", err)
	case errors.Is(err, scheduler.ErrAlreadyCancelled):
		return apperr.BadRequest("Appointment already cancelled", err)
	case errors.Is(err, scheduler.ErrCannotRescheduleCancelled):
		return apperr.BadRequest("Cannot reschedule a cancelled appointment", err)
	case errors.Is(err, scheduler.ErrUnauthorized):
		return apperr.Unauthorized("Not authorized", err)
	case errors.Is(err, scheduler.ErrNotFound):
		return apperr.NotFound("Appointment not found", err)

	case errors.Is(err, medication.ErrMissingFields),
		errors.Is(err, medication.ErrInvalidFrequency),
		errors.Is(err, medication.ErrInvalidDate):
		return apperr.BadRequest(capitalize(err.Error()), err)
	case errors.Is(err, medication.ErrAlreadyLogged):
		return apperr.BadRequest("Already logged for today", err)
	case errors.Is(err, medication.ErrNotFound):
		return apperr.NotFound("Medication not found", err)

	case errors.Is(err, account.ErrMissingFields),
		errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrWeakPassword),
		errors.Is(err, account.ErrInvalidVitals):
		return apperr.BadRequest(capitalize(err.Error()), err)
	case errors.Is(err, account.ErrEmailTaken):
		return apperr.BadRequest("User already exists", err)
	case errors.Is(err, account.ErrInvalidCredentials):
		return apperr.Unauthorized("Invalid email or password", err)
	case errors.Is(err, account.ErrNotFound), errors.Is(err, insight.ErrUserNotFound):
		return apperr.NotFound("User not found", err)
	}
	return apperr.As(err)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
