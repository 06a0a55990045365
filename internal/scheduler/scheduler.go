// Package scheduler books, cancels and reschedules appointments while
// keeping each (doctor, date, time) slot held by at most one live booking.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"patient-care-api/internal/events"
	"patient-care-api/internal/metrics"
	"patient-care-api/internal/model"
	"patient-care-api/internal/store"
)

var (
	ErrMissingFields             = errors.New("please provide all fields")
	ErrInvalidDate               = errors.New("date must be YYYY-MM-DD")
	ErrInvalidID                 = errors.New("invalid appointment id")
	ErrInvalidStatus             = errors.New("invalid appointment status")
	ErrSlotConflict              = errors.New("slot already booked for this doctor")
	ErrNotFound                  = errors.New("appointment not found")
	ErrUnauthorized              = errors.New("not the owner of this appointment")
	ErrAlreadyCancelled          = errors.New("appointment already cancelled")
	ErrCannotRescheduleCancelled = errors.New("cannot reschedule a cancelled appointment")
)

// Repository is the persistence the scheduler needs.
type Repository interface {
	InsertAppointment(ctx context.Context, a *model.Appointment) error
	SlotTaken(ctx context.Context, doctor string, date model.Date, time, excludeID string) (bool, error)
	AppointmentByID(ctx context.Context, id string) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
	AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error)
	UpcomingAppointments(ctx context.Context, userID string, today model.Date) ([]model.Appointment, error)
	PastAppointments(ctx context.Context, userID string, today model.Date) ([]model.Appointment, error)
}

type Service struct {
	repo Repository
	pub  events.Publisher
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now; "today" is derived from it per call.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func New(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, pub: events.Nop{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

type BookRequest struct {
	DoctorName string `json:"doctorName"`
	DoctorSpec string `json:"doctorSpec"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

func (s *Service) Book(ctx context.Context, userID string, req BookRequest) (*model.Appointment, error) {
	doctor := strings.TrimSpace(req.DoctorName)
	tm := strings.TrimSpace(req.Time)
	if doctor == "" || strings.TrimSpace(req.Date) == "" || tm == "" {
		metrics.RecordAppointment("book", "rejected")
		return nil, ErrMissingFields
	}
	date, err := model.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		metrics.RecordAppointment("book", "rejected")
		return nil, ErrInvalidDate
	}

	// app-level check; the slot index is the backstop for concurrent bookings
	if taken, err := s.repo.SlotTaken(ctx, doctor, date, tm, ""); err != nil {
		metrics.RecordAppointment("book", "error")
		return nil, err
	} else if taken {
		metrics.RecordAppointment("book", "conflict")
		return nil, ErrSlotConflict
	}

	spec := strings.TrimSpace(req.DoctorSpec)
	if spec == "" {
		spec = model.DefaultDoctorSpec
	}
	apt := &model.Appointment{
		ID:                uuid.New().String(),
		UserID:            userID,
		DoctorName:        doctor,
		DoctorSpec:        spec,
		Date:              date,
		Time:              tm,
		Status:            model.StatusScheduled,
		RescheduleHistory: []model.RescheduleEntry{},
	}
	if err := s.repo.InsertAppointment(ctx, apt); err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			// lost the race to a concurrent booking
			metrics.RecordAppointment("book", "conflict")
			return nil, ErrSlotConflict
		}
		metrics.RecordAppointment("book", "error")
		return nil, err
	}

	metrics.RecordAppointment("book", "ok")
	log.Ctx(ctx).Info().Str("appointment_id", apt.ID).Str("doctor", doctor).
		Str("date", date.String()).Str("time", tm).Msg("appointment booked")
	events.Emit(ctx, s.pub, events.New(events.AppointmentBooked, userID, map[string]any{
		"appointmentId": apt.ID, "doctorName": doctor, "date": date, "time": tm,
	}))
	return apt, nil
}

// owned loads the appointment and checks it belongs to userID.
func (s *Service) owned(ctx context.Context, userID, id string) (*model.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	apt, err := s.repo.AppointmentByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if apt.UserID != userID {
		return nil, ErrUnauthorized
	}
	return apt, nil
}

func (s *Service) Cancel(ctx context.Context, userID, id string) (*model.Appointment, error) {
	apt, err := s.owned(ctx, userID, id)
	if err != nil {
		metrics.RecordAppointment("cancel", outcome(err))
		return nil, err
	}
	if apt.Status == model.StatusCancelled {
		metrics.RecordAppointment("cancel", "rejected")
		return nil, ErrAlreadyCancelled
	}

	now := s.now()
	apt.Status = model.StatusCancelled
	apt.CancelledAt = &now
	if err := s.repo.UpdateAppointment(ctx, apt); err != nil {
		metrics.RecordAppointment("cancel", "error")
		return nil, err
	}

	metrics.RecordAppointment("cancel", "ok")
	log.Ctx(ctx).Info().Str("appointment_id", apt.ID).Msg("appointment cancelled")
	events.Emit(ctx, s.pub, events.New(events.AppointmentCancelled, userID, map[string]any{
		"appointmentId": apt.ID, "doctorName": apt.DoctorName, "date": apt.Date, "time": apt.Time,
	}))
	return apt, nil
}

func (s *Service) Reschedule(ctx context.Context, userID, id, newDate, newTime string) (*model.Appointment, error) {
	newTime = strings.TrimSpace(newTime)
	if strings.TrimSpace(newDate) == "" || newTime == "" {
		metrics.RecordAppointment("reschedule", "rejected")
		return nil, ErrMissingFields
	}
	date, err := model.ParseDate(strings.TrimSpace(newDate))
	if err != nil {
		metrics.RecordAppointment("reschedule", "rejected")
		return nil, ErrInvalidDate
	}

	apt, err := s.owned(ctx, userID, id)
	if err != nil {
		metrics.RecordAppointment("reschedule", outcome(err))
		return nil, err
	}
	if apt.Status == model.StatusCancelled {
		metrics.RecordAppointment("reschedule", "rejected")
		return nil, ErrCannotRescheduleCancelled
	}

	// exclude self so moving within the same slot isn't a conflict
	if taken, err := s.repo.SlotTaken(ctx, apt.DoctorName, date, newTime, apt.ID); err != nil {
		metrics.RecordAppointment("reschedule", "error")
		return nil, err
	} else if taken {
		metrics.RecordAppointment("reschedule", "conflict")
		return nil, ErrSlotConflict
	}

	prevDate, prevTime := apt.Date, apt.Time
	apt.RescheduleHistory = append(apt.RescheduleHistory, model.RescheduleEntry{
		Date:      prevDate,
		Time:      prevTime,
		ChangedAt: s.now(),
	})
	apt.Date = date
	apt.Time = newTime
	apt.Status = model.StatusRescheduled

	if err := s.repo.UpdateAppointment(ctx, apt); err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			metrics.RecordAppointment("reschedule", "conflict")
			return nil, ErrSlotConflict
		}
		metrics.RecordAppointment("reschedule", "error")
		return nil, err
	}

	metrics.RecordAppointment("reschedule", "ok")
	log.Ctx(ctx).Info().Str("appointment_id", apt.ID).
		Str("from", prevDate.String()+" "+prevTime).
		Str("to", date.String()+" "+newTime).Msg("appointment rescheduled")
	events.Emit(ctx, s.pub, events.New(events.AppointmentRescheduled, userID, map[string]any{
		"appointmentId": apt.ID, "previousDate": prevDate, "previousTime": prevTime,
		"date": date, "time": newTime,
	}))
	return apt, nil
}

// SetStatus is the admin transition, typically to Completed. Reviving a
// cancelled appointment has to win its slot back.
func (s *Service) SetStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	apt, err := s.repo.AppointmentByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if apt.Status == status {
		return apt, nil
	}

	prev := apt.Status
	if prev == model.StatusCancelled {
		taken, err := s.repo.SlotTaken(ctx, apt.DoctorName, apt.Date, apt.Time, apt.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			metrics.RecordAppointment("set_status", "conflict")
			return nil, ErrSlotConflict
		}
		apt.CancelledAt = nil
	}
	if status == model.StatusCancelled {
		now := s.now()
		apt.CancelledAt = &now
	}
	apt.Status = status

	if err := s.repo.UpdateAppointment(ctx, apt); err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			metrics.RecordAppointment("set_status", "conflict")
			return nil, ErrSlotConflict
		}
		metrics.RecordAppointment("set_status", "error")
		return nil, err
	}

	metrics.RecordAppointment("set_status", "ok")
	events.Emit(ctx, s.pub, events.New(events.AppointmentStatusChanged, apt.UserID, map[string]any{
		"appointmentId": apt.ID, "from": prev, "to": status,
	}))
	return apt, nil
}

func (s *Service) today() model.Date {
	return model.DateOf(s.now())
}

func (s *Service) ListUpcoming(ctx context.Context, userID string) ([]model.Appointment, error) {
	return s.repo.UpcomingAppointments(ctx, userID, s.today())
}

func (s *Service) ListHistory(ctx context.Context, userID string) ([]model.Appointment, error) {
	return s.repo.PastAppointments(ctx, userID, s.today())
}

func (s *Service) ListAll(ctx context.Context, userID string) ([]model.Appointment, error) {
	return s.repo.AppointmentsByUser(ctx, userID)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthorized):
		return "rejected"
	default:
		return "error"
	}
}
