// Package medication manages a user's medication list and its adherence log.
package medication

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"patient-care-api/internal/metrics"
	"patient-care-api/internal/model"
	"patient-care-api/internal/store"
)

var (
	ErrMissingFields    = errors.New("name, dosage and time are required")
	ErrInvalidFrequency = errors.New("frequency must be Daily, Weekly, Twice a day or As needed")
	ErrInvalidDate      = errors.New("endDate must be YYYY-MM-DD")
	ErrNotFound         = errors.New("medication not found")
	ErrAlreadyLogged    = errors.New("already logged for today")
)

type Repository interface {
	InsertMedication(ctx context.Context, m *model.Medication) error
	MedicationByID(ctx context.Context, id string) (*model.Medication, error)
	ActiveMedications(ctx context.Context, userID string) ([]model.Medication, error)
	AppendAdherence(ctx context.Context, medicationID string, e model.AdherenceEntry) error
	DeactivateMedication(ctx context.Context, id string) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

type AddRequest struct {
	Name        string `json:"name"`
	Dosage      string `json:"dosage"`
	Time        string `json:"time"`
	Frequency   string `json:"frequency"`
	Instruction string `json:"instruction"`
	EndDate     string `json:"endDate"`
}

func (s *Service) Add(ctx context.Context, userID string, req AddRequest) (*model.Medication, error) {
	name, dosage, tm := strings.TrimSpace(req.Name), strings.TrimSpace(req.Dosage), strings.TrimSpace(req.Time)
	if name == "" || dosage == "" || tm == "" {
		return nil, ErrMissingFields
	}
	freq := model.FrequencyDaily
	if req.Frequency != "" {
		freq = model.Frequency(req.Frequency)
		if !freq.Valid() {
			return nil, ErrInvalidFrequency
		}
	}
	var end *model.Date
	if req.EndDate != "" {
		d, err := model.ParseDate(req.EndDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		end = &d
	}

	m := &model.Medication{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		Dosage:      dosage,
		Time:        tm,
		Frequency:   freq,
		Instruction: strings.TrimSpace(req.Instruction),
		StartDate:   model.DateOf(s.now()),
		EndDate:     end,
		Active:      true,
		Adherence:   []model.AdherenceEntry{},
	}
	if err := s.repo.InsertMedication(ctx, m); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("medication_id", m.ID).Str("frequency", string(freq)).Msg("medication added")
	return m, nil
}

func (s *Service) ListActive(ctx context.Context, userID string) ([]model.Medication, error) {
	return s.repo.ActiveMedications(ctx, userID)
}

// owned hides other users' medications behind ErrNotFound.
func (s *Service) owned(ctx context.Context, userID, id string) (*model.Medication, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	m, err := s.repo.MedicationByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, ErrNotFound
	}
	return m, nil
}

// LogTaken records today's dose. A Daily medication can be logged once per
// calendar day; other frequencies accept repeated logs.
func (s *Service) LogTaken(ctx context.Context, userID, id string) (*model.Medication, error) {
	m, err := s.owned(ctx, userID, id)
	if err != nil {
		metrics.RecordMedicationLog("rejected")
		return nil, err
	}

	now := s.now()
	today := model.DateOf(now)
	if m.Frequency == model.FrequencyDaily && m.TakenOn(today) {
		metrics.RecordMedicationLog("duplicate")
		return nil, ErrAlreadyLogged
	}

	entry := model.AdherenceEntry{Date: today, Taken: true, TakenAt: now}
	if err := s.repo.AppendAdherence(ctx, m.ID, entry); err != nil {
		metrics.RecordMedicationLog("error")
		return nil, err
	}
	m.Adherence = append(m.Adherence, entry)
	metrics.RecordMedicationLog("ok")
	return m, nil
}

// Deactivate soft-deletes; the row and its log stay for history.
func (s *Service) Deactivate(ctx context.Context, userID, id string) error {
	m, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.repo.DeactivateMedication(ctx, m.ID)
}
