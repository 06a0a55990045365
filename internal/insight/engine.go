// Package insight recomputes a user's composite health score from their
// current medication and appointment records and derives advisories.
//
// Nothing is accumulated between calls. Every Compute is a pure function of
// persisted state plus the clock; the only side effect is overwriting the
// user's cached score.
package insight

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"patient-care-api/internal/events"
	"patient-care-api/internal/metrics"
	"patient-care-api/internal/model"
	"patient-care-api/internal/store"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	UserByID(ctx context.Context, id string) (*model.User, error)
	ActiveMedications(ctx context.Context, userID string) ([]model.Medication, error)
	AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error)
	UpdateHealthScore(ctx context.Context, id string, score int) error
}

type Result struct {
	HealthScore int             `json:"healthScore"`
	Insights    []model.Insight `json:"insights"`
	MedScore    int             `json:"medScore"`
	AptScore    int             `json:"aptScore"`
}

type Engine struct {
	repo  Repository
	rules []Rule
	pub   events.Publisher
	now   func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRules replaces DefaultRules.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.pub = p }
}

func New(repo Repository, opts ...Option) *Engine {
	e := &Engine{repo: repo, rules: DefaultRules, pub: events.Nop{}, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Compute loads the user's records, rescores, persists the score and
// returns it with the triggered insights. Only a failure to load the user
// is fatal; the medication and appointment lookups fall back to the
// vacuous score on error.
func (e *Engine) Compute(ctx context.Context, userID string) (*Result, error) {
	logger := log.Ctx(ctx).With().Str("user_id", userID).Logger()

	user, err := e.repo.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	today := model.DateOf(e.now())

	medScore := VacuousScore
	if meds, err := e.repo.ActiveMedications(ctx, userID); err != nil {
		logger.Error().Err(err).Msg("medication lookup failed, using default score")
		metrics.RecordInsightFallback("medications")
	} else {
		medScore = MedicationScore(meds, today)
	}

	aptScore := VacuousScore
	apts, err := e.repo.AppointmentsByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msg("appointment lookup failed, using default score")
		metrics.RecordInsightFallback("appointments")
		apts = nil
	} else {
		if apts == nil {
			apts = []model.Appointment{}
		}
		aptScore = AppointmentScore(apts)
	}

	score := CompositeScore(medScore, aptScore, user.Vitals.HasHeartRate())

	// last write wins; a stale concurrent write is harmless because the
	// score is always rederived from source records
	if err := e.repo.UpdateHealthScore(ctx, userID, score); err != nil {
		logger.Error().Err(err).Int("score", score).Msg("persist health score failed")
	} else if score != user.HealthScore {
		events.Emit(ctx, e.pub, events.New(events.HealthScoreUpdated, userID, map[string]any{
			"previous": user.HealthScore, "score": score,
		}))
	}
	metrics.RecordHealthScore(score)

	insights := evaluate(e.rules, Inputs{
		MedScore:     medScore,
		AptScore:     aptScore,
		HealthScore:  score,
		Appointments: apts,
	})

	logger.Debug().Int("score", score).Float64("med", medScore).Float64("apt", aptScore).
		Int("insights", len(insights)).Msg("health score computed")

	return &Result{
		HealthScore: score,
		Insights:    insights,
		MedScore:    int(math.Round(medScore)),
		AptScore:    int(math.Round(aptScore)),
	}, nil
}
