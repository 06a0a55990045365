// Package account registers and authenticates users and maintains their
// profile vitals.
package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"patient-care-api/internal/auth"
	"patient-care-api/internal/model"
	"patient-care-api/internal/store"
)

// DefaultHealthScore is what a new user starts with before the first
// insight computation.
const DefaultHealthScore = 75

const minPasswordLen = 6

var (
	ErrMissingFields      = errors.New("name, email and password are required")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidVitals      = errors.New("vitals must not be negative")
)

type Repository interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	UpdateVitals(ctx context.Context, id string, v model.Vitals) error
}

type Service struct {
	repo     Repository
	secret   string
	tokenTTL time.Duration
}

func New(repo Repository, secret string, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, secret: secret, tokenTTL: tokenTTL}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Session is a user together with a freshly issued bearer token.
type Session struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	name, email := strings.TrimSpace(req.Name), normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         model.RolePatient,
		HealthScore:  DefaultHealthScore,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log.Ctx(ctx).Info().Str("user_id", u.ID).Msg("user registered")
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		log.Ctx(ctx).Warn().Str("user_id", u.ID).Msg("login with wrong password")
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *Service) session(u *model.User) (*Session, error) {
	tok, err := auth.MakeToken(u.ID, u.Role, s.secret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: tok}, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.repo.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

// UpdateVitals replaces the stored vitals. Only heart rate affects the
// health score.
func (s *Service) UpdateVitals(ctx context.Context, userID string, v model.Vitals) (*model.User, error) {
	if negInt(v.HeartRate) || negInt(v.Steps) || negFloat(v.Hydration) || negFloat(v.Sleep) {
		return nil, ErrInvalidVitals
	}
	if err := s.repo.UpdateVitals(ctx, userID, v); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Profile(ctx, userID)
}

func negInt(p *int) bool       { return p != nil && *p < 0 }
func negFloat(p *float64) bool { return p != nil && *p < 0 }
