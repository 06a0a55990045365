package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-care-api/internal/auth"
	"patient-care-api/internal/model"
	"patient-care-api/internal/store/memstore"
)

func newService() *Service {
	return New(memstore.New(), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newService()

	sess, err := s.Register(ctx, RegisterRequest{Name: "Ada", Email: " Ada@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", sess.User.Email)
	assert.Equal(t, model.RolePatient, sess.User.Role)
	assert.Equal(t, DefaultHealthScore, sess.User.HealthScore)
	assert.NotEqual(t, "secret1", sess.User.PasswordHash)

	c, err := auth.ParseToken(sess.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, c.UserID)

	got, err := s.Login(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, got.User.ID)

	_, err = s.Login(ctx, "ada@example.com", "wrong-pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	s := newService()

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"missing name", RegisterRequest{Email: "a@b.co", Password: "secret1"}, ErrMissingFields},
		{"bad email", RegisterRequest{Name: "A", Email: "nope", Password: "secret1"}, ErrInvalidEmail},
		{"short password", RegisterRequest{Name: "A", Email: "a@b.co", Password: "12345"}, ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := s.Register(ctx, RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	_, err = s.Register(ctx, RegisterRequest{Name: "B", Email: "A@B.co", Password: "secret2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateVitals(t *testing.T) {
	ctx := context.Background()
	s := newService()
	sess, err := s.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, sess.User.Vitals.HasHeartRate())

	hr := 68
	u, err := s.UpdateVitals(ctx, sess.User.ID, model.Vitals{HeartRate: &hr, BloodPressure: "120/80"})
	require.NoError(t, err)
	assert.True(t, u.Vitals.HasHeartRate())
	assert.Equal(t, "120/80", u.Vitals.BloodPressure)

	neg := -1
	_, err = s.UpdateVitals(ctx, sess.User.ID, model.Vitals{Steps: &neg})
	assert.ErrorIs(t, err, ErrInvalidVitals)

	_, err = s.UpdateVitals(ctx, "missing", model.Vitals{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Profile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
