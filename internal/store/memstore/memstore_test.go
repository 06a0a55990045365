package memstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-care-api/internal/model"
	"patient-care-api/internal/store"
)

func appointment(user string, date model.Date, tm string) *model.Appointment {
	return &model.Appointment{
		ID: uuid.New().String(), UserID: user, DoctorName: "Dr. Smith",
		Date: date, Time: tm, Status: model.StatusScheduled,
	}
}

func TestSlotUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := appointment("alice", "2024-10-24", "10:00")
	require.NoError(t, s.InsertAppointment(ctx, a))
	assert.ErrorIs(t, s.InsertAppointment(ctx, appointment("bob", "2024-10-24", "10:00")), store.ErrSlotTaken)

	taken, err := s.SlotTaken(ctx, "Dr. Smith", "2024-10-24", "10:00", "")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = s.SlotTaken(ctx, "Dr. Smith", "2024-10-24", "10:00", a.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	b := appointment("bob", "2024-10-25", "10:00")
	require.NoError(t, s.InsertAppointment(ctx, b))
	b.Date = "2024-10-24"
	assert.ErrorIs(t, s.UpdateAppointment(ctx, b), store.ErrSlotTaken)

	a.Status = model.StatusCancelled
	require.NoError(t, s.UpdateAppointment(ctx, a))
	require.NoError(t, s.UpdateAppointment(ctx, b))
}

func TestReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := appointment("alice", "2024-10-24", "10:00")
	require.NoError(t, s.InsertAppointment(ctx, a))

	got, err := s.AppointmentByID(ctx, a.ID)
	require.NoError(t, err)
	got.Status = model.StatusCompleted
	got.RescheduleHistory = append(got.RescheduleHistory, model.RescheduleEntry{Date: "2024-01-01"})

	again, err := s.AppointmentByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, again.Status)
	assert.Empty(t, again.RescheduleHistory)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := &model.User{ID: uuid.New().String(), Email: "a@b.co", Role: model.RolePatient}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.ErrorIs(t, s.CreateUser(ctx, &model.User{ID: "x", Email: "a@b.co"}), store.ErrEmailTaken)

	require.NoError(t, s.UpdateHealthScore(ctx, u.ID, 88))
	got, err := s.UserByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, 88, got.HealthScore)

	assert.ErrorIs(t, s.UpdateHealthScore(ctx, "missing", 1), store.ErrNotFound)
	_, err = s.UserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, &model.User{ID: "p", Email: "p@x.co", Role: model.RolePatient}))
	require.NoError(t, s.CreateUser(ctx, &model.User{ID: "a", Email: "a@x.co", Role: model.RoleAdmin}))

	done := appointment("p", "2024-10-01", "09:00")
	done.Status = model.StatusCompleted
	require.NoError(t, s.InsertAppointment(ctx, done))
	require.NoError(t, s.InsertAppointment(ctx, appointment("p", "2024-10-02", "09:00")))
	require.NoError(t, s.InsertMedication(ctx, &model.Medication{ID: "m1", UserID: "p", Active: true}))
	require.NoError(t, s.InsertMedication(ctx, &model.Medication{ID: "m2", UserID: "p", Active: false}))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Users)
	assert.Equal(t, 2, st.Appointments)
	assert.Equal(t, 1, st.Medications)
	assert.InDelta(t, 50, st.CompletionRate, 1e-9)
	assert.Zero(t, st.CancellationRate)
}
