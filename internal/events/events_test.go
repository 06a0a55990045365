package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{ calls int }

func (f *failing) Publish(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestNew(t *testing.T) {
	e := New(AppointmentBooked, "u1", map[string]any{"doctorName": "Dr. Smith"})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, AppointmentBooked, e.Type)
	assert.Equal(t, "u1", e.UserID)
	assert.WithinDuration(t, time.Now(), e.OccurredAt, time.Minute)
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "patient-care:appointment.cancelled", Channel(AppointmentCancelled))
}

func TestEmitSwallowsErrors(t *testing.T) {
	f := &failing{}
	assert.NotPanics(t, func() {
		Emit(context.Background(), f, New(HealthScoreUpdated, "u1", nil))
		Emit(context.Background(), nil, New(HealthScoreUpdated, "u1", nil))
		Emit(context.Background(), Nop{}, New(HealthScoreUpdated, "u1", nil))
	})
	assert.Equal(t, 1, f.calls)
}

func TestRedisPublish(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pub, err := Dial(ctx, url)
	require.NoError(t, err)
	defer pub.Close()

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	sub := redis.NewClient(opts).Subscribe(ctx, Channel(AppointmentBooked))
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	sent := New(AppointmentBooked, "u1", map[string]any{"time": "10:00 AM"})
	require.NoError(t, pub.Publish(ctx, sent))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var got Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, "10:00 AM", got.Data["time"])
}
