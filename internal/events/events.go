// Package events publishes appointment lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	AppointmentBooked        = "appointment.booked"
	AppointmentCancelled     = "appointment.cancelled"
	AppointmentRescheduled   = "appointment.rescheduled"
	AppointmentStatusChanged = "appointment.status_changed"
	HealthScoreUpdated       = "health.score_updated"
)

// ChannelPrefix namespaces every channel this service publishes to.
const ChannelPrefix = "patient-care:"

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	UserID     string         `json:"userId"`
	Data       map[string]any `json:"data"`
	OccurredAt time.Time      `json:"occurredAt"`
}

func New(typ, userID string, data map[string]any) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       typ,
		UserID:     userID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Redis publishes events as JSON over Redis pub/sub, one channel per type.
type Redis struct {
	client *redis.Client
}

// Dial parses url, verifies the connection and returns a publisher.
func Dial(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: c}, nil
}

func Channel(typ string) string { return ChannelPrefix + typ }

func (r *Redis) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.client.Publish(ctx, Channel(e.Type), data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	log.Debug().Str("event", e.Type).Str("id", e.ID).Msg("event published")
	return nil
}

func (r *Redis) Close() error { return r.client.Close() }

// Emit publishes and logs a failure instead of returning it; lifecycle
// notifications never fail the write that produced them.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("event", e.Type).Str("user_id", e.UserID).Msg("event publish failed")
	}
}
