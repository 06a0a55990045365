package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeDB struct{ err error }

func (f *fakeDB) Ping(context.Context) error { return f.err }

func status(t *testing.T, p *Probe, svc string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := p.Health().Check(context.Background(), &healthpb.HealthCheckRequest{Service: svc})
	require.NoError(t, err)
	return resp.Status
}

func TestProbeFollowsDatabase(t *testing.T) {
	db := &fakeDB{err: errors.New("down")}
	p := New(db, time.Second)
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, p, ""))

	p.Check(ctx)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, p, Service))

	db.err = nil
	p.Check(ctx)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, p, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, p, Service))

	db.err = errors.New("down again")
	p.Check(ctx)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, p, ""))
}

func TestRunStopsOnCancel(t *testing.T) {
	p := New(&fakeDB{}, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := p.Health().Check(context.Background(), &healthpb.HealthCheckRequest{})
		return err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, p, ""))
}
