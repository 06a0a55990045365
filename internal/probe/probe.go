// Package probe drives the gRPC health service from a readiness check.
package probe

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported alongside the overall ("") status.
const Service = "patient-care-api"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Probe struct {
	db      Pinger
	hs      *health.Server
	timeout time.Duration
	serving bool
}

func New(db Pinger, timeout time.Duration) *Probe {
	p := &Probe{db: db, hs: health.NewServer(), timeout: timeout}
	p.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return p
}

// Register attaches the health service to srv.
func (p *Probe) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, p.hs)
}

func (p *Probe) Health() healthpb.HealthServer {
	return p.hs
}

func (p *Probe) set(st healthpb.HealthCheckResponse_ServingStatus) {
	p.hs.SetServingStatus("", st)
	p.hs.SetServingStatus(Service, st)
}

// Check pings once and updates the serving status.
func (p *Probe) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.db.Ping(ctx)
	switch {
	case err == nil && !p.serving:
		log.Info().Msg("database reachable, serving")
		p.serving = true
		p.set(healthpb.HealthCheckResponse_SERVING)
	case err != nil && p.serving:
		log.Warn().Err(err).Msg("database unreachable, not serving")
		p.serving = false
		p.set(healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

// Run checks every interval until ctx is done, then marks everything as
// not serving.
func (p *Probe) Run(ctx context.Context, interval time.Duration) {
	p.Check(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			p.hs.Shutdown()
			return
		case <-t.C:
			p.Check(ctx)
		}
	}
}
