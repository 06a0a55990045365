package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"patient-care-api/internal/account"
	"patient-care-api/internal/config"
	"patient-care-api/internal/events"
	"patient-care-api/internal/handler"
	"patient-care-api/internal/insight"
	"patient-care-api/internal/logging"
	"patient-care-api/internal/medication"
	"patient-care-api/internal/middleware"
	"patient-care-api/internal/probe"
	"patient-care-api/internal/scheduler"
	"patient-care-api/internal/store"
	"patient-care-api/internal/store/memstore"
)

// backend is everything the services and handlers need from storage.
type backend interface {
	account.Repository
	scheduler.Repository
	insight.Repository
	medication.Repository
	handler.StatsSource
	handler.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.Init("patient-care-api", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	var pub events.Publisher = events.Nop{}
	if cfg.Redis.URL != "" {
		r, err := events.Dial(ctx, cfg.Redis.URL)
		if err != nil {
			// events are best effort; the API runs without them
			log.Warn().Err(err).Msg("redis unavailable, events disabled")
		} else {
			defer r.Close()
			pub = r
			log.Info().Msg("publishing events to redis")
		}
	}

	h := handler.New(handler.Deps{
		Accounts:    account.New(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Scheduler:   scheduler.New(db, scheduler.WithPublisher(pub)),
		Insights:    insight.New(db, insight.WithPublisher(pub)),
		Medications: medication.New(db, nil),
		Stats:       db,
		DB:          db,
		Development: cfg.Development(),
	})

	rl := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go rl.Sweep(ctx, time.Minute, 3*time.Minute)

	httpSrv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: h.Routes(handler.RouterOptions{
			Secret:         cfg.Auth.JWTSecret,
			AuthLimiter:    rl,
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// grpc carries only the standard health service
	pr := probe.New(db, 2*time.Second)
	grpcSrv := grpc.NewServer()
	pr.Register(grpcSrv)
	go pr.Run(ctx, 15*time.Second)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	errc := make(chan error, 2)
	go func() {
		log.Info().Int("port", cfg.Server.GRPCPort).Msg("grpc health on")
		if err := grpcSrv.Serve(lis); err != nil {
			errc <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("env", cfg.Server.Env).Msg("http on")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errc:
		log.Error().Err(err).Msg("listener failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	grpcSrv.GracefulStop()
	return httpSrv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	if cfg.Database.Store == "memory" {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return memstore.New(), func() {}, nil
	}

	pool, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.QueryTimeout)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("connected to postgres")

	st := store.New(pool)
	if err := st.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return st, pool.Close, nil
}
