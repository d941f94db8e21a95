package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pitchduel/internal/adapters/http/api"
	"github.com/okian/pitchduel/internal/adapters/http/swagger"
	"github.com/okian/pitchduel/internal/adapters/repository"
	service "github.com/okian/pitchduel/internal/app"
	"github.com/okian/pitchduel/internal/config"
	"github.com/okian/pitchduel/pkg/logger"
	"github.com/okian/pitchduel/pkg/metrics"
	"github.com/okian/pitchduel/pkg/tracing"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "pitchduel stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled, then drains the recorder.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get().Named("main")

	shutdownTracing, err := tracing.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn(ctx, "trace flush failed", logger.Error(err))
		}
	}()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithLogger(logger.Named("recorder")),
		service.WithWorkerCount(cfg.RecorderWorkerCount),
		service.WithQueueSize(cfg.RecorderQueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithStore(store),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start recorder: %w", err)
	}

	protocol := service.NewProtocol(
		repository.NewRegistry(),
		service.WithWinThreshold(cfg.WinThreshold),
		service.WithResultSink(svc),
		service.WithProtocolLogger(logger.Named("protocol")),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, protocol),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		startSystemMetricsUpdater(gctx, protocol)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
		}
		// Results already queued are still written before the store closes.
		if err := svc.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("stop recorder: %w", err)
		}
		log.Info(shutdownCtx, "server stopped")
		return nil
	})
	return g.Wait()
}

// openStore returns the standings store selected by configuration.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StandingsDriver {
	case config.DriverSQLite, config.DriverPostgres:
		store, err := repository.OpenSQLStore(ctx, cfg.StandingsDriver, cfg.StandingsDSN)
		if err != nil {
			return nil, fmt.Errorf("open %s standings: %w", cfg.StandingsDriver, err)
		}
		return store, nil
	default:
		return repository.NewTreapStore(ctx), nil
	}
}

// newHandler mounts the API and docs routes behind CORS.
func newHandler(ctx context.Context, cfg *config.Config, svc *service.Service, protocol *service.Protocol) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(protocol, svc,
		api.WithLeaderboardLimits(cfg.DefaultLeaderboardLimit, cfg.MaxLeaderboardLimit),
		api.WithStatsProviders(svc, protocol),
	).Register(ctx, mux)
	return api.CORS(mux)
}

// startSystemMetricsUpdater refreshes process and room gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context, protocol *service.Protocol) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics(ctx, protocol)
		}
	}
}

// updateSystemMetrics updates process-level and room gauges.
func updateSystemMetrics(ctx context.Context, protocol *service.Protocol) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	protocol.RoomCounts(ctx)
}
