// Package main is the entry point for the declarative UI runtime server.
// It wires all dependencies together and starts the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/config"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/observability"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/reference"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/render"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/search"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/transform"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/transport"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/wizard"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Step 1: Parse CLI flags.
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	// Step 2: Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	// Step 3: Initialize telemetry (logger, tracer, metrics).
	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "oneshot-runtime", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	metrics := observability.InitMetrics(prometheus.DefaultRegisterer)

	// Step 4: Load the app config, validate it, and build the registry.
	appCfg, checksum, err := loadAppConfig(ctx, cfg.AppConfig, logger)
	if err != nil {
		logger.Error("app config loading failed", zap.Error(err))
		return 1
	}

	validator := appconfig.NewValidator()
	verrs, warns := validator.Validate(appCfg)
	for _, wv := range warns {
		logger.Warn("app config warning",
			zap.String("path", wv.Path),
			zap.String("code", wv.Code),
			zap.String("message", wv.Message),
		)
	}
	if len(verrs) > 0 {
		for _, ve := range verrs {
			logger.Error("app config validation error",
				zap.String("path", ve.Path),
				zap.String("code", ve.Code),
				zap.String("message", ve.Message),
			)
		}
		logger.Error("app config validation failed", zap.Int("errors", len(verrs)))
		return 1
	}

	registry := appconfig.NewRegistry(appCfg, appCfg.App.Version, checksum)
	registry.AddReloadHook(func(string) {
		metrics.RecordConfigReload("success")
		metrics.SetConfigSize(float64(len(registry.Resources())), float64(len(registry.Pages())))
	})
	metrics.SetConfigSize(float64(len(appCfg.Resources)), float64(len(appCfg.Pages)))

	// Step 5: Build the record store.
	records, storeCloser, err := buildRecordStore(ctx, cfg.Store, appCfg, logger)
	if err != nil {
		logger.Error("record store initialization failed", zap.Error(err))
		return 1
	}
	records = store.NewInstrumentedStore(records, metrics)

	// Step 6: Build the reference resolver and invalidate it on writes.
	refs := reference.NewResolver(records, cfg.Reference.CacheTTL, cfg.Reference.MaxEntries)
	refs.SetInstrumentor(metrics)
	records.AddMutationHook(refs.Invalidate)

	// Step 7: Build providers.
	gate := permission.NewGate(registry)
	engine := transform.NewEngine(records, refs)
	engine.SetInstrumentor(metrics)
	factory := render.NewFactory(gate)
	pages := render.NewPageProvider(registry, factory)
	data := render.NewDataProvider(registry, gate, records, refs, engine)

	instances := wizard.NewInstanceStore(cfg.Wizard.SessionTTL)
	wizards := wizard.NewEngine(registry, gate, records, instances)

	searcher := search.NewProvider(registry, gate, records,
		cfg.Search.Timeout, cfg.Search.MaxResultsPerResource)

	// Step 8: Build the idempotency store (optional).
	var idem transport.IdempotencyStore
	var idemChecker observability.HealthChecker
	if cfg.Idempotency.Enabled {
		mem := transport.NewMemoryIdempotencyStore()
		idem = mem
		idemChecker = mem
	}

	// Step 9: Build authentication.
	authenticator, err := transport.NewAuthenticator(cfg.Identity, registry, metrics)
	if err != nil {
		logger.Error("authenticator initialization failed", zap.Error(err))
		return 1
	}

	// Step 10: Build the HTTP router.
	readinessChecks := observability.ReadinessChecks{
		ConfigLoaded:     func() bool { return len(registry.Pages()) > 0 || len(registry.Resources()) > 0 },
		RecordStore:      records,
		IdempotencyStore: idemChecker,
	}

	router := transport.NewRouter(transport.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Registry:      registry,
		Gate:          gate,
		Records:       records,
		Pages:         pages,
		Data:          data,
		Wizards:       wizards,
		Search:        searcher,
		Metrics:       metrics,
		Authenticator: authenticator,
		Idempotency:   idem,
		Ready:         readinessChecks,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Step 11: Start background tasks.
	bgCtx, bgCancel := context.WithCancel(ctx)
	defer bgCancel()

	go instances.RunCleanup(bgCtx, cfg.Wizard.CleanupInterval)

	if cfg.AppConfig.RemoteBaseURL != "" {
		remote := appconfig.NewRemoteSource(appconfig.RemoteOptions{
			BaseURL:          cfg.AppConfig.RemoteBaseURL,
			ProjectID:        cfg.AppConfig.ProjectID,
			PollInterval:     cfg.AppConfig.PollInterval,
			Timeout:          cfg.AppConfig.Timeout,
			FailureThreshold: cfg.AppConfig.Breaker.FailureThreshold,
			SuccessThreshold: cfg.AppConfig.Breaker.SuccessThreshold,
			BreakerTimeout:   cfg.AppConfig.Breaker.Timeout,
		}, registry, logger)
		go remote.Run(bgCtx)
	}

	// Step 12: Start HTTP server.
	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
		zap.Int("resources", len(appCfg.Resources)),
		zap.Int("pages", len(appCfg.Pages)),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	// Graceful shutdown sequence.
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new connections and drain in-flight requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Cancel background tasks.
	bgCancel()

	// Close stores.
	if storeCloser != nil {
		storeCloser()
	}

	// Flush telemetry.
	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}

// loadAppConfig fetches the initial app config, preferring the remote source
// when one is configured. A remote fetch failure at startup falls back to the
// local file so a dead config service does not block boot.
func loadAppConfig(ctx context.Context, src config.AppConfigSource, logger *zap.Logger) (model.AppConfig, string, error) {
	loader := appconfig.NewLoader()

	if src.RemoteBaseURL != "" {
		remote := appconfig.NewRemoteSource(appconfig.RemoteOptions{
			BaseURL:   src.RemoteBaseURL,
			ProjectID: src.ProjectID,
			Timeout:   src.Timeout,
		}, nil, logger)
		cfg, _, checksum, err := remote.FetchLatest(ctx)
		if err == nil {
			return cfg, checksum, nil
		}
		logger.Warn("remote app config fetch failed, falling back to file",
			zap.String("file", src.File),
			zap.Error(err),
		)
	}

	cfg, checksum := loader.LoadOrDefault(src.File, logger)
	return cfg, checksum, nil
}

// buildRecordStore creates the record store. The server config's driver wins
// when set; otherwise the app config's persistence mode decides.
func buildRecordStore(ctx context.Context, cfg config.StoreConfig, appCfg model.AppConfig, logger *zap.Logger) (store.Store, func(), error) {
	driver := cfg.Driver
	if driver == "" {
		driver = appCfg.Settings.PersistenceMode
	}

	switch driver {
	case "memory", "":
		logger.Info("using in-memory record store")
		s, err := store.NewMemoryStore(appCfg.Resources)
		return s, nil, err
	case "file":
		logger.Info("using SQLite record store", zap.String("path", cfg.SQLitePath))
		s, err := store.NewSQLiteStore(cfg.SQLitePath, appCfg.Resources)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "postgres":
		dsn := os.Getenv(cfg.DSNEnv)
		if dsn == "" {
			return nil, nil, fmt.Errorf("record store: %s environment variable not set", cfg.DSNEnv)
		}

		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("record store: parse DSN: %w", err)
		}
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("record store: connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("record store: ping: %w", err)
		}

		logger.Info("using postgres record store")
		s, err := store.NewPgStore(ctx, pool, appCfg.Resources)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported record store driver: %q", driver)
	}
}
