package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/medspa-frontdesk/cmd/mainconfig"
	"github.com/wolfman30/medspa-frontdesk/internal/api/router"
	"github.com/wolfman30/medspa-frontdesk/internal/app/bootstrap"
	"github.com/wolfman30/medspa-frontdesk/internal/booking"
	appconfig "github.com/wolfman30/medspa-frontdesk/internal/config"
	"github.com/wolfman30/medspa-frontdesk/internal/directory"
	"github.com/wolfman30/medspa-frontdesk/internal/frontdesk"
	"github.com/wolfman30/medspa-frontdesk/internal/http/handlers"
	"github.com/wolfman30/medspa-frontdesk/internal/identity"
	"github.com/wolfman30/medspa-frontdesk/internal/notify"
	"github.com/wolfman30/medspa-frontdesk/internal/observability/metrics"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("starting front desk API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// buildHandler wires storage, the front desk service and the router.
func buildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	var awsCfg aws.Config
	if cfg.UsesAWS() {
		awsCfg, err = mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("load AWS config: %w", err)
		}
	}

	storage, err := bootstrap.BuildStore(ctx, cfg, awsCfg, logger)
	if err != nil {
		return nil, nil, err
	}

	dir, err := directory.Load(cfg.ReferenceDataPath)
	if err != nil {
		storage.Close()
		return nil, nil, err
	}
	seeded, err := storage.Store.EnsureReferenceData(ctx, dir.Departments, dir.Doctors)
	if err != nil {
		storage.Close()
		return nil, nil, fmt.Errorf("seed reference data: %w", err)
	}
	if seeded {
		logger.Info("reference data seeded", "departments", len(dir.Departments), "doctors", len(dir.Doctors))
	}

	confirmer, err := bootstrap.BuildConfirmer(cfg, awsCfg, logger.Component("email"))
	if err != nil {
		storage.Close()
		return nil, nil, err
	}

	metricsHandler, frontdeskMetrics := setupMetrics()
	ids := identity.NewGenerator(identity.ParseStrategy(cfg.IDStrategy))
	svc := frontdesk.NewService(frontdesk.Config{
		Store:        storage.Store,
		IDs:          ids,
		Resolver:     identity.NewResolver(identity.ParsePolicy(cfg.DuplicatePolicy)),
		Engine:       booking.NewEngine(ids, time.Now, loc),
		Notifier:     notify.NewLogNotifier(logger.Component("notices")),
		Confirmer:    confirmer,
		Archiver:     bootstrap.BuildArchiver(cfg, awsCfg, logger.Component("archive")),
		Metrics:      frontdeskMetrics,
		Logger:       logger.Component("frontdesk"),
		StatusLabels: cfg.StatusLabels,
	})

	handler := router.New(&router.Config{
		Logger:             logger,
		Health:             handlers.NewHealthHandler(storage.Store),
		Patients:           handlers.NewPatientsHandler(svc, logger),
		Appointments:       handlers.NewAppointmentsHandler(svc, logger),
		Reference:          handlers.NewReferenceHandler(svc),
		MetricsHandler:     metricsHandler,
		StaffAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; /api is unauthenticated")
	}
	return handler, storage.Close, nil
}

func setupMetrics() (http.Handler, *metrics.FrontdeskMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewFrontdeskMetrics(reg)
}
