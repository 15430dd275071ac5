package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-schedule/internal/config"
	"github.com/jwalitptl/clinic-schedule/internal/email"
	"github.com/jwalitptl/clinic-schedule/internal/handler/appointment"
	"github.com/jwalitptl/clinic-schedule/internal/handler/health"
	"github.com/jwalitptl/clinic-schedule/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-schedule/internal/handler/schedule"
	"github.com/jwalitptl/clinic-schedule/internal/middleware"
	"github.com/jwalitptl/clinic-schedule/internal/repository/postgres"
	"github.com/jwalitptl/clinic-schedule/internal/router"
	appointmentService "github.com/jwalitptl/clinic-schedule/internal/service/appointment"
	"github.com/jwalitptl/clinic-schedule/internal/service/notification"
	scheduleService "github.com/jwalitptl/clinic-schedule/internal/service/schedule"
	"github.com/jwalitptl/clinic-schedule/internal/validator"
	"github.com/jwalitptl/clinic-schedule/internal/worker"
	"github.com/jwalitptl/clinic-schedule/pkg/auth"
	"github.com/jwalitptl/clinic-schedule/pkg/logger"
	"github.com/jwalitptl/clinic-schedule/pkg/messaging"
	"github.com/jwalitptl/clinic-schedule/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
	})
	// request logging in middleware goes through the global logger
	log.Logger = appLogger.ZL

	gin.SetMode(cfg.Server.Mode)
	if err := validator.RegisterGin(); err != nil {
		appLogger.Fatal(err, "failed to register validators")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prom.NewRegistry()
	appMetrics := metrics.NewMetrics(registry, cfg.Metrics.Namespace, "")

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	base := postgres.NewBaseRepository(db, appMetrics)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	seriesRepo := postgres.NewSeriesRepository(base)
	clinicRepo := postgres.NewClinicRepository(base)

	checks := map[string]health.Check{"database": db.PingContext}

	// Notification channels; a nil interface disables the channel
	var broker messaging.Broker
	if cfg.Redis.Enabled {
		redisBroker, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), appLogger, appMetrics)
		if err != nil {
			appLogger.Fatal(err, "failed to connect to Redis")
		}
		defer redisBroker.Close()
		broker = redisBroker
		checks["redis"] = redisBroker.Ping
	}

	var mailer email.Service
	if cfg.SMTP.Enabled() {
		mailer = email.NewSMTPService(cfg.SMTP)
	}

	// Initialize services
	days := scheduleService.NewService(appointmentRepo, seriesRepo, clinicRepo, appMetrics, appLogger,
		scheduleService.Config{TTL: cfg.Cache.DayViewTTL, CleanupInterval: cfg.Cache.CleanupInterval})
	notifier := notification.NewService(broker, mailer, clinicRepo, appMetrics, appLogger, 24*time.Hour)
	appointmentSvc := appointmentService.NewService(appointmentRepo, seriesRepo, days, notifier, appLogger)

	// Setup router
	var metricsHandler *prometheus.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = prometheus.New(registry, cfg.Metrics.Namespace)
	}

	routerConfig := router.Config{
		CORSConfig:     middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins),
		RequestTimeout: cfg.Server.WriteTimeout,
		MaxBodySize:    middleware.DefaultMaxBodySize,
		MetricsPath:    cfg.Metrics.Path,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = &middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer)),
		health.NewHandler(checks),
		metricsHandler,
		schedule.NewHandler(days),
		appointment.NewHandler(appointmentSvc),
		routerConfig,
	)
	r.Setup()

	var wg sync.WaitGroup
	if cfg.Worker.Enabled {
		loc, err := time.LoadLocation(cfg.Worker.Timezone)
		if err != nil {
			appLogger.Fatal(err, "invalid worker timezone")
		}
		scanner := worker.NewConflictScanWorker(appointmentRepo, days, notifier,
			worker.ConflictScanConfig{Interval: cfg.Worker.ScanInterval, Location: loc}, appLogger, appMetrics)

		wg.Add(1)
		go func() {
			defer wg.Done()
			scanner.Start(ctx)
		}()
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		appLogger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(err, "failed to start server")
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "server forced to shutdown")
	}
	wg.Wait()

	appLogger.Info("server exited properly")
}
