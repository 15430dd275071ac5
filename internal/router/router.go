package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-schedule/internal/handler/appointment"
	"github.com/jwalitptl/clinic-schedule/internal/handler/health"
	"github.com/jwalitptl/clinic-schedule/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-schedule/internal/handler/schedule"
	"github.com/jwalitptl/clinic-schedule/internal/middleware"
)

const clinicParam = "clinic_id"

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	healthH      *health.Handler
	metricsH     *prometheus.Handler
	scheduleH    *schedule.Handler
	appointmentH *appointment.Handler
	config       Config
}

type Config struct {
	// RateLimit is nil when limiting is disabled
	RateLimit      *middleware.RateLimiterConfig
	CORSConfig     middleware.CORSConfig
	RequestTimeout time.Duration
	MaxBodySize    int64
	// MetricsPath is served at the root, outside /api/v1
	MetricsPath string
}

// NewRouter builds the engine and its global middleware chain. metricsH may
// be nil to disable metrics.
func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH *health.Handler,
	metricsH *prometheus.Handler,
	scheduleH *schedule.Handler,
	appointmentH *appointment.Handler,
	config Config,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:       engine,
		auth:         auth,
		healthH:      healthH,
		metricsH:     metricsH,
		scheduleH:    scheduleH,
		appointmentH: appointmentH,
		config:       config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
	)
	if metricsH != nil {
		engine.Use(metricsH.Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(),
		middleware.CORS(config.CORSConfig),
	)
	if config.MaxBodySize > 0 {
		engine.Use(middleware.SizeLimit(config.MaxBodySize))
	}
	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(config.RequestTimeout))
	}
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	if r.metricsH != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.metricsH.Handler())
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	clinic := protected.Group("/clinics/:" + clinicParam)
	clinic.Use(r.auth.RequireClinic(clinicParam))

	r.scheduleH.RegisterRoutes(api, clinic)
	r.appointmentH.RegisterRoutes(protected, clinic)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
