package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/medspa-frontdesk/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/medspa-frontdesk/internal/http/middleware"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Health         *handlers.HealthHandler
	Patients       *handlers.PatientsHandler
	Appointments   *handlers.AppointmentsHandler
	Reference      *handlers.ReferenceHandler
	MetricsHandler http.Handler

	// StaffAuthSecret enables HMAC JWT auth on /api when set.
	StaffAuthSecret    string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	health := cfg.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	r.Get("/health", health.Live)
	r.Get("/ready", health.Ready)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitRPS > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		if cfg.StaffAuthSecret != "" {
			api.Use(httpmiddleware.StaffJWT(cfg.StaffAuthSecret))
		}
		api.Use(middleware.Compress(5, "application/json", "text/csv"))

		if ref := cfg.Reference; ref != nil {
			api.Get("/departments", ref.Departments)
			api.Get("/departments/{departmentID}/doctors", ref.Doctors)
			api.Get("/doctors/{doctorID}/slots", ref.Slots)
			api.Get("/dashboard", ref.Dashboard)
		}

		if p := cfg.Patients; p != nil {
			api.Route("/patients", func(r chi.Router) {
				r.Post("/", p.Register)
				r.Get("/", p.List)
				r.Get("/last-registered", p.LastRegistered)
				r.Route("/{patientID}", func(r chi.Router) {
					r.Get("/", p.Get)
					r.Put("/", p.Update)
					r.Delete("/", p.Delete)
					r.Get("/appointments", p.Bookings)
				})
			})
		}

		if a := cfg.Appointments; a != nil {
			api.Route("/appointments", func(r chi.Router) {
				r.Post("/", a.Book)
				r.Get("/", a.List)
				r.Get("/export", a.Export)
				r.Post("/export/archive", a.Archive)
				r.Route("/{appointmentID}", func(r chi.Router) {
					r.Get("/", a.Get)
					r.Patch("/", a.Reschedule)
					r.Delete("/", a.Delete)
				})
			})
		}
	})

	return r
}
