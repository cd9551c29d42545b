package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/healseek/appointment-service/internal/appointment"
	"github.com/healseek/appointment-service/internal/db"
)

// RouterConfig carries everything the HTTP surface needs; handlers
// never reach for globals.
type RouterConfig struct {
	Service        *appointment.Service
	DB             *db.Handle
	Redis          *redis.Client
	JWTSecret      string
	AccessTokenTTL time.Duration
	Version        string
	Logger         zerolog.Logger
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health/live", livenessHandler(cfg.Version))
	r.Get("/health/ready", readinessHandler(cfg.DB, cfg.Redis, cfg.Version))

	limiter := NewClientRateLimiter(5, 10)
	r.With(RateLimitMiddleware(limiter)).
		Post("/auth/login", loginHandler(cfg.Service, cfg.JWTSecret, cfg.AccessTokenTTL))

	r.Route("/appointments", func(r chi.Router) {
		r.With(RequireRoles(cfg.JWTSecret, appointment.RoleAdmin)).
			Get("/", listAppointmentsHandler(cfg.Service))
		r.With(RequireRoles(cfg.JWTSecret, appointment.RolePatient)).
			Get("/patient", listPatientAppointmentsHandler(cfg.Service))
		r.With(RequireRoles(cfg.JWTSecret, appointment.RoleDoctor)).
			Get("/doctor", listDoctorAppointmentsHandler(cfg.Service))
		r.With(RequireRoles(cfg.JWTSecret, appointment.RoleAdmin, appointment.RoleDoctor, appointment.RolePatient)).
			Get("/{id}", getAppointmentHandler(cfg.Service))
		r.With(RequireRoles(cfg.JWTSecret, appointment.RoleDoctor, appointment.RolePatient)).
			Post("/", createAppointmentHandler(cfg.Service))
		r.With(RequireRoles(cfg.JWTSecret, appointment.RoleDoctor)).
			Put("/{id}", updateAppointmentHandler(cfg.Service))
		r.With(RequireRoles(cfg.JWTSecret, appointment.RoleDoctor)).
			Delete("/{id}", deleteAppointmentHandler(cfg.Service))
	})

	return r
}
