package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/scheduling/internal/appointment"
	"github.com/clinicdesk/scheduling/internal/schedule"
)

type RouterConfig struct {
	Schedules    *schedule.Service
	Appointments *appointment.Service
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Schedule endpoints
	r.Post("/schedules", createScheduleHandler(cfg.Schedules))
	r.Get("/schedules/slots", listAvailableSlotsHandler(cfg.Schedules))
	r.Get("/schedules/doctor/{doctorID}", doctorSchedulesHandler(cfg.Schedules))
	r.Put("/schedules/{scheduleID}/slots/{slotID}", editSlotHandler(cfg.Schedules))
	r.Delete("/schedules/{scheduleID}/slots/{slotID}", deleteSlotHandler(cfg.Schedules))

	// Appointment endpoints
	r.Post("/appointments", createAppointmentHandler(cfg.Appointments))
	r.Get("/appointments", listPendingAppointmentsHandler(cfg.Appointments))
	r.Patch("/appointments/{id}", editAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/confirm", confirmAppointmentHandler(cfg.Appointments))
	r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Appointments))

	return r
}
