package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/mentorhub/internal/lifecycle"
)

// Pinger reports storage health for the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig collects the handlers and middleware the router mounts.
type RouterConfig struct {
	Availability *AvailabilityHandler
	Sessions     *SessionHandler
	Calendar     *CalendarHandler
	Health       Pinger
	MetricsPage  http.Handler
	Logger       *slog.Logger
	Middleware   []func(http.Handler) http.Handler
}

// NewRouter assembles the API routes. The /api tree requires actor identity
// headers; mentor and student groups are additionally role-gated. /healthz
// and /metrics stay outside the identity requirement.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(cfg.Health))
	if cfg.MetricsPage != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsPage)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(ActorContext(cfg.Logger))

		r.Route("/mentors", func(r chi.Router) {
			r.Use(RequireRole(lifecycle.RoleMentor, cfg.Logger))

			if cfg.Availability != nil {
				r.Put("/availability", cfg.Availability.Save)
				r.Get("/availability", cfg.Availability.Get)
			}
			if cfg.Sessions != nil {
				r.Get("/sessions", cfg.Sessions.List)
				r.Put("/sessions/{id}", cfg.Sessions.Transition)
				r.Post("/sessions/bulk-complete", cfg.Sessions.BulkComplete)
			}
		})

		r.Route("/students", func(r chi.Router) {
			r.Use(RequireRole(lifecycle.RoleStudent, cfg.Logger))

			if cfg.Sessions != nil {
				r.Get("/sessions", cfg.Sessions.List)
				r.Post("/sessions", cfg.Sessions.Book)
				r.Put("/sessions/{id}/cancel", cfg.Sessions.Cancel)
			}
			if cfg.Calendar != nil {
				r.Get("/events", cfg.Calendar.ListEvents)
			}
		})

		if cfg.Calendar != nil {
			r.Get("/calendar", cfg.Calendar.Month)
		}
	})

	return r
}

func healthHandler(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
