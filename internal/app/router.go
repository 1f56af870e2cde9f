package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskward/taskward/internal/audit"
	"github.com/taskward/taskward/internal/auth"
	"github.com/taskward/taskward/internal/observability"
	"github.com/taskward/taskward/internal/permissions"
	"github.com/taskward/taskward/internal/roles"
	"github.com/taskward/taskward/internal/tasks"
	"github.com/taskward/taskward/internal/users"
	"github.com/taskward/taskward/jobs"
)

// RouterParams aggregates everything the HTTP router needs.
type RouterParams struct {
	Middleware    MiddlewareConfig
	Metrics       *observability.Metrics
	Authenticator auth.Authenticator
	AuditTrail    *audit.Middleware

	AuthHandler       *auth.Handler
	TaskHandler       *tasks.Handler
	PermissionHandler *permissions.Handler
	RoleHandler       *roles.Handler
	UserHandler       *users.Handler
	AuditHandler      *audit.Handler
	JobsHandler       *jobs.Handler
}

// NewRouter assembles the HTTP surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(params.Middleware) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(LoginRateLimiter())
			params.AuthHandler.MountPublicRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(params.Authenticator.Middleware)
			r.Use(params.AuditTrail.Handler)
			params.AuthHandler.MountProtectedRoutes(r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Authenticator.Middleware)
		r.Use(params.AuditTrail.Handler)

		r.Route("/tasks", params.TaskHandler.MountRoutes)
		r.Route("/admin", func(r chi.Router) {
			r.Route("/permissions", params.PermissionHandler.MountRoutes)
			r.Route("/roles", params.RoleHandler.MountRoutes)
			r.Route("/users", params.UserHandler.MountRoutes)
			r.Route("/audit", params.AuditHandler.MountRoutes)
			if params.JobsHandler != nil {
				r.Route("/jobs", params.JobsHandler.MountRoutes)
			}
		})
	})

	return r
}
