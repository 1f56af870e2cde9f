package rbac

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taskward/taskward/internal/observability"
	"github.com/taskward/taskward/internal/platform/httpx"
	"github.com/taskward/taskward/internal/shared"
)

// Middleware is the access decision point: it converts (principal, required
// permission) into allow or deny per request.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Require gates the wrapped handler on a single permission. A missing
// principal denies with 401, a missing permission with 403; business logic
// never runs on a deny. On allow the consumed permission is recorded in the
// audit capture so the sink labels the entry with it instead of the
// method+path fallback.
func (m Middleware) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				m.observe(permission, "unauthenticated")
				httpx.RespondError(w, r, fmt.Errorf("%w: no credential presented", shared.ErrAuthentication))
				return
			}
			allowed, err := m.Service.HasPermission(r.Context(), principal.ID, permission)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("permission check", slog.String("permission", permission), slog.Any("error", err))
				}
				httpx.RespondError(w, r, err)
				return
			}
			if !allowed {
				m.observe(permission, "deny")
				httpx.RespondError(w, r, fmt.Errorf("%w: missing %s", shared.ErrAuthorization, permission))
				return
			}
			m.observe(permission, "allow")
			shared.SetAuditPermission(r.Context(), permission)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny gates on at least one of the listed permissions. The first
// granted permission becomes the audit action label.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, r, fmt.Errorf("%w: no credential presented", shared.ErrAuthentication))
				return
			}
			granted, err := m.Service.EffectivePermissions(r.Context(), principal.ID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("permission check", slog.Any("error", err))
				}
				httpx.RespondError(w, r, err)
				return
			}
			set := make(map[string]struct{}, len(granted))
			for _, p := range granted {
				set[p] = struct{}{}
			}
			for _, p := range perms {
				if _, ok := set[p]; ok {
					m.observe(p, "allow")
					shared.SetAuditPermission(r.Context(), p)
					next.ServeHTTP(w, r)
					return
				}
			}
			if len(perms) > 0 {
				m.observe(perms[0], "deny")
			}
			httpx.RespondError(w, r, fmt.Errorf("%w: missing any of %v", shared.ErrAuthorization, perms))
		})
	}
}

func (m Middleware) observe(permission, outcome string) {
	if m.Metrics != nil {
		m.Metrics.ObserveDecision(permission, outcome)
	}
}
