package audit

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskward/taskward/internal/shared"
)

// Middleware records one entry per mutating authenticated request after
// the response has been written. Read requests are skipped unless they
// target the admin surface.
type Middleware struct {
	Recorder Recorder
}

func auditable(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/admin")
}

// Handler wraps next with audit capture.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auditable(r) {
			next.ServeHTTP(w, r)
			return
		}

		r = r.WithContext(shared.ContextWithAuditCapture(r.Context()))
		capture := shared.AuditCaptureFromContext(r.Context())
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		principal := shared.PrincipalFromContext(r.Context())
		if principal == nil {
			return
		}

		entry := Entry{
			UserID:       principal.ID,
			Action:       actionLabel(r, capture),
			Resource:     chi.URLParam(r, "id"),
			ResourceType: ClassifyResource(r.URL.Path),
			Status:       StatusSuccess,
			ErrorMessage: capture.ErrorMessage,
			IPAddress:    r.RemoteAddr,
			UserAgent:    r.UserAgent(),
			OccurredAt:   time.Now().UTC(),
		}
		if sw.status >= 400 {
			entry.Status = StatusError
		}
		if capture.Changes != nil {
			if data, err := json.Marshal(capture.Changes); err == nil {
				entry.Changes = data
			}
		}
		m.Recorder.Record(entry)
	})
}

// actionLabel prefers the permission that authorized the request; a
// method:path fallback covers routes without a permission guard.
func actionLabel(r *http.Request, capture *shared.AuditCapture) string {
	if capture.PermissionUsed != "" {
		return capture.PermissionUsed
	}
	path := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		path = rctx.RoutePattern()
	}
	return r.Method + ":" + path
}

type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}
