package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskward/taskward/internal/shared"
)

type captureRecorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *captureRecorder) Record(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *captureRecorder) all() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func withPrincipal(next http.Handler, p *shared.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), p)))
	})
}

func newAuditedRouter(rec Recorder, p *shared.Principal, register func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	mw := &Middleware{Recorder: rec}
	r.Group(func(r chi.Router) {
		if p != nil {
			r.Use(func(next http.Handler) http.Handler { return withPrincipal(next, p) })
		}
		r.Use(mw.Handler)
		register(r)
	})
	return r
}

func TestMiddlewareRecordsMutation(t *testing.T) {
	rec := &captureRecorder{}
	router := newAuditedRouter(rec, &shared.Principal{ID: 5}, func(r chi.Router) {
		r.Post("/tasks", func(w http.ResponseWriter, r *http.Request) {
			shared.SetAuditPermission(r.Context(), "tasks:create")
			shared.SetAuditChanges(r.Context(), map[string]string{"title": "ship it"})
			w.WriteHeader(http.StatusCreated)
		})
	})

	req := httptest.NewRequest(http.MethodPost, "/tasks", nil)
	req.Header.Set("User-Agent", "test-agent")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := rec.all()
	require.Len(t, entries, 1)
	e := entries[0]
	require.Equal(t, int64(5), e.UserID)
	require.Equal(t, "tasks:create", e.Action)
	require.Equal(t, ResourceTask, e.ResourceType)
	require.Equal(t, StatusSuccess, e.Status)
	require.Equal(t, "test-agent", e.UserAgent)

	var changes map[string]string
	require.NoError(t, json.Unmarshal(e.Changes, &changes))
	require.Equal(t, "ship it", changes["title"])
}

func TestMiddlewareRecordsFailure(t *testing.T) {
	rec := &captureRecorder{}
	router := newAuditedRouter(rec, &shared.Principal{ID: 5}, func(r chi.Router) {
		r.Delete("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
			shared.SetAuditError(r.Context(), "task 9 not found")
			w.WriteHeader(http.StatusNotFound)
		})
	})

	req := httptest.NewRequest(http.MethodDelete, "/tasks/9", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := rec.all()
	require.Len(t, entries, 1)
	require.Equal(t, StatusError, entries[0].Status)
	require.Equal(t, "task 9 not found", entries[0].ErrorMessage)
	require.Equal(t, "9", entries[0].Resource)
}

func TestMiddlewareSkipsPlainReads(t *testing.T) {
	rec := &captureRecorder{}
	router := newAuditedRouter(rec, &shared.Principal{ID: 5}, func(r chi.Router) {
		r.Get("/tasks", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		r.Get("/admin/audit", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks", nil))
	require.Empty(t, rec.all(), "plain reads are not audited")

	// Admin reads are audited even though they are GETs.
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/audit", nil))
	require.Len(t, rec.all(), 1)
}

func TestMiddlewareSkipsUnauthenticated(t *testing.T) {
	rec := &captureRecorder{}
	router := newAuditedRouter(rec, nil, func(r chi.Router) {
		r.Post("/tasks", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) })
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/tasks", nil))
	require.Empty(t, rec.all())
}

func TestMiddlewareActionFallback(t *testing.T) {
	rec := &captureRecorder{}
	router := newAuditedRouter(rec, &shared.Principal{ID: 5}, func(r chi.Router) {
		r.Post("/auth/logout", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	entries := rec.all()
	require.Len(t, entries, 1)
	require.Equal(t, "POST:/auth/logout", entries[0].Action)
	require.Equal(t, ResourceUnknown, entries[0].ResourceType)
}

func TestClassifyResource(t *testing.T) {
	cases := map[string]string{
		"/tasks/3":           ResourceTask,
		"/admin/users/8":     ResourceUser,
		"/admin/roles/2":     ResourceRole,
		"/auth/logout":       ResourceUnknown,
		"/admin/permissions": ResourceUnknown,
	}
	for path, want := range cases {
		if got := ClassifyResource(path); got != want {
			t.Errorf("ClassifyResource(%q) = %q, want %q", path, got, want)
		}
	}
}
