package jobs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskward/taskward/internal/rbac"
	"github.com/taskward/taskward/internal/shared"
)

type staticJobsGraph struct {
	perms map[int64][]string
}

func (g staticJobsGraph) UserPermissionNames(_ context.Context, userID int64) ([]string, error) {
	return g.perms[userID], nil
}

func (g staticJobsGraph) UserHasRole(context.Context, int64, string) (bool, error) {
	return false, nil
}

func TestQueueHealthRequiresAuditRead(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := rbac.Middleware{Service: rbac.NewService(staticJobsGraph{perms: map[int64][]string{
		1: {shared.PermAuditRead},
		2: {shared.PermTasksRead},
	}}), Logger: logger}
	h := NewHandler(nil, logger, guard)

	router := chi.NewRouter()
	router.Route("/admin/jobs", h.MountRoutes)

	asUser := func(r *http.Request, id int64) *http.Request {
		ctx := shared.ContextWithPrincipal(r.Context(), &shared.Principal{ID: id})
		return r.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/admin/jobs/health", nil), 1))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/admin/jobs/health", nil), 2))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/jobs/health", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
