package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskward/taskward/internal/platform/httpx"
	"github.com/taskward/taskward/internal/rbac"
	"github.com/taskward/taskward/internal/shared"
)

// Handler serves the audit trail read endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers audit trail routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermAuditRead))
		r.Get("/", h.list)
		r.Get("/stats", h.stats)
		r.Get("/{id}", h.get)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	entries, paging, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OKPage(w, entries, paging.Total, paging.TotalPages, paging.Page)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Overview(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, stats)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, entry)
}

func parseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	var params ListParams
	params.Page = intQuery(q.Get("page"), 1)
	params.PerPage = intQuery(q.Get("limit"), 20)
	params.Action = q.Get("action")

	if raw := q.Get("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListParams{}, fmt.Errorf("%w: userId must be an integer", shared.ErrValidation)
		}
		params.UserID = &id
	}
	if raw := q.Get("startDate"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return ListParams{}, fmt.Errorf("%w: startDate must be RFC 3339 or YYYY-MM-DD", shared.ErrValidation)
		}
		params.StartDate = &t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return ListParams{}, fmt.Errorf("%w: endDate must be RFC 3339 or YYYY-MM-DD", shared.ErrValidation)
		}
		// A bare date means the whole day, inclusive.
		if len(raw) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		params.EndDate = &t
	}
	return params, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
