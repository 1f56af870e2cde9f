package tasks

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskward/taskward/internal/platform/httpx"
	"github.com/taskward/taskward/internal/rbac"
	"github.com/taskward/taskward/internal/shared"
)

// Handler manages the task endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validate: validator.New()}
}

// MountRoutes registers task routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(shared.PermTasksRead)).Get("/", h.list)
	r.With(h.rbac.Require(shared.PermTasksRead)).Get("/{id}", h.get)
	r.With(h.rbac.Require(shared.PermTasksCreate)).Post("/", h.create)
	r.With(h.rbac.Require(shared.PermTasksUpdate)).Put("/{id}", h.update)
	r.With(h.rbac.Require(shared.PermTasksDelete)).Delete("/{id}", h.delete)
}

type createTaskRequest struct {
	Title  string `json:"title" validate:"required"`
	Status string `json:"status"`
}

type updateTaskRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	task, err := h.service.Create(r.Context(), principal.ID, req.Title, req.Status)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	shared.SetAuditChanges(r.Context(), map[string]string{"title": task.Title, "status": task.Status})
	httpx.Created(w, task)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OKCount(w, list, len(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, task)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	task, err := h.service.Update(r.Context(), principal.ID, id, req.Title, req.Status)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, task)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), principal.ID, id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, map[string]string{"message": "task deleted"})
}
