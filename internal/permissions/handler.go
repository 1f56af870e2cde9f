package permissions

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

// Handler manages the permission registry endpoints.
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

// MountRoutes registers permission registry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		// Manage grants visibility too.
		r.Use(h.rbac.RequireAny(shared.PermPermissionsRead, shared.PermPermissionsManage))
		r.Get("/", h.list)
		r.Get("/categories", h.categories)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermPermissionsManage))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type createPermissionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required"`
}

type updatePermissionRequest struct {
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	p, err := h.service.Create(r.Context(), req.Name, req.Description, req.Category)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.Created(w, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	grouped, total, err := h.service.ListGroupedByCategory(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OKCount(w, grouped, total)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, categories)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	var req updatePermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	p, err := h.service.Update(r.Context(), id, req.Description, req.Category)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, map[string]string{"message": "permission deleted"})
}
