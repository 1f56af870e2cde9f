package roles

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

// Handler manages role store endpoints.
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

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermRolesRead, shared.PermRolesManage))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermRolesManage))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/permissions/{permID}", h.addPermission)
		r.Delete("/{id}/permissions/{permID}", h.removePermission)
	})
}

type createRoleRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Permissions []int64 `json:"permissions"`
}

type updateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Permissions []int64 `json:"permissions"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OKCount(w, all, len(all))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	role, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, role)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	role, err := h.service.Create(r.Context(), req.Name, req.Description, req.Permissions)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.Created(w, role)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	var req updateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	role, err := h.service.Update(r.Context(), id, req.Name, req.Description, req.Permissions)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, role)
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
	httpx.OK(w, map[string]string{"message": "role deleted"})
}

func (h *Handler) addPermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	permID, err := httpx.NamedIDParam(r, "permID")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	role, err := h.service.AddPermission(r.Context(), id, permID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, role)
}

func (h *Handler) removePermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	permID, err := httpx.NamedIDParam(r, "permID")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	role, err := h.service.RemovePermission(r.Context(), id, permID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, role)
}
