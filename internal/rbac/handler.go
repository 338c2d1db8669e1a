// AngelaMos | 2026
// handler.go

package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticated func(http.Handler) http.Handler,
	guard *access.Guard,
) {
	r.Route("/roles", func(r chi.Router) {
		r.Use(authenticated)

		r.With(guard.Require("role:view")).Get("/", h.ListRoles)
		r.With(guard.Require("role:view")).Get("/{roleID}", h.GetRole)
		r.With(guard.Require("role:create")).Post("/", h.CreateRole)
		r.With(guard.Require("role:update")).Put("/{roleID}", h.UpdateRole)
		r.With(guard.Require("role:delete")).Delete("/{roleID}", h.DeleteRole)
	})

	r.Route("/permissions", func(r chi.Router) {
		r.Use(authenticated)

		r.With(guard.Require("permission:view")).Get("/", h.ListPermissions)
		r.With(guard.Require("permission:view")).Get("/{permissionID}", h.GetPermission)
		r.With(guard.Require("permission:create")).Post("/", h.CreatePermission)
		r.With(guard.Require("permission:update")).Put("/{permissionID}", h.UpdatePermission)
		r.With(guard.Require("permission:delete")).Delete("/{permissionID}", h.DeletePermission)
	})

	r.Route("/rolePermissions", func(r chi.Router) {
		r.Use(authenticated)

		r.Group(func(r chi.Router) {
			r.Use(guard.Require("role:view"))
			r.Get("/", h.ListLinks)
			r.Get("/role/{roleID}", h.ListLinksByRole)
			r.Get("/permission/{permissionID}", h.ListLinksByPermission)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.Require("role:update"))
			r.Post("/", h.Link)
			r.Delete("/role/{roleID}/permission/{permissionID}", h.Unlink)
		})
	})
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, ToRoleResponseList(roles))
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "roleID")
	if err != nil {
		core.HandleServiceError(w, err, "role")
		return
	}

	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		core.HandleServiceError(w, err, "role")
		return
	}
	core.OK(w, ToRoleResponse(role))
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	role, err := h.service.CreateRole(r.Context(), req)
	if err != nil {
		core.HandleServiceError(w, err, "role")
		return
	}
	core.Created(w, ToRoleResponse(role))
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "roleID")
	if err != nil {
		core.HandleServiceError(w, err, "role")
		return
	}

	var req RoleRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	role, err := h.service.UpdateRole(r.Context(), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "role")
		return
	}
	core.OK(w, ToRoleResponse(role))
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "roleID")
	if err != nil {
		core.HandleServiceError(w, err, "role")
		return
	}

	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		core.HandleServiceError(w, err, "role")
		return
	}
	core.NoContent(w)
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, ToPermissionResponseList(perms))
}

func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "permissionID")
	if err != nil {
		core.HandleServiceError(w, err, "permission")
		return
	}

	perm, err := h.service.GetPermission(r.Context(), id)
	if err != nil {
		core.HandleServiceError(w, err, "permission")
		return
	}
	core.OK(w, ToPermissionResponse(perm))
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var req CreatePermissionRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	perm, err := h.service.CreatePermission(r.Context(), req)
	if err != nil {
		core.HandleServiceError(w, err, "permission")
		return
	}
	core.Created(w, ToPermissionResponse(perm))
}

func (h *Handler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "permissionID")
	if err != nil {
		core.HandleServiceError(w, err, "permission")
		return
	}

	var req UpdatePermissionRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	perm, err := h.service.UpdatePermission(r.Context(), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "permission")
		return
	}
	core.OK(w, ToPermissionResponse(perm))
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "permissionID")
	if err != nil {
		core.HandleServiceError(w, err, "permission")
		return
	}

	if err := h.service.DeletePermission(r.Context(), id); err != nil {
		core.HandleServiceError(w, err, "permission")
		return
	}
	core.NoContent(w)
}

func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	h.writeLinks(w, r, 0, 0)
}

func (h *Handler) ListLinksByRole(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "roleID")
	if err != nil {
		core.HandleServiceError(w, err, "role")
		return
	}
	h.writeLinks(w, r, id, 0)
}

func (h *Handler) ListLinksByPermission(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "permissionID")
	if err != nil {
		core.HandleServiceError(w, err, "permission")
		return
	}
	h.writeLinks(w, r, 0, id)
}

func (h *Handler) writeLinks(w http.ResponseWriter, r *http.Request, roleID, permissionID int64) {
	links, err := h.service.ListLinks(r.Context(), roleID, permissionID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, ToRolePermissionResponseList(links))
}

func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.service.Link(r.Context(), req); err != nil {
		core.HandleServiceError(w, err, "role permission")
		return
	}
	core.Created(w, req)
}

func (h *Handler) Unlink(w http.ResponseWriter, r *http.Request) {
	roleID, err := core.IDParam(r, "roleID")
	if err != nil {
		core.HandleServiceError(w, err, "role")
		return
	}
	permissionID, err := core.IDParam(r, "permissionID")
	if err != nil {
		core.HandleServiceError(w, err, "permission")
		return
	}

	if err := h.service.Unlink(r.Context(), roleID, permissionID); err != nil {
		core.HandleServiceError(w, err, "role permission")
		return
	}
	core.NoContent(w)
}
