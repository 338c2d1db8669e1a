// AngelaMos | 2026
// handler.go

package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/middleware"
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
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticated)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
		r.Delete("/me", h.DeleteMe)

		r.With(guard.Require("user:list")).Get("/", h.ListUsers)
		r.With(guard.Require("user:view")).Get("/{userID}", h.GetUser)
		r.With(guard.Require("user:update")).Put("/{userID}", h.UpdateUser)
		r.With(guard.Require("user:update")).Put("/{userID}/role", h.UpdateUserRole)
		r.With(guard.Require("user:suspend")).Put("/{userID}/suspend", h.Suspend)
		r.With(guard.Require("user:suspend")).Put("/{userID}/unsuspend", h.Unsuspend)
		r.With(guard.Require("user:delete")).Delete("/{userID}", h.DeleteUser)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	user, err := h.service.UpdateMe(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMe(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     core.ParseIntQuery(r, "page", 1),
		PageSize: core.ParseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		RoleID:   int64(core.ParseIntQuery(r, "role_id", 0)),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "userID")
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "userID")
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	var req UpdateUserRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "userID")
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	var req UpdateUserRoleRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	user, err := h.service.UpdateUserRole(r.Context(), id, req.RoleID)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setSuspended(w, r, true)
}

func (h *Handler) Unsuspend(w http.ResponseWriter, r *http.Request) {
	h.setSuspended(w, r, false)
}

func (h *Handler) setSuspended(w http.ResponseWriter, r *http.Request, suspended bool) {
	id, err := core.IDParam(r, "userID")
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	if suspended && id == middleware.GetUserID(r.Context()) {
		core.Forbidden(w, "you cannot suspend your own account")
		return
	}

	user, err := h.service.SetSuspended(r.Context(), id, suspended)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "userID")
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	if id == middleware.GetUserID(r.Context()) {
		core.Forbidden(w, "use /users/me to delete your own account")
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.NoContent(w)
}
