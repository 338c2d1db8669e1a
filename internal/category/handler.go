// AngelaMos | 2026
// handler.go

package category

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
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{categoryID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.With(guard.Require("category:create")).Post("/", h.Create)
			r.With(guard.Require("category:update")).Put("/{categoryID}", h.Update)
			r.With(guard.Require("category:delete")).Delete("/{categoryID}", h.Delete)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCategoryResponseList(categories))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "categoryID")
	if err != nil {
		core.HandleServiceError(w, err, "category")
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		core.HandleServiceError(w, err, "category")
		return
	}

	core.OK(w, ToCategoryResponse(c))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.HandleServiceError(w, err, "category")
		return
	}

	core.Created(w, ToCategoryResponse(c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "categoryID")
	if err != nil {
		core.HandleServiceError(w, err, "category")
		return
	}

	var req UpdateCategoryRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "category")
		return
	}

	core.OK(w, ToCategoryResponse(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "categoryID")
	if err != nil {
		core.HandleServiceError(w, err, "category")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		core.HandleServiceError(w, err, "category")
		return
	}

	core.NoContent(w)
}
