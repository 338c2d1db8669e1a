// AngelaMos | 2026
// handler.go

package favorite

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
	guard     *access.Guard
	validator *validator.Validate
}

func NewHandler(service *Service, guard *access.Guard) *Handler {
	return &Handler{
		service:   service,
		guard:     guard,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticated func(http.Handler) http.Handler) {
	r.Route("/favorite", func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/", h.Create)
		r.Get("/{userID}", h.List)
		r.Delete("/delete/{favoriteID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := core.IDParam(r, "userID")
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	if err := h.guard.OwnerOr(r.Context(), userID, "favorite:view"); err != nil {
		core.HandleServiceError(w, err, "favorite")
		return
	}

	favorites, err := h.service.List(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToFavoriteResponseList(favorites))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFavoriteRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	f, err := h.service.Add(r.Context(), middleware.GetUserID(r.Context()), req.ProductID)
	if err != nil {
		core.HandleServiceError(w, err, "favorite")
		return
	}

	core.Created(w, ToFavoriteResponse(f))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "favoriteID")
	if err != nil {
		core.HandleServiceError(w, err, "favorite")
		return
	}

	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		core.HandleServiceError(w, err, "favorite")
		return
	}

	if err := h.guard.OwnerOr(r.Context(), f.UserID, "favorite:delete"); err != nil {
		core.HandleServiceError(w, err, "favorite")
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		core.HandleServiceError(w, err, "favorite")
		return
	}

	core.NoContent(w)
}
