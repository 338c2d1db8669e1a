// AngelaMos | 2026
// handler.go

package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/cart"
	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/middleware"
)

type Handler struct {
	service   *Service
	guard     *access.Guard
	feed      http.Handler
	validator *validator.Validate
}

func NewHandler(service *Service, guard *access.Guard, feed http.Handler) *Handler {
	return &Handler{
		service:   service,
		guard:     guard,
		feed:      feed,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticated func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticated)

		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require("order:claim"))
			r.Get("/unclaimed", h.ListUnclaimed)
			r.Get("/mine", h.ListMine)
			r.Post("/{orderID}/claim", h.Claim)
			if h.feed != nil {
				r.Handle("/ws", h.feed)
			}
		})

		r.With(h.guard.Require("order:deliver")).Post("/{orderID}/deliver", h.Deliver)
		r.Get("/{orderID}", h.GetOrder)
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/", h.CreateReview)
		r.Get("/order/{orderID}", h.ReviewByOrder)
		r.Get("/delivery/{deliveryPersonID}", h.CourierReviews)
	})
}

func (h *Handler) ListUnclaimed(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListUnclaimed(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, cart.ToCartResponseList(orders))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListByCourier(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, cart.ToCartResponseList(orders))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "orderID")
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	o, items, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	caller := middleware.GetUserID(r.Context())
	if o.DeliveryPersonID == nil || *o.DeliveryPersonID != caller {
		if err := h.guard.OwnerOr(r.Context(), o.UserID, "order:view"); err != nil {
			core.HandleServiceError(w, err, "order")
			return
		}
	}

	core.OK(w, OrderResponse{CartDetailResponse: cart.ToDetailResponse(o, items)})
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "orderID")
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	o, err := h.service.Claim(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	core.OK(w, cart.ToCartResponse(o))
}

func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "orderID")
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	o, err := h.service.Deliver(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	core.OK(w, cart.ToCartResponse(o))
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	review, err := h.service.Review(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	core.Created(w, ToReviewResponse(review))
}

func (h *Handler) ReviewByOrder(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "orderID")
	if err != nil {
		core.HandleServiceError(w, err, "review")
		return
	}

	review, err := h.service.ReviewByOrder(r.Context(), id)
	if err != nil {
		core.HandleServiceError(w, err, "review")
		return
	}

	core.OK(w, ToReviewResponse(review))
}

func (h *Handler) CourierReviews(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "deliveryPersonID")
	if err != nil {
		core.HandleServiceError(w, err, "delivery person")
		return
	}

	resp, err := h.service.CourierReviews(r.Context(), id)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}
