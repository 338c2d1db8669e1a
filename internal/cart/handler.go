// AngelaMos | 2026
// handler.go

package cart

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
	r.Route("/cart", func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/createNewCart", h.CreateBasket)
		r.Get("/active", h.ActiveBasket)
		r.Get("/getAllCartByIsDeletedFalse/{userID}", h.ListBaskets)
		r.Get("/getAllCartByIsDeletedTrue/{userID}", h.ListOrders)
		r.Delete("/deleteCartById/{cartID}", h.Abandon)
		r.Get("/{cartID}", h.GetCart)
		r.Post("/{cartID}/checkout", h.Checkout)
	})

	r.Route("/cartProduct", func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/", h.AddItem)
		r.Get("/{cartID}", h.ListItems)
		r.Put("/{cartID}/{productID}", h.UpdateItem)
		r.Delete("/{cartID}/{productID}", h.RemoveItem)
	})
}

// authorize loads the cart and checks that the caller owns it or holds
// perm. It writes the error response itself.
func (h *Handler) authorize(
	w http.ResponseWriter,
	r *http.Request,
	perm access.Permission,
) (*Cart, bool) {
	id, err := core.IDParam(r, "cartID")
	if err != nil {
		core.HandleServiceError(w, err, "cart")
		return nil, false
	}
	return h.authorizeID(w, r, id, perm)
}

func (h *Handler) authorizeID(
	w http.ResponseWriter,
	r *http.Request,
	id int64,
	perm access.Permission,
) (*Cart, bool) {
	c, err := h.service.GetCart(r.Context(), id)
	if err != nil {
		core.HandleServiceError(w, err, "cart")
		return nil, false
	}

	if err := h.guard.OwnerOr(r.Context(), c.UserID, perm); err != nil {
		core.HandleServiceError(w, err, "cart")
		return nil, false
	}

	return c, true
}

func (h *Handler) CreateBasket(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.CreateBasket(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleServiceError(w, err, "cart")
		return
	}

	core.Created(w, ToCartResponse(c))
}

func (h *Handler) ActiveBasket(w http.ResponseWriter, r *http.Request) {
	c, items, err := h.service.ActiveBasket(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleServiceError(w, err, "active cart")
		return
	}

	core.OK(w, ToDetailResponse(c, items))
}

func (h *Handler) ListBaskets(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.ownerParam(w, r)
	if !ok {
		return
	}

	carts, err := h.service.ListBaskets(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCartResponseList(carts))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.ownerParam(w, r)
	if !ok {
		return
	}

	carts, err := h.service.ListOrders(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCartResponseList(carts))
}

func (h *Handler) ownerParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := core.IDParam(r, "userID")
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return 0, false
	}

	if err := h.guard.OwnerOr(r.Context(), userID, "cart:view"); err != nil {
		core.HandleServiceError(w, err, "user")
		return 0, false
	}

	return userID, true
}

func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	c, ok := h.authorize(w, r, "cart:update")
	if !ok {
		return
	}

	if err := h.service.Abandon(r.Context(), c.ID); err != nil {
		core.HandleServiceError(w, err, "cart")
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.authorize(w, r, "cart:view")
	if !ok {
		return
	}

	items, err := h.service.Items(r.Context(), c.ID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToDetailResponse(c, items))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	c, ok := h.authorize(w, r, "cart:update")
	if !ok {
		return
	}

	var req CheckoutRequest
	if !core.DecodeOptionalJSON(w, r, h.validator, &req) {
		return
	}

	order, basket, err := h.service.Checkout(r.Context(), c, req.LocationID)
	if err != nil {
		core.HandleServiceError(w, err, "cart")
		return
	}

	core.OK(w, CheckoutResponse{
		Order:  ToCartResponse(order),
		Basket: ToCartResponse(basket),
	})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	if _, ok := h.authorizeID(w, r, req.CartID, "cart:update"); !ok {
		return
	}

	items, err := h.service.AddItem(r.Context(), req)
	if err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	core.Created(w, ToItemResponseList(items))
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	c, ok := h.authorize(w, r, "cart:view")
	if !ok {
		return
	}

	items, err := h.service.Items(r.Context(), c.ID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToItemResponseList(items))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.authorize(w, r, "cart:update")
	if !ok {
		return
	}

	productID, err := core.IDParam(r, "productID")
	if err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	var req UpdateItemRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	items, err := h.service.SetItemQuantity(r.Context(), c.ID, productID, req.Quantity)
	if err != nil {
		core.HandleServiceError(w, err, "cart item")
		return
	}

	core.OK(w, ToItemResponseList(items))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.authorize(w, r, "cart:update")
	if !ok {
		return
	}

	productID, err := core.IDParam(r, "productID")
	if err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	if err := h.service.RemoveItem(r.Context(), c.ID, productID); err != nil {
		core.HandleServiceError(w, err, "cart item")
		return
	}

	core.NoContent(w)
}
