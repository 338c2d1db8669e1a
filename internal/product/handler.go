// AngelaMos | 2026
// handler.go

package product

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

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
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.With(guard.Require("product:export")).Get("/export", h.Export)
			r.With(guard.Require("product:create")).Post("/", h.Create)
			r.With(guard.Require("product:update")).Put("/{productID}", h.Update)
			r.With(guard.Require("product:delete")).Delete("/{productID}", h.Delete)
		})

		r.Get("/{productID}", h.Get)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListProductsParams{
		Page:     core.ParseIntQuery(r, "page", 1),
		PageSize: core.ParseIntQuery(r, "page_size", DefaultPageSize),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			core.BadRequest(w, "categoryId must be a positive integer")
			return
		}
		params.CategoryID = id
	}

	products, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(w, ToProductResponseList(products), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "productID")
	if err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	core.OK(w, ToProductResponse(p))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	core.Created(w, ToProductResponse(p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "productID")
	if err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	var req UpdateProductRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	core.OK(w, ToProductResponse(p))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.IDParam(r, "productID")
	if err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		core.HandleServiceError(w, err, "product")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Catalogue(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, products); err != nil {
		core.InternalServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", exportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w) //nolint:errcheck // client went away
}
