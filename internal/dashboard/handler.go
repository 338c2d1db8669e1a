// AngelaMos | 2026
// handler.go

package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticated func(http.Handler) http.Handler,
	guard *access.Guard,
) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authenticated)
		r.Use(guard.Require("dashboard:view"))

		r.Get("/summary", h.Summary)
		r.Get("/status", h.Status)
		r.Get("/weekly", h.Weekly)
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, summary)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Status(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, counts)
}

func (h *Handler) Weekly(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Weekly(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, entries)
}
