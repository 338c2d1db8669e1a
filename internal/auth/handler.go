// AngelaMos | 2026
// handler.go

package auth

import (
	"errors"
	"log/slog"
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

type Middlewares struct {
	Authenticated func(http.Handler) http.Handler
	OptionalAuth  func(http.Handler) http.Handler
	LoginLimit    func(http.Handler) http.Handler
	ResetLimit    func(http.Handler) http.Handler
}

func (h *Handler) RegisterRoutes(r chi.Router, mw Middlewares) {
	r.Route("/auth", func(r chi.Router) {
		r.With(mw.LoginLimit).Post("/login", h.Login)
		r.With(mw.LoginLimit, mw.OptionalAuth).Post("/register", h.Register)
		r.Get("/google", h.GoogleLogin)
		r.Get("/google/callback", h.GoogleCallback)
		r.With(mw.ResetLimit).Post("/forgot-password", h.ForgotPassword)
		r.With(mw.ResetLimit).Post("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticated)
			r.Get("/me", h.GetMe)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	return core.DecodeJSON(w, r, h.validator, dst)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.Unauthorized(w, "Invalid email or password")
			return
		}
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	allowRole := false
	if req.RoleID != nil && middleware.IsAuthenticated(r.Context()) {
		ok, err := h.guard.Can(r.Context(), "user:update")
		if err != nil {
			core.InternalServerError(w, err)
			return
		}
		allowRole = ok
	}

	resp, err := h.service.Register(r.Context(), req, allowRole)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.HandleServiceError(w, err, "role")
		return
	}

	core.Created(w, resp)
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.GoogleAuthURL(r.Context())
	if err != nil {
		core.HandleServiceError(w, err, "google")
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target, err := h.service.GoogleCallback(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		if errors.Is(err, ErrInvalidOAuthState) {
			core.BadRequest(w, "invalid or expired oauth state")
			return
		}
		core.HandleServiceError(w, err, "user")
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		slog.Error("forgot password failed", "error", err)
	}

	core.OK(w, MessageResponse{
		Message: "If that email is registered, a reset link has been sent.",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			core.BadRequest(w, "invalid or expired reset token")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "Password has been reset."})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	err := h.service.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.Unauthorized(w, "current password is incorrect")
			return
		}
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, MessageResponse{Message: "Password updated."})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	profile, err := h.guard.Profile(r.Context())
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, MeResponse{
		UserResponse: *user,
		RoleName:     profile.RoleName,
		Permissions:  profile.Permissions,
	})
}
