// AngelaMos | 2026
// active.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avocado-market/avocado-api/internal/core"
)

// AccountStatusChecker reports whether a live account is suspended. It
// returns core.ErrNotFound for missing or deleted accounts.
type AccountStatusChecker interface {
	IsSuspended(ctx context.Context, userID int64) (bool, error)
}

// RequireActive re-reads the caller's account on every request and refuses
// suspended (403) or vanished (404) accounts. Mount after Authenticator.
func RequireActive(checker AccountStatusChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == 0 {
				core.JSONError(w, core.ForbiddenError("missing authorization token"))
				return
			}

			suspended, err := checker.IsSuspended(r.Context(), userID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.NotFound(w, "user")
					return
				}
				slog.Error("account status lookup failed",
					"user_id", userID,
					"error", err,
				)
				core.InternalServerError(w, err)
				return
			}

			if suspended {
				core.JSONError(w, core.SuspendedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
