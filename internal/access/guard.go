// AngelaMos | 2026
// guard.go

package access

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/middleware"
)

// Guard gates routes on capabilities resolved from the caller's role.
type Guard struct {
	resolver Resolver
}

func NewGuard(resolver Resolver) *Guard {
	return &Guard{resolver: resolver}
}

func (g *Guard) Profile(ctx context.Context) (*Profile, error) {
	userID := middleware.GetUserID(ctx)
	if userID == 0 {
		return nil, core.ErrForbidden
	}
	return g.resolver.Resolve(ctx, userID)
}

// Can reports whether the caller holds perm. A caller whose account no
// longer resolves holds nothing.
func (g *Guard) Can(ctx context.Context, perm Permission) (bool, error) {
	profile, err := g.Profile(ctx)
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrForbidden) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return profile.Can(perm), nil
}

// OwnerOr allows the owner of a resource, or anyone holding perm.
func (g *Guard) OwnerOr(ctx context.Context, ownerID int64, perm Permission) error {
	if ownerID != 0 && middleware.GetUserID(ctx) == ownerID {
		return nil
	}

	ok, err := g.Can(ctx, perm)
	if err != nil {
		return err
	}
	if !ok {
		return core.ForbiddenError("insufficient permissions")
	}
	return nil
}

func (g *Guard) Require(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := g.Can(r.Context(), perm)
			if err != nil {
				slog.Error("permission check failed",
					"permission", perm,
					"user_id", middleware.GetUserID(r.Context()),
					"error", err,
				)
				core.InternalServerError(w, err)
				return
			}

			if !ok {
				core.Forbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
