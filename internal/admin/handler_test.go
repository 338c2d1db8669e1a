// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/middleware"
)

type staticResolver map[int64]*access.Profile

func (s staticResolver) Resolve(_ context.Context, userID int64) (*access.Profile, error) {
	if p, ok := s[userID]; ok {
		return p, nil
	}
	return nil, core.ErrNotFound
}

func serve(caller int64, path string) *httptest.ResponseRecorder {
	h := NewHandler(Sources{
		DBStats:     func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, InUse: 3} },
		DBPing:      func(context.Context) error { return nil },
		RedisPing:   func(context.Context) error { return errors.New("connection refused") },
		FeedClients: func() int { return 4 },
	})
	guard := access.NewGuard(staticResolver{
		1: {UserID: 1, RoleID: 1, RoleName: "admin", Permissions: []string{"*:*"}},
		2: {UserID: 2, RoleID: 4, RoleName: "manager", Permissions: []string{"dashboard:view"}},
	})
	authenticated := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: caller})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	h.RegisterRoutes(r, authenticated, guard)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatsRequireSystemView(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, serve(2, "/admin/stats").Code)

	rec := serve(1, "/admin/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"database":{"healthy":true`)
	assert.Contains(t, body, `"redis":{"healthy":false}`)
	assert.Contains(t, body, `"order_feed_clients":4`)
	assert.Contains(t, body, `"in_use":3`)
}

func TestRedisStatsUnavailable(t *testing.T) {
	rec := serve(1, "/admin/stats/redis")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":null`)
}
