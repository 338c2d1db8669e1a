// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avocado-market/avocado-api/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(_ context.Context, _ string) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

type stubStatus struct {
	suspended bool
	err       error
}

func (s stubStatus) IsSuspended(_ context.Context, _ int64) (bool, error) {
	return s.suspended, s.err
}

func echoUserID(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprint(w, GetUserID(r.Context()))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp core.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestAuthenticatorMissingTokenIsForbidden(t *testing.T) {
	h := Authenticator(stubVerifier{})(http.HandlerFunc(echoUserID))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticatorInvalidAndExpired(t *testing.T) {
	cases := map[string]struct {
		err  error
		code string
	}{
		"invalid": {fmt.Errorf("parse: %w", core.ErrTokenInvalid), "TOKEN_INVALID"},
		"expired": {fmt.Errorf("parse: %w", core.ErrTokenExpired), "TOKEN_EXPIRED"},
		"unknown": {errors.New("garbage"), "TOKEN_INVALID"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := Authenticator(stubVerifier{err: tc.err})(http.HandlerFunc(echoUserID))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer abc")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

func TestAuthenticatorStoresUserID(t *testing.T) {
	h := Authenticator(stubVerifier{claims: &AccessTokenClaims{UserID: 42}})(
		http.HandlerFunc(echoUserID),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=qtok", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Upgrade", "websocket")
	assert.Equal(t, "qtok", ExtractToken(req))

	req.Header.Set("Authorization", "Bearer htok")
	assert.Equal(t, "htok", ExtractToken(req))

	req.Header.Set("Authorization", "Basic htok")
	assert.Empty(t, ExtractToken(req))
}

func TestOptionalAuthIgnoresBadToken(t *testing.T) {
	h := OptionalAuth(stubVerifier{err: core.ErrTokenInvalid})(http.HandlerFunc(echoUserID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Body.String())
}

func TestRequireActive(t *testing.T) {
	cases := []struct {
		name   string
		status stubStatus
		want   int
	}{
		{"active", stubStatus{}, http.StatusOK},
		{"suspended", stubStatus{suspended: true}, http.StatusForbidden},
		{"missing", stubStatus{err: fmt.Errorf("get: %w", core.ErrNotFound)}, http.StatusNotFound},
		{"db down", stubStatus{err: errors.New("conn refused")}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := RequireActive(tc.status)(http.HandlerFunc(echoUserID))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{UserID: 7}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-id", seen)
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(true)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestLocalLimiterBlocksAfterBurst(t *testing.T) {
	l := newLocalLimiter()
	limit := PerMinute(2, 2)

	for i := 0; i < 2; i++ {
		res, err := l.allow("k", limit)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Allowed)
	}

	res, err := l.allow("k", limit)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	res, err = l.allow("other", limit)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Allowed)
}

func TestKeyByIPAndRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.9:5123"

	assert.Equal(t, "ratelimit:login:ip:10.0.0.9", KeyByIPAndRoute("login")(req))

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "ratelimit:ip:2.2.2.2", KeyByIP(req))
}
