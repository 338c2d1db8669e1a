// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/avocado-market/avocado-api/internal/config"
	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/middleware"
)

const userIDClaim = "userId"

// JWTManager issues and verifies HS256 access tokens signed with the shared
// JWT secret. The only application claim is userId.
type JWTManager struct {
	key    jwk.Key
	expire time.Duration
	now    func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is empty: %w", core.ErrInvalidInput)
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import jwt secret: %w", err)
	}

	return &JWTManager{
		key:    key,
		expire: cfg.AccessTokenExpire,
		now:    time.Now,
	}, nil
}

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

func (m *JWTManager) CreateAccessToken(userID int64) (*IssuedToken, error) {
	now := m.now()
	expiresAt := now.Add(m.expire)

	token, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim(userIDClaim, userID).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{Token: string(signed), ExpiresAt: expiresAt}, nil
}

func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var rawID float64
	if err := token.Get(userIDClaim, &rawID); err != nil {
		return nil, fmt.Errorf("verify token: missing userId claim: %w", core.ErrTokenInvalid)
	}

	if rawID <= 0 || rawID != math.Trunc(rawID) {
		return nil, fmt.Errorf("verify token: malformed userId claim: %w", core.ErrTokenInvalid)
	}

	jti, _ := token.JwtID()

	return &middleware.AccessTokenClaims{
		UserID:  int64(rawID),
		TokenID: jti,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
