// AngelaMos | 2026
// resolver.go

package access

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avocado-market/avocado-api/internal/core"
)

type Resolver interface {
	Resolve(ctx context.Context, userID int64) (*Profile, error)
}

// Invalidator drops cached profiles after role or permission changes.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID int64) error
	InvalidateAll(ctx context.Context) error
}

type SQLResolver struct {
	db core.DBTX
}

func NewSQLResolver(db core.DBTX) *SQLResolver {
	return &SQLResolver{db: db}
}

func (r *SQLResolver) Resolve(ctx context.Context, userID int64) (*Profile, error) {
	var row struct {
		RoleID   int64  `db:"role_id"`
		RoleName string `db:"role_name"`
	}

	err := r.db.GetContext(ctx, &row, `
		SELECT u.role_id, r.name AS role_name
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1 AND u.is_deleted = false`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resolve profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}

	perms := []string{}
	err = r.db.SelectContext(ctx, &perms, `
		SELECT p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		JOIN roles r ON r.id = rp.role_id
		WHERE rp.role_id = $1 AND p.is_deleted = false AND r.is_deleted = false
		ORDER BY p.name`, row.RoleID)
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}

	return &Profile{
		UserID:      userID,
		RoleID:      row.RoleID,
		RoleName:    row.RoleName,
		Permissions: perms,
	}, nil
}

const profileKeyPrefix = "access:profile:"

func profileKey(userID int64) string {
	return profileKeyPrefix + strconv.FormatInt(userID, 10)
}

// CachedResolver keeps resolved profiles in Redis for ttl. Cache faults are
// logged and fall through to the inner resolver.
type CachedResolver struct {
	inner Resolver
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedResolver(inner Resolver, rdb *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedResolver) Resolve(ctx context.Context, userID int64) (*Profile, error) {
	key := profileKey(userID)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p Profile
		if jsonErr := json.Unmarshal(cached, &p); jsonErr == nil {
			return &p, nil
		}
		slog.Warn("discarding corrupt cached profile", "user_id", userID)
	case !errors.Is(err, redis.Nil):
		slog.Warn("profile cache read failed", "user_id", userID, "error", err)
	}

	profile, err := c.inner.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(profile)
	if err == nil {
		if setErr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			slog.Warn("profile cache write failed", "user_id", userID, "error", setErr)
		}
	}

	return profile, nil
}

func (c *CachedResolver) InvalidateUser(ctx context.Context, userID int64) error {
	if err := c.rdb.Del(ctx, profileKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate profile %d: %w", userID, err)
	}
	return nil
}

func (c *CachedResolver) InvalidateAll(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, profileKeyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan profile cache: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate profiles: %w", err)
	}
	return nil
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateUser(context.Context, int64) error { return nil }
func (noopInvalidator) InvalidateAll(context.Context) error         { return nil }

// NoopInvalidator is used where profiles are resolved without a cache.
var NoopInvalidator Invalidator = noopInvalidator{}
