// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avocado-market/avocado-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, id, roleID int64) error
	RoleExists(ctx context.Context, roleID int64) (bool, error)
	SetSuspended(ctx context.Context, id int64, suspended bool) error
	IsSuspended(ctx context.Context, id int64) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetResetToken(ctx context.Context, id int64, digest string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, digest, passwordHash string) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, first_name, last_name, email, password_hash, phone_number,
	role_id, is_suspended, is_deleted, reset_token_hash, reset_token_expires_at,
	auth_provider, created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, password_hash,
		                   phone_number, role_id, auth_provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.RoleID,
		user.AuthProvider,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return core.MapWriteError("create user", err)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND is_deleted = FALSE`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND is_deleted = FALSE`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, phone_number = $4, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdateRole(ctx context.Context, id, roleID int64) error {
	query := `
		UPDATE users
		SET role_id = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, roleID)
	if err != nil {
		return core.MapWriteError("update role", err)
	}

	return core.RowsAffected(result, "update role")
}

func (r *repository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM roles WHERE id = $1 AND is_deleted = FALSE)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, roleID); err != nil {
		return false, fmt.Errorf("check role exists: %w", err)
	}

	return exists, nil
}

func (r *repository) SetSuspended(
	ctx context.Context,
	id int64,
	suspended bool,
) error {
	query := `
		UPDATE users
		SET is_suspended = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, suspended)
	if err != nil {
		return fmt.Errorf("set suspended: %w", err)
	}

	return core.RowsAffected(result, "set suspended")
}

func (r *repository) IsSuspended(ctx context.Context, id int64) (bool, error) {
	query := `SELECT is_suspended FROM users WHERE id = $1 AND is_deleted = FALSE`

	var suspended bool
	err := r.db.GetContext(ctx, &suspended, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("check suspended: %w", core.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("check suspended: %w", err)
	}

	return suspended, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return core.RowsAffected(result, "update password")
}

func (r *repository) SetResetToken(
	ctx context.Context,
	id int64,
	digest string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, digest, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	return core.RowsAffected(result, "set reset token")
}

// ResetPassword swaps the password of the account holding an unexpired
// reset token digest and clears the token in the same statement.
func (r *repository) ResetPassword(
	ctx context.Context,
	digest, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = NOW()
		WHERE reset_token_hash = $1
		  AND reset_token_expires_at > NOW()
		  AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, digest, passwordHash)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	return core.RowsAffected(result, "reset password")
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return core.RowsAffected(result, "delete user")
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "is_deleted = FALSE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.RoleID > 0 {
		conditions = append(conditions, fmt.Sprintf("role_id = $%d", argIdx))
		args = append(args, params.RoleID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}
