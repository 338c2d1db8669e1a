// AngelaMos | 2026
// repository.go

package rbac

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avocado-market/avocado-api/internal/core"
)

type Repository interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (*Role, error)
	CreateRole(ctx context.Context, role *Role) error
	RenameRole(ctx context.Context, id int64, name string) (*Role, error)
	DeleteRole(ctx context.Context, id int64) error

	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermission(ctx context.Context, id int64) (*Permission, error)
	CreatePermission(ctx context.Context, perm *Permission) error
	UpdatePermission(ctx context.Context, perm *Permission) error
	DeletePermission(ctx context.Context, id int64) error

	ListLinks(ctx context.Context, roleID, permissionID int64) ([]RolePermission, error)
	Link(ctx context.Context, roleID, permissionID int64) error
	Unlink(ctx context.Context, roleID, permissionID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ListRoles(ctx context.Context) ([]Role, error) {
	roles := []Role{}
	err := r.db.SelectContext(ctx, &roles, `
		SELECT id, name, is_deleted, created_at
		FROM roles
		WHERE is_deleted = FALSE
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (r *repository) GetRole(ctx context.Context, id int64) (*Role, error) {
	var role Role
	err := r.db.GetContext(ctx, &role, `
		SELECT id, name, is_deleted, created_at
		FROM roles
		WHERE id = $1 AND is_deleted = FALSE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

func (r *repository) CreateRole(ctx context.Context, role *Role) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO roles (name) VALUES ($1) RETURNING id, created_at`,
		role.Name,
	).Scan(&role.ID, &role.CreatedAt)

	return core.MapWriteError("create role", err)
}

func (r *repository) RenameRole(ctx context.Context, id int64, name string) (*Role, error) {
	var role Role
	err := r.db.GetContext(ctx, &role, `
		UPDATE roles SET name = $2
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING id, name, is_deleted, created_at`, id, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update role: %w", core.ErrNotFound)
	}
	if err := core.MapWriteError("update role", err); err != nil {
		return nil, err
	}
	return &role, nil
}

// DeleteRole soft-deletes a role nobody holds. A live role that is still
// assigned to users reports ErrConflict.
func (r *repository) DeleteRole(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE roles SET is_deleted = TRUE
		WHERE id = $1 AND is_deleted = FALSE
		  AND NOT EXISTS (
		      SELECT 1 FROM users WHERE role_id = $1 AND is_deleted = FALSE
		  )`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if n > 0 {
		return nil
	}

	var live bool
	if err := r.db.GetContext(ctx, &live,
		`SELECT EXISTS(SELECT 1 FROM roles WHERE id = $1 AND is_deleted = FALSE)`, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if live {
		return fmt.Errorf("delete role: %w", core.ErrConflict)
	}
	return fmt.Errorf("delete role: %w", core.ErrNotFound)
}

func (r *repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	perms := []Permission{}
	err := r.db.SelectContext(ctx, &perms, `
		SELECT id, name, description, is_deleted, created_at
		FROM permissions
		WHERE is_deleted = FALSE
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}

func (r *repository) GetPermission(ctx context.Context, id int64) (*Permission, error) {
	var perm Permission
	err := r.db.GetContext(ctx, &perm, `
		SELECT id, name, description, is_deleted, created_at
		FROM permissions
		WHERE id = $1 AND is_deleted = FALSE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get permission: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return &perm, nil
}

func (r *repository) CreatePermission(ctx context.Context, perm *Permission) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO permissions (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		perm.Name, perm.Description,
	).Scan(&perm.ID, &perm.CreatedAt)

	return core.MapWriteError("create permission", err)
}

func (r *repository) UpdatePermission(ctx context.Context, perm *Permission) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE permissions SET name = $2, description = $3
		WHERE id = $1 AND is_deleted = FALSE`,
		perm.ID, perm.Name, perm.Description)
	if err != nil {
		return core.MapWriteError("update permission", err)
	}
	return core.RowsAffected(result, "update permission")
}

func (r *repository) DeletePermission(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE permissions SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	return core.RowsAffected(result, "delete permission")
}

// ListLinks returns grants filtered by role and/or permission; zero ids
// match everything.
func (r *repository) ListLinks(
	ctx context.Context,
	roleID, permissionID int64,
) ([]RolePermission, error) {
	links := []RolePermission{}
	err := r.db.SelectContext(ctx, &links, `
		SELECT rp.role_id, r.name AS role_name, rp.permission_id, p.name AS permission_name
		FROM role_permissions rp
		JOIN roles r ON r.id = rp.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ($1::bigint = 0 OR rp.role_id = $1)
		  AND ($2::bigint = 0 OR rp.permission_id = $2)
		ORDER BY rp.role_id, p.name`, roleID, permissionID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	return links, nil
}

// Link grants a live permission to a live role. Unknown or deleted ids
// insert nothing and report ErrInvalidInput.
func (r *repository) Link(ctx context.Context, roleID, permissionID int64) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT r.id, p.id
		FROM roles r, permissions p
		WHERE r.id = $1 AND r.is_deleted = FALSE
		  AND p.id = $2 AND p.is_deleted = FALSE`, roleID, permissionID)
	if err != nil {
		return core.MapWriteError("link permission", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("link permission: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("link permission: unknown role or permission: %w", core.ErrInvalidInput)
	}
	return nil
}

func (r *repository) Unlink(ctx context.Context, roleID, permissionID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`,
		roleID, permissionID)
	if err != nil {
		return fmt.Errorf("unlink permission: %w", err)
	}
	return core.RowsAffected(result, "unlink permission")
}
