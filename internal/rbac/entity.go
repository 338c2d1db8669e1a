// AngelaMos | 2026
// entity.go

package rbac

import (
	"time"
)

type Role struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	IsDeleted bool      `db:"is_deleted"`
	CreatedAt time.Time `db:"created_at"`
}

type Permission struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	IsDeleted   bool      `db:"is_deleted"`
	CreatedAt   time.Time `db:"created_at"`
}

// RolePermission is a grant of one permission to one role.
type RolePermission struct {
	RoleID         int64  `db:"role_id"`
	RoleName       string `db:"role_name"`
	PermissionID   int64  `db:"permission_id"`
	PermissionName string `db:"permission_name"`
}
