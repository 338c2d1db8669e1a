// AngelaMos | 2026
// dto.go

package rbac

import (
	"time"
)

type RoleRequest struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

type CreatePermissionRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type UpdatePermissionRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type LinkRequest struct {
	RoleID       int64 `json:"roleId"       validate:"required,gt=0"`
	PermissionID int64 `json:"permissionId" validate:"required,gt=0"`
}

type RoleResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type PermissionResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type RolePermissionResponse struct {
	RoleID         int64  `json:"roleId"`
	RoleName       string `json:"roleName"`
	PermissionID   int64  `json:"permissionId"`
	PermissionName string `json:"permissionName"`
}

func ToRoleResponse(r *Role) RoleResponse {
	return RoleResponse{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

func ToRoleResponseList(roles []Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, ToRoleResponse(&roles[i]))
	}
	return out
}

func ToPermissionResponse(p *Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func ToPermissionResponseList(perms []Permission) []PermissionResponse {
	out := make([]PermissionResponse, 0, len(perms))
	for i := range perms {
		out = append(out, ToPermissionResponse(&perms[i]))
	}
	return out
}

func ToRolePermissionResponseList(links []RolePermission) []RolePermissionResponse {
	out := make([]RolePermissionResponse, 0, len(links))
	for _, l := range links {
		out = append(out, RolePermissionResponse(l))
	}
	return out
}
