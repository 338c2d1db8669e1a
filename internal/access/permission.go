// AngelaMos | 2026
// permission.go

package access

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/avocado-market/avocado-api/internal/core"
)

// Permission is a capability of the form "resource:action". Either part may
// be the wildcard "*".
type Permission string

const (
	Wildcard  = "*"
	SuperUser = Permission("*:*")
)

var permissionPattern = regexp.MustCompile(`^(\*|[a-z][a-z_]*):(\*|[a-z][a-z_]*)$`)

func ParsePermission(raw string) (Permission, error) {
	raw = strings.TrimSpace(raw)
	if !permissionPattern.MatchString(raw) {
		return "", fmt.Errorf(
			"permission %q must have the form resource:action: %w",
			raw,
			core.ErrInvalidInput,
		)
	}
	return Permission(raw), nil
}

func (p Permission) Split() (resource, action string) {
	resource, action, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return resource, action
}

// Matches reports whether a granted permission p satisfies required.
func (p Permission) Matches(required Permission) bool {
	if p == SuperUser || p == required {
		return true
	}

	res, act := p.Split()
	reqRes, reqAct := required.Split()
	if res == "" || reqRes == "" {
		return false
	}

	resourceOK := res == Wildcard || res == reqRes
	actionOK := act == Wildcard || act == reqAct
	return resourceOK && actionOK
}

// Profile is the resolved capability set of one user.
type Profile struct {
	UserID      int64    `json:"user_id"`
	RoleID      int64    `json:"role_id"`
	RoleName    string   `json:"role_name"`
	Permissions []string `json:"permissions"`
}

func (p *Profile) Can(required Permission) bool {
	if p == nil {
		return false
	}
	for _, granted := range p.Permissions {
		if Permission(granted).Matches(required) {
			return true
		}
	}
	return false
}
