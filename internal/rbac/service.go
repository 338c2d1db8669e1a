// AngelaMos | 2026
// service.go

package rbac

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/core"
)

var errRoleInUse = core.ConflictError("role is still assigned to users")

// Service manages roles, permissions and their links. Every successful
// mutation drops all cached access profiles.
type Service struct {
	repo     Repository
	profiles access.Invalidator
}

func NewService(repo Repository, profiles access.Invalidator) *Service {
	if profiles == nil {
		profiles = access.NoopInvalidator
	}
	return &Service{repo: repo, profiles: profiles}
}

func (s *Service) forgetProfiles(ctx context.Context) {
	if err := s.profiles.InvalidateAll(ctx); err != nil {
		slog.Warn("access profile invalidation failed", "error", err)
	}
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	return s.repo.GetRole(ctx, id)
}

func (s *Service) CreateRole(ctx context.Context, req RoleRequest) (*Role, error) {
	role := &Role{Name: normalizeRoleName(req.Name)}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	s.forgetProfiles(ctx)
	return role, nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, req RoleRequest) (*Role, error) {
	role, err := s.repo.RenameRole(ctx, id, normalizeRoleName(req.Name))
	if err != nil {
		return nil, err
	}
	s.forgetProfiles(ctx)
	return role, nil
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return errRoleInUse
		}
		return err
	}
	s.forgetProfiles(ctx)
	return nil
}

func normalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *Service) GetPermission(ctx context.Context, id int64) (*Permission, error) {
	return s.repo.GetPermission(ctx, id)
}

func (s *Service) CreatePermission(
	ctx context.Context,
	req CreatePermissionRequest,
) (*Permission, error) {
	name, err := access.ParsePermission(req.Name)
	if err != nil {
		return nil, err
	}

	perm := &Permission{Name: string(name), Description: strings.TrimSpace(req.Description)}
	if err := s.repo.CreatePermission(ctx, perm); err != nil {
		return nil, err
	}
	s.forgetProfiles(ctx)
	return perm, nil
}

func (s *Service) UpdatePermission(
	ctx context.Context,
	id int64,
	req UpdatePermissionRequest,
) (*Permission, error) {
	perm, err := s.repo.GetPermission(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := access.ParsePermission(*req.Name)
		if err != nil {
			return nil, err
		}
		perm.Name = string(name)
	}
	if req.Description != nil {
		perm.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.repo.UpdatePermission(ctx, perm); err != nil {
		return nil, err
	}
	s.forgetProfiles(ctx)
	return perm, nil
}

func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	if err := s.repo.DeletePermission(ctx, id); err != nil {
		return err
	}
	s.forgetProfiles(ctx)
	return nil
}

func (s *Service) ListLinks(ctx context.Context, roleID, permissionID int64) ([]RolePermission, error) {
	return s.repo.ListLinks(ctx, roleID, permissionID)
}

func (s *Service) Link(ctx context.Context, req LinkRequest) error {
	if err := s.repo.Link(ctx, req.RoleID, req.PermissionID); err != nil {
		return err
	}
	s.forgetProfiles(ctx)
	return nil
}

func (s *Service) Unlink(ctx context.Context, roleID, permissionID int64) error {
	if err := s.repo.Unlink(ctx, roleID, permissionID); err != nil {
		return err
	}
	s.forgetProfiles(ctx)
	return nil
}
