// AngelaMos | 2026
// rbac_test.go

package rbac

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/middleware"
)

type link struct{ role, perm int64 }

type memRepo struct {
	mu      sync.Mutex
	roles   map[int64]*Role
	perms   map[int64]*Permission
	links   map[link]bool
	holders map[int64]int
	nextID  int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		roles: map[int64]*Role{
			1: {ID: 1, Name: "admin"},
			3: {ID: 3, Name: "customer"},
		},
		perms:   map[int64]*Permission{1: {ID: 1, Name: "*:*"}},
		links:   map[link]bool{{1, 1}: true},
		holders: map[int64]int{3: 5},
		nextID:  100,
	}
}

func (m *memRepo) ListRoles(context.Context) ([]Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Role{}
	for _, r := range m.roles {
		if !r.IsDeleted {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) GetRole(_ context.Context, id int64) (*Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok || r.IsDeleted {
		return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) CreateRole(_ context.Context, role *Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.Name == role.Name {
			return fmt.Errorf("create role: %w", core.ErrDuplicateKey)
		}
	}
	m.nextID++
	role.ID = m.nextID
	cp := *role
	m.roles[role.ID] = &cp
	return nil
}

func (m *memRepo) RenameRole(_ context.Context, id int64, name string) (*Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok || r.IsDeleted {
		return nil, fmt.Errorf("update role: %w", core.ErrNotFound)
	}
	r.Name = name
	cp := *r
	return &cp, nil
}

func (m *memRepo) DeleteRole(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok || r.IsDeleted {
		return fmt.Errorf("delete role: %w", core.ErrNotFound)
	}
	if m.holders[id] > 0 {
		return fmt.Errorf("delete role: %w", core.ErrConflict)
	}
	r.IsDeleted = true
	return nil
}

func (m *memRepo) ListPermissions(context.Context) ([]Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Permission{}
	for _, p := range m.perms {
		if !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memRepo) GetPermission(_ context.Context, id int64) (*Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.perms[id]
	if !ok || p.IsDeleted {
		return nil, fmt.Errorf("get permission: %w", core.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) CreatePermission(_ context.Context, perm *Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	perm.ID = m.nextID
	cp := *perm
	m.perms[perm.ID] = &cp
	return nil
}

func (m *memRepo) UpdatePermission(_ context.Context, perm *Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *perm
	m.perms[perm.ID] = &cp
	return nil
}

func (m *memRepo) DeletePermission(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.perms[id]
	if !ok || p.IsDeleted {
		return fmt.Errorf("delete permission: %w", core.ErrNotFound)
	}
	p.IsDeleted = true
	return nil
}

func (m *memRepo) ListLinks(_ context.Context, roleID, permissionID int64) ([]RolePermission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []RolePermission{}
	for l := range m.links {
		if (roleID == 0 || l.role == roleID) && (permissionID == 0 || l.perm == permissionID) {
			out = append(out, RolePermission{
				RoleID: l.role, RoleName: m.roles[l.role].Name,
				PermissionID: l.perm, PermissionName: m.perms[l.perm].Name,
			})
		}
	}
	return out, nil
}

func (m *memRepo) Link(_ context.Context, roleID, permissionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, okRole := m.roles[roleID]
	p, okPerm := m.perms[permissionID]
	if !okRole || !okPerm || r.IsDeleted || p.IsDeleted {
		return fmt.Errorf("link permission: %w", core.ErrInvalidInput)
	}
	if m.links[link{roleID, permissionID}] {
		return fmt.Errorf("link permission: %w", core.ErrDuplicateKey)
	}
	m.links[link{roleID, permissionID}] = true
	return nil
}

func (m *memRepo) Unlink(_ context.Context, roleID, permissionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.links[link{roleID, permissionID}] {
		return fmt.Errorf("unlink permission: %w", core.ErrNotFound)
	}
	delete(m.links, link{roleID, permissionID})
	return nil
}

type countingInvalidator struct {
	mu  sync.Mutex
	all int
}

func (c *countingInvalidator) InvalidateUser(context.Context, int64) error { return nil }

func (c *countingInvalidator) InvalidateAll(context.Context) error {
	c.mu.Lock()
	c.all++
	c.mu.Unlock()
	return nil
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.all
}

func TestMutationsInvalidateProfiles(t *testing.T) {
	ctx := context.Background()
	inv := &countingInvalidator{}
	svc := NewService(newMemRepo(), inv)

	role, err := svc.CreateRole(ctx, RoleRequest{Name: "  Packer "})
	require.NoError(t, err)
	assert.Equal(t, "packer", role.Name)

	perm, err := svc.CreatePermission(ctx, CreatePermissionRequest{Name: "order:pack"})
	require.NoError(t, err)

	require.NoError(t, svc.Link(ctx, LinkRequest{RoleID: role.ID, PermissionID: perm.ID}))
	require.NoError(t, svc.Unlink(ctx, role.ID, perm.ID))
	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	assert.Equal(t, 5, inv.count())

	_, err = svc.CreateRole(ctx, RoleRequest{Name: "admin"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	assert.Equal(t, 5, inv.count())
}

func TestPermissionNamesAreValidated(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), nil)

	for _, name := range []string{"order", "Order:View", "order:", ":view", "order:view:all"} {
		_, err := svc.CreatePermission(ctx, CreatePermissionRequest{Name: name})
		assert.ErrorIs(t, err, core.ErrInvalidInput, name)
	}

	perm, err := svc.CreatePermission(ctx, CreatePermissionRequest{Name: "report:*"})
	require.NoError(t, err)

	bad := "report"
	_, err = svc.UpdatePermission(ctx, perm.ID, UpdatePermissionRequest{Name: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestDeleteRoleInUse(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	assert.ErrorIs(t, svc.DeleteRole(context.Background(), 3), errRoleInUse)
}

type staticResolver map[int64]*access.Profile

func (s staticResolver) Resolve(_ context.Context, userID int64) (*access.Profile, error) {
	if p, ok := s[userID]; ok {
		return p, nil
	}
	return nil, core.ErrNotFound
}

func TestRoutes(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	guard := access.NewGuard(staticResolver{
		1: {UserID: 1, RoleID: 1, RoleName: "admin", Permissions: []string{"*:*"}},
		2: {UserID: 2, RoleID: 4, RoleName: "auditor", Permissions: []string{"role:view"}},
	})

	tests := []struct {
		name   string
		caller int64
		method string
		path   string
		body   string
		want   int
	}{
		{"auditor lists roles", 2, http.MethodGet, "/roles", "", http.StatusOK},
		{"auditor cannot create role", 2, http.MethodPost, "/roles", `{"name":"picker"}`, http.StatusForbidden},
		{"auditor cannot list permissions", 2, http.MethodGet, "/permissions", "", http.StatusForbidden},
		{"admin creates permission", 1, http.MethodPost, "/permissions", `{"name":"stock:count"}`, http.StatusCreated},
		{"admin rejects bad permission", 1, http.MethodPost, "/permissions", `{"name":"stock"}`, http.StatusBadRequest},
		{"auditor lists links by role", 2, http.MethodGet, "/rolePermissions/role/1", "", http.StatusOK},
		{"auditor cannot link", 2, http.MethodPost, "/rolePermissions", `{"roleId":3,"permissionId":1}`, http.StatusForbidden},
		{"admin links", 1, http.MethodPost, "/rolePermissions", `{"roleId":3,"permissionId":1}`, http.StatusCreated},
		{"duplicate link", 1, http.MethodPost, "/rolePermissions", `{"roleId":3,"permissionId":1}`, http.StatusConflict},
		{"unknown role link", 1, http.MethodPost, "/rolePermissions", `{"roleId":77,"permissionId":1}`, http.StatusBadRequest},
		{"admin unlinks", 1, http.MethodDelete, "/rolePermissions/role/3/permission/1", "", http.StatusNoContent},
		{"unlink twice", 1, http.MethodDelete, "/rolePermissions/role/3/permission/1", "", http.StatusNotFound},
		{"delete held role", 1, http.MethodDelete, "/roles/3", "", http.StatusConflict},
		{"deleted permission gone", 1, http.MethodDelete, "/permissions/55", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticated := func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: tt.caller})
					next.ServeHTTP(w, r.WithContext(ctx))
				})
			}
			router := chi.NewRouter()
			NewHandler(svc).RegisterRoutes(router, authenticated, guard)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestRepositoryDeleteRoleDisambiguates(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE roles SET is_deleted = TRUE")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM roles")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE roles SET is_deleted = TRUE")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM roles")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	assert.ErrorIs(t, repo.DeleteRole(context.Background(), 3), core.ErrConflict)
	assert.ErrorIs(t, repo.DeleteRole(context.Background(), 9), core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryLink(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO role_permissions")).
		WithArgs(int64(2), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO role_permissions")).
		WithArgs(int64(2), int64(9)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	assert.ErrorIs(t, repo.Link(context.Background(), 2, 8), core.ErrInvalidInput)
	assert.ErrorIs(t, repo.Link(context.Background(), 2, 9), core.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}
