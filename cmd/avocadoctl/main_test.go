// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avocado-market/avocado-api/internal/dashboard"
	"github.com/avocado-market/avocado-api/internal/rbac"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{})

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"check"},
		{"dashboard"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, &dashboard.Summary{TotalProducts: 42, OrdersToday: 7})

	out := buf.String()
	assert.Contains(t, out, "Products")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "Orders today")
}

func TestRenderStatusesTotals(t *testing.T) {
	var buf bytes.Buffer
	renderStatuses(&buf, []dashboard.StatusCount{
		{Status: "NEW", Count: 3},
		{Status: "Delivered", Count: 9},
	})

	assert.Contains(t, buf.String(), "12")
}

func TestCheckRolesReportsMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := rbac.NewRepository(sqlx.NewDb(db, "pgx"))

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM roles")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_deleted", "created_at"}).
			AddRow(int64(1), "admin", false, now).
			AddRow(int64(3), "customer", false, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM role_permissions rp")).
		WithArgs(int64(1), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"role_id", "role_name", "permission_id", "permission_name"}).
			AddRow(int64(1), "admin", int64(1), "*:*"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM role_permissions rp")).
		WithArgs(int64(3), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"role_id", "role_name", "permission_id", "permission_name"}))

	var buf bytes.Buffer
	err = checkRoles(context.Background(), &buf, repo)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery")
	assert.Contains(t, err.Error(), "manager")
	assert.Contains(t, buf.String(), "*:*")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinLimited(t *testing.T) {
	assert.Equal(t, "[a b]", joinLimited([]string{"a", "b"}, 4))
	assert.Equal(t, "[a b] +1 more", joinLimited([]string{"a", "b", "c"}, 2))
}
