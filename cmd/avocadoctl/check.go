// AngelaMos | 2026
// check.go

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/avocado-market/avocado-api/internal/rbac"
)

var seededRoles = []string{"admin", "delivery", "customer", "manager"}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the seeded roles exist and list their grants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := c.database(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // process is exiting

			return checkRoles(cmd.Context(), c.out, rbac.NewRepository(db.DB))
		},
	}
}

type roleGrants struct {
	role   rbac.Role
	grants []rbac.RolePermission
}

func checkRoles(ctx context.Context, out io.Writer, repo rbac.Repository) error {
	roles, err := repo.ListRoles(ctx)
	if err != nil {
		return err
	}

	present := make(map[string]bool, len(roles))
	rows := make([]roleGrants, 0, len(roles))
	for _, role := range roles {
		grants, err := repo.ListLinks(ctx, role.ID, 0)
		if err != nil {
			return err
		}
		present[role.Name] = true
		rows = append(rows, roleGrants{role: role, grants: grants})
	}

	renderRoles(out, rows)

	var missing []string
	for _, name := range seededRoles {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("seeded roles missing: %v", missing)
	}

	fmt.Fprintln(out, "seed check passed")
	return nil
}

func renderRoles(out io.Writer, rows []roleGrants) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Role", "Grants", "Permissions"})

	for _, r := range rows {
		names := make([]string, 0, len(r.grants))
		for _, g := range r.grants {
			names = append(names, g.PermissionName)
		}
		t.AppendRow(table.Row{r.role.ID, r.role.Name, len(r.grants), joinLimited(names, 4)})
	}

	t.Render()
}

func joinLimited(items []string, limit int) string {
	if len(items) <= limit {
		return fmt.Sprint(items)
	}
	return fmt.Sprintf("%v +%d more", items[:limit], len(items)-limit)
}
