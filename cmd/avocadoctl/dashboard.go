// AngelaMos | 2026
// dashboard.go

package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/avocado-market/avocado-api/internal/dashboard"
)

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the KPI summary, status breakdown and weekly trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := c.database(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // process is exiting

			svc := dashboard.NewService(dashboard.NewRepository(db.DB))
			ctx := cmd.Context()

			summary, err := svc.Summary(ctx)
			if err != nil {
				return err
			}
			statuses, err := svc.Status(ctx)
			if err != nil {
				return err
			}
			weekly, err := svc.Weekly(ctx)
			if err != nil {
				return err
			}

			renderSummary(c.out, summary)
			renderStatuses(c.out, statuses)
			renderWeekly(c.out, weekly)
			return nil
		},
	}
}

func renderSummary(out io.Writer, s *dashboard.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Summary")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Products", s.TotalProducts},
		{"Orders", s.TotalOrders},
		{"Orders today", s.OrdersToday},
		{"Pending orders", s.PendingOrders},
		{"Customers", s.Customers},
	})
	t.Render()
}

func renderStatuses(out io.Writer, counts []dashboard.StatusCount) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Orders by status")
	t.AppendHeader(table.Row{"Status", "Orders"})

	var total int64
	for _, c := range counts {
		t.AppendRow(table.Row{c.Status, c.Count})
		total += c.Count
	}
	t.AppendFooter(table.Row{"Total", total})
	t.Render()
}

func renderWeekly(out io.Writer, entries []dashboard.WeeklyEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Last 7 days")
	t.AppendHeader(table.Row{"Date", "Day", "Orders"})

	for _, e := range entries {
		t.AppendRow(table.Row{e.Date, e.Weekday, e.Count})
	}
	t.Render()
}
