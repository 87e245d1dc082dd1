package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"go-repair-shop/internal/page"
	"go-repair-shop/internal/view"
)

const recentOrders = 5

func newDashboardCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"stats"},
		Short:   "Show work order totals and the latest orders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, snap, err := openPage(cmd.Context(), deps, page.KindDashboard, nil)
			if err != nil {
				return err
			}
			defer c.Close()

			data := c.Data()
			rows := view.JoinWorkOrders(data.WorkOrders, data.Clients, data.Vehicles)

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, renderStats(snap.Stats))
			_, _ = fmt.Fprintln(out, titleStyle.Render("Recent work orders"))
			_, _ = fmt.Fprintln(out, renderTable(workOrderHeaders, workOrderRows(view.Recent(rows, recentOrders))))
			return nil
		},
	}
}

func renderStats(stats view.Stats) string {
	tile := func(name string, value int) string {
		return cardStyle.Width(18).Render(mutedStyle.Render(name) + "\n" + titleStyle.Render(strconv.Itoa(value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Total orders", stats.Total),
		tile("New", stats.New),
		tile("In progress", stats.InProgress),
		tile("Completed", stats.Completed),
		tile("Awaiting payment", stats.AwaitingPayment),
	)
}
