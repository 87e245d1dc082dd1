package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-repair-shop/internal/page"
	"go-repair-shop/internal/tui"
)

var browseKinds = map[string]page.Kind{
	"work-orders": page.KindWorkOrders,
	"vehicles":    page.KindVehicles,
	"clients":     page.KindClients,
}

func newBrowseCmd(deps *Dependencies) *cobra.Command {
	var (
		start string
		live  bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			kind, ok := browseKinds[start]
			if !ok {
				return fmt.Errorf("unknown page %q, use work-orders, vehicles or clients", start)
			}
			if !interactive() {
				return fmt.Errorf("browse needs a terminal, use the list commands instead")
			}

			opts := tui.Options{
				Services: deps.services(),
				Notify:   deps.Notify,
				Logger:   deps.Logger,
				Debounce: deps.Config.Debounce,
				PageSize: deps.Config.PageSize,
				Kind:     kind,
			}
			if live {
				opts.Watch = deps.API.Watch
			}

			deps.Logger.Debug("browser opened", "page", string(kind), "live", live)
			return tui.Run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&start, "page", "work-orders", "page to open: work-orders, vehicles or clients")
	cmd.Flags().BoolVar(&live, "live", true, "reload when the server reports changes")
	return cmd
}
