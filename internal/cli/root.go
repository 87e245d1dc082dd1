// Package cli is the shopctl command tree. Each command that touches the API
// checks the stored session first, then works through a page controller so
// listing, validation and notifications behave the same as in the browser.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// globalFlags are shared by every command.
type globalFlags struct {
	configDir string
	apiURL    string
	pageSize  int
	verbose   bool
}

// NewRootCmd builds the full command tree. The dependencies are created in
// PersistentPreRunE, after flags are parsed.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	deps := &Dependencies{}

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Manage clients, vehicles and work orders of the repair shop",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return deps.init(cmd, flags)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			deps.close()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("shopctl %s\n", version))

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "directory holding config.yaml and session.json")
	pf.StringVar(&flags.apiURL, "api-url", "", "API base URL (overrides config)")
	pf.IntVar(&flags.pageSize, "page-size", 0, "rows per page (overrides config)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "mirror log output to stderr")

	root.AddCommand(
		newLoginCmd(deps),
		newLogoutCmd(deps),
		newWhoamiCmd(deps),
		newClientsCmd(deps),
		newVehiclesCmd(deps),
		newWorkOrdersCmd(deps),
		newDashboardCmd(deps),
		newUsersCmd(deps),
		newWatchCmd(deps),
		newBrowseCmd(deps),
		newConfigCmd(deps),
	)

	return root
}

// Execute runs shopctl with the process arguments, cancelling on SIGINT or
// SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return err
}

func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, errorStyle.Render("Error: ")+describeError(err))
}
