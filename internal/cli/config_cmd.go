package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the shopctl profile",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml with the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(deps.ConfigPath); err == nil && !force {
				return fmt.Errorf("%s already exists, pass --force to overwrite", deps.ConfigPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := deps.Config.Save(deps.ConfigPath); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "wrote "+deps.ConfigPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := yaml.Marshal(deps.Config)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, mutedStyle.Render("# "+deps.ConfigPath))
			_, err = out.Write(raw)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
