package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/validate"
)

func newUsersCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage shop accounts (admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// cobra runs only the closest persistent hook, so chain the root's.
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			_, err := deps.requireSession(model.RoleAdmin)
			return err
		},
	}

	cmd.AddCommand(
		newUsersListCmd(deps),
		newUsersCreateCmd(deps),
		newUsersUpdateCmd(deps),
		newUsersDeleteCmd(deps),
	)
	return cmd
}

func newUsersListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := deps.API.Users().List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{model.FormatID(u.ID), u.Username, label(string(u.Role)), u.CreatedAt.Format("2006-01-02")})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Username", "Role", "Created"}, rows))
			return nil
		},
	}
}

func newUsersCreateCmd(deps *Dependencies) *cobra.Command {
	var in model.CreateUserRequest
	var role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Username = strings.TrimSpace(in.Username)
			in.Role = model.Role(model.NormalizeEnum(role))
			if in.Role == "" {
				in.Role = model.RoleEmployee
			}
			if err := validate.User(in).Err(); err != nil {
				return err
			}

			user, err := deps.API.Users().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			deps.Notify.Publish("User created successfully", notify.SeveritySuccess)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), model.FormatID(user.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(model.RoleEmployee), "admin or employee")
	return cmd
}

func newUsersUpdateCmd(deps *Dependencies) *cobra.Command {
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename an account, reset its password or change its role",
		Args:  idArg("user"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])

			var in model.UpdateUserRequest
			changed := cmd.Flags().Changed
			if changed("username") {
				trimmed := strings.TrimSpace(username)
				in.Username = &trimmed
			}
			if changed("password") {
				in.Password = &password
			}
			if changed("role") {
				r := model.Role(model.NormalizeEnum(role))
				if !r.Valid() {
					return fmt.Errorf("--role must be admin or employee, got %q", role)
				}
				in.Role = &r
			}
			if in == (model.UpdateUserRequest{}) {
				return fmt.Errorf("nothing to update: pass --username, --password or --role")
			}

			if _, err := deps.API.Users().Update(cmd.Context(), id, in); err != nil {
				return err
			}
			deps.Notify.Publish("User updated successfully", notify.SeveritySuccess)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "new login name")
	cmd.Flags().StringVar(&password, "password", "", "new password (revokes the user's sessions)")
	cmd.Flags().StringVar(&role, "role", "", "admin or employee")
	return cmd
}

func newUsersDeleteCmd(deps *Dependencies) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an account",
		Args:  idArg("user"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			if err := confirm(fmt.Sprintf("Delete user #%d?", id), yes); err != nil {
				return err
			}
			if err := deps.API.Users().Delete(cmd.Context(), id); err != nil {
				return err
			}
			deps.Notify.Publish("User deleted successfully", notify.SeveritySuccess)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
