package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newLoginCmd(deps *Dependencies) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" || password == "" {
				if !interactive() {
					return errors.New("--username and --password are required without a terminal")
				}
				if err := promptCredentials(&username, &password); err != nil {
					return err
				}
			}

			auth := deps.API.Auth()
			pair, err := auth.Login(cmd.Context(), strings.TrimSpace(username), password)
			if err != nil {
				return err
			}
			if err := auth.SaveSession(pair); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			deps.Logger.Info("signed in", "username", username, "api", deps.Config.APIURL)
			name, role := username, ""
			if pair.User != nil {
				name, role = pair.User.Username, label(string(pair.User.Role))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Signed in as "+name)+mutedStyle.Render(" "+role))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func promptCredentials(username *string, password *string) error {
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Username").Value(username).Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("username is required")
			}
			return nil
		}),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errAborted
		}
		return err
	}
	return nil
}

func newLogoutCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and clear the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := deps.API.Auth().Logout(cmd.Context()); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(deps *Dependencies) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := deps.requireSession()
			if err != nil {
				return err
			}

			user := s.User
			if remote || user == nil {
				me, err := deps.API.Auth().Me(cmd.Context())
				if err != nil {
					return err
				}
				user = &me
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderCard("Session", []kvPair{
				{"User", user.Username},
				{"Role", label(string(user.Role))},
				{"ID", fmt.Sprint(user.ID)},
				{"API", deps.Config.APIURL},
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "ask the server instead of the stored session")
	return cmd
}
