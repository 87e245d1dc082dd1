package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go-repair-shop/internal/apiclient"
)

func newWatchCmd(deps *Dependencies) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live changes from the server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("watching "+deps.Config.APIURL+", press Ctrl+C to stop"))

			err := deps.API.Watch(cmd.Context(), func(e apiclient.Event) {
				if raw {
					_, _ = fmt.Fprintf(out, "%s %s %s\n", e.Timestamp, e.Type, e.Payload)
					return
				}
				_, _ = fmt.Fprintln(out, describeEvent(e))
			})
			if errors.Is(err, apiclient.ErrSessionExpired) {
				return fmt.Errorf("%w: run `shopctl login`", err)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the event payload as JSON")
	return cmd
}

func describeEvent(e apiclient.Event) string {
	stamp := e.Timestamp
	if t, err := time.Parse(time.RFC3339Nano, e.Timestamp); err == nil {
		stamp = t.Local().Format("15:04:05")
	}

	actor := ""
	if e.ActorID != "" {
		actor = mutedStyle.Render(" by user #" + e.ActorID)
	}
	subject := ""
	var record struct {
		ID int64 `json:"id"`
	}
	if json.Unmarshal(e.Payload, &record) == nil && record.ID > 0 {
		subject = fmt.Sprintf(" #%d", record.ID)
	}

	kind := label(strings.ReplaceAll(string(e.Type), ".", " "))
	return fmt.Sprintf("%s %s%s%s", mutedStyle.Render(stamp), titleStyle.Render(kind), subject, actor)
}
