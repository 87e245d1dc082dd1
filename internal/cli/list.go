package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"go-repair-shop/internal/page"
	"go-repair-shop/internal/view"
)

// listFlags are the view controls every list command accepts.
type listFlags struct {
	search  string
	order   string
	page    int
	filters map[string]*string
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive text search")
	cmd.Flags().StringVar(&f.order, "order", "asc", "sort order: asc or desc")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
}

// filter registers an exact-match filter flag bound to a view filter key.
func (f *listFlags) filter(cmd *cobra.Command, key string, flag string, usage string) {
	if f.filters == nil {
		f.filters = map[string]*string{}
	}
	value := new(string)
	f.filters[key] = value
	cmd.Flags().StringVar(value, flag, "", usage)
}

// apply pushes the flags through the controller in the order a user would:
// search settles first, then filters and order, then the page.
func (f *listFlags) apply(c *page.Controller) {
	c.SetSearch(f.search)
	c.FlushSearch()
	for key, value := range f.filters {
		c.SetFilter(key, *value)
	}
	c.SetOrder(view.ParseOrder(f.order))
	c.SetPage(f.page)
}

// openPage checks the session, loads the page and applies the list flags.
func openPage(ctx context.Context, deps *Dependencies, kind page.Kind, flags *listFlags) (*page.Controller, page.Snapshot, error) {
	if _, err := deps.requireSession(); err != nil {
		return nil, page.Snapshot{}, err
	}

	c := deps.newPage(kind, nil)
	if err := c.Load(ctx); err != nil {
		c.Close()
		return nil, page.Snapshot{}, fmt.Errorf("%w (retry the command to reload)", err)
	}
	if flags != nil {
		flags.apply(c)
	}
	return c, c.Snapshot(), nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", raw)
	}
	return id, nil
}

func idArg(name string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one %s id", name)
		}
		_, err := parseID(args[0])
		return err
	}
}

// confirm asks before destructive commands. Without a terminal --yes is
// required.
func confirm(prompt string, yes bool) error {
	if yes {
		return nil
	}
	if !interactive() {
		return errors.New("refusing to delete without --yes")
	}

	var ok bool
	if err := huh.NewConfirm().Title(prompt).Affirmative("Delete").Negative("Cancel").Value(&ok).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errAborted
		}
		return err
	}
	if !ok {
		return errAborted
	}
	return nil
}
