package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go-repair-shop/internal/apiclient"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/validate"
)

var (
	accent       = lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#A78BFA"}
	muted        = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DC2626"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#059669"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1)
)

var titleCaser = cases.Title(language.English)

// label turns an enum value such as "partially_paid" into "Partially Paid".
func label(value string) string {
	if value == "" {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No results.")
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

type kvPair struct {
	key   string
	value string
}

func renderCard(title string, pairs []kvPair) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p.key))
	}

	lines := []string{titleStyle.Render(title)}
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("%s  %s", mutedStyle.Render(fmt.Sprintf("%-*s", width, p.key)), p.value))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func pageFooter(page int, totalPages int, total int) string {
	return mutedStyle.Render(fmt.Sprintf("page %d of %d, %d matching", page, totalPages, total))
}

// describeError renders field errors one per line; everything else prints as is.
func describeError(err error) string {
	fields, ok := validate.FieldErrors(err)
	if !ok {
		var httpErr *apiclient.HTTPError
		if errors.As(err, &httpErr) && len(httpErr.Fields) > 0 {
			fields, ok = httpErr.Fields, true
		}
	}
	if !ok {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString("invalid input")
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(&b, "\n  %s: %s", key, fields[key])
	}
	return b.String()
}

func severityStyle(severity notify.Severity) (string, lipgloss.Style) {
	switch severity {
	case notify.SeveritySuccess:
		return "✓", successStyle
	case notify.SeverityWarning:
		return "!", warningStyle
	case notify.SeverityError:
		return "✗", errorStyle
	}
	return "•", mutedStyle
}

// printNotifications writes each notification once, when it first becomes
// active.
func printNotifications(w io.Writer) notify.Subscriber {
	var mu sync.Mutex
	seen := map[string]bool{}

	return func(active []notify.Notification) {
		mu.Lock()
		defer mu.Unlock()
		for _, n := range active {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			icon, style := severityStyle(n.Severity)
			_, _ = fmt.Fprintln(w, style.Render(icon+" "+n.Message))
		}
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
