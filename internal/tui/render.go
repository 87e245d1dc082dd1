package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/page"
	"go-repair-shop/internal/view"
)

var (
	accent = lipgloss.Color("#7D56F4")
	muted  = lipgloss.Color("#6C6C6C")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(muted)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(accent)
	mutedStyle     = lipgloss.NewStyle().Foreground(muted)
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	currentPage    = lipgloss.NewStyle().Bold(true).Underline(true)

	severityStyles = map[notify.Severity]lipgloss.Style{
		notify.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		notify.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")),
		notify.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00")),
		notify.SeverityError:   errorStyle,
	}

	titleCase = cases.Title(language.English)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderForeground(muted).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(accent)
	return s
}

func label(raw string) string {
	if raw == "" {
		return "All"
	}
	return titleCase.String(strings.ReplaceAll(raw, "_", " "))
}

func columnsFor(kind page.Kind) []table.Column {
	switch kind {
	case page.KindClients:
		return []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Name", Width: 28},
			{Title: "Phone", Width: 16},
			{Title: "Email", Width: 30},
		}
	case page.KindVehicles:
		return []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Plate", Width: 10},
			{Title: "Model", Width: 22},
			{Title: "Type", Width: 12},
			{Title: "Km", Width: 9},
			{Title: "Owner", Width: 22},
		}
	}
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Entry", Width: 10},
		{Title: "Customer", Width: 22},
		{Title: "Plate", Width: 10},
		{Title: "Status", Width: 12},
		{Title: "Payment", Width: 15},
		{Title: "Workers", Width: 18},
	}
}

func rowsFor(snap page.Snapshot) []table.Row {
	var rows []table.Row
	switch snap.Kind {
	case page.KindClients:
		for _, c := range snap.Clients.Items {
			email := ""
			if c.Email != nil {
				email = *c.Email
			}
			rows = append(rows, table.Row{model.FormatID(c.ID), c.Name, c.PhoneNumber, email})
		}
	case page.KindVehicles:
		for _, v := range snap.Vehicles.Items {
			rows = append(rows, table.Row{model.FormatID(v.ID), v.PlateNumber, v.BrandModel, v.VehicleType, strconv.Itoa(v.Kilometers), v.OwnerName})
		}
	default:
		for _, o := range snap.WorkOrders.Items {
			rows = append(rows, table.Row{
				model.FormatID(o.ID),
				o.EntryDate.String(),
				o.CustomerName,
				o.VehiclePlate,
				label(string(o.WorkStatus)),
				label(string(o.PaymentStatus)),
				o.Workers,
			})
		}
	}
	return rows
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("shopctl") + "  " + m.renderTabs() + "\n\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	if filters := m.renderFilters(); filters != "" {
		b.WriteString(filters + "\n")
	}

	switch {
	case m.snap.Err != nil:
		b.WriteString(errorStyle.Render("Could not load data: "+m.snap.Err.Error()) + "\n")
		b.WriteString(mutedStyle.Render("press r to retry") + "\n")
	case m.snap.Loading && !m.snap.Loaded:
		b.WriteString(mutedStyle.Render("Loading...") + "\n")
	case len(m.table.Rows()) == 0:
		b.WriteString(mutedStyle.Render("No results.") + "\n")
	default:
		b.WriteString(m.table.View() + "\n")
	}

	b.WriteString(m.renderFooter() + "\n")

	for _, n := range m.notes {
		style, ok := severityStyles[n.Severity]
		if !ok {
			style = mutedStyle
		}
		b.WriteString(style.Render(n.Message) + "\n")
	}

	b.WriteString(mutedStyle.Render("/ search  f filter  g payment  x clear  o order  n/p page  tab switch  r reload  q quit"))
	return b.String()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(tabs))
	for i, kind := range tabs {
		text := fmt.Sprintf("%d %s", i+1, label(string(kind)))
		if kind == m.kind {
			parts = append(parts, activeTabStyle.Render(text))
		} else {
			parts = append(parts, tabStyle.Render(text))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFilters() string {
	var parts []string
	for _, key := range []string{view.FilterWorkStatus, view.FilterPaymentStatus, view.FilterVehicleType} {
		if _, ok := m.snap.Facets[key]; !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label(key), label(m.snap.Query.Filters[key])))
	}
	if m.kind == page.KindWorkOrders && m.snap.Loaded {
		s := m.snap.Stats
		parts = append(parts, fmt.Sprintf("total %d  new %d  in progress %d  completed %d  awaiting payment %d", s.Total, s.New, s.InProgress, s.Completed, s.AwaitingPayment))
	}
	return mutedStyle.Render(strings.Join(parts, "   "))
}

func (m *Model) renderFooter() string {
	total, totalPages := m.totals()

	pages := make([]string, 0, len(m.snap.Pages))
	for _, p := range m.snap.Pages {
		if p == m.snap.Query.Page {
			pages = append(pages, currentPage.Render(strconv.Itoa(p)))
		} else {
			pages = append(pages, strconv.Itoa(p))
		}
	}

	return fmt.Sprintf("%s  %s", strings.Join(pages, " "),
		mutedStyle.Render(fmt.Sprintf("page %d of %d, %d results, %s", m.snap.Query.Page, totalPages, total, m.snap.Query.Order)))
}

func (m *Model) totals() (int, int) {
	switch m.kind {
	case page.KindClients:
		return m.snap.Clients.Total, max(1, m.snap.Clients.TotalPages)
	case page.KindVehicles:
		return m.snap.Vehicles.Total, max(1, m.snap.Vehicles.TotalPages)
	}
	return m.snap.WorkOrders.Total, max(1, m.snap.WorkOrders.TotalPages)
}
