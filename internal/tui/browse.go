// Package tui is the interactive terminal browser: one page controller at a
// time rendered as a table with search, filters, ordering and paging.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"go-repair-shop/internal/apiclient"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/page"
	"go-repair-shop/internal/view"
)

type Options struct {
	Services page.Services
	Notify   *notify.Center
	Logger   *slog.Logger
	Debounce time.Duration
	PageSize int
	Kind     page.Kind
	// Watch, when set, streams server changes; each relevant change reloads
	// the page.
	Watch func(ctx context.Context, handle func(apiclient.Event)) error
}

type (
	changedMsg       struct{}
	loadedMsg        struct{ err error }
	notificationsMsg []notify.Notification
	remoteChangeMsg  struct{ resource string }
)

var tabs = []page.Kind{page.KindWorkOrders, page.KindVehicles, page.KindClients}

type Model struct {
	ctx       context.Context
	opts      Options
	kind      page.Kind
	ctrl      *page.Controller
	snap      page.Snapshot
	table     table.Model
	search    textinput.Model
	searching bool
	notes     []notify.Notification
	width     int
	height    int
	send      func(tea.Msg)
}

func New(ctx context.Context, opts Options) *Model {
	kind := opts.Kind
	if !slices.Contains(tabs, kind) {
		kind = page.KindWorkOrders
	}

	search := textinput.New()
	search.Placeholder = "search"
	search.Prompt = "/ "
	search.CharLimit = 64

	m := &Model{
		ctx:    ctx,
		opts:   opts,
		search: search,
		table:  table.New(table.WithFocused(true), table.WithHeight(12), table.WithStyles(tableStyles())),
	}
	m.open(kind)
	return m
}

// dispatch hands msg to the running program without blocking the caller,
// which may be the program's own update loop.
func (m *Model) dispatch(msg tea.Msg) {
	if m.send != nil {
		go m.send(msg)
	}
}

func (m *Model) open(kind page.Kind) {
	if m.ctrl != nil {
		m.ctrl.Close()
	}
	m.kind = kind
	m.ctrl = page.New(m.opts.Services, page.Options{
		Kind:     kind,
		Notifier: m.opts.Notify,
		Logger:   m.opts.Logger,
		Debounce: m.opts.Debounce,
		PageSize: m.opts.PageSize,
		OnChange: func(page.Snapshot) { m.dispatch(changedMsg{}) },
	})
	m.search.SetValue("")
	m.table.SetRows(nil)
	m.table.SetColumns(columnsFor(kind))
	m.refresh()
}

func (m *Model) load() tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		err := ctrl.Load(ctx)
		if errors.Is(err, page.ErrClosed) {
			return nil
		}
		return loadedMsg{err: err}
	}
}

// refresh pulls a fresh snapshot and rebuilds the table rows.
func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	m.table.SetRows(rowsFor(m.snap))
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load())
}

// Snapshot is the state currently drawn.
func (m *Model) Snapshot() page.Snapshot {
	return m.snap
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(5, msg.Height-12))
		return m, nil
	case changedMsg, loadedMsg:
		m.refresh()
		return m, nil
	case notificationsMsg:
		m.notes = msg
		return m, nil
	case remoteChangeMsg:
		if affects(m.kind, msg.resource) {
			return m, m.load()
		}
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.ctrl.FlushSearch()
		m.refresh()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctrl.SetSearch(m.search.Value())
	return m, cmd
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Close()
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "r":
		return m, m.load()
	case "o":
		m.ctrl.ToggleOrder()
	case "n", "right", "pgdown":
		m.ctrl.NextPage()
	case "p", "left", "pgup":
		m.ctrl.PrevPage()
	case "f":
		m.cycleFilter(primaryFilter(m.kind))
	case "g":
		if m.kind == page.KindWorkOrders {
			m.cycleFilter(view.FilterPaymentStatus)
		}
	case "x":
		m.ctrl.ClearFilters()
	case "tab":
		return m, m.switchTab(1)
	case "shift+tab":
		return m, m.switchTab(-1)
	case "1", "2", "3":
		index := int(msg.String()[0] - '1')
		if tabs[index] != m.kind {
			m.open(tabs[index])
			return m, m.load()
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

func (m *Model) switchTab(step int) tea.Cmd {
	index := slices.Index(tabs, m.kind)
	next := (index + step + len(tabs)) % len(tabs)
	m.open(tabs[next])
	return m.load()
}

// cycleFilter moves key to the next known facet value, wrapping back to
// "all" after the last one.
func (m *Model) cycleFilter(key string) {
	if key == "" {
		return
	}
	values := m.snap.Facets[key]
	if len(values) == 0 {
		return
	}

	current := m.snap.Query.Filters[key]
	next := ""
	switch index := slices.Index(values, current); {
	case current == "":
		next = values[0]
	case index >= 0 && index+1 < len(values):
		next = values[index+1]
	}
	m.ctrl.SetFilter(key, next)
}

func primaryFilter(kind page.Kind) string {
	switch kind {
	case page.KindWorkOrders:
		return view.FilterWorkStatus
	case page.KindVehicles:
		return view.FilterVehicleType
	}
	return ""
}

// affects reports whether a change to resource should reload a page of kind.
func affects(kind page.Kind, resource string) bool {
	switch kind {
	case page.KindClients:
		return resource == "client"
	case page.KindVehicles:
		return resource == "client" || resource == "vehicle"
	}
	return resource != "user"
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, opts)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.send = program.Send

	if opts.Notify != nil {
		unsubscribe := opts.Notify.Subscribe(func(active []notify.Notification) {
			m.dispatch(notificationsMsg(active))
		})
		defer unsubscribe()
	}

	if opts.Watch != nil {
		go func() {
			err := opts.Watch(ctx, func(e apiclient.Event) {
				m.dispatch(remoteChangeMsg{resource: e.Type.Resource()})
			})
			if err != nil && ctx.Err() == nil && opts.Logger != nil {
				opts.Logger.Warn("live updates stopped", "error", err)
			}
		}()
	}

	_, err := program.Run()
	m.ctrl.Close()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
