package page

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/view"
)

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("page closed")

type Kind string

const (
	KindClients    Kind = "clients"
	KindVehicles   Kind = "vehicles"
	KindWorkOrders Kind = "work_orders"
	KindDashboard  Kind = "dashboard"
)

// Service is the CRUD surface a page needs for one resource.
type Service[T any, In any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int64, in In) (T, error)
	Delete(ctx context.Context, id int64) error
}

type Services struct {
	Clients    Service[model.Client, model.ClientInput]
	Vehicles   Service[model.Vehicle, model.VehicleInput]
	WorkOrders Service[model.WorkOrder, model.WorkOrderInput]
}

type Notifier interface {
	Publish(message string, severity notify.Severity) notify.Notification
}

type Options struct {
	Kind     Kind
	Notifier Notifier
	Logger   *slog.Logger
	Debounce time.Duration
	PageSize int
	// OnChange receives a fresh snapshot after every recomputation.
	OnChange func(Snapshot)
}

// Data holds the raw collections as last loaded.
type Data struct {
	Clients    []model.Client
	Vehicles   []model.Vehicle
	WorkOrders []model.WorkOrder
}

// Snapshot is what a renderer draws.
type Snapshot struct {
	Kind       Kind
	Query      view.Query
	SearchText string
	Loading    bool
	Loaded     bool
	Err        error
	Clients    view.Result[model.Client]
	Vehicles   view.Result[view.VehicleRow]
	WorkOrders view.Result[view.WorkOrderRow]
	Stats      view.Stats
	Facets     map[string][]string
	Pages      []int
}

// Controller owns a page's raw collections and its view query. Every input
// change recomputes the visible slice; loads that were superseded or arrive
// after Close are discarded.
type Controller struct {
	mu         sync.Mutex
	kind       Kind
	services   Services
	notifier   Notifier
	logger     *slog.Logger
	onChange   func(Snapshot)
	debouncer  *view.Debouncer[string]
	data       Data
	query      view.Query
	searchText string
	generation uint64
	totalPages int
	loading    bool
	loaded     bool
	err        error
	closed     bool
}

func New(services Services, opts Options) *Controller {
	kind := opts.Kind
	if kind == "" {
		kind = KindWorkOrders
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = view.DefaultPageSize
	}

	c := &Controller{
		kind:       kind,
		services:   services,
		notifier:   opts.Notifier,
		logger:     logger.With("page", string(kind)),
		onChange:   opts.OnChange,
		totalPages: 1,
		query: view.Query{
			Filters:  map[string]string{},
			Order:    view.Asc,
			Page:     1,
			PageSize: pageSize,
		},
	}
	c.debouncer = view.NewDebouncer(opts.Debounce, c.applySearch)
	return c
}

func (c *Controller) needs() (clients bool, vehicles bool, orders bool) {
	switch c.kind {
	case KindClients:
		return true, false, false
	case KindVehicles:
		return true, true, false
	}
	return true, true, true
}

// Load fetches the collections the page needs concurrently. Any failure fails
// the whole load; the previous data stays in place and the error is kept for
// a retry.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.generation++
	gen := c.generation
	c.loading = true
	c.mu.Unlock()
	c.changed()

	wantClients, wantVehicles, wantOrders := c.needs()
	var next Data

	g, gctx := errgroup.WithContext(ctx)
	if wantClients {
		g.Go(func() error {
			items, err := c.services.Clients.List(gctx)
			next.Clients = items
			return err
		})
	}
	if wantVehicles {
		g.Go(func() error {
			items, err := c.services.Vehicles.List(gctx)
			next.Vehicles = items
			return err
		})
	}
	if wantOrders {
		g.Go(func() error {
			items, err := c.services.WorkOrders.List(gctx)
			next.WorkOrders = items
			return err
		})
	}
	err := g.Wait()

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("discarding stale load", "generation", gen)
		return nil
	}
	c.loading = false
	if err != nil {
		c.err = err
		c.mu.Unlock()
		c.logger.Warn("page load failed", "error", err)
		c.changed()
		return err
	}
	c.err = nil
	c.loaded = true
	c.data = next
	c.mu.Unlock()

	c.changed()
	return nil
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) Data() Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// SetSearch records the typed text and applies it once typing pauses.
func (c *Controller) SetSearch(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.searchText = text
	c.mu.Unlock()
	c.debouncer.Push(text)
}

// FlushSearch applies pending search text immediately.
func (c *Controller) FlushSearch() {
	c.debouncer.Flush()
}

func (c *Controller) applySearch(term string) {
	c.update(func(q *view.Query) { q.Search = term })
}

func (c *Controller) SetFilter(key string, value string) {
	c.update(func(q *view.Query) { q.Filters[key] = value })
}

func (c *Controller) ClearFilters() {
	c.update(func(q *view.Query) { q.Filters = map[string]string{} })
}

func (c *Controller) SetOrder(order view.Order) {
	c.update(func(q *view.Query) { q.Order = order })
}

func (c *Controller) ToggleOrder() {
	c.update(func(q *view.Query) { q.Order = q.Order.Toggle() })
}

// SetPage moves to page, clamped to the pages of the last computed result.
func (c *Controller) SetPage(page int) {
	c.update(func(q *view.Query) { q.Page = c.clampPage(page) })
}

// NextPage stays put on the last page.
func (c *Controller) NextPage() {
	c.update(func(q *view.Query) { q.Page = c.clampPage(q.Page + 1) })
}

// PrevPage stays put on the first page.
func (c *Controller) PrevPage() {
	c.update(func(q *view.Query) { q.Page = c.clampPage(q.Page - 1) })
}

// clampPage keeps page within [1, totalPages]. Callers hold c.mu.
func (c *Controller) clampPage(page int) int {
	return max(1, min(page, c.totalPages))
}

// SetPageSize changes the page size and returns to the first page.
func (c *Controller) SetPageSize(size int) {
	c.update(func(q *view.Query) {
		if size > 0 {
			q.PageSize = size
		}
		q.Page = 1
	})
}

func (c *Controller) update(apply func(q *view.Query)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	apply(&c.query)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// snapshotLocked runs the view pipeline and pins the effective page back into
// the query so a reset to page 1 sticks.
func (c *Controller) snapshotLocked() Snapshot {
	q := c.query
	q.Filters = maps.Clone(c.query.Filters)

	snap := Snapshot{
		Kind:       c.kind,
		SearchText: c.searchText,
		Loading:    c.loading,
		Loaded:     c.loaded,
		Err:        c.err,
		Facets:     map[string][]string{},
	}

	totalPages := 1
	switch c.kind {
	case KindClients:
		snap.Clients = view.Run(c.data.Clients, view.ClientSchema, q)
		q.Page, totalPages = snap.Clients.Page, snap.Clients.TotalPages
	case KindVehicles:
		rows := view.JoinVehicles(c.data.Vehicles, c.data.Clients)
		snap.Vehicles = view.Run(rows, view.VehicleSchema, q)
		snap.Facets[view.FilterVehicleType] = view.Distinct(c.data.Vehicles, func(v model.Vehicle) string { return v.VehicleType })
		q.Page, totalPages = snap.Vehicles.Page, snap.Vehicles.TotalPages
	default:
		rows := view.JoinWorkOrders(c.data.WorkOrders, c.data.Clients, c.data.Vehicles)
		snap.WorkOrders = view.Run(rows, view.WorkOrderSchema, q)
		snap.Stats = view.WorkOrderStats(c.data.WorkOrders)
		snap.Facets[view.FilterWorkStatus] = view.Distinct(c.data.WorkOrders, func(o model.WorkOrder) string { return string(o.WorkStatus) })
		snap.Facets[view.FilterPaymentStatus] = view.Distinct(c.data.WorkOrders, func(o model.WorkOrder) string { return string(o.PaymentStatus) })
		q.Page, totalPages = snap.WorkOrders.Page, snap.WorkOrders.TotalPages
	}

	c.query.Page = q.Page
	c.totalPages = totalPages
	snap.Query = q
	snap.Pages = view.PageWindow(q.Page, totalPages, view.PageWindowDelta)
	return snap
}

func (c *Controller) changed() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// Close detaches the page: pending searches are dropped and in-flight loads
// are ignored when they complete.
func (c *Controller) Close() {
	c.debouncer.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller) publish(message string, severity notify.Severity) {
	if c.notifier != nil {
		c.notifier.Publish(message, severity)
	}
}
