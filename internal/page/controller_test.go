package page

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/validate"
	"go-repair-shop/internal/view"
)

type mockService[T any, In any] struct {
	mock.Mock
}

func (m *mockService[T, In]) List(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *mockService[T, In]) Create(ctx context.Context, in In) (T, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(T), args.Error(1)
}

func (m *mockService[T, In]) Update(ctx context.Context, id int64, in In) (T, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(T), args.Error(1)
}

func (m *mockService[T, In]) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mocks struct {
	clients  *mockService[model.Client, model.ClientInput]
	vehicles *mockService[model.Vehicle, model.VehicleInput]
	orders   *mockService[model.WorkOrder, model.WorkOrderInput]
}

func newMocks() mocks {
	return mocks{
		clients:  new(mockService[model.Client, model.ClientInput]),
		vehicles: new(mockService[model.Vehicle, model.VehicleInput]),
		orders:   new(mockService[model.WorkOrder, model.WorkOrderInput]),
	}
}

func (m mocks) services() Services {
	return Services{Clients: m.clients, Vehicles: m.vehicles, WorkOrders: m.orders}
}

type capturingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *capturingNotifier) Publish(message string, severity notify.Severity) notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := notify.Notification{Message: message, Severity: severity}
	n.sent = append(n.sent, out)
	return out
}

func fixtureData() ([]model.Client, []model.Vehicle, []model.WorkOrder) {
	clients := []model.Client{{ID: 1, ClientInput: model.ClientInput{Name: "Ann", PhoneNumber: "555"}}}
	vehicles := []model.Vehicle{{ID: 10, VehicleInput: model.VehicleInput{OwnerID: 1, PlateNumber: "ABC1"}}}
	orders := []model.WorkOrder{
		{ID: 100, WorkOrderInput: model.WorkOrderInput{ClientID: 1, VehicleID: 10, EntryDate: model.NewDate(2024, time.January, 1), WorkStatus: model.WorkStatusPending, PaymentStatus: model.PaymentNotPaid}},
		{ID: 101, WorkOrderInput: model.WorkOrderInput{ClientID: 1, VehicleID: 10, EntryDate: model.NewDate(2024, time.March, 1), WorkStatus: model.WorkStatusCompleted, PaymentStatus: model.PaymentPaid}},
	}
	return clients, vehicles, orders
}

func expectLoad(m mocks) {
	clients, vehicles, orders := fixtureData()
	m.clients.On("List", mock.Anything).Return(clients, nil)
	m.vehicles.On("List", mock.Anything).Return(vehicles, nil)
	m.orders.On("List", mock.Anything).Return(orders, nil)
}

func TestLoadJoinsAndComputes(t *testing.T) {
	t.Parallel()

	m := newMocks()
	expectLoad(m)

	var snapshots []Snapshot
	c := New(m.services(), Options{OnChange: func(s Snapshot) { snapshots = append(snapshots, s) }})
	defer c.Close()

	require.NoError(t, c.Load(context.Background()))

	snap := c.Snapshot()
	require.True(t, snap.Loaded)
	require.False(t, snap.Loading)
	require.NoError(t, snap.Err)
	require.Len(t, snap.WorkOrders.Items, 2)
	require.Equal(t, "Ann", snap.WorkOrders.Items[0].CustomerName)
	require.Equal(t, int64(100), snap.WorkOrders.Items[0].ID)
	require.Equal(t, view.Stats{Total: 2, New: 1, Completed: 1, AwaitingPayment: 1}, snap.Stats)
	require.Equal(t, []string{"completed", "pending"}, snap.Facets[view.FilterWorkStatus])

	require.GreaterOrEqual(t, len(snapshots), 2)
	require.True(t, snapshots[0].Loading)
}

func TestLoadFailureIsAllOrNothing(t *testing.T) {
	t.Parallel()

	m := newMocks()
	clients, vehicles, _ := fixtureData()
	m.clients.On("List", mock.Anything).Return(clients, nil)
	m.vehicles.On("List", mock.Anything).Return(vehicles, nil)
	m.orders.On("List", mock.Anything).Return(nil, errors.New("http 500"))

	c := New(m.services(), Options{})
	defer c.Close()

	err := c.Load(context.Background())
	require.Error(t, err)
	require.Equal(t, err, c.Err())

	snap := c.Snapshot()
	require.False(t, snap.Loaded)
	require.Empty(t, snap.WorkOrders.Items)
	require.Empty(t, c.Data().Clients)
}

func TestClientsPageLoadsOnlyClients(t *testing.T) {
	t.Parallel()

	m := newMocks()
	clients, _, _ := fixtureData()
	m.clients.On("List", mock.Anything).Return(clients, nil)

	c := New(m.services(), Options{Kind: KindClients})
	defer c.Close()

	require.NoError(t, c.Load(context.Background()))
	require.Len(t, c.Snapshot().Clients.Items, 1)
	m.vehicles.AssertNotCalled(t, "List", mock.Anything)
	m.orders.AssertNotCalled(t, "List", mock.Anything)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	t.Parallel()

	m := newMocks()
	clients, vehicles, orders := fixtureData()
	started := make(chan struct{})
	release := make(chan struct{})

	m.clients.On("List", mock.Anything).Return(clients, nil)
	m.vehicles.On("List", mock.Anything).Return(vehicles, nil)
	m.orders.On("List", mock.Anything).Return(orders, nil).Once().Run(func(mock.Arguments) {
		close(started)
		<-release
	})
	m.orders.On("List", mock.Anything).Return(orders[:1], nil)

	c := New(m.services(), Options{})

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-started

	require.NoError(t, c.Load(context.Background()))
	close(release)
	require.NoError(t, <-done)

	require.Len(t, c.Data().WorkOrders, 1)
	c.Close()
}

func TestLoadAfterCloseIsIgnored(t *testing.T) {
	t.Parallel()

	m := newMocks()
	c := New(m.services(), Options{})
	c.Close()

	require.ErrorIs(t, c.Load(context.Background()), ErrClosed)
}

func TestDebouncedSearchSettlesToDirectResult(t *testing.T) {
	t.Parallel()

	m := newMocks()
	expectLoad(m)

	c := New(m.services(), Options{Debounce: 20 * time.Millisecond})
	defer c.Close()
	require.NoError(t, c.Load(context.Background()))

	for _, text := range []string{"a", "ab", "abc", "ABC1"} {
		c.SetSearch(text)
	}
	require.Equal(t, "", c.Snapshot().Query.Search)

	require.Eventually(t, func() bool {
		return c.Snapshot().Query.Search == "ABC1"
	}, time.Second, 5*time.Millisecond)

	clients, vehicles, orders := fixtureData()
	direct := view.Run(view.JoinWorkOrders(orders, clients, vehicles), view.WorkOrderSchema, view.Query{Search: "ABC1", Page: 1, PageSize: view.DefaultPageSize})
	require.Equal(t, direct.Items, c.Snapshot().WorkOrders.Items)
}

func TestFilterResetsPageBeyondTotal(t *testing.T) {
	t.Parallel()

	m := newMocks()
	expectLoad(m)

	c := New(m.services(), Options{PageSize: 1})
	defer c.Close()
	require.NoError(t, c.Load(context.Background()))

	c.SetPage(2)
	require.Equal(t, 2, c.Snapshot().Query.Page)

	c.SetFilter(view.FilterWorkStatus, string(model.WorkStatusPending))
	require.Equal(t, 1, c.Snapshot().Query.Page)

	// clearing the filter keeps the reset page
	c.SetFilter(view.FilterWorkStatus, "")
	require.Equal(t, 1, c.Snapshot().Query.Page)

	c.ToggleOrder()
	snap := c.Snapshot()
	require.Equal(t, view.Desc, snap.Query.Order)
	require.Equal(t, int64(101), snap.WorkOrders.Items[0].ID)

	c.NextPage()
	c.SetPageSize(5)
	require.Equal(t, 1, c.Snapshot().Query.Page)
	require.Equal(t, 5, c.Snapshot().Query.PageSize)
}

func TestCreateWorkOrderValidationBlocksCall(t *testing.T) {
	t.Parallel()

	m := newMocks()
	expectLoad(m)
	notifier := &capturingNotifier{}

	c := New(m.services(), Options{Notifier: notifier})
	defer c.Close()
	require.NoError(t, c.Load(context.Background()))

	in := model.WorkOrderInput{
		ClientID:   1,
		VehicleID:  10,
		EntryDate:  model.NewDate(2024, time.February, 1),
		EgressDate: model.DatePtr(model.NewDate(2024, time.January, 1)),
		Workers:    "Luis",
	}

	_, err := c.CreateWorkOrder(context.Background(), in)
	fields, ok := validate.FieldErrors(err)
	require.True(t, ok)
	require.Contains(t, fields, "egress_date")

	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	require.Empty(t, notifier.sent)
}

func TestCreateClientNotifiesAndReloads(t *testing.T) {
	t.Parallel()

	m := newMocks()
	expectLoad(m)
	notifier := &capturingNotifier{}

	in := model.ClientInput{Name: "Bob", PhoneNumber: "777"}
	m.clients.On("Create", mock.Anything, in).Return(model.Client{ID: 2, ClientInput: in}, nil).Once()

	c := New(m.services(), Options{Notifier: notifier})
	defer c.Close()

	created, err := c.CreateClient(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, int64(2), created.ID)
	require.Equal(t, "Client created successfully", notifier.sent[0].Message)
	require.Equal(t, notify.SeveritySuccess, notifier.sent[0].Severity)
	m.clients.AssertNumberOfCalls(t, "List", 1)
}

func TestDeleteFailureNotifies(t *testing.T) {
	t.Parallel()

	m := newMocks()
	notifier := &capturingNotifier{}
	m.orders.On("Delete", mock.Anything, int64(100)).Return(errors.New("http 404: Work order not found"))

	c := New(m.services(), Options{Notifier: notifier})
	defer c.Close()

	err := c.DeleteWorkOrder(context.Background(), 100)
	require.Error(t, err)
	require.Len(t, notifier.sent, 1)
	require.Equal(t, "Failed to delete work order: http 404: Work order not found", notifier.sent[0].Message)
	m.orders.AssertNotCalled(t, "List", mock.Anything)
}

func TestVehiclesOf(t *testing.T) {
	t.Parallel()

	m := newMocks()
	expectLoad(m)

	c := New(m.services(), Options{})
	defer c.Close()
	require.NoError(t, c.Load(context.Background()))

	require.Len(t, c.VehiclesOf(1), 1)
	require.Empty(t, c.VehiclesOf(2))
}

func TestPageSteppingStaysInRange(t *testing.T) {
	t.Parallel()

	m := newMocks()
	expectLoad(m)

	c := New(m.services(), Options{PageSize: 1})
	defer c.Close()
	require.NoError(t, c.Load(context.Background()))

	c.SetPage(2)
	require.Equal(t, 2, c.Snapshot().Query.Page)

	c.NextPage()
	snap := c.Snapshot()
	require.Equal(t, 2, snap.Query.Page)
	require.Equal(t, int64(101), snap.WorkOrders.Items[0].ID)

	c.SetPage(9)
	require.Equal(t, 2, c.Snapshot().Query.Page)

	c.PrevPage()
	c.PrevPage()
	require.Equal(t, 1, c.Snapshot().Query.Page)

	c.SetPage(-3)
	require.Equal(t, 1, c.Snapshot().Query.Page)
}
