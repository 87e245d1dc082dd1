package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/page"
	"go-repair-shop/internal/view"
)

type fakeService[T any, In any] struct {
	items []T
	err   error
}

func (f *fakeService[T, In]) List(context.Context) ([]T, error) {
	return f.items, f.err
}

func (f *fakeService[T, In]) Create(context.Context, In) (T, error) {
	var zero T
	return zero, errors.New("not supported")
}

func (f *fakeService[T, In]) Update(context.Context, int64, In) (T, error) {
	var zero T
	return zero, errors.New("not supported")
}

func (f *fakeService[T, In]) Delete(context.Context, int64) error {
	return errors.New("not supported")
}

func services(ordersErr error) page.Services {
	return page.Services{
		Clients: &fakeService[model.Client, model.ClientInput]{items: []model.Client{
			{ID: 1, ClientInput: model.ClientInput{Name: "Ann Lee", PhoneNumber: "555"}},
			{ID: 2, ClientInput: model.ClientInput{Name: "Bob Ray", PhoneNumber: "777"}},
		}},
		Vehicles: &fakeService[model.Vehicle, model.VehicleInput]{items: []model.Vehicle{
			{ID: 10, VehicleInput: model.VehicleInput{OwnerID: 1, VehicleType: "car", BrandModel: "Corolla", PlateNumber: "ABC1"}},
			{ID: 11, VehicleInput: model.VehicleInput{OwnerID: 2, VehicleType: "truck", BrandModel: "Hilux", PlateNumber: "XYZ9"}},
		}},
		WorkOrders: &fakeService[model.WorkOrder, model.WorkOrderInput]{err: ordersErr, items: []model.WorkOrder{
			{ID: 100, WorkOrderInput: model.WorkOrderInput{ClientID: 1, VehicleID: 10, EntryDate: model.NewDate(2024, time.January, 1), WorkStatus: model.WorkStatusPending, PaymentStatus: model.PaymentNotPaid, Workers: "Luis"}},
			{ID: 101, WorkOrderInput: model.WorkOrderInput{ClientID: 2, VehicleID: 11, EntryDate: model.NewDate(2024, time.March, 1), WorkStatus: model.WorkStatusCompleted, PaymentStatus: model.PaymentPaid, Workers: "Ana"}},
		}},
	}
}

func loaded(t *testing.T, opts Options) *Model {
	t.Helper()
	m := New(context.Background(), opts)
	t.Cleanup(m.ctrl.Close)
	m.Update(m.load()())
	return m
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestLoadFillsTable(t *testing.T) {
	m := loaded(t, Options{Services: services(nil)})

	require.Len(t, m.table.Rows(), 2)
	require.Equal(t, "Ann Lee", m.table.Rows()[0][2])
	require.Equal(t, "Not Paid", m.table.Rows()[0][5])

	out := m.View()
	require.Contains(t, out, "Work Orders")
	require.Contains(t, out, "total 2")
	require.Contains(t, out, "page 1 of 1, 2 results, asc")
}

func TestOrderAndPaging(t *testing.T) {
	m := loaded(t, Options{Services: services(nil), PageSize: 1})

	require.Equal(t, "100", m.table.Rows()[0][0])

	press(m, "n")
	require.Equal(t, 2, m.Snapshot().Query.Page)
	require.Equal(t, "101", m.table.Rows()[0][0])

	press(m, "n")
	require.Equal(t, 2, m.Snapshot().Query.Page)

	press(m, "p")
	press(m, "o")
	require.Equal(t, view.Desc, m.Snapshot().Query.Order)
	require.Equal(t, "101", m.table.Rows()[0][0])
}

func TestFilterCyclesThroughFacets(t *testing.T) {
	m := loaded(t, Options{Services: services(nil)})

	press(m, "f")
	require.Equal(t, "completed", m.Snapshot().Query.Filters[view.FilterWorkStatus])
	require.Len(t, m.table.Rows(), 1)

	press(m, "f")
	require.Equal(t, "pending", m.Snapshot().Query.Filters[view.FilterWorkStatus])

	press(m, "f")
	require.Empty(t, m.Snapshot().Query.Filters[view.FilterWorkStatus])
	require.Len(t, m.table.Rows(), 2)

	press(m, "g")
	require.Equal(t, "not_paid", m.Snapshot().Query.Filters[view.FilterPaymentStatus])
	press(m, "x")
	require.Empty(t, m.Snapshot().Query.Filters)
}

func TestSearchAppliesOnEnter(t *testing.T) {
	m := loaded(t, Options{Services: services(nil), Debounce: time.Hour})

	press(m, "/")
	require.True(t, m.searching)
	for _, r := range "xyz9" {
		press(m, string(r))
	}
	require.Len(t, m.table.Rows(), 2)

	press(m, "enter")
	require.False(t, m.searching)
	require.Equal(t, "xyz9", m.Snapshot().Query.Search)
	require.Len(t, m.table.Rows(), 1)
	require.Equal(t, "Bob Ray", m.table.Rows()[0][2])
}

func TestTabSwitchesPage(t *testing.T) {
	m := loaded(t, Options{Services: services(nil)})

	cmd := press(m, "tab")
	require.NotNil(t, cmd)
	require.Equal(t, page.KindVehicles, m.kind)
	m.Update(cmd())

	require.Len(t, m.table.Rows(), 2)
	require.Equal(t, "Corolla", m.table.Rows()[0][2])
	require.Equal(t, "Ann Lee", m.table.Rows()[0][5])

	m.Update(press(m, "3")())
	require.Equal(t, page.KindClients, m.kind)
	require.Equal(t, "Bob Ray", m.table.Rows()[1][1])
}

func TestRemoteChangesReloadRelevantPages(t *testing.T) {
	m := loaded(t, Options{Services: services(nil), Kind: page.KindClients})

	_, cmd := m.Update(remoteChangeMsg{resource: "work_order"})
	require.Nil(t, cmd)

	_, cmd = m.Update(remoteChangeMsg{resource: "client"})
	require.NotNil(t, cmd)

	require.True(t, affects(page.KindWorkOrders, "vehicle"))
	require.False(t, affects(page.KindWorkOrders, "user"))
	require.True(t, affects(page.KindVehicles, "client"))
}

func TestLoadFailureShowsRetry(t *testing.T) {
	m := loaded(t, Options{Services: services(errors.New("http 500"))})

	out := m.View()
	require.Contains(t, out, "Could not load data: http 500")
	require.Contains(t, out, "press r to retry")

	require.NotNil(t, press(m, "r"))
}
