package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"go-repair-shop/internal/model"
)

type mockClientStore struct{ mock.Mock }

func (m *mockClientStore) List(ctx context.Context, params model.ListParams) ([]model.Client, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]model.Client), args.Error(1)
}

func (m *mockClientStore) FindByID(ctx context.Context, id int64) (model.Client, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Client), args.Error(1)
}

func (m *mockClientStore) Create(ctx context.Context, in model.ClientInput) (model.Client, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Client), args.Error(1)
}

func (m *mockClientStore) Update(ctx context.Context, id int64, in model.ClientInput) (model.Client, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(model.Client), args.Error(1)
}

func (m *mockClientStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockVehicleStore struct{ mock.Mock }

func (m *mockVehicleStore) List(ctx context.Context, params model.ListParams) ([]model.Vehicle, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]model.Vehicle), args.Error(1)
}

func (m *mockVehicleStore) ListByOwner(ctx context.Context, ownerID int64) ([]model.Vehicle, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Vehicle), args.Error(1)
}

func (m *mockVehicleStore) FindByID(ctx context.Context, id int64) (model.Vehicle, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Vehicle), args.Error(1)
}

func (m *mockVehicleStore) Create(ctx context.Context, in model.VehicleInput) (model.Vehicle, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Vehicle), args.Error(1)
}

func (m *mockVehicleStore) Update(ctx context.Context, id int64, in model.VehicleInput) (model.Vehicle, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(model.Vehicle), args.Error(1)
}

func (m *mockVehicleStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockVehicleStore) DeleteForOwner(ctx context.Context, ownerID int64, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type mockWorkOrderStore struct{ mock.Mock }

func (m *mockWorkOrderStore) List(ctx context.Context, params model.ListParams) ([]model.WorkOrder, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]model.WorkOrder), args.Error(1)
}

func (m *mockWorkOrderStore) FindByID(ctx context.Context, id int64) (model.WorkOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.WorkOrder), args.Error(1)
}

func (m *mockWorkOrderStore) Create(ctx context.Context, in model.WorkOrderInput) (model.WorkOrder, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.WorkOrder), args.Error(1)
}

func (m *mockWorkOrderStore) Update(ctx context.Context, id int64, in model.WorkOrderInput) (model.WorkOrder, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(model.WorkOrder), args.Error(1)
}

func (m *mockWorkOrderStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserStore) List(ctx context.Context, params model.ListParams) ([]model.User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockUserStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) Store(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	return m.Called(ctx, token, userID, expiresAt).Error(0)
}

func (m *mockTokenStore) Consume(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenStore) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}
