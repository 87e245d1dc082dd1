package service

import (
	"context"
	"errors"

	"go-repair-shop/internal/event"
	"go-repair-shop/internal/model"
	"go-repair-shop/internal/validate"
	"go-repair-shop/pkg/apierror"
)

type WorkOrderService struct {
	orders   WorkOrderStore
	vehicles VehicleStore
	clients  ClientStore
	bus      event.Bus
}

func NewWorkOrderService(orders WorkOrderStore, vehicles VehicleStore, clients ClientStore, bus event.Bus) *WorkOrderService {
	return &WorkOrderService{orders: orders, vehicles: vehicles, clients: clients, bus: bus}
}

func (s *WorkOrderService) List(ctx context.Context, params model.ListParams) ([]model.WorkOrder, error) {
	return s.orders.List(ctx, params)
}

func (s *WorkOrderService) Get(ctx context.Context, id int64) (model.WorkOrder, error) {
	return s.orders.FindByID(ctx, id)
}

// check validates the input and that the vehicle belongs to the client.
func (s *WorkOrderService) check(ctx context.Context, in model.WorkOrderInput) error {
	if err := checked(validate.WorkOrder(in, nil)); err != nil {
		return err
	}
	if _, err := s.clients.FindByID(ctx, in.ClientID); err != nil {
		return err
	}

	vehicle, err := s.vehicles.FindByID(ctx, in.VehicleID)
	if errors.Is(err, model.ErrVehicleNotFound) {
		return apierror.Validation(map[string]string{"vehicle_id": "does not exist"})
	}
	if err != nil {
		return err
	}

	return checked(validate.WorkOrder(in, []model.Vehicle{vehicle}))
}

func (s *WorkOrderService) Create(ctx context.Context, in model.WorkOrderInput) (model.WorkOrder, error) {
	in.Normalize()
	if err := s.check(ctx, in); err != nil {
		return model.WorkOrder{}, err
	}

	order, err := s.orders.Create(ctx, in)
	if err != nil {
		return model.WorkOrder{}, err
	}

	emit(ctx, s.bus, event.TypeWorkOrderCreated, order)
	return order, nil
}

func (s *WorkOrderService) Update(ctx context.Context, id int64, in model.WorkOrderInput) (model.WorkOrder, error) {
	in.Normalize()
	if err := s.check(ctx, in); err != nil {
		return model.WorkOrder{}, err
	}

	order, err := s.orders.Update(ctx, id, in)
	if err != nil {
		return model.WorkOrder{}, err
	}

	emit(ctx, s.bus, event.TypeWorkOrderUpdated, order)
	return order, nil
}

func (s *WorkOrderService) Delete(ctx context.Context, id int64) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	emit(ctx, s.bus, event.TypeWorkOrderDeleted, deleted{ID: id})
	return nil
}
