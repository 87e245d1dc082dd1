package service

import (
	"context"

	"go-repair-shop/internal/event"
	"go-repair-shop/internal/model"
	"go-repair-shop/internal/validate"
)

type VehicleService struct {
	vehicles VehicleStore
	clients  ClientStore
	bus      event.Bus
}

func NewVehicleService(vehicles VehicleStore, clients ClientStore, bus event.Bus) *VehicleService {
	return &VehicleService{vehicles: vehicles, clients: clients, bus: bus}
}

func (s *VehicleService) List(ctx context.Context, params model.ListParams) ([]model.Vehicle, error) {
	return s.vehicles.List(ctx, params)
}

func (s *VehicleService) Get(ctx context.Context, id int64) (model.Vehicle, error) {
	return s.vehicles.FindByID(ctx, id)
}

func (s *VehicleService) Create(ctx context.Context, in model.VehicleInput) (model.Vehicle, error) {
	in.Normalize()
	if err := checked(validate.Vehicle(in)); err != nil {
		return model.Vehicle{}, err
	}
	if _, err := s.clients.FindByID(ctx, in.OwnerID); err != nil {
		return model.Vehicle{}, err
	}

	vehicle, err := s.vehicles.Create(ctx, in)
	if err != nil {
		return model.Vehicle{}, err
	}

	emit(ctx, s.bus, event.TypeVehicleCreated, vehicle)
	return vehicle, nil
}

func (s *VehicleService) Update(ctx context.Context, id int64, in model.VehicleInput) (model.Vehicle, error) {
	in.Normalize()
	if err := checked(validate.Vehicle(in)); err != nil {
		return model.Vehicle{}, err
	}
	if _, err := s.clients.FindByID(ctx, in.OwnerID); err != nil {
		return model.Vehicle{}, err
	}

	vehicle, err := s.vehicles.Update(ctx, id, in)
	if err != nil {
		return model.Vehicle{}, err
	}

	emit(ctx, s.bus, event.TypeVehicleUpdated, vehicle)
	return vehicle, nil
}

func (s *VehicleService) Delete(ctx context.Context, id int64) error {
	if err := s.vehicles.Delete(ctx, id); err != nil {
		return err
	}

	emit(ctx, s.bus, event.TypeVehicleDeleted, deleted{ID: id})
	return nil
}

// ListByOwner returns 404 for an unknown client rather than an empty list.
func (s *VehicleService) ListByOwner(ctx context.Context, ownerID int64) ([]model.Vehicle, error) {
	if _, err := s.clients.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.vehicles.ListByOwner(ctx, ownerID)
}

func (s *VehicleService) CreateForOwner(ctx context.Context, ownerID int64, in model.VehicleInput) (model.Vehicle, error) {
	in.OwnerID = ownerID
	return s.Create(ctx, in)
}

func (s *VehicleService) DeleteForOwner(ctx context.Context, ownerID int64, id int64) error {
	if _, err := s.clients.FindByID(ctx, ownerID); err != nil {
		return err
	}
	if err := s.vehicles.DeleteForOwner(ctx, ownerID, id); err != nil {
		return err
	}

	emit(ctx, s.bus, event.TypeVehicleDeleted, deleted{ID: id})
	return nil
}
