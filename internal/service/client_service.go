package service

import (
	"context"

	"go-repair-shop/internal/event"
	"go-repair-shop/internal/model"
	"go-repair-shop/internal/validate"
)

type ClientService struct {
	clients ClientStore
	bus     event.Bus
}

func NewClientService(clients ClientStore, bus event.Bus) *ClientService {
	return &ClientService{clients: clients, bus: bus}
}

func (s *ClientService) List(ctx context.Context, params model.ListParams) ([]model.Client, error) {
	return s.clients.List(ctx, params)
}

func (s *ClientService) Get(ctx context.Context, id int64) (model.Client, error) {
	return s.clients.FindByID(ctx, id)
}

func (s *ClientService) Create(ctx context.Context, in model.ClientInput) (model.Client, error) {
	in.Normalize()
	if err := checked(validate.Client(in)); err != nil {
		return model.Client{}, err
	}

	client, err := s.clients.Create(ctx, in)
	if err != nil {
		return model.Client{}, err
	}

	emit(ctx, s.bus, event.TypeClientCreated, client)
	return client, nil
}

func (s *ClientService) Update(ctx context.Context, id int64, in model.ClientInput) (model.Client, error) {
	in.Normalize()
	if err := checked(validate.Client(in)); err != nil {
		return model.Client{}, err
	}

	client, err := s.clients.Update(ctx, id, in)
	if err != nil {
		return model.Client{}, err
	}

	emit(ctx, s.bus, event.TypeClientUpdated, client)
	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, id int64) error {
	if err := s.clients.Delete(ctx, id); err != nil {
		return err
	}

	emit(ctx, s.bus, event.TypeClientDeleted, deleted{ID: id})
	return nil
}
