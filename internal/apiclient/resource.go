package apiclient

import (
	"context"
	"net/http"

	"go-repair-shop/internal/model"
)

// Resource is the CRUD surface of one REST collection. T is the stored record
// and In the payload accepted by create and update.
type Resource[T any, In any] struct {
	client *Client
	path   string
	// normalizeIn and normalizeOut bring payloads and decoded records to the
	// canonical representation.
	normalizeIn  func(*In)
	normalizeOut func(*T)
}

func (r Resource[T, In]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.client.Do(ctx, http.MethodGet, r.path, nil, &items); err != nil {
		return nil, err
	}
	if r.normalizeOut != nil {
		for i := range items {
			r.normalizeOut(&items[i])
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r Resource[T, In]) Get(ctx context.Context, id int64) (T, error) {
	return r.exchange(ctx, http.MethodGet, r.path+model.FormatID(id), nil)
}

func (r Resource[T, In]) Create(ctx context.Context, in In) (T, error) {
	if r.normalizeIn != nil {
		r.normalizeIn(&in)
	}
	return r.exchange(ctx, http.MethodPost, r.path, in)
}

func (r Resource[T, In]) Update(ctx context.Context, id int64, in In) (T, error) {
	if r.normalizeIn != nil {
		r.normalizeIn(&in)
	}
	return r.exchange(ctx, http.MethodPut, r.path+model.FormatID(id), in)
}

func (r Resource[T, In]) Delete(ctx context.Context, id int64) error {
	return r.client.Do(ctx, http.MethodDelete, r.path+model.FormatID(id), nil, nil)
}

func (r Resource[T, In]) exchange(ctx context.Context, method string, path string, body any) (T, error) {
	var record T
	if err := r.client.Do(ctx, method, path, body, &record); err != nil {
		var zero T
		return zero, err
	}
	if r.normalizeOut != nil {
		r.normalizeOut(&record)
	}
	return record, nil
}

func (c *Client) Clients() Resource[model.Client, model.ClientInput] {
	return Resource[model.Client, model.ClientInput]{
		client:       c,
		path:         "/clients/",
		normalizeIn:  (*model.ClientInput).Normalize,
		normalizeOut: (*model.Client).Normalize,
	}
}

func (c *Client) WorkOrders() Resource[model.WorkOrder, model.WorkOrderInput] {
	return Resource[model.WorkOrder, model.WorkOrderInput]{
		client:       c,
		path:         "/work-orders/",
		normalizeIn:  (*model.WorkOrderInput).Normalize,
		normalizeOut: (*model.WorkOrder).Normalize,
	}
}

type VehicleService struct {
	Resource[model.Vehicle, model.VehicleInput]
}

func (c *Client) Vehicles() VehicleService {
	return VehicleService{Resource[model.Vehicle, model.VehicleInput]{
		client:       c,
		path:         "/vehicles/",
		normalizeIn:  (*model.VehicleInput).Normalize,
		normalizeOut: (*model.Vehicle).Normalize,
	}}
}

func ownerPath(clientID int64) string {
	return "/clients/" + model.FormatID(clientID) + "/vehicles"
}

func (s VehicleService) ListByOwner(ctx context.Context, clientID int64) ([]model.Vehicle, error) {
	owned := s.Resource
	owned.path = ownerPath(clientID)
	return owned.List(ctx)
}

// CreateForOwner registers a vehicle under clientID regardless of in.OwnerID.
func (s VehicleService) CreateForOwner(ctx context.Context, clientID int64, in model.VehicleInput) (model.Vehicle, error) {
	in.OwnerID = clientID
	in.Normalize()
	return s.exchange(ctx, http.MethodPost, ownerPath(clientID), in)
}

func (s VehicleService) DeleteForOwner(ctx context.Context, clientID int64, vehicleID int64) error {
	return s.client.Do(ctx, http.MethodDelete, ownerPath(clientID)+"/"+model.FormatID(vehicleID), nil, nil)
}

type UserService struct {
	client *Client
}

func (c *Client) Users() UserService {
	return UserService{client: c}
}

func (s UserService) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.client.Do(ctx, http.MethodGet, "/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s UserService) Get(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	err := s.client.Do(ctx, http.MethodGet, "/users/"+model.FormatID(id), nil, &user)
	return user, err
}

func (s UserService) Create(ctx context.Context, in model.CreateUserRequest) (model.User, error) {
	in.Role = model.Role(model.NormalizeEnum(string(in.Role)))
	var user model.User
	err := s.client.Do(ctx, http.MethodPost, "/users/", in, &user)
	return user, err
}

func (s UserService) Update(ctx context.Context, id int64, in model.UpdateUserRequest) (model.User, error) {
	var user model.User
	err := s.client.Do(ctx, http.MethodPut, "/users/"+model.FormatID(id), in, &user)
	return user, err
}

func (s UserService) Delete(ctx context.Context, id int64) error {
	return s.client.Do(ctx, http.MethodDelete, "/users/"+model.FormatID(id), nil, nil)
}
