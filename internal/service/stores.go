package service

import (
	"context"
	"strconv"
	"time"

	"go-repair-shop/internal/event"
	"go-repair-shop/internal/model"
	"go-repair-shop/internal/validate"
	"go-repair-shop/pkg/apierror"
)

type ClientStore interface {
	List(ctx context.Context, params model.ListParams) ([]model.Client, error)
	FindByID(ctx context.Context, id int64) (model.Client, error)
	Create(ctx context.Context, in model.ClientInput) (model.Client, error)
	Update(ctx context.Context, id int64, in model.ClientInput) (model.Client, error)
	Delete(ctx context.Context, id int64) error
}

type VehicleStore interface {
	List(ctx context.Context, params model.ListParams) ([]model.Vehicle, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Vehicle, error)
	FindByID(ctx context.Context, id int64) (model.Vehicle, error)
	Create(ctx context.Context, in model.VehicleInput) (model.Vehicle, error)
	Update(ctx context.Context, id int64, in model.VehicleInput) (model.Vehicle, error)
	Delete(ctx context.Context, id int64) error
	DeleteForOwner(ctx context.Context, ownerID int64, id int64) error
}

type WorkOrderStore interface {
	List(ctx context.Context, params model.ListParams) ([]model.WorkOrder, error)
	FindByID(ctx context.Context, id int64) (model.WorkOrder, error)
	Create(ctx context.Context, in model.WorkOrderInput) (model.WorkOrder, error)
	Update(ctx context.Context, id int64, in model.WorkOrderInput) (model.WorkOrder, error)
	Delete(ctx context.Context, id int64) error
}

type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	Update(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params model.ListParams) ([]model.User, error)
	Count(ctx context.Context) (int, error)
}

type TokenStore interface {
	Store(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	Consume(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// emit publishes a change event attributed to the request's actor. A nil bus
// disables events.
func emit(ctx context.Context, bus event.Bus, t event.Type, payload any) {
	if bus == nil {
		return
	}
	bus.Publish(event.New(t, payload, event.ActorFrom(ctx)))
}

type deleted struct {
	ID int64 `json:"id"`
}

func checked(result validate.Result) error {
	if result.OK() {
		return nil
	}
	return apierror.Validation(result.Fields)
}

func ActorID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func timeNow() time.Time {
	return time.Now().UTC()
}
