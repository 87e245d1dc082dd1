package page

import (
	"context"
	"fmt"
	"strings"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/validate"
)

// mutate runs a validated service call, reports the outcome and reloads the
// page on success. Validation errors block the call and are returned as
// *validate.Error.
func mutate[T any](ctx context.Context, c *Controller, check validate.Result, what string, verb string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := check.Err(); err != nil {
		return zero, err
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return zero, ErrClosed
	}

	record, err := call(ctx)
	if err != nil {
		c.publish(fmt.Sprintf("Failed to %s %s: %v", verb, what, err), notify.SeverityError)
		return zero, err
	}

	c.publish(fmt.Sprintf("%s %s successfully", capitalize(what), pastTense(verb)), notify.SeveritySuccess)
	if err := c.Load(ctx); err != nil {
		return record, fmt.Errorf("reload after %s: %w", verb, err)
	}
	return record, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pastTense(verb string) string {
	switch verb {
	case "create":
		return "created"
	case "update":
		return "updated"
	case "delete":
		return "deleted"
	}
	return verb + "d"
}

func deletion(remove func(context.Context, int64) error, id int64) func(context.Context) (struct{}, error) {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, remove(ctx, id)
	}
}

func (c *Controller) CreateClient(ctx context.Context, in model.ClientInput) (model.Client, error) {
	return mutate(ctx, c, validate.Client(in), "client", "create", func(ctx context.Context) (model.Client, error) {
		return c.services.Clients.Create(ctx, in)
	})
}

func (c *Controller) UpdateClient(ctx context.Context, id int64, in model.ClientInput) (model.Client, error) {
	return mutate(ctx, c, validate.Client(in), "client", "update", func(ctx context.Context) (model.Client, error) {
		return c.services.Clients.Update(ctx, id, in)
	})
}

func (c *Controller) DeleteClient(ctx context.Context, id int64) error {
	_, err := mutate(ctx, c, validate.Result{}, "client", "delete", deletion(c.services.Clients.Delete, id))
	return err
}

func (c *Controller) CreateVehicle(ctx context.Context, in model.VehicleInput) (model.Vehicle, error) {
	return mutate(ctx, c, validate.Vehicle(in), "vehicle", "create", func(ctx context.Context) (model.Vehicle, error) {
		return c.services.Vehicles.Create(ctx, in)
	})
}

func (c *Controller) UpdateVehicle(ctx context.Context, id int64, in model.VehicleInput) (model.Vehicle, error) {
	return mutate(ctx, c, validate.Vehicle(in), "vehicle", "update", func(ctx context.Context) (model.Vehicle, error) {
		return c.services.Vehicles.Update(ctx, id, in)
	})
}

func (c *Controller) DeleteVehicle(ctx context.Context, id int64) error {
	_, err := mutate(ctx, c, validate.Result{}, "vehicle", "delete", deletion(c.services.Vehicles.Delete, id))
	return err
}

// knownVehicles returns the loaded vehicles, or nil when the page has not
// loaded them so ownership is left to the server.
func (c *Controller) knownVehicles() []model.Vehicle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded || c.data.Vehicles == nil {
		return nil
	}
	return c.data.Vehicles
}

func (c *Controller) CreateWorkOrder(ctx context.Context, in model.WorkOrderInput) (model.WorkOrder, error) {
	check := validate.WorkOrder(in, c.knownVehicles())
	return mutate(ctx, c, check, "work order", "create", func(ctx context.Context) (model.WorkOrder, error) {
		return c.services.WorkOrders.Create(ctx, in)
	})
}

func (c *Controller) UpdateWorkOrder(ctx context.Context, id int64, in model.WorkOrderInput) (model.WorkOrder, error) {
	check := validate.WorkOrder(in, c.knownVehicles())
	return mutate(ctx, c, check, "work order", "update", func(ctx context.Context) (model.WorkOrder, error) {
		return c.services.WorkOrders.Update(ctx, id, in)
	})
}

func (c *Controller) DeleteWorkOrder(ctx context.Context, id int64) error {
	_, err := mutate(ctx, c, validate.Result{}, "work order", "delete", deletion(c.services.WorkOrders.Delete, id))
	return err
}

// VehiclesOf lists the loaded vehicles owned by clientID, which is what a work
// order form offers once a client is chosen.
func (c *Controller) VehiclesOf(clientID int64) []model.Vehicle {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Vehicle, 0)
	for _, vehicle := range c.data.Vehicles {
		if vehicle.OwnerID == clientID {
			out = append(out, vehicle)
		}
	}
	return out
}
