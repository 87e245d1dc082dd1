package event

import "strings"

type Type string

const (
	TypeClientCreated    Type = "client.created"
	TypeClientUpdated    Type = "client.updated"
	TypeClientDeleted    Type = "client.deleted"
	TypeVehicleCreated   Type = "vehicle.created"
	TypeVehicleUpdated   Type = "vehicle.updated"
	TypeVehicleDeleted   Type = "vehicle.deleted"
	TypeWorkOrderCreated Type = "work_order.created"
	TypeWorkOrderUpdated Type = "work_order.updated"
	TypeWorkOrderDeleted Type = "work_order.deleted"
	TypeUserCreated      Type = "user.created"
	TypeUserUpdated      Type = "user.updated"
	TypeUserDeleted      Type = "user.deleted"
)

// Resource is the collection an event type refers to ("client", "vehicle", ...).
func (t Type) Resource() string {
	resource, _, _ := strings.Cut(string(t), ".")
	return resource
}

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
