package view

import (
	"cmp"

	"go-repair-shop/internal/model"
)

const (
	UnknownName  = "Unknown"
	NotAvailable = "N/A"
)

const (
	FilterWorkStatus    = "work_status"
	FilterPaymentStatus = "payment_status"
	FilterVehicleType   = "vehicle_type"
	FilterOwner         = "owner_id"
	FilterClient        = "client_id"
	FilterVehicle       = "vehicle_id"
)

// WorkOrderRow is a work order joined with its client and vehicle.
type WorkOrderRow struct {
	model.WorkOrder
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	VehiclePlate  string `json:"vehicle_plate"`
	VehicleModel  string `json:"vehicle_model"`
	VehicleType   string `json:"vehicle_type"`
}

type VehicleRow struct {
	model.Vehicle
	OwnerName  string `json:"owner_name"`
	OwnerPhone string `json:"owner_phone"`
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func indexByID[T any](items []T, id func(T) int64) map[int64]T {
	out := make(map[int64]T, len(items))
	for _, item := range items {
		out[id(item)] = item
	}
	return out
}

func clientID(c model.Client) int64   { return c.ID }
func vehicleID(v model.Vehicle) int64 { return v.ID }

// JoinWorkOrders resolves each order's client and vehicle by exact id.
// Missing relations render as "Unknown" for the customer name and "N/A"
// for every other joined field.
func JoinWorkOrders(orders []model.WorkOrder, clients []model.Client, vehicles []model.Vehicle) []WorkOrderRow {
	clientsByID := indexByID(clients, clientID)
	vehiclesByID := indexByID(vehicles, vehicleID)

	rows := make([]WorkOrderRow, 0, len(orders))
	for _, order := range orders {
		row := WorkOrderRow{
			WorkOrder:     order,
			CustomerName:  UnknownName,
			CustomerPhone: NotAvailable,
			CustomerEmail: NotAvailable,
			VehiclePlate:  NotAvailable,
			VehicleModel:  NotAvailable,
			VehicleType:   NotAvailable,
		}
		if client, ok := clientsByID[order.ClientID]; ok {
			row.CustomerName = orDefault(client.Name, UnknownName)
			row.CustomerPhone = orDefault(client.PhoneNumber, NotAvailable)
			row.CustomerEmail = orDefault(model.Text(client.Email), NotAvailable)
		}
		if vehicle, ok := vehiclesByID[order.VehicleID]; ok {
			row.VehiclePlate = orDefault(vehicle.PlateNumber, NotAvailable)
			row.VehicleModel = orDefault(vehicle.BrandModel, NotAvailable)
			row.VehicleType = orDefault(vehicle.VehicleType, NotAvailable)
		}
		rows = append(rows, row)
	}
	return rows
}

func JoinVehicles(vehicles []model.Vehicle, clients []model.Client) []VehicleRow {
	clientsByID := indexByID(clients, clientID)

	rows := make([]VehicleRow, 0, len(vehicles))
	for _, vehicle := range vehicles {
		row := VehicleRow{Vehicle: vehicle, OwnerName: UnknownName, OwnerPhone: NotAvailable}
		if owner, ok := clientsByID[vehicle.OwnerID]; ok {
			row.OwnerName = orDefault(owner.Name, UnknownName)
			row.OwnerPhone = orDefault(owner.PhoneNumber, NotAvailable)
		}
		rows = append(rows, row)
	}
	return rows
}

var WorkOrderSchema = Schema[WorkOrderRow]{
	SearchFields: func(row WorkOrderRow) []string {
		return []string{
			model.FormatID(row.ID),
			row.CustomerName,
			model.Text(row.Details),
			model.Text(row.SpareParts),
			row.VehiclePlate,
		}
	},
	FilterValue: func(row WorkOrderRow, key string) string {
		switch key {
		case FilterWorkStatus:
			return string(row.WorkStatus)
		case FilterPaymentStatus:
			return string(row.PaymentStatus)
		case FilterClient:
			return model.FormatID(row.ClientID)
		case FilterVehicle:
			return model.FormatID(row.VehicleID)
		}
		return ""
	},
	Compare: func(a WorkOrderRow, b WorkOrderRow) int {
		return a.EntryDate.Compare(b.EntryDate)
	},
}

var VehicleSchema = Schema[VehicleRow]{
	SearchFields: func(row VehicleRow) []string {
		return []string{
			model.FormatID(row.ID),
			row.PlateNumber,
			row.BrandModel,
			row.VehicleType,
		}
	},
	FilterValue: func(row VehicleRow, key string) string {
		switch key {
		case FilterVehicleType:
			return row.VehicleType
		case FilterOwner:
			return model.FormatID(row.OwnerID)
		}
		return ""
	},
	Compare: func(a VehicleRow, b VehicleRow) int {
		return cmp.Compare(a.ID, b.ID)
	},
}

var ClientSchema = Schema[model.Client]{
	SearchFields: func(c model.Client) []string {
		return []string{
			model.FormatID(c.ID),
			c.Name,
			c.PhoneNumber,
			model.Text(c.Email),
		}
	},
	FilterValue: func(c model.Client, key string) string {
		return ""
	},
	Compare: func(a model.Client, b model.Client) int {
		return cmp.Compare(a.ID, b.ID)
	},
}
