package model

import (
	"strconv"
	"strings"
)

type ClientInput struct {
	Name        string  `json:"name" validate:"required,max=50"`
	PhoneNumber string  `json:"phone_number" validate:"required,max=20"`
	Email       *string `json:"email" validate:"omitempty,max=50,email"`
}

type Client struct {
	ID int64 `json:"id"`
	ClientInput
}

func (c *ClientInput) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.PhoneNumber = strings.TrimSpace(c.PhoneNumber)
	c.Email = optionalText(c.Email)
}

func (c Client) Input() ClientInput {
	return c.ClientInput
}

type VehicleInput struct {
	OwnerID     int64  `json:"owner_id" validate:"required"`
	VehicleType string `json:"vehicle_type" validate:"required,max=25"`
	BrandModel  string `json:"brand_model" validate:"required,max=50"`
	PlateNumber string `json:"plate_number" validate:"required,max=25"`
	Kilometers  int    `json:"kilometers" validate:"gte=0"`
}

type Vehicle struct {
	ID int64 `json:"id"`
	VehicleInput
}

func (v *VehicleInput) Normalize() {
	v.VehicleType = strings.TrimSpace(v.VehicleType)
	v.BrandModel = strings.TrimSpace(v.BrandModel)
	v.PlateNumber = strings.ToUpper(strings.TrimSpace(v.PlateNumber))
}

func (v Vehicle) Input() VehicleInput {
	return v.VehicleInput
}

type WorkOrderInput struct {
	ClientID                int64         `json:"client_id" validate:"required"`
	VehicleID               int64         `json:"vehicle_id" validate:"required"`
	EntryDate               Date          `json:"entry_date"`
	EgressDate              *Date         `json:"egress_date"`
	WorkStatus              WorkStatus    `json:"work_status" validate:"oneof=pending in_progress completed"`
	PaymentStatus           PaymentStatus `json:"payment_status" validate:"oneof=not_paid partially_paid paid bill_sent not_requested"`
	Workers                 string        `json:"workers" validate:"required,max=50"`
	Hours                   *float64      `json:"hours" validate:"omitempty,gte=0"`
	RefrigerantGasRetrieved *int          `json:"refrigerant_gas_retrieved" validate:"omitempty,gte=0"`
	RefrigerantGasInjected  *int          `json:"refrigerant_gas_injected" validate:"omitempty,gte=0"`
	OilRetrieved            *int          `json:"oil_retrieved" validate:"omitempty,gte=0"`
	OilInjected             *int          `json:"oil_injected" validate:"omitempty,gte=0"`
	Detector                TriBool       `json:"detector"`
	SpareParts              *string       `json:"spare_parts"`
	Details                 *string       `json:"details"`
}

type WorkOrder struct {
	ID int64 `json:"id"`
	WorkOrderInput
}

// Normalize applies the canonical representation: lower-case enums with their
// defaults, nil for unset dates and blank optional text.
func (w *WorkOrderInput) Normalize() {
	w.WorkStatus = WorkStatus(NormalizeEnum(string(w.WorkStatus)))
	if w.WorkStatus == "" {
		w.WorkStatus = WorkStatusPending
	}
	w.PaymentStatus = PaymentStatus(NormalizeEnum(string(w.PaymentStatus)))
	if w.PaymentStatus == "" {
		w.PaymentStatus = PaymentNotPaid
	}
	if w.EgressDate != nil && w.EgressDate.IsZero() {
		w.EgressDate = nil
	}
	w.Workers = strings.TrimSpace(w.Workers)
	w.SpareParts = optionalText(w.SpareParts)
	w.Details = optionalText(w.Details)
}

func (w WorkOrder) Input() WorkOrderInput {
	return w.WorkOrderInput
}

// FormatID renders an ID the way it is matched by free-text search.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Text dereferences optional text, returning "" when unset.
func Text(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func StringPtr(value string) *string {
	return optionalText(&value)
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
