package handler

import (
	"context"
	"net/http"

	"go-repair-shop/internal/model"
)

type ownerVehicleService interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Vehicle, error)
	CreateForOwner(ctx context.Context, ownerID int64, in model.VehicleInput) (model.Vehicle, error)
	DeleteForOwner(ctx context.Context, ownerID int64, id int64) error
}

// ClientVehiclesHandler serves the vehicles nested under /clients/{id}.
type ClientVehiclesHandler struct {
	service ownerVehicleService
}

func NewClientVehiclesHandler(service ownerVehicleService) *ClientVehiclesHandler {
	return &ClientVehiclesHandler{service: service}
}

func (h *ClientVehiclesHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	vehicles, err := h.service.ListByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vehicles)
}

func (h *ClientVehiclesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.VehicleInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	vehicle, err := h.service.CreateForOwner(r.Context(), ownerID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, vehicle)
}

func (h *ClientVehiclesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	vehicleID, err := pathID(r, "vehicle_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteForOwner(r.Context(), ownerID, vehicleID); err != nil {
		writeError(w, err)
		return
	}

	writeNoContent(w)
}
