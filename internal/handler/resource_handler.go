package handler

import (
	"context"
	"net/http"

	"go-repair-shop/internal/model"
)

type resourceService[T any, C any, U any] interface {
	List(ctx context.Context, params model.ListParams) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, in C) (T, error)
	Update(ctx context.Context, id int64, in U) (T, error)
	Delete(ctx context.Context, id int64) error
}

// ResourceHandler serves list/get/create/update/delete for one collection.
// C and U are the create and update payloads.
type ResourceHandler[T any, C any, U any] struct {
	service resourceService[T, C, U]
}

func NewResourceHandler[T any, C any, U any](service resourceService[T, C, U]) *ResourceHandler[T, C, U] {
	return &ResourceHandler[T, C, U]{service: service}
}

func (h *ResourceHandler[T, C, U]) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.service.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *ResourceHandler[T, C, U]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ResourceHandler[T, C, U]) Create(w http.ResponseWriter, r *http.Request) {
	var payload C
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *ResourceHandler[T, C, U]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload U
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ResourceHandler[T, C, U]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeNoContent(w)
}
