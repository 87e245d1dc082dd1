package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-repair-shop/internal/model"
	"go-repair-shop/pkg/apierror"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// sentinels maps domain errors to their HTTP representation.
var sentinels = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{model.ErrClientNotFound, http.StatusNotFound, "NOT_FOUND", "Client not found"},
	{model.ErrVehicleNotFound, http.StatusNotFound, "NOT_FOUND", "Vehicle not found"},
	{model.ErrWorkOrderNotFound, http.StatusNotFound, "NOT_FOUND", "Work order not found"},
	{model.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", "User not found"},
	{model.ErrPlateConflict, http.StatusConflict, "CONFLICT", "Plate number already registered"},
	{model.ErrUserAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", "User already exists"},
	{model.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials"},
	{model.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{model.ErrTokenNotFound, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token"},
	{model.ErrTokenExpired, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token"},
	{model.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access denied"},
	{model.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST", "Invalid input"},
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	matched := false
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
		body.Fields = apiErr.Fields
		matched = true
	} else {
		for _, s := range sentinels {
			if errors.Is(err, s.err) {
				status, body.Code, body.Message = s.status, s.code, s.message
				matched = true
				break
			}
		}
	}

	if !matched {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, model.ErrorResponse{Error: body})
}

func badRequest(message string, details string) *apierror.APIError {
	return apierror.New("BAD_REQUEST", message, details, http.StatusBadRequest)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required", "")
		}
		return badRequest("invalid JSON body", err.Error())
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Sprintf("%s must be a positive integer", name), raw)
	}
	return id, nil
}

// listParams reads skip and limit. A missing limit returns every row.
func listParams(r *http.Request) (model.ListParams, error) {
	var params model.ListParams
	query := r.URL.Query()

	for _, p := range []struct {
		name string
		dst  *int
	}{{"skip", &params.Skip}, {"limit", &params.Limit}} {
		raw := strings.TrimSpace(query.Get(p.name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return model.ListParams{}, badRequest(p.name+" must be a non-negative integer", raw)
		}
		*p.dst = value
	}
	return params, nil
}
