package middleware

import (
	"encoding/json"
	"net/http"

	"go-repair-shop/internal/model"
)

func writeJSONError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Error: &model.APIError{Code: code, Message: message},
	})
}
