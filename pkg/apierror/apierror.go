package apierror

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type APIError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	HTTPStatus int               `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, joinFields(e.Fields))
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Validation reports field-level input errors as 422.
func Validation(fields map[string]string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    "invalid input",
		Fields:     fields,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func joinFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+fields[key])
	}
	return strings.Join(parts, "; ")
}
