package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/notify"
)

var (
	// ErrNetwork wraps failures where no response was received.
	ErrNetwork = errors.New("network error")
	// ErrSessionExpired means the refresh-and-retry failed and the session was cleared.
	ErrSessionExpired = errors.New("session expired")
)

const (
	MsgNetwork        = "Network error - server unreachable"
	MsgNotFound       = "Resource not found (404)"
	MsgBadRequest     = "Bad request (400)"
	MsgServer         = "Server error (500+)"
	MsgUnexpected     = "Unexpected error occurred"
	MsgSessionExpired = "Session expired - please log in again"
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// classify maps an error to the notification shown for its status class.
func classify(err error) (string, notify.Severity) {
	if errors.Is(err, ErrNetwork) {
		return MsgNetwork, notify.SeverityError
	}

	switch status := StatusOf(err); {
	case status == http.StatusNotFound:
		return MsgNotFound, notify.SeverityWarning
	case status == http.StatusBadRequest:
		return MsgBadRequest, notify.SeverityError
	case status >= http.StatusInternalServerError:
		return MsgServer, notify.SeverityError
	}
	return MsgUnexpected, notify.SeverityError
}

type errorBody struct {
	Error  *model.APIError `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

func decodeHTTPError(status int, raw []byte) *HTTPError {
	httpErr := &HTTPError{Status: status, Message: http.StatusText(status)}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return httpErr
	}

	if body.Error != nil {
		httpErr.Code = body.Error.Code
		if body.Error.Message != "" {
			httpErr.Message = body.Error.Message
		}
		httpErr.Fields = body.Error.Fields
		return httpErr
	}

	var detail string
	if len(body.Detail) > 0 && json.Unmarshal(body.Detail, &detail) == nil && detail != "" {
		httpErr.Message = detail
	}
	return httpErr
}
