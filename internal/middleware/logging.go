package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-repair-shop/internal/model"
)

const (
	requestIDHeader       = "X-Request-ID"
	requestIDContextKey   = contextKey("request_id")
	maxCapturedErrorBytes = 8 << 10
)

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// Logging assigns a request ID and logs one line per request. Error responses
// have their code, message and field names attached.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"client_ip", extractClientIP(r),
		}

		if wrapped.status >= 400 {
			if r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}
			attrs = append(attrs, errorAttrs(wrapped.body.Bytes())...)
		}

		switch {
		case wrapped.status >= 500:
			slog.Error("request", attrs...)
		case wrapped.status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	})
}

func errorAttrs(body []byte) []any {
	if len(body) == 0 {
		return nil
	}

	var parsed model.ErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error == nil {
		return nil
	}

	attrs := []any{"error_code", parsed.Error.Code, "error_message", parsed.Error.Message}
	if parsed.Error.Details != "" {
		attrs = append(attrs, "error_details", parsed.Error.Details)
	}
	if len(parsed.Error.Fields) > 0 {
		fields := make([]string, 0, len(parsed.Error.Fields))
		for field := range parsed.Error.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		attrs = append(attrs, "error_fields", strings.Join(fields, ","))
	}
	return attrs
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.status = statusCode
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.status >= 400 && rw.body.Len() < maxCapturedErrorBytes {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// Hijack keeps websocket upgrades working behind the logger.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}
