package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorIdle      = 10 * time.Minute
	visitorSweepSize = 1000
)

// credentialPaths accept a password or refresh token and share the auth budget.
var credentialPaths = map[string]struct{}{
	"/auth/login":   {},
	"/auth/refresh": {},
}

type visitor struct {
	api      *rate.Limiter
	auth     *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware gives every client IP a per-minute budget for the API and
// a separate, usually smaller one for credential endpoints.
type RateLimitMiddleware struct {
	generalRPM int
	authRPM    int

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimitMiddleware builds per-client limiters. A non-positive generalRPM
// disables the general limit; authRPM falls back to 10.
func NewRateLimitMiddleware(generalRPM int, authRPM int) *RateLimitMiddleware {
	if authRPM <= 0 {
		authRPM = 10
	}
	return &RateLimitMiddleware{
		generalRPM: generalRPM,
		authRPM:    authRPM,
		visitors:   make(map[string]*visitor),
		now:        time.Now,
	}
}

func perMinute(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := m.visitor(extractClientIP(r))

		limiter := v.api
		if _, ok := credentialPaths[strings.ToLower(strings.TrimSuffix(r.URL.Path, "/"))]; ok {
			limiter = v.auth
		}

		if limiter != nil && !limiter.Allow() {
			w.Header().Set("Retry-After", retryAfter(limiter))
			writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// retryAfter is the whole number of seconds until limiter has a token again.
func retryAfter(limiter *rate.Limiter) string {
	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()
	return strconv.Itoa(max(1, int(math.Ceil(delay.Seconds()))))
}

func (m *RateLimitMiddleware) visitor(ip string) *visitor {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	v, ok := m.visitors[ip]
	if !ok {
		if len(m.visitors) >= visitorSweepSize {
			m.sweepLocked(now)
		}
		v = &visitor{api: perMinute(m.generalRPM), auth: perMinute(m.authRPM)}
		m.visitors[ip] = v
	}
	v.lastSeen = now
	return v
}

// sweepLocked forgets clients idle for longer than visitorIdle.
func (m *RateLimitMiddleware) sweepLocked(now time.Time) {
	for ip, v := range m.visitors {
		if now.Sub(v.lastSeen) > visitorIdle {
			delete(m.visitors, ip)
		}
	}
}

// extractClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection's remote host.
func extractClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	if remote == "" {
		return "unknown"
	}
	return remote
}
