package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/session"
)

const maxErrorBody = 64 << 10

// Notifier receives user-facing messages for failed calls.
type Notifier interface {
	Publish(message string, severity notify.Severity) notify.Notification
}

type Options struct {
	HTTPClient *http.Client
	Notifier   Notifier
	Logger     *slog.Logger
	// OnSessionExpired runs after an unrecoverable 401 cleared the session.
	OnSessionExpired func()
	// RequestsPerSecond throttles outbound calls when positive.
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Client talks to the shop REST API. It attaches the stored bearer token to
// every call and recovers a single 401 per call by refreshing the session.
type Client struct {
	baseURL   string
	http      *http.Client
	store     session.Store
	notifier  Notifier
	logger    *slog.Logger
	onExpired func()
	limiter   *rate.Limiter
	userAgent string
	refresh   singleflight.Group
}

func New(baseURL string, store session.Store, opts Options) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api url must be http or https, got %q", baseURL)
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:   strings.TrimRight(parsed.String(), "/"),
		http:      httpClient,
		store:     store,
		notifier:  opts.Notifier,
		logger:    logger,
		onExpired: opts.OnSessionExpired,
		userAgent: opts.UserAgent,
	}

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Store() session.Store {
	return c.store
}

type call struct {
	method string
	path   string
	body   []byte
	out    any
	// anonymous calls skip the bearer token and the refresh-and-retry.
	anonymous bool
	// quiet calls do not publish notifications.
	quiet bool
}

// Do performs one API call. body is encoded as JSON when non-nil; out receives
// the decoded 2xx body when non-nil.
func (c *Client) Do(ctx context.Context, method string, path string, body any, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, call{method: method, path: path, body: payload, out: out})
}

func (c *Client) do(ctx context.Context, req call) error {
	err := c.execute(ctx, req)
	if err != nil && !req.quiet && ctx.Err() == nil && !errors.Is(err, ErrSessionExpired) {
		c.publish(classify(err))
	}
	return err
}

func (c *Client) execute(ctx context.Context, req call) error {
	token := ""
	if !req.anonymous {
		token = session.AccessToken(c.store)
	}

	status, raw, err := c.send(ctx, req, token)
	if err != nil {
		return err
	}

	// One refresh-and-retry per call; a 401 on the retry is final.
	if status == http.StatusUnauthorized && !req.anonymous {
		fresh, refreshErr := c.renewToken(ctx, token)
		if refreshErr != nil {
			c.expire()
			return fmt.Errorf("%w: %w", ErrSessionExpired, refreshErr)
		}

		status, raw, err = c.send(ctx, req, fresh)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			c.expire()
			return fmt.Errorf("%w: %w", ErrSessionExpired, decodeHTTPError(status, raw))
		}
	}

	if status < 200 || status > 299 {
		return decodeHTTPError(status, raw)
	}

	if req.out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, req.out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.method, req.path, err)
	}
	return nil
}

// send issues a single HTTP exchange and returns the status and body.
func (c *Client) send(ctx context.Context, req call, token string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		c.logger.Warn("api request failed", "method", req.method, "path", req.path, "error", err)
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.StatusCode >= 300 {
		reader = io.LimitReader(resp.Body, maxErrorBody)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	c.logger.Debug("api request",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp.StatusCode, raw, nil
}

// renewToken returns a usable access token after a 401 on rejected. When
// another call already rotated the token it is reused; otherwise concurrent
// callers share a single refresh request.
func (c *Client) renewToken(ctx context.Context, rejected string) (string, error) {
	if current := session.AccessToken(c.store); current != "" && current != rejected {
		return current, nil
	}

	value, err, _ := c.refresh.Do("refresh", func() (any, error) {
		return c.refreshSession(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (c *Client) refreshSession(ctx context.Context) (string, error) {
	refreshToken := session.RefreshToken(c.store)
	if refreshToken == "" {
		return "", errors.New("no refresh token stored")
	}

	payload, err := encodeBody(model.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}

	var pair model.TokenPair
	req := call{method: http.MethodPost, path: "/auth/refresh", body: payload, out: &pair, anonymous: true}
	if err := c.execute(ctx, req); err != nil {
		return "", fmt.Errorf("refresh session: %w", err)
	}
	if pair.AccessToken == "" {
		return "", errors.New("refresh session: empty access token")
	}

	if err := session.Rotate(c.store, pair.AccessToken, pair.RefreshToken); err != nil {
		return "", fmt.Errorf("store refreshed session: %w", err)
	}

	c.logger.Info("session refreshed")
	return pair.AccessToken, nil
}

func (c *Client) expire() {
	if err := session.Clear(c.store); err != nil {
		c.logger.Error("failed to clear session", "error", err)
	}
	c.publish(MsgSessionExpired, notify.SeverityWarning)
	if c.onExpired != nil {
		c.onExpired()
	}
}

func (c *Client) publish(message string, severity notify.Severity) {
	if c.notifier != nil {
		c.notifier.Publish(message, severity)
	}
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}
