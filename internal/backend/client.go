// Package backend is the typed client of the remote KaraScolaire REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/config"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/middleware/requestid"
)

// UnauthorizedHook is invoked with the request context whenever the backend answers 401.
type UnauthorizedHook func(ctx context.Context)

// Observer records backend call outcomes.
type Observer interface {
	ObserveBackendCall(resource string, status int, duration time.Duration)
}

// Client calls the remote API on behalf of the session carried by each context.
type Client struct {
	baseURL        string
	http           *http.Client
	logger         *zap.Logger
	onUnauthorized UnauthorizedHook
	observer       Observer
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUnauthorizedHook registers the 401 callback.
func WithUnauthorizedHook(hook UnauthorizedHook) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New constructs a client for cfg.
func New(cfg config.BackendConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type backendMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	if payload == nil {
		return c.do(ctx, method, path, nil, "", out)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encodage de la requête impossible")
	}
	return c.do(ctx, method, path, bytes.NewReader(body), "application/json", out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, form Multipart, out interface{}) error {
	body, contentType, err := form.Encode()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "formulaire multipart invalide")
	}
	return c.do(ctx, method, path, body, contentType, out)
}

// do performs one authenticated call and maps the outcome onto the gateway errors:
// 401 expires the session, other 4xx carry the backend message verbatim, 5xx and
// transport failures become the generic unavailable error. Nothing is retried.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	sess, ok := session.FromContext(ctx)
	if !ok || !sess.Authenticated() {
		return appErrors.ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "requête invalide")
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(path, 0, time.Since(start))
		c.logger.Warn("backend call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.MessageBackendUnavailable)
	}
	defer resp.Body.Close()
	c.observe(path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return appErrors.ErrSessionExpired
	case resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn("backend error", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return appErrors.Clone(appErrors.ErrBackendUnavailable, "")
	case resp.StatusCode >= 400:
		return rejection(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.MessageBackendUnavailable)
	}
	return nil
}

func rejection(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var msg backendMessage
	_ = json.Unmarshal(raw, &msg)
	text := msg.Message
	if text == "" {
		text = msg.Error
	}
	return appErrors.WithStatus(appErrors.Clone(appErrors.ErrBackendRejected, text), resp.StatusCode)
}

func (c *Client) observe(path string, status int, d time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(resourceOf(path), status, d)
}

// resourceOf reduces "/api/classes/niveau/42" to "classes".
func resourceOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}

// Count reduces a collection endpoint to a number: the array length, or the
// embedded count field of an object.
func (c *Client) Count(ctx context.Context, path string) (int, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return 0, err
	}
	return countOf(raw)
}

func countOf(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return 0, unexpected(err)
		}
		return len(items), nil
	}
	var obj struct {
		Count *int `json:"count"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, unexpected(err)
	}
	if obj.Count == nil {
		return 0, unexpected(fmt.Errorf("no count field"))
	}
	return *obj.Count, nil
}

func unexpected(err error) error {
	return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.MessageBackendUnavailable)
}
