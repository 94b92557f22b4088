// Package strapi implements the service.Service interface against a Strapi
// content API.
package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskflow/internal/config"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

const (
	// DefaultTimeout bounds each API call when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	loginPath    = "api/auth/local"
	registerPath = "api/auth/local/register"
	todosPath    = "api/todos"
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a client for the backend named in cfg.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	c, err := NewWithHTTPClient(cfg.Settings.BaseURL, http.DefaultClient)
	if err != nil {
		return nil, err
	}
	if d := cfg.Settings.Timeout.Duration; d > 0 {
		c.timeout = d
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("backend URL not configured")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL: %s", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: u, httpClient: httpClient, timeout: DefaultTimeout}, nil
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.Auth, error) {
	return c.authenticate(ctx, loginPath, loginRequest{
		Identifier: creds.Identifier,
		Password:   creds.Password,
	})
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, reg service.Registration) (service.Auth, error) {
	return c.authenticate(ctx, registerPath, registerRequest{
		Username: reg.Username,
		Email:    reg.Email,
		Password: reg.Password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (service.Auth, error) {
	data, err := c.do(ctx, c.httpClient, http.MethodPost, path, body)
	if err != nil {
		return service.Auth{}, authError(err)
	}

	var resp authResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return service.Auth{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.JWT == "" {
		return service.Auth{}, errors.New("server returned no token (account may need email confirmation)")
	}
	return resp.auth(), nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, fields service.TaskFields) (service.Task, error) {
	hc, err := c.authorized(ctx)
	if err != nil {
		return service.Task{}, err
	}
	data, err := c.do(ctx, hc, http.MethodPost, todosPath, writeRequest{Data: patchToData(fields.Patch())})
	if err != nil {
		return service.Task{}, err
	}
	return decodeRecord(data)
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	hc, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, hc, http.MethodGet, todosPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(data)
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id int, patch service.TaskPatch) (service.Task, error) {
	hc, err := c.authorized(ctx)
	if err != nil {
		return service.Task{}, err
	}
	data, err := c.do(ctx, hc, http.MethodPut, todoPath(id), writeRequest{Data: patchToData(patch)})
	if err != nil {
		return service.Task{}, err
	}
	return decodeRecord(data)
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	hc, err := c.authorized(ctx)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, hc, http.MethodDelete, todoPath(id), nil)
	return err
}

// authorized returns an HTTP client that sends the context's session as a
// bearer token. It fails without a network call when no usable session is
// present.
func (c *Client) authorized(ctx context.Context) (*http.Client, error) {
	s, ok := session.FromContext(ctx)
	if !ok {
		return nil, service.ErrNoSession
	}
	if err := s.Check(timeNow()); err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(s.OAuthToken()),
			Base:   c.httpClient.Transport,
		},
		Timeout: c.httpClient.Timeout,
	}, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := log.FromContext(ctx)
	start := time.Now()
	res, err := hc.Do(req)
	if err != nil {
		logger.Debug("api request failed", "method", method, "path", "/"+path, "err", err)
		return nil, wrapError(err)
	}
	defer res.Body.Close()
	logger.Debug("api request", "method", method, "path", "/"+path, "status", res.StatusCode, "duration", time.Since(start))

	if err := googleapi.CheckResponse(res); err != nil {
		return nil, wrapError(err)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, wrapError(err)
	}
	return data, nil
}

// Error is a non-2xx response from the backend.
type Error struct {
	Code    int    // HTTP status
	Message string // message reported by the server
	kind    error  // service sentinel, if any
}

func (e *Error) Error() string {
	if e.kind != nil {
		return fmt.Sprintf("%v: %s", e.kind, e.Message)
	}
	return fmt.Sprintf("server error (%d): %s", e.Code, e.Message)
}

// Unwrap returns the matching service sentinel so callers can use errors.Is.
func (e *Error) Unwrap() error {
	return e.kind
}

// wrapError maps transport and HTTP errors onto the service sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", context.DeadlineExceeded)
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	e := &Error{Code: gerr.Code, Message: serverMessage(gerr)}
	switch gerr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.kind = service.ErrUnauthorized
	case http.StatusNotFound:
		e.kind = service.ErrNotFound
	}
	return e
}

// authError reinterprets a refused login or registration. The auth
// endpoints answer bad credentials with 400 and a descriptive message.
func authError(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	switch e.Code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Code: e.Code, Message: e.Message, kind: service.ErrInvalidCredentials}
	}
	return err
}

// serverMessage extracts the human-readable message of an error response.
func serverMessage(gerr *googleapi.Error) string {
	if gerr.Message != "" {
		return gerr.Message
	}
	var body errorResponse
	if err := json.Unmarshal([]byte(gerr.Body), &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	if text := http.StatusText(gerr.Code); text != "" {
		return strings.ToLower(text)
	}
	return fmt.Sprintf("status %d", gerr.Code)
}
