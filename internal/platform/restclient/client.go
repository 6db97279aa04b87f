// Package restclient calls the Chato REST backend.
package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultMessage = "Request failed"

// APIError is a failed backend call. Status is 0 when no response arrived.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "backend unreachable: " + e.Message
	}
	return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
}

// Retryable is true for network failures and 5xx responses.
func (e *APIError) Retryable() bool {
	return e.Status == 0 || e.Status >= 500
}

// StatusOf returns the HTTP status of an APIError in err's chain, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Request describes one call. Token is sent as a bearer token; APIKey as
// the x-api-key header used by the SDK endpoints.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Token  string
	APIKey string
	Body   any
}

type Client struct {
	baseURL string
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// Do sends req and decodes a successful JSON response into out (if non-nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}

	method := req.Method
	if method == "" {
		method = fiber.MethodGet
	}

	a := fiber.AcquireAgent()
	r := a.Request()
	r.Header.SetMethod(method)
	r.SetRequestURI(c.baseURL + req.Path)
	for k, v := range req.Query {
		r.URI().QueryArgs().Add(k, v)
	}
	a.Timeout(timeout)
	a.ContentType(fiber.MIMEApplicationJSON)
	if req.Token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+req.Token)
	}
	if req.APIKey != "" {
		a.Set("x-api-key", req.APIKey)
	}
	if req.Body != nil {
		a.JSON(req.Body)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("build request: %w", err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return &APIError{Message: errors.Join(errs...).Error()}
	}

	if code < 200 || code >= 300 {
		return &APIError{Status: code, Message: errorMessage(body)}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, req.Path, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return defaultMessage
}
