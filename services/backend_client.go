package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Session carries the caller's credentials to the backend.
// It is passed explicitly; the client never reads ambient storage.
type Session struct {
	Token string
}

// BackendClient talks to the remote restaurant REST API.
// A client is immutable once built and safe for concurrent use.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	session    Session
}

var backendClientInstance *BackendClient

// NewBackendClient creates a client for the API rooted at baseURL
func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// InitBackendClient creates the shared client used by the controllers
func InitBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	backendClientInstance = NewBackendClient(baseURL, timeout)
	return backendClientInstance
}

// GetBackendClient returns the shared client
func GetBackendClient() *BackendClient {
	return backendClientInstance
}

// SetBackendClient sets the shared client (primarily for testing)
func SetBackendClient(client *BackendClient) {
	backendClientInstance = client
}

// WithSession returns a copy of the client that authenticates as s
func (c *BackendClient) WithSession(s Session) *BackendClient {
	clone := *c
	clone.session = s
	return &clone
}

// errorBody covers the error shapes the backend is known to send
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	if len(b.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Error, &s); err == nil {
		return s
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}

// do sends a request and decodes a 2xx response into out.
// Responses wrapped as {"data": ...} are unwrapped.
func (c *BackendClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("warning: failed to close %s response body: %v", op, closeErr)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	// The caller may have gone away while the response was in flight
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &TransportError{Op: op, Err: ctxErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return &BackendError{StatusCode: resp.StatusCode, Message: eb.text()}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(data), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func unwrapData(data []byte) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return data
	}
	if inner, ok := envelope["data"]; ok && len(inner) > 0 && string(inner) != "null" {
		return inner
	}
	return data
}

// statusOf returns the HTTP status of a BackendError, or 0 for any other error
func statusOf(err error) int {
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode
	}
	return 0
}

// notFoundOr maps a backend 404 to a NotFoundError and returns other errors unchanged
func notFoundOr(err error, resource, id string) error {
	if statusOf(err) == http.StatusNotFound {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}
