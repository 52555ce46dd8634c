// Package client is the HTTP client notifyctl uses to talk to a running relay.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"notify_relay/internal/model"
)

// DefaultTimeout covers the relay's own native timeout plus its grace period.
const DefaultTimeout = 30 * time.Second

// StatusError is returned when the relay answers with an unexpected status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

type HTTPClient struct {
	client     *http.Client
	BackendURI string
}

func NewHTTPClient(uri string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		client:     &http.Client{Timeout: timeout},
		BackendURI: strings.TrimRight(uri, "/"),
	}
}

// Healthy pings host, or the configured backend when host is empty.
func (h *HTTPClient) Healthy(ctx context.Context, host string) error {
	if host == "" {
		host = h.BackendURI
	}
	_, err := h.apiCall(ctx, http.MethodGet, strings.TrimRight(host, "/")+"/health", nil, "", http.StatusOK)
	return err
}

// Notify blocks until the relay returns the user's reply. With asJSON the
// raw JSON document is returned instead of the bare reply text.
func (h *HTTPClient) Notify(ctx context.Context, title, message string, asJSON bool) ([]byte, error) {
	accept := "text/plain"
	if asJSON {
		accept = "application/json"
	}
	return h.apiCall(ctx, http.MethodPost, h.BackendURI+"/notify",
		&model.NotificationRequest{Title: title, Message: message}, accept, http.StatusOK)
}

func (h *HTTPClient) Publish(ctx context.Context, title, message string) error {
	_, err := h.apiCall(ctx, http.MethodPost, h.BackendURI+"/notify/publish",
		&model.NotificationRequest{Title: title, Message: message}, "application/json", http.StatusAccepted)
	return err
}

func (h *HTTPClient) apiCall(ctx context.Context, method, url string, body any, accept string, want int) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	res, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http call: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if res.StatusCode != want {
		return nil, &StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(resBody))}
	}
	return resBody, nil
}
