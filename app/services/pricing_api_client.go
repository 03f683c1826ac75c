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

	"github.com/amirphl/morevans-pricing/config"
	"github.com/google/uuid"
)

// PricingAPI performs one JSON request against the pricing backend. Implementations return
// an *APIError for transport failures and non-2xx responses.
type PricingAPI interface {
	Do(ctx context.Context, method, path string, body any) (*APIResponse, error)
}

// APIResponse is a successful backend response.
type APIResponse struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// Decode unmarshals the response body into v. An empty body leaves v untouched.
func (r *APIResponse) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// APIError describes a failed backend call. StatusCode is 0 when no response was received;
// Message carries the server supplied message when there is one.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("pricing api request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("pricing api status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("pricing api status %d", e.StatusCode)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ServerMessage returns the server supplied message of err, if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// PricingAPIClient is the net/http implementation of PricingAPI
type PricingAPIClient struct {
	cfg     config.PricingAPIConfig
	client  *http.Client
	metrics *ClientMetrics
}

// NewPricingAPIClient creates a client for cfg. metrics may be nil.
func NewPricingAPIClient(cfg config.PricingAPIConfig, metrics *ClientMetrics) *PricingAPIClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &PricingAPIClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: metrics,
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *PricingAPIClient) WithToken(token string) *PricingAPIClient {
	clone := *c
	clone.cfg.Token = token
	return &clone
}

func (c *PricingAPIClient) Do(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, &APIError{Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.observe(method, path, 0, time.Since(start))
		log.Printf("pricing api %s %s failed (request_id=%s): %v", method, path, requestID, err)
		return nil, &APIError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.observe(method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		log.Printf("pricing api %s %s: failed to read response body (request_id=%s): %v", method, path, requestID, err)
		return nil, &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := extractMessage(respBody)
		log.Printf("pricing api %s %s status %d (request_id=%s): %s", method, path, resp.StatusCode, requestID, message)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	return &APIResponse{StatusCode: resp.StatusCode, Body: respBody, RequestID: requestID}, nil
}

// extractMessage reads the "message" field of an error body, falling back to "detail".
func extractMessage(body []byte) string {
	var payload struct {
		Message any `json:"message"`
		Detail  any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, v := range []any{payload.Message, payload.Detail} {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}
