// Package solver talks to the external room-assignment optimization service.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aula-planner/internal/models"
	"github.com/noah-isme/aula-planner/pkg/middleware/requestid"
)

// FallbackMessage is reported when the service fails without a structured error body.
const FallbackMessage = "The solver service returned an error without details."

const maxBodyBytes = 4 << 20

// Outcome labels used for metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
)

// ServiceError is a failure reported by the solver itself.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// TransportError covers everything that prevented a usable reply: connection
// failures, cancelled contexts and bodies that are not valid JSON.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "network error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type observer interface {
	ObserveSolverCall(outcome string, duration time.Duration)
}

// Client posts solve requests to a fixed endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
	metrics  observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records call latency by outcome.
func WithMetrics(m observer) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client for endpoint. The default HTTP client sets no overall
// timeout: a call lasts until the service answers or the context ends.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     NewHTTPClient(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns an HTTP client with pooled connections and no request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Endpoint returns the configured solve URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Solve sends exactly one POST and interprets the reply. Errors are either
// *ServiceError or *TransportError.
func (c *Client) Solve(ctx context.Context, req models.SolveRequest) (*models.SolveResponse, error) {
	start := time.Now()
	resp, err := c.solve(ctx, req)
	outcome := OutcomeSuccess
	var svcErr *ServiceError
	switch {
	case errors.As(err, &svcErr):
		outcome = OutcomeRejected
	case err != nil:
		outcome = OutcomeTransport
	}
	if c.metrics != nil {
		c.metrics.ObserveSolverCall(outcome, time.Since(start))
	}
	if err != nil {
		c.logger.Warn("solver call failed", zap.String("outcome", outcome), zap.Duration("latency", time.Since(start)), zap.Error(err))
	} else {
		c.logger.Info("solver call completed", zap.String("status", resp.Status), zap.Int("assignments", len(resp.Assignments)), zap.Duration("latency", time.Since(start)))
	}
	return resp, err
}

func (c *Client) solve(ctx context.Context, req models.SolveRequest) (*models.SolveResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("encode solve request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("build solve request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		httpReq.Header.Set(requestid.HeaderKey, id)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer httpResp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read solver response: %w", err)}
	}

	ok := httpResp.StatusCode >= 200 && httpResp.StatusCode < 300
	var decoded models.SolveResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if !ok {
		msg := FallbackMessage
		if decodeErr == nil && decoded.Error != "" {
			msg = decoded.Error
		}
		return nil, &ServiceError{StatusCode: httpResp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed solver response: %w", decodeErr)}
	}
	if decoded.Error != "" {
		return nil, &ServiceError{StatusCode: httpResp.StatusCode, Message: decoded.Error}
	}
	if decoded.Status == "" || decoded.Assignments == nil {
		return nil, &TransportError{Err: errors.New("malformed solver response: missing estado or resultados")}
	}
	return &decoded, nil
}
