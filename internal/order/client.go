package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/vedant-shah/pair/internal/domain"
	"github.com/vedant-shah/pair/internal/infra"
)

// ErrExecServiceDown is returned when the circuit breaker is rejecting
// requests to the execution service.
var ErrExecServiceDown = fmt.Errorf("execution service circuit open")

// Client submits built order requests to the execution service.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *infra.RateLimiter
	breaker *infra.CircuitBreaker
}

// NewClient creates a client for the given execution base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: infra.GetOrderLimiter(),
		breaker: infra.NewCircuitBreaker(infra.ExecBreakerConfig()),
	}
}

type submitResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Submit posts the request to /market or /limit according to the order type.
// A nil return means the service acknowledged the order; any error leaves the
// caller's form state untouched for correction and resubmission.
func (c *Client) Submit(ctx context.Context, req Request, orderType domain.OrderType) error {
	if !c.breaker.Allow() {
		infra.OrderSubmissions.WithLabelValues(string(orderType), "rejected").Inc()
		return ErrExecServiceDown
	}
	c.limiter.Wait()

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	url := c.baseURL + "/market"
	if orderType == domain.OrderLimit {
		url = c.baseURL + "/limit"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.breaker.RecordFailure()
		infra.OrderSubmissions.WithLabelValues(string(orderType), "error").Inc()
		return fmt.Errorf("order submit: %w", err)
	}
	defer resp.Body.Close()

	var ack submitResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&ack); decodeErr != nil && resp.StatusCode == http.StatusOK {
		c.breaker.RecordFailure()
		infra.OrderSubmissions.WithLabelValues(string(orderType), "error").Inc()
		return fmt.Errorf("order submit: %w", decodeErr)
	}

	if resp.StatusCode != http.StatusOK || ack.Status != "ok" {
		c.breaker.RecordFailure()
		infra.OrderSubmissions.WithLabelValues(string(orderType), "error").Inc()
		if ack.Error != "" {
			return fmt.Errorf("order rejected: %s", ack.Error)
		}
		return fmt.Errorf("order rejected: status %d", resp.StatusCode)
	}

	c.breaker.RecordSuccess()
	infra.OrderSubmissions.WithLabelValues(string(orderType), "ok").Inc()
	slog.Info("Order accepted", "type", orderType, "client_id", req.ClientID, "size", req.RestingUsdcSize)
	return nil
}
