package hyperliq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vedant-shah/pair/internal/domain"
	"github.com/vedant-shah/pair/internal/infra"
	"github.com/vedant-shah/pair/pkg/quant"
)

// ErrCandleServiceDown is returned when the circuit breaker is rejecting
// requests to the candle service.
var ErrCandleServiceDown = fmt.Errorf("candle service circuit open")

// CandleClient fetches historical candle windows from the candle service.
// Calls are rate-limited and circuit-breaker guarded.
type CandleClient struct {
	baseURL string
	http    *http.Client
	limiter *infra.RateLimiter
	breaker *infra.CircuitBreaker
}

// NewCandleClient creates a client for the given candle-service base URL.
func NewCandleClient(baseURL string) *CandleClient {
	return &CandleClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: httpTimeout},
		limiter: infra.GetCandleLimiter(),
		breaker: infra.NewCircuitBreaker(infra.CandleBreakerConfig()),
	}
}

type candleRequest struct {
	Quote          string `json:"quote"`
	Base           string `json:"base"`
	StartTimestamp int64  `json:"startTimestamp"`
	EndTimestamp   int64  `json:"endTimestamp"`
	Interval       string `json:"interval"`
}

// Fetch returns up to count candles ending at endMillis (exclusive of any
// later bucket), oldest first. quote/base are the pair legs in display order.
func (c *CandleClient) Fetch(ctx context.Context, quote, base string, interval quant.Interval, endMillis int64, count int) ([]domain.Candle, error) {
	if !c.breaker.Allow() {
		return nil, ErrCandleServiceDown
	}
	c.limiter.Wait()

	req := candleRequest{
		Quote:          quote,
		Base:           base,
		StartTimestamp: endMillis - int64(count)*interval.Millis(),
		EndTimestamp:   endMillis,
		Interval:       string(interval),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("candle fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("candle fetch: unexpected status %d", resp.StatusCode)
	}

	candles, err := decodeCandleTuples(resp.Body)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("candle fetch: %w", err)
	}

	c.breaker.RecordSuccess()
	return candles, nil
}

// decodeCandleTuples parses the positional tuple array the candle service
// returns. Rows that do not parse are skipped, matching the feed policy of
// dropping malformed entries instead of failing the whole window.
func decodeCandleTuples(r io.Reader) ([]domain.Candle, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rows [][]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}

	out := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		if c, ok := parseCandleTuple(row); ok {
			out = append(out, c)
		}
	}
	return out, nil
}
