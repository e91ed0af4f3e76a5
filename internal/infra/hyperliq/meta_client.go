package hyperliq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// MetaClient fetches static exchange metadata. The only field the gateway
// consumes is each asset's maximum leverage, which seeds the sizing defaults.
type MetaClient struct {
	url  string
	http *http.Client
}

// NewMetaClient creates a client for the exchange info endpoint.
func NewMetaClient(url string) *MetaClient {
	return &MetaClient{
		url:  url,
		http: &http.Client{Timeout: httpTimeout},
	}
}

type metaResponse struct {
	Universe []struct {
		Name        string `json:"name"`
		MaxLeverage int    `json:"maxLeverage"`
	} `json:"universe"`
}

// MaxLeverage returns the maximum leverage per asset symbol.
func (m *MetaClient) MaxLeverage(ctx context.Context) (map[string]int, error) {
	body := []byte(`{"type":"meta"}`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange meta: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange meta: unexpected status %d", resp.StatusCode)
	}

	var meta metaResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("exchange meta: %w", err)
	}

	out := make(map[string]int, len(meta.Universe))
	for _, a := range meta.Universe {
		if a.MaxLeverage > 0 {
			out[a.Name] = a.MaxLeverage
		}
	}
	return out, nil
}
