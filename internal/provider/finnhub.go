package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Finnhub is the fallback provider: any symbol not claimed by another
// provider is treated as an equity/ETF ticker.
type Finnhub struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewFinnhub(baseURL, apiKey string) *Finnhub {
	return &Finnhub{BaseURL: baseURL, APIKey: apiKey, Client: defaultHTTPClient()}
}

func (f *Finnhub) Name() string { return "finnhub" }

func (f *Finnhub) Supports(_ string) bool { return true }

func (f *Finnhub) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", f.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/api/v1/quote?"+q.Encode(), nil)
	if err != nil {
		return 0, errors.Wrap(err, "building quote request")
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "quote request for %s", symbol)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("quote request for %s returned status %d", symbol, resp.StatusCode)
	}

	var payload struct {
		Current float64 `json:"c"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, errors.Wrap(err, "decoding quote response")
	}

	// Finnhub reports 0 for unknown tickers rather than an error.
	if payload.Current <= 0 {
		return 0, errors.Errorf("no current price for %s", symbol)
	}

	return payload.Current, nil
}
