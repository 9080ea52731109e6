package provider

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// FX serves "USD" and "EUR" from a EUR-based rate service. "EUR" is the
// base currency and always resolves to 1 without a request.
type FX struct {
	BaseURL string
	Client  *http.Client
}

func NewFX(baseURL string) *FX {
	return &FX{BaseURL: baseURL, Client: defaultHTTPClient()}
}

func (f *FX) Name() string { return "exchangerate" }

func (f *FX) Supports(symbol string) bool {
	return symbol == "USD" || symbol == "EUR"
}

func (f *FX) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	if symbol == "EUR" {
		return 1, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/latest?base=EUR", nil)
	if err != nil {
		return 0, errors.Wrap(err, "building fx request")
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "fx request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("fx request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, errors.Wrap(err, "decoding fx response")
	}

	rate, ok := payload.Rates[symbol]
	if !ok || rate <= 0 {
		return 0, errors.Errorf("no %s rate in fx response", symbol)
	}

	return rate, nil
}
