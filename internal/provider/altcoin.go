package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// altPairs maps recognized alt-coin tickers that the aggregator does
// not cover to the market pair queried on the secondary endpoint.
var altPairs = map[string]string{
	"DOGE": "DOGEEUR",
	"XRP":  "XRPEUR",
	"LTC":  "LTCEUR",
}

// AltCoin serves the recognized alt-coin tickers from a secondary
// ticker endpoint, parsing the last traded price of the first result.
type AltCoin struct {
	BaseURL string
	Client  *http.Client
}

func NewAltCoin(baseURL string) *AltCoin {
	return &AltCoin{BaseURL: baseURL, Client: defaultHTTPClient()}
}

func (a *AltCoin) Name() string { return "altcoin" }

func (a *AltCoin) Supports(symbol string) bool {
	_, ok := altPairs[symbol]
	return ok
}

func (a *AltCoin) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	pair := altPairs[symbol]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/api/ticker?symbol="+pair, nil)
	if err != nil {
		return 0, errors.Wrap(err, "building ticker request")
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "ticker request for %s", pair)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("ticker request for %s returned status %d", pair, resp.StatusCode)
	}

	var payload struct {
		Result []struct {
			Last string `json:"last"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, errors.Wrap(err, "decoding ticker response")
	}

	if len(payload.Result) == 0 {
		return 0, errors.Errorf("empty ticker result for %s", pair)
	}

	last, err := strconv.ParseFloat(payload.Result[0].Last, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing last price %q", payload.Result[0].Last)
	}

	return last, nil
}
