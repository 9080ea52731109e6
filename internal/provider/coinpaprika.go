package provider

import (
	"context"

	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	"github.com/pkg/errors"
)

// coinIDs maps the crypto tickers the bot recognizes to their
// canonical CoinPaprika coin ids.
var coinIDs = map[string]string{
	"BTC": "btc-bitcoin",
	"ETH": "eth-ethereum",
	"DOT": "dot-polkadot",
}

// Crypto serves the fixed set of recognized crypto tickers through the
// CoinPaprika aggregator, quoting in EUR.
type Crypto struct {
	client *coinpaprika.Client
}

func NewCrypto(apiKey string) *Crypto {
	if apiKey != "" {
		return &Crypto{client: coinpaprika.NewClient(nil, coinpaprika.WithAPIKey(apiKey))}
	}
	return &Crypto{client: coinpaprika.NewClient(nil)}
}

func (c *Crypto) Name() string { return "coinpaprika" }

func (c *Crypto) Supports(symbol string) bool {
	_, ok := coinIDs[symbol]
	return ok
}

func (c *Crypto) FetchPrice(_ context.Context, symbol string) (float64, error) {
	coinID := coinIDs[symbol]

	ticker, err := c.client.Tickers.GetByID(coinID, &coinpaprika.TickersOptions{Quotes: "EUR"})
	if err != nil {
		return 0, errors.Wrapf(err, "ticker request for %s", coinID)
	}

	quote, ok := ticker.Quotes["EUR"]
	if !ok || quote.Price == nil {
		return 0, errors.Errorf("no EUR quote for %s", coinID)
	}

	return *quote.Price, nil
}
