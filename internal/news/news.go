package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"finanzazen-telegram-bot/internal/types"

	"github.com/pkg/errors"
)

// Client fetches headlines from a newsdata.io compatible endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Latest returns up to limit articles for the query keyword.
func (c *Client) Latest(ctx context.Context, query, language string, limit int) ([]types.Article, error) {
	q := url.Values{}
	q.Set("apikey", c.APIKey)
	q.Set("q", query)
	q.Set("language", language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/1/news?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building news request")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "news request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("news request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Status  string          `json:"status"`
		Results []types.Article `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decoding news response")
	}

	if payload.Status != "success" {
		return nil, errors.Errorf("news request returned status %q", payload.Status)
	}

	if limit > 0 && len(payload.Results) > limit {
		payload.Results = payload.Results[:limit]
	}
	return payload.Results, nil
}
