package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrUnavailable is the only error callers see from a Registry lookup.
// Upstream failures never escape the adapter boundary in any other form.
var ErrUnavailable = errors.New("price unavailable")

// Provider fetches the current price for symbols it recognizes.
type Provider interface {
	Name() string
	Supports(symbol string) bool
	FetchPrice(ctx context.Context, symbol string) (float64, error)
}

// Normalize maps user input to the canonical symbol form used for
// routing, cache keys and store lookups.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// Registry routes a symbol to the first registered provider that
// supports it. Registration order is the routing precedence.
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// FetchPrice resolves a price through the matching provider. Any
// provider failure is logged and collapsed into ErrUnavailable.
func (r *Registry) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = Normalize(symbol)
	if symbol == "" {
		return 0, ErrUnavailable
	}

	for _, p := range r.providers {
		if !p.Supports(symbol) {
			continue
		}

		value, err := p.FetchPrice(ctx, symbol)
		if err != nil {
			log.Errorf("provider %s failed for %s: %v", p.Name(), symbol, err)
			return 0, ErrUnavailable
		}
		return value, nil
	}

	return 0, ErrUnavailable
}
