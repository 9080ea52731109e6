package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finanzazen-telegram-bot/internal/provider"
	"finanzazen-telegram-bot/internal/types"
	"finanzazen-telegram-bot/lib/helpers"
	"finanzazen-telegram-bot/lib/translation"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval is how often alerts are checked.
const DefaultInterval = 5 * time.Minute

// Notifier delivers a message to a chat. Delivery may fail per
// recipient (blocked bot, deleted chat) and is never fatal.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// Source yields the full alert list for one evaluation cycle.
type Source interface {
	AllAlerts() ([]types.Alert, error)
}

// Resolver resolves a symbol to its current price.
type Resolver interface {
	Resolve(ctx context.Context, symbol string) (float64, error)
}

// Evaluator periodically compares every registered alert against
// current prices and notifies owners whose target has been met.
type Evaluator struct {
	source   Source
	resolver Resolver
	notifier Notifier
	interval time.Duration

	// OnFired, when set, is called once per delivered notification.
	OnFired func()

	mu sync.Mutex
}

func NewEvaluator(source Source, resolver Resolver, notifier Notifier, interval time.Duration) *Evaluator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Evaluator{
		source:   source,
		resolver: resolver,
		notifier: notifier,
		interval: interval,
	}
}

// Start runs evaluation cycles until the context is cancelled.
func (e *Evaluator) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.RunCycle(ctx)
			}
		}
	}()
	log.Info("alert evaluator started")
}

// RunCycle executes one evaluation pass. A tick that arrives while the
// previous cycle is still in flight is skipped, so slow upstreams
// cannot stack cycles.
func (e *Evaluator) RunCycle(ctx context.Context) {
	if !e.mu.TryLock() {
		log.Warn("previous alert cycle still running, skipping tick")
		return
	}
	defer e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic recovered in alert cycle: %v", r)
		}
	}()

	alerts, err := e.source.AllAlerts()
	if err != nil {
		log.Errorf("failed to load alerts: %v", err)
		return
	}
	if len(alerts) == 0 {
		return
	}

	prices := e.resolveCyclePrices(ctx, alerts)

	for _, a := range alerts {
		price, ok := prices[provider.Normalize(a.Asset)]
		if !ok {
			continue
		}
		if price < a.Target {
			continue
		}

		if err := e.notifier.Notify(a.ChatID, triggeredMessage(a, price)); err != nil {
			log.Errorf("failed to notify chat %d for %s: %v", a.ChatID, a.Asset, err)
			continue
		}
		if e.OnFired != nil {
			e.OnFired()
		}
	}
}

// resolveCyclePrices resolves each distinct asset exactly once for the
// cycle. Unavailable assets are simply absent from the map, so none of
// their alerts can fire this round.
func (e *Evaluator) resolveCyclePrices(ctx context.Context, alerts []types.Alert) map[string]float64 {
	prices := make(map[string]float64)
	seen := make(map[string]bool)

	for _, a := range alerts {
		asset := provider.Normalize(a.Asset)
		if seen[asset] {
			continue
		}
		seen[asset] = true

		price, err := e.resolver.Resolve(ctx, asset)
		if err != nil {
			log.Warnf("no price for %s this cycle: %v", asset, err)
			continue
		}
		prices[asset] = price
	}

	return prices
}

func triggeredMessage(a types.Alert, price float64) string {
	return fmt.Sprintf(
		"🚨 *%s*\n\n*%s* %s *%s* \\(target: %s\\)",
		helpers.EscapeMarkdownV2(translation.Translate("Price alert triggered")),
		helpers.EscapeMarkdownV2(a.Asset),
		helpers.EscapeMarkdownV2(translation.Translate("has reached")),
		helpers.FormatPriceUS(price, true),
		helpers.FormatPriceUS(a.Target, true),
	)
}
