package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"finanzazen-telegram-bot/internal/provider"
	"finanzazen-telegram-bot/internal/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	alerts []types.Alert
	err    error
}

func (f *fakeSource) AllAlerts() ([]types.Alert, error) { return f.alerts, f.err }

type fakeResolver struct {
	mu     sync.Mutex
	prices map[string]float64
	calls  map[string]int
	block  chan struct{}
}

func (f *fakeResolver) Resolve(_ context.Context, symbol string) (float64, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[symbol]++
	price, ok := f.prices[symbol]
	f.mu.Unlock()

	if !ok {
		return 0, provider.ErrUnavailable
	}
	return price, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []int64
	failFor  map[int64]bool
}

func (f *fakeNotifier) Notify(chatID int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return errors.New("blocked by user")
	}
	f.notified = append(f.notified, chatID)
	return nil
}

func TestCycleResolvesEachAssetOnce(t *testing.T) {
	source := &fakeSource{alerts: []types.Alert{
		{ChatID: 1, Asset: "BTC", Target: 100},
		{ChatID: 2, Asset: "BTC", Target: 100},
		{ChatID: 3, Asset: "ETH", Target: 100},
	}}
	resolver := &fakeResolver{prices: map[string]float64{"BTC": 150, "ETH": 150}}
	notifier := &fakeNotifier{}

	e := NewEvaluator(source, resolver, notifier, time.Minute)
	e.RunCycle(context.Background())

	assert.Equal(t, 1, resolver.calls["BTC"])
	assert.Equal(t, 1, resolver.calls["ETH"])
	assert.ElementsMatch(t, []int64{1, 2, 3}, notifier.notified)
}

func TestTriggerComparisonIsInclusive(t *testing.T) {
	resolver := &fakeResolver{prices: map[string]float64{"BTC": 100}}

	t.Run("price equal to target fires", func(t *testing.T) {
		notifier := &fakeNotifier{}
		source := &fakeSource{alerts: []types.Alert{{ChatID: 1, Asset: "BTC", Target: 100}}}
		NewEvaluator(source, resolver, notifier, time.Minute).RunCycle(context.Background())
		assert.Equal(t, []int64{1}, notifier.notified)
	})

	t.Run("price below target does not fire", func(t *testing.T) {
		notifier := &fakeNotifier{}
		source := &fakeSource{alerts: []types.Alert{{ChatID: 1, Asset: "BTC", Target: 100.01}}}
		NewEvaluator(source, resolver, notifier, time.Minute).RunCycle(context.Background())
		assert.Empty(t, notifier.notified)
	})
}

func TestNotificationFailureDoesNotAbortCycle(t *testing.T) {
	source := &fakeSource{alerts: []types.Alert{
		{ChatID: 1, Asset: "BTC", Target: 100},
		{ChatID: 2, Asset: "BTC", Target: 100},
		{ChatID: 3, Asset: "BTC", Target: 100},
	}}
	resolver := &fakeResolver{prices: map[string]float64{"BTC": 200}}
	notifier := &fakeNotifier{failFor: map[int64]bool{1: true}}

	var fired int
	e := NewEvaluator(source, resolver, notifier, time.Minute)
	e.OnFired = func() { fired++ }
	e.RunCycle(context.Background())

	assert.ElementsMatch(t, []int64{2, 3}, notifier.notified)
	assert.Equal(t, 2, fired)
}

func TestUnavailablePriceFiresNothing(t *testing.T) {
	source := &fakeSource{alerts: []types.Alert{
		{ChatID: 1, Asset: "BTC", Target: 0},
		{ChatID: 2, Asset: "ETH", Target: 100},
	}}
	resolver := &fakeResolver{prices: map[string]float64{"ETH": 150}}
	notifier := &fakeNotifier{}

	NewEvaluator(source, resolver, notifier, time.Minute).RunCycle(context.Background())

	// BTC is unavailable: even a zero target must not fire.
	assert.Equal(t, []int64{2}, notifier.notified)
}

func TestSourceErrorEndsCycleQuietly(t *testing.T) {
	source := &fakeSource{err: errors.New("store unreadable")}
	notifier := &fakeNotifier{}

	e := NewEvaluator(source, &fakeResolver{}, notifier, time.Minute)
	assert.NotPanics(t, func() { e.RunCycle(context.Background()) })
	assert.Empty(t, notifier.notified)
}

func TestOverlappingCycleIsSkipped(t *testing.T) {
	block := make(chan struct{})
	source := &fakeSource{alerts: []types.Alert{{ChatID: 1, Asset: "BTC", Target: 100}}}
	resolver := &fakeResolver{prices: map[string]float64{"BTC": 200}, block: block}
	notifier := &fakeNotifier{}

	e := NewEvaluator(source, resolver, notifier, time.Minute)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.RunCycle(context.Background())
	}()

	// Give the first cycle time to take the lock and block in Resolve,
	// then a second tick must return immediately without resolving.
	time.Sleep(50 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		e.RunCycle(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("overlapping cycle was not skipped")
	}

	close(block)
	wg.Wait()

	require.Equal(t, 1, resolver.calls["BTC"])
	assert.Equal(t, []int64{1}, notifier.notified)
}

func TestSatisfiedAlertRefiresEveryCycle(t *testing.T) {
	source := &fakeSource{alerts: []types.Alert{{ChatID: 1, Asset: "BTC", Target: 100}}}
	resolver := &fakeResolver{prices: map[string]float64{"BTC": 200}}
	notifier := &fakeNotifier{}

	e := NewEvaluator(source, resolver, notifier, time.Minute)
	e.RunCycle(context.Background())
	e.RunCycle(context.Background())

	assert.Equal(t, []int64{1, 1}, notifier.notified)
}
