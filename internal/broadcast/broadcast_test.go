package broadcast

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"finanzazen-telegram-bot/internal/content"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscribers struct {
	ids []int64
	err error
}

func (f *fakeSubscribers) AllSubscribers() ([]int64, error) { return f.ids, f.err }

type fakeNotifier struct {
	notified []int64
	texts    []string
	failFor  map[int64]bool
}

func (f *fakeNotifier) Notify(chatID int64, text string) error {
	if f.failFor[chatID] {
		return errors.New("chat deleted")
	}
	f.notified = append(f.notified, chatID)
	f.texts = append(f.texts, text)
	return nil
}

func testPhrases(t *testing.T) *content.List {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frasi.json")
	require.NoError(t, os.WriteFile(path, []byte(`["solo una frase"]`), 0o644))
	return content.LoadPhrases(path)
}

func TestRunDeliversToAllSubscribers(t *testing.T) {
	notifier := &fakeNotifier{}
	b := New(&fakeSubscribers{ids: []int64{1, 2, 3}}, notifier, testPhrases(t), 8)

	var sent int
	b.OnSent = func() { sent++ }
	b.Run()

	assert.Equal(t, []int64{1, 2, 3}, notifier.notified)
	assert.Equal(t, 3, sent)
	assert.Contains(t, notifier.texts[0], "solo una frase")
}

func TestRunIsolatesDeliveryFailures(t *testing.T) {
	notifier := &fakeNotifier{failFor: map[int64]bool{2: true}}
	b := New(&fakeSubscribers{ids: []int64{1, 2, 3}}, notifier, testPhrases(t), 8)

	b.Run()

	assert.Equal(t, []int64{1, 3}, notifier.notified)
}

func TestRunSurvivesStoreError(t *testing.T) {
	notifier := &fakeNotifier{}
	b := New(&fakeSubscribers{err: errors.New("unreadable")}, notifier, testPhrases(t), 8)

	assert.NotPanics(t, b.Run)
	assert.Empty(t, notifier.notified)
}

func TestUntilNextRun(t *testing.T) {
	b := New(&fakeSubscribers{}, &fakeNotifier{}, testPhrases(t), 8)

	t.Run("before the hour, same day", func(t *testing.T) {
		b.now = func() time.Time { return time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC) }
		assert.Equal(t, 2*time.Hour, b.untilNextRun())
	})

	t.Run("after the hour, next day", func(t *testing.T) {
		b.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
		assert.Equal(t, 23*time.Hour, b.untilNextRun())
	})

	t.Run("exactly on the hour, next day", func(t *testing.T) {
		b.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
		assert.Equal(t, 24*time.Hour, b.untilNextRun())
	})
}
