package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAlertRoundTrip(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.InsertAlert(42, "btc", 50000))

	alerts, err := store.AlertsByChatID(42)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "BTC", alerts[0].Asset)
	assert.Equal(t, float64(50000), alerts[0].Target)
	assert.Equal(t, int64(42), alerts[0].ChatID)

	removed, err := store.DeleteAlerts(42, "BTC")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	alerts, err = store.AlertsByChatID(42)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDeleteAlertsIsOwnerScoped(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.InsertAlert(1, "BTC", 100))
	require.NoError(t, store.InsertAlert(2, "BTC", 100))

	removed, err := store.DeleteAlerts(1, "BTC")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	alerts, err := store.AlertsByChatID(2)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "BTC", alerts[0].Asset)
}

func TestDeleteAlertsRemovesAllDuplicates(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.InsertAlert(7, "ETH", 1000))
	require.NoError(t, store.InsertAlert(7, "eth", 2000))
	require.NoError(t, store.InsertAlert(7, "BTC", 50000))

	removed, err := store.DeleteAlerts(7, "eth")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	alerts, err := store.AlertsByChatID(7)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "BTC", alerts[0].Asset)
}

func TestAllAlertsSpansOwners(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.InsertAlert(1, "BTC", 100))
	require.NoError(t, store.InsertAlert(2, "ETH", 200))

	alerts, err := store.AllAlerts()
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestAddSubscriberIsIdempotent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.AddSubscriber(99))
	require.NoError(t, store.AddSubscriber(99))
	require.NoError(t, store.AddSubscriber(100))

	subscribers, err := store.AllSubscribers()
	require.NoError(t, err)
	assert.Equal(t, []int64{99, 100}, subscribers)
}

func TestMetricRoundTrip(t *testing.T) {
	store := openTestStore(t)

	value, err := store.GetMetric("commands_processed")
	require.NoError(t, err)
	assert.Equal(t, float64(0), value)

	require.NoError(t, store.SaveMetric("commands_processed", 12))
	require.NoError(t, store.SaveMetric("commands_processed", 15))

	value, err = store.GetMetric("commands_processed")
	require.NoError(t, err)
	assert.Equal(t, float64(15), value)
}

func TestGetMetricReportsQueryErrors(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	require.NoError(t, store.SaveMetric("commands_processed", 3))
	require.NoError(t, store.Close())

	// An absent row is 0, but a failing query must surface.
	_, err = store.GetMetric("commands_processed")
	assert.Error(t, err)
}
