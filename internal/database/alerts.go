package database

import (
	"finanzazen-telegram-bot/internal/provider"
	"finanzazen-telegram-bot/internal/types"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// InsertAlert saves an alert. The asset symbol is normalized before
// storage so lookups and removals compare case-insensitively. Target
// validation happens at the command boundary, not here.
func (s *Store) InsertAlert(chatID int64, asset string, target float64) error {
	asset = provider.Normalize(asset)

	query := `INSERT INTO alerts (chat_id, asset, target) VALUES (?, ?, ?);`
	if _, err := s.db.Exec(query, chatID, asset, target); err != nil {
		return errors.Wrap(err, "failed to insert alert")
	}

	log.Debugf("alert inserted: chat %d, asset %s, target %f", chatID, asset, target)
	return nil
}

// AllAlerts fetches every alert, for the evaluator.
func (s *Store) AllAlerts() ([]types.Alert, error) {
	query := `SELECT id, chat_id, asset, target, created_at FROM alerts ORDER BY id;`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query alerts")
	}
	defer rows.Close()

	var alerts []types.Alert
	for rows.Next() {
		var alert types.Alert
		if err := rows.Scan(&alert.ID, &alert.ChatID, &alert.Asset, &alert.Target, &alert.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan alert row")
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// AlertsByChatID fetches all alerts registered by one chat.
func (s *Store) AlertsByChatID(chatID int64) ([]types.Alert, error) {
	query := `SELECT id, chat_id, asset, target, created_at FROM alerts WHERE chat_id = ? ORDER BY id;`

	rows, err := s.db.Query(query, chatID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query alerts for chat %d", chatID)
	}
	defer rows.Close()

	var alerts []types.Alert
	for rows.Next() {
		var alert types.Alert
		if err := rows.Scan(&alert.ID, &alert.ChatID, &alert.Asset, &alert.Target, &alert.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan alert row")
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// DeleteAlerts removes every alert matching the chat and normalized
// asset. Duplicates are indistinguishable and go together.
func (s *Store) DeleteAlerts(chatID int64, asset string) (int64, error) {
	asset = provider.Normalize(asset)

	res, err := s.db.Exec(`DELETE FROM alerts WHERE chat_id = ? AND asset = ?;`, chatID, asset)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete alerts")
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deleted alerts")
	}
	return removed, nil
}
