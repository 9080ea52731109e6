package database

import (
	"github.com/pkg/errors"
)

// AddSubscriber registers a chat for broadcasts. Registration is
// idempotent; there is no unsubscribe path.
func (s *Store) AddSubscriber(chatID int64) error {
	query := `INSERT OR IGNORE INTO subscribers (chat_id) VALUES (?);`
	if _, err := s.db.Exec(query, chatID); err != nil {
		return errors.Wrap(err, "failed to insert subscriber")
	}
	return nil
}

// AllSubscribers returns every registered chat id.
func (s *Store) AllSubscribers() ([]int64, error) {
	rows, err := s.db.Query(`SELECT chat_id FROM subscribers ORDER BY chat_id;`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query subscribers")
	}
	defer rows.Close()

	var subscribers []int64
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			return nil, errors.Wrap(err, "failed to scan subscriber row")
		}
		subscribers = append(subscribers, chatID)
	}

	return subscribers, rows.Err()
}
