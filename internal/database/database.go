package database

import (
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Store is the durable backend for alerts, subscribers and persisted
// metric counters.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	createAlertsTable := `
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		asset TEXT NOT NULL,
		target REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(createAlertsTable); err != nil {
		return nil, errors.Wrap(err, "failed to create alerts table")
	}

	createSubscribersTable := `
	CREATE TABLE IF NOT EXISTS subscribers (
		chat_id INTEGER PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(createSubscribersTable); err != nil {
		return nil, errors.Wrap(err, "failed to create subscribers table")
	}

	createMetricsTable := `
	CREATE TABLE IF NOT EXISTS metrics (
		metric_name TEXT PRIMARY KEY,
		metric_value REAL NOT NULL
	);`
	if _, err := db.Exec(createMetricsTable); err != nil {
		return nil, errors.Wrap(err, "failed to create metrics table")
	}

	log.Debug("database initialized")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
