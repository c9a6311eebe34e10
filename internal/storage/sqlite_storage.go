package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStorage implements Store on a single-table sqlite database
type SQLiteStorage struct {
	db            *sql.DB
	path          string
	initializedAt time.Time
}

// NewSQLiteStorage opens (creating if needed) local_storage.db under dataDir
func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dataDir, "local_storage.db")

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// One writer at a time; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS local_storage (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create local_storage table: %w", err)
	}

	slog.Info("SQLite local storage opened", "path", path)
	return &SQLiteStorage{db: db, path: path, initializedAt: time.Now()}, nil
}

func (s *SQLiteStorage) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStorage) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO local_storage (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Stats() (*StorageStats, error) {
	stats := &StorageStats{Backend: BackendSQLite, InitializedAt: s.initializedAt}

	var lastUpdate sql.NullString
	err := s.db.QueryRow(`SELECT COUNT(*), MAX(updated_at) FROM local_storage`).Scan(&stats.KeyCount, &lastUpdate)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage stats: %w", err)
	}
	if lastUpdate.Valid {
		if t, err := time.Parse("2006-01-02 15:04:05", lastUpdate.String); err == nil {
			stats.LastUpdateTime = t
		}
	}
	return stats, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
