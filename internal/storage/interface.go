package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned by stores that cannot be read or written
var ErrUnavailable = errors.New("storage unavailable")

// Store defines the persistent local key/value store of one storefront profile.
// Values are JSON strings. Concurrent writers follow last-write-wins.
type Store interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)

	// Set writes value under key, replacing any previous value
	Set(key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(key string) error

	// Stats describes the store for health reporting
	Stats() (*StorageStats, error)

	// Close flushes and releases the store
	Close() error
}

// StorageStats provides information about the local store
type StorageStats struct {
	Backend        string    `json:"backend"`
	KeyCount       int       `json:"keyCount"`
	InitializedAt  time.Time `json:"initializedAt"`
	LastUpdateTime time.Time `json:"lastUpdateTime"`
}

// GetJSON decodes the value under key into out. It reports false when the key is absent.
func GetJSON(s Store, key string, out interface{}) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and writes it under key
func SetJSON(s Store, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.Set(key, string(data))
}

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// New opens the store selected by backend under dataDir
func New(backend, dataDir string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStorage(""), nil
	case BackendFile, "":
		ms := NewMemoryStorage(dataDir)
		if err := ms.Initialize(); err != nil {
			return nil, err
		}
		return ms, nil
	case BackendSQLite:
		return NewSQLiteStorage(dataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
