package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MemoryStorage implements Store in memory, persisting every write to a JSON file
// when a data directory is configured
type MemoryStorage struct {
	mu             sync.RWMutex
	values         map[string]string
	initializedAt  time.Time
	lastUpdateTime time.Time
	dataFile       string
}

// NewMemoryStorage creates a new store. An empty dataDir keeps everything in memory.
func NewMemoryStorage(dataDir string) *MemoryStorage {
	ms := &MemoryStorage{
		values:        make(map[string]string),
		initializedAt: time.Now(),
	}
	if dataDir == "" {
		return ms
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		// If we can't create the directory, use current directory
		slog.Warn("Could not create data directory, using current directory", "dir", dataDir, "error", err)
		dataDir = "."
	}
	ms.dataFile = filepath.Join(dataDir, "local_storage.json")
	return ms
}

// Initialize loads existing data if available
func (ms *MemoryStorage) Initialize() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if err := ms.loadFromFile(); err != nil {
		// A corrupt file starts an empty profile rather than failing startup
		slog.Warn("Could not load local storage file, starting empty", "file", ms.dataFile, "error", err)
		ms.values = make(map[string]string)
	}
	return nil
}

func (ms *MemoryStorage) Get(key string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	v, ok := ms.values[key]
	return v, ok, nil
}

func (ms *MemoryStorage) Set(key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.values[key] = value
	ms.lastUpdateTime = time.Now()
	return ms.saveToFile()
}

func (ms *MemoryStorage) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.values[key]; !ok {
		return nil
	}
	delete(ms.values, key)
	ms.lastUpdateTime = time.Now()
	return ms.saveToFile()
}

// Stats returns storage statistics
func (ms *MemoryStorage) Stats() (*StorageStats, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	backend := BackendMemory
	if ms.dataFile != "" {
		backend = BackendFile
	}
	return &StorageStats{
		Backend:        backend,
		KeyCount:       len(ms.values),
		InitializedAt:  ms.initializedAt,
		LastUpdateTime: ms.lastUpdateTime,
	}, nil
}

// Close persists data one last time
func (ms *MemoryStorage) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.saveToFile()
}

// loadFromFile loads data from the JSON file
func (ms *MemoryStorage) loadFromFile() error {
	if ms.dataFile == "" {
		return nil
	}

	data, err := os.ReadFile(ms.dataFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read storage file: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to unmarshal storage file: %w", err)
	}
	ms.values = values

	slog.Debug("Loaded local storage from file", "file", ms.dataFile, "keys", len(values))
	return nil
}

// saveToFile writes through a temp file so a crash never leaves a truncated file
func (ms *MemoryStorage) saveToFile() error {
	if ms.dataFile == "" {
		return nil
	}

	data, err := json.MarshalIndent(ms.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	tmp := ms.dataFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, ms.dataFile); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
