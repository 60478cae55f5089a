// Package session persists the current login session across runs.
//
// The store is a flat key/value surface holding exactly two keys: the
// serialized user snapshot and the bearer token. All components read and
// write session state exclusively through [Store]; nothing touches the
// underlying storage directly.
package session

import (
	"database/sql"
	"fmt"
	"sync"
)

// Storage keys. KeyUser holds the serialized [models.User] snapshot,
// KeyToken the raw bearer token string.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// Store is the durable key/value surface for session state.
type Store interface {
	// Get returns the stored value for key, or false if absent. Get
	// never fails: storage errors are treated as an absent key.
	Get(key string) (string, bool)

	// Set stores value under key, overwriting any prior value.
	Set(key, value string) error

	// Clear removes all stored keys. Used on logout and account deletion.
	Clear() error
}

// SQLiteStore implements [Store] over the session_store table created by
// the embedded migrations. Values survive process restarts.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new [SQLiteStore] with the given database connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM session_store WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) Set(key, value string) error {
	query := `
		INSERT INTO session_store (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM session_store"); err != nil {
		return fmt.Errorf("failed to clear session store: %w", err)
	}
	return nil
}

// MemStore is an in-memory [Store] for tests and ephemeral runs.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return nil
}
