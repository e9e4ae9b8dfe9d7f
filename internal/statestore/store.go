// Package statestore persists the handful of per-table values the client
// relies on surviving a restart: the identity, the control preferences and
// the evening-started flag, each under its own expiring key.
package statestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrNotFound = errors.New("state_not_found")

const (
	// IdentityTTL matches the 30-day identity cookie.
	IdentityTTL = 30 * 24 * time.Hour
	// TableTTL is the sliding window for table-scoped state; a reconnect to
	// the same table is only honoured inside it.
	TableTTL = 15 * time.Minute
)

type entry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Store is a small JSON file of expiring entries. All access happens on the
// run loop, so there is no locking here.
type Store struct {
	path    string
	entries map[string]entry
	now     func() time.Time
}

func Open(path string) (*Store, error) {
	s := &Store{path: path, entries: map[string]entry{}, now: time.Now}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.entries); err != nil {
		// A corrupt state file is treated as a fresh sitting, not a fault.
		s.entries = map[string]entry{}
	}
	return s, nil
}

// Per-table entries are keyed by game id so one store file can serve
// several tables.
func IdentityKey(gameID string) string       { return "identity-" + gameID }
func ControlStateKey(gameID string) string   { return "controlState-" + gameID }
func EveningStartedKey(gameID string) string { return "eveningStarted-" + gameID }

func (s *Store) Get(key string, out any) error {
	e, ok := s.entries[key]
	if !ok || s.now().After(e.ExpiresAt) {
		delete(s.entries, key)
		return ErrNotFound
	}
	return json.Unmarshal(e.Value, out)
}

func (s *Store) Set(key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = entry{Value: raw, ExpiresAt: s.now().Add(ttl)}
	return s.flush()
}

func (s *Store) Delete(key string) error {
	delete(s.entries, key)
	return s.flush()
}

func (s *Store) flush() error {
	for k, e := range s.entries {
		if s.now().After(e.ExpiresAt) {
			delete(s.entries, k)
		}
	}
	raw, err := json.Marshal(s.entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}
