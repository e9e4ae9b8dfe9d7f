package statestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestSetGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.Set(EveningStartedKey("g1"), true, TableTTL); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var started bool
	if err := s.Get(EveningStartedKey("g1"), &started); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !started {
		t.Fatal("value lost in round trip")
	}
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)
	var v string
	if err := s.Get(IdentityKey("nope"), &v); err != ErrNotFound {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestExpiredEntryReadsAsAbsent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Set("k", "v", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	var v string
	if err := s.Get("k", &v); err != ErrNotFound {
		t.Fatalf("Get() after expiry = %v, want ErrNotFound", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Set(ControlStateKey("g1"), map[string]bool{"autoBlind": true}, IdentityTTL); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	var state map[string]bool
	if err := reopened.Get(ControlStateKey("g1"), &state); err != nil {
		t.Fatalf("Get() after reopen = %v", err)
	}
	if !state["autoBlind"] {
		t.Fatalf("state = %v", state)
	}
}

func TestCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() on corrupt file = %v", err)
	}
	var v string
	if err := s.Get("anything", &v); err != ErrNotFound {
		t.Fatalf("Get() = %v, want ErrNotFound", err)
	}
}
