package game

import "errors"

var (
	ErrNoGame     = errors.New("missing_game_detail")
	ErrNoSettings = errors.New("missing_game_settings")
	ErrBadPlayer  = errors.New("invalid_player_entry")
)

// Validate rejects snapshots that would violate the whole-snapshot-replace
// invariant if applied. A failing snapshot is logged and skipped by the
// caller, never partially applied.
func (s *Snapshot) Validate() error {
	if s == nil || s.GameState == "" {
		return ErrNoGame
	}
	if s.Settings == nil {
		return ErrNoSettings
	}
	for i := range s.Players {
		if s.Players[i].PlayerID == "" {
			return ErrBadPlayer
		}
	}
	return nil
}

// PlayerByID returns the seated player with the given durable player id,
// or nil when absent.
func (s *Snapshot) PlayerByID(playerID string) *PlayerInfo {
	if s == nil {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].PlayerID == playerID {
			return &s.Players[i]
		}
	}
	return nil
}

// ActionOn returns the player the action is currently on, or nil.
func (s *Snapshot) ActionOn() *PlayerInfo {
	if s == nil {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].State.ActionOnMe {
			return &s.Players[i]
		}
	}
	return nil
}

// HasPlayer reports whether the roster already holds the given id; joins are
// deduped on it.
func (s *Snapshot) HasPlayer(playerID string) bool {
	return s.PlayerByID(playerID) != nil
}
