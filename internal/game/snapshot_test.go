package game

import (
	"encoding/json"
	"testing"
)

func validSnapshot() *Snapshot {
	return &Snapshot{
		GameID:    "g1",
		GameState: PhaseFlop,
		Players: []PlayerInfo{
			{PlayerID: "p1", SeatingPos: 0},
			{PlayerID: "p2", SeatingPos: 1},
		},
		Settings: &Settings{GameID: "g1", Ante: 50, BigBlind: 100, LimitMode: NoLimit},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validSnapshot().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsAnomalies(t *testing.T) {
	missingSettings := validSnapshot()
	missingSettings.Settings = nil

	badPlayer := validSnapshot()
	badPlayer.Players[1].PlayerID = ""

	cases := []struct {
		name string
		snap *Snapshot
		want error
	}{
		{"nil snapshot", nil, ErrNoGame},
		{"empty phase", &Snapshot{}, ErrNoGame},
		{"missing settings", missingSettings, ErrNoSettings},
		{"player without id", badPlayer, ErrBadPlayer},
	}
	for _, tc := range cases {
		if err := tc.snap.Validate(); err != tc.want {
			t.Fatalf("%s: Validate() = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestPlayerLookups(t *testing.T) {
	s := validSnapshot()
	s.Players[1].State.ActionOnMe = true

	if p := s.PlayerByID("p2"); p == nil || p.SeatingPos != 1 {
		t.Fatalf("PlayerByID(p2) = %+v", p)
	}
	if p := s.PlayerByID("nope"); p != nil {
		t.Fatalf("PlayerByID(nope) = %+v, want nil", p)
	}
	if p := s.ActionOn(); p == nil || p.PlayerID != "p2" {
		t.Fatalf("ActionOn() = %+v", p)
	}
	if !s.HasPlayer("p1") || s.HasPlayer("p9") {
		t.Fatal("HasPlayer dedupe check failed")
	}
}

func TestPenceRoundTrip(t *testing.T) {
	var p Pence
	if err := json.Unmarshal([]byte("1.30"), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p != 130 {
		t.Fatalf("1.30 = %d pence, want 130", p)
	}
	out, err := json.Marshal(Pence(200))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "2.00" {
		t.Fatalf("marshal 200 = %s, want 2.00", out)
	}
}

func TestIsMultipleOfAnte(t *testing.T) {
	if Pence(130).IsMultipleOf(50) {
		t.Fatal("1.30 should not be a multiple of a 0.50 ante")
	}
	if !Pence(150).IsMultipleOf(50) {
		t.Fatal("1.50 should be a multiple of a 0.50 ante")
	}
	if !Pence(130).IsMultipleOf(0) {
		t.Fatal("zero ante must accept any wager")
	}
}

func TestCardUnmarshalBothShapes(t *testing.T) {
	var cards []Card
	raw := `[{"code":"As"},"Th"]`
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		t.Fatalf("unmarshal cards: %v", err)
	}
	if len(cards) != 2 || cards[0].Code != "As" || cards[1].Code != "Th" {
		t.Fatalf("cards = %+v", cards)
	}
}

func TestParseCard(t *testing.T) {
	if _, err := ParseCard("As"); err != nil {
		t.Fatalf("ParseCard(As) error = %v", err)
	}
	for _, bad := range []string{"", "A", "1s", "Ax", "AS "} {
		if _, err := ParseCard(bad); err == nil {
			t.Fatalf("ParseCard(%q) expected error", bad)
		}
	}
}
