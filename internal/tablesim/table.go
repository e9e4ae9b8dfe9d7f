package tablesim

import (
	"math/rand"
	"sync"

	"holdem-client/internal/game"
)

// table is the scripted dealer: enough poker to exercise the client
// contracts, not a real engine. Every mutation produces a fresh snapshot so
// connected clients always see a whole-state replacement.
type table struct {
	mu       sync.Mutex
	settings game.Settings
	phase    game.Phase
	players  []game.PlayerInfo
	deck     []game.Card
	board    []game.Card
	hands    map[string][]game.Card
	pot      game.Pence
	required game.Pence
	actionAt int
}

func newTable(gameID string, ante, bigBlind game.Pence) *table {
	return &table{
		settings: game.Settings{
			GameID:    gameID,
			Format:    game.FormatCash,
			LimitMode: game.NoLimit,
			Ante:      ante,
			BigBlind:  bigBlind,
		},
		phase: game.PhasePreDeal,
		hands: map[string][]game.Card{},
	}
}

func freshDeck() []game.Card {
	ranks := "23456789TJQKA"
	suits := "shdc"
	deck := make([]game.Card, 0, 52)
	for _, r := range ranks {
		for _, s := range suits {
			deck = append(deck, game.Card{Code: string(r) + string(s)})
		}
	}
	rand.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// seat adds a player if the id is not already seated and returns their info.
func (t *table) seat(playerID, sessionID, handle, picture string, pos int, stack game.Pence) game.PlayerInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.players {
		if t.players[i].PlayerID == playerID {
			t.players[i].SessionID = sessionID
			return t.players[i]
		}
	}
	p := game.PlayerInfo{
		PlayerID:     playerID,
		SessionID:    sessionID,
		PlayerHandle: handle,
		Picture:      picture,
		SeatingPos:   pos,
		CurrentStack: game.StackInfo{Stack: stack},
	}
	p.State.Dealer = len(t.players) == 0
	p.State.Host = len(t.players) == 0
	t.players = append(t.players, p)
	return p
}

// deal starts a new round: fresh deck, hole cards, action on the first seat.
// Returns the dealt hands keyed by player id.
func (t *table) deal() map[string][]game.Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deck = freshDeck()
	t.board = nil
	t.pot = 0
	t.required = t.settings.BigBlind
	t.phase = game.PhasePostDeal
	t.hands = map[string][]game.Card{}
	for i := range t.players {
		t.hands[t.players[i].PlayerID] = t.draw(2)
		t.players[i].State.Folded = false
		t.players[i].State.AllIn = false
		t.players[i].State.LastAction = ""
	}
	t.actionAt = 0
	t.setActionOn()
	return t.hands
}

func (t *table) draw(n int) []game.Card {
	cards := t.deck[:n]
	t.deck = t.deck[n:]
	return cards
}

// apply registers one player action and advances the scripted phase order.
func (t *table) apply(playerID string, action game.Action, bet game.Pence) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.players {
		if t.players[i].PlayerID != playerID {
			continue
		}
		t.players[i].State.LastAction = string(action)
		switch action {
		case game.ActionFold:
			t.players[i].State.Folded = true
		case game.ActionBet, game.ActionRaise, game.ActionAllIn, game.ActionCall, game.ActionPostBlind:
			t.pot += bet
			t.players[i].CurrentStack.Stack -= bet
			t.players[i].CurrentStack.OnTable += bet
			if bet > t.required {
				t.required = bet
			}
		}
	}

	switch t.phase {
	case game.PhasePostDeal:
		t.board = append(t.board, t.draw(3)...)
		t.phase = game.PhaseFlop
	case game.PhaseFlop:
		t.board = append(t.board, t.draw(1)...)
		t.phase = game.PhaseTurn
	case game.PhaseTurn:
		t.board = append(t.board, t.draw(1)...)
		t.phase = game.PhaseRiver
	case game.PhaseRiver:
		t.phase = game.PhaseComplete
	}

	t.actionAt++
	t.setActionOn()
}

func (t *table) setActionOn() {
	if len(t.players) == 0 {
		return
	}
	on := t.actionAt % len(t.players)
	for i := range t.players {
		t.players[i].State.ActionOnMe = i == on && t.phase != game.PhaseComplete
	}
}

// snapshot builds the full-replacement view.
func (t *table) snapshot() *game.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	settings := t.settings
	players := make([]game.PlayerInfo, len(t.players))
	copy(players, t.players)
	board := make([]game.Card, len(t.board))
	copy(board, t.board)
	return &game.Snapshot{
		GameID:       t.settings.GameID,
		GameState:    t.phase,
		Players:      players,
		CardsOnTable: board,
		CurrentPot:   t.pot,
		RequiredBet:  t.required,
		MinRaise:     t.settings.BigBlind,
		Settings:     &settings,
	}
}

func (t *table) phaseNow() game.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}
