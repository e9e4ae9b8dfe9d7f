package controls

import (
	"time"

	"github.com/rs/zerolog/log"

	"holdem-client/internal/game"
	"holdem-client/internal/runloop"
)

// autoBlindDelay gives the server's round-start messages time to land before
// the automatic blind post goes out.
const autoBlindDelay = 800 * time.Millisecond

// ActionPoster sends a player action to the table. Implemented by the
// message channel router.
type ActionPoster interface {
	PostAction(action game.Action, bet game.Pence) error
}

// EveningState is the evening-started flag, read and advanced here but owned
// (and persisted) by the connection state.
type EveningState interface {
	EveningStarted() bool
	SetEveningStarted(bool)
}

// Persisted is the slice of control state that survives a page reload via the
// per-table state store.
type Persisted struct {
	AutoPostBlind  bool `json:"autoBlind"`
	SoundEffects   bool `json:"soundEffects"`
	CountdownSound bool `json:"countdownSound"`
	HideEmptySeats bool `json:"hideEmptySeats"`
}

func DefaultPersisted() Persisted {
	return Persisted{AutoPostBlind: true, SoundEffects: true, CountdownSound: true, HideEmptySeats: true}
}

// Controller owns the local control flags and re-derives the plan on every
// snapshot refresh. All methods run on the loop.
type Controller struct {
	loop     runloop.Scheduler
	poster   ActionPoster
	playerID string
	evening  EveningState

	persisted Persisted
	save      func(Persisted)

	wasBigBlind bool
	disabled    bool // cash-out shuts everything down for the sitting

	plan     Plan
	onChange func(Plan)

	blindQueued bool
}

func NewController(loop runloop.Scheduler, poster ActionPoster, playerID string, evening EveningState, persisted Persisted, save func(Persisted)) *Controller {
	if save == nil {
		save = func(Persisted) {}
	}
	return &Controller{
		loop:      loop,
		poster:    poster,
		playerID:  playerID,
		evening:   evening,
		persisted: persisted,
		save:      save,
	}
}

// OnChange registers the single plan listener (the rendering surface).
func (c *Controller) OnChange(fn func(Plan)) { c.onChange = fn }

func (c *Controller) Plan() Plan { return c.plan }

func (c *Controller) SetAutoPostBlind(v bool) {
	c.persisted.AutoPostBlind = v
	c.save(c.persisted)
}

func (c *Controller) PersistedState() Persisted { return c.persisted }

// SetPlayerID updates the local identity after the server confirms (or
// reassigns) it on subscription.
func (c *Controller) SetPlayerID(id string) {
	if id != "" {
		c.playerID = id
	}
}

// DisableAll drops every control until the next refresh re-enables them.
func (c *Controller) DisableAll() {
	c.plan = Plan{State: AwaitingTurn, CallLabel: "Call", FoldLabel: "Fold"}
	c.emit()
}

// Shutdown is the cash-out path: controls off for the rest of this sitting.
func (c *Controller) Shutdown() {
	c.disabled = true
	c.DisableAll()
}

// Refresh re-derives the control plan from an authoritative snapshot.
// isNewGame marks the first snapshot of a fresh round.
func (c *Controller) Refresh(snap *game.Snapshot, isNewGame bool) {
	if c.disabled {
		return
	}
	if isNewGame {
		c.wasBigBlind = false
		c.evening.SetEveningStarted(true)
	}
	if snap.GameState == game.PhaseComplete {
		// Reaching a completed round means the evening is under way even for
		// a late joiner.
		c.evening.SetEveningStarted(true)
	}

	flags := LocalFlags{
		AutoPostBlind:  c.persisted.AutoPostBlind,
		EveningStarted: c.evening.EveningStarted(),
		WasBigBlind:    c.wasBigBlind,
	}
	plan := Derive(snap, c.playerID, flags)
	c.wasBigBlind = plan.WasBigBlind
	c.plan = plan
	c.emit()

	if plan.AutoPostBlind && !c.blindQueued {
		c.blindQueued = true
		c.loop.PostDelayed(func() {
			c.blindQueued = false
			if c.disabled {
				return
			}
			if err := c.poster.PostAction(game.ActionPostBlind, 0); err != nil {
				log.Warn().Err(err).Msg("auto blind post failed")
			}
		}, autoBlindDelay)
	}
}

// SubmitWager validates and sends a bet, choosing BET or ALL_IN from the
// computed maximum. Invalid entries are rejected here and never sent.
func (c *Controller) SubmitWager(amount game.Pence, ante game.Pence) error {
	if err := ValidateWager(amount, c.plan, ante); err != nil {
		return err
	}
	action := game.ActionBet
	if c.plan.BetLabel(amount) == "All-In" {
		action = game.ActionAllIn
	}
	return c.poster.PostAction(action, amount)
}

func (c *Controller) emit() {
	if c.onChange != nil {
		c.onChange(c.plan)
	}
}
