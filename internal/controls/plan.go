package controls

import "holdem-client/internal/game"

// State is the derived legality state for the local player. It is recomputed
// from scratch on every snapshot; nothing accumulates between refreshes
// except the flags in LocalFlags.
type State string

const (
	AwaitingTurn     State = "AWAITING_TURN"
	NoFundsLockedOut State = "NO_FUNDS_LOCKED_OUT"
	BlindDue         State = "BLIND_DUE"
	ActingComplete   State = "ACTING_COMPLETE"
	ActiveTurn       State = "ACTIVE_TURN"
)

// LocalFlags are the UI-only inputs to the derivation: everything here is
// client-side state the server has no view of.
type LocalFlags struct {
	// AutoPostBlind posts a due blind without showing the control.
	AutoPostBlind bool
	// EveningStarted gates fold/reveal: neither is ever enabled before this
	// sitting has seen a completed round.
	EveningStarted bool
	// WasBigBlind tracks having posted the big blind this round; it decides
	// the Check-vs-Call label when the required bet equals the big blind.
	WasBigBlind bool
}

type Bounds struct {
	Min  game.Pence
	Max  game.Pence
	Step game.Pence
}

// Plan is the full output of one derivation: which controls are enabled, how
// they are labelled, and the wager bounds. Rendering is a pure function of a
// Plan; nothing else inspects the snapshot for legality.
type Plan struct {
	State     State
	CheckCall bool
	Bet       bool
	Fold      bool
	Reveal    bool
	PostBlind bool

	CallLabel string // "Check" or "Call"
	FoldLabel string // "Fold" or "Muck"
	LimitMode game.LimitMode

	Bounds Bounds

	// AutoPostBlind asks the controller to issue POST_BLIND itself after the
	// scheduling delay; the plan's controls stay disabled meanwhile.
	AutoPostBlind bool

	// WasBigBlind is the updated flag the caller must carry into the next
	// derivation.
	WasBigBlind bool
}

// BetLabel names the bet button for a candidate amount: All-In once the
// entered amount reaches the computed maximum in an unrestricted game.
func (p Plan) BetLabel(entered game.Pence) string {
	if p.LimitMode == game.NoLimit && p.Bounds.Max > 0 && entered >= p.Bounds.Max {
		return "All-In"
	}
	return "Bet"
}

// Derive computes the control plan for the given player from the latest
// authoritative snapshot plus local flags. It is pure: same inputs, same plan.
func Derive(snap *game.Snapshot, playerID string, flags LocalFlags) Plan {
	plan := Plan{State: AwaitingTurn, CallLabel: "Call", FoldLabel: "Fold", WasBigBlind: flags.WasBigBlind}
	me := snap.PlayerByID(playerID)
	if me == nil || snap.Settings == nil {
		return plan
	}
	plan.LimitMode = snap.Settings.LimitMode

	// Observing our big blind falling due arms the Check label for the
	// option round; a new round clears it via the controller.
	if me.State.BlindsDue == game.BlindBig {
		plan.WasBigBlind = true
	}

	if !me.State.ActionOnMe {
		plan.applyFoldReveal(snap, me, flags)
		return plan
	}

	stack := me.CurrentStack.Stack
	switch {
	case stack <= 0:
		plan.State = NoFundsLockedOut
		plan.Reveal = !me.State.SittingOut

	case me.State.Folded || me.State.AllIn || me.State.SittingOut:
		plan.State = ActingComplete
		plan.Reveal = !me.State.SittingOut

	case me.State.BlindsDue != game.BlindNone:
		plan.State = BlindDue
		if flags.AutoPostBlind {
			// The controller posts the blind after a short delay so the
			// server's own round-start messages land first.
			plan.State = AwaitingTurn
			plan.AutoPostBlind = true
		} else {
			plan.PostBlind = true
		}

	case snap.GameState == game.PhaseComplete:
		plan.State = ActingComplete
		plan.applyFoldReveal(snap, me, flags)
		// Bounds reset to the full stack ready for the next round.
		plan.Bounds = Bounds{Min: 0, Max: stack, Step: snap.Settings.BigBlind}

	default:
		plan.State = ActiveTurn
		plan.CheckCall = true
		plan.Bet = true
		plan.Fold = true
		plan.Reveal = true
		plan.CallLabel = callLabel(snap, plan.WasBigBlind)
		plan.Bounds = betBounds(snap, me)
	}

	// Once the blind post registers as our last action the option-round
	// tracking is finished.
	if plan.WasBigBlind && me.State.LastAction == string(game.ActionPostBlind) {
		plan.WasBigBlind = false
	}
	return plan
}

// applyFoldReveal enables fold and reveal only at round end, for a live hand,
// and only once this sitting has seen a completed round.
func (p *Plan) applyFoldReveal(snap *game.Snapshot, me *game.PlayerInfo, flags LocalFlags) {
	enabled := snap.GameState == game.PhaseComplete && !me.State.Folded && flags.EveningStarted
	p.Fold = enabled
	p.Reveal = enabled
	if enabled {
		p.FoldLabel = "Muck"
	}
}

func callLabel(snap *game.Snapshot, wasBigBlind bool) string {
	required := snap.RequiredBet
	if required == 0 || (wasBigBlind && required == snap.Settings.BigBlind) {
		return "Check"
	}
	return "Call"
}

func betBounds(snap *game.Snapshot, me *game.PlayerInfo) Bounds {
	stack := me.CurrentStack.Stack
	committed := me.CurrentStack.OnTable
	step := snap.Settings.BigBlind
	min := snap.MinRaise
	if stack < min {
		min = stack
	}

	switch snap.Settings.LimitMode {
	case game.PotLimit:
		// Pot-restricted: pot plus twice the bet to call, clamped to stack,
		// as a single-shot slider.
		max := snap.CurrentPot + 2*snap.RequiredBet
		if stack < max {
			max = stack
		}
		return Bounds{Min: min, Max: max, Step: max}

	case game.Limit:
		// Fixed-increment: one big blind above the minimum, doubled on the
		// later streets.
		inc := step
		if snap.GameState == game.PhaseTurn || snap.GameState == game.PhaseRiver {
			inc = 2 * step
		}
		max := min + inc
		if stack < max {
			max = stack
		}
		return Bounds{Min: min, Max: max, Step: step}

	default:
		// Unrestricted: everything we have, on top of what is already in.
		return Bounds{Min: min, Max: stack + committed, Step: step}
	}
}
