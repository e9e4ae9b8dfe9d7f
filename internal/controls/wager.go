package controls

import (
	"errors"

	"holdem-client/internal/game"
)

var (
	ErrNoWager       = errors.New("no_bet_provided")
	ErrNotAnteUnit   = errors.New("bet_not_multiple_of_ante")
	ErrOutsideBounds = errors.New("bet_outside_bounds")
	ErrBettingClosed = errors.New("betting_not_available")
)

// ValidateWager is the client-side gate every entered amount passes before a
// BET or ALL_IN is sent. A failing wager never reaches the network.
func ValidateWager(amount game.Pence, plan Plan, ante game.Pence) error {
	if !plan.Bet {
		return ErrBettingClosed
	}
	if amount <= 0 {
		return ErrNoWager
	}
	if !amount.IsMultipleOf(ante) {
		return ErrNotAnteUnit
	}
	if amount < plan.Bounds.Min || amount > plan.Bounds.Max {
		return ErrOutsideBounds
	}
	return nil
}
