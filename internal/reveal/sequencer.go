// Package reveal paces the disclosure of community cards so multi-card
// reveals animate in game-causality order rather than raw message arrival.
package reveal

import (
	"time"

	"github.com/rs/zerolog/log"

	"holdem-client/internal/game"
	"holdem-client/internal/runloop"
)

// pacingDelay spaces consecutive cards of one delta; the last card of a
// delta gets no trailing delay.
const pacingDelay = 900 * time.Millisecond

// Display receives the paced card disclosures.
type Display interface {
	ShowCommunityCard(index int, card game.Card)
	ClearCommunityCards()
}

// Sequencer tracks the index of the last displayed community card and
// schedules only the delta beyond it. All methods run on the run loop.
type Sequencer struct {
	loop    runloop.Scheduler
	display Display

	shown int
	gen   int
}

func New(loop runloop.Scheduler, display Display) *Sequencer {
	return &Sequencer{loop: loop, display: display}
}

// Shown is the count of community cards currently displayed or already
// claimed by an in-flight pacing schedule.
func (s *Sequencer) Shown() int { return s.shown }

// Apply reconciles the authoritative card list with what is displayed.
// Re-delivery of a fully-displayed list is a no-op. On reconnect catch-up
// the view is rebuilt immediately with no pacing: seeing the true state
// outranks presentation on recovery.
func (s *Sequencer) Apply(cards []game.Card, isReconnect bool) {
	if isReconnect {
		s.Reset()
	}
	delta := len(cards) - s.shown
	if delta <= 0 {
		return
	}

	start := s.shown
	s.shown = len(cards)
	gen := s.gen

	if isReconnect || delta == 1 {
		for i := start; i < len(cards); i++ {
			s.display.ShowCommunityCard(i, cards[i])
		}
		return
	}

	log.Debug().Int("cards", delta).Msg("pacing community reveal")
	for i := start; i < len(cards); i++ {
		idx, card := i, cards[i]
		delay := time.Duration(i-start) * pacingDelay
		if delay == 0 {
			s.display.ShowCommunityCard(idx, card)
			continue
		}
		s.loop.PostDelayed(func() {
			// A reset while the schedule was in flight abandons it.
			if s.gen != gen {
				return
			}
			s.display.ShowCommunityCard(idx, card)
		}, delay)
	}
}

// Reset clears the display for a new round and abandons any in-flight
// pacing schedule.
func (s *Sequencer) Reset() {
	s.shown = 0
	s.gen++
	s.display.ClearCommunityCards()
}
