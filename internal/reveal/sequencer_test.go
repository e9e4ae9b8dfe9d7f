package reveal

import (
	"testing"
	"time"

	"holdem-client/internal/game"
)

type fakeScheduler struct {
	delayed []delayedTask
}

type delayedTask struct {
	fn    func()
	delay time.Duration
}

func (f *fakeScheduler) Post(fn func()) { fn() }

func (f *fakeScheduler) PostDelayed(fn func(), d time.Duration) {
	f.delayed = append(f.delayed, delayedTask{fn: fn, delay: d})
}

func (f *fakeScheduler) fireAll() {
	due := f.delayed
	f.delayed = nil
	for _, d := range due {
		d.fn()
	}
}

type fakeDisplay struct {
	cards  map[int]string
	clears int
}

func newFakeDisplay() *fakeDisplay { return &fakeDisplay{cards: map[int]string{}} }

func (d *fakeDisplay) ShowCommunityCard(index int, card game.Card) { d.cards[index] = card.Code }

func (d *fakeDisplay) ClearCommunityCards() {
	d.cards = map[int]string{}
	d.clears++
}

func flop() []game.Card {
	return []game.Card{{Code: "As"}, {Code: "Kd"}, {Code: "7c"}}
}

func TestFlopPacedWithTwoDelays(t *testing.T) {
	sched := &fakeScheduler{}
	disp := newFakeDisplay()
	seq := New(sched, disp)

	seq.Apply(flop(), false)

	if len(disp.cards) != 1 || disp.cards[0] != "As" {
		t.Fatalf("cards = %v, want only the first shown immediately", disp.cards)
	}
	if len(sched.delayed) != 2 {
		t.Fatalf("pacing delays = %d, want exactly 2 for three cards", len(sched.delayed))
	}
	if sched.delayed[0].delay != pacingDelay || sched.delayed[1].delay != 2*pacingDelay {
		t.Fatalf("delays = %v %v", sched.delayed[0].delay, sched.delayed[1].delay)
	}

	sched.fireAll()
	if len(disp.cards) != 3 || disp.cards[2] != "7c" {
		t.Fatalf("cards = %v after pacing, want all three", disp.cards)
	}
}

func TestReconnectCatchUpIsImmediate(t *testing.T) {
	sched := &fakeScheduler{}
	disp := newFakeDisplay()
	seq := New(sched, disp)

	seq.Apply(flop(), true)

	if len(sched.delayed) != 0 {
		t.Fatalf("pacing delays = %d on reconnect, want 0", len(sched.delayed))
	}
	if len(disp.cards) != 3 {
		t.Fatalf("cards = %v, want all three immediately", disp.cards)
	}
	if disp.clears != 1 {
		t.Fatalf("clears = %d, want the stale view cleared first", disp.clears)
	}
}

func TestRedeliveryIsIdempotent(t *testing.T) {
	sched := &fakeScheduler{}
	disp := newFakeDisplay()
	seq := New(sched, disp)

	seq.Apply(flop(), false)
	sched.fireAll()

	seq.Apply(flop(), false)
	if len(sched.delayed) != 0 || len(disp.cards) != 3 {
		t.Fatalf("re-delivery scheduled work: delays=%d cards=%v", len(sched.delayed), disp.cards)
	}
}

func TestSingleCardDeltaHasNoDelay(t *testing.T) {
	sched := &fakeScheduler{}
	disp := newFakeDisplay()
	seq := New(sched, disp)

	seq.Apply(flop(), false)
	sched.fireAll()

	turn := append(flop(), game.Card{Code: "2h"})
	seq.Apply(turn, false)
	if len(sched.delayed) != 0 {
		t.Fatalf("pacing delays = %d for the turn card, want 0", len(sched.delayed))
	}
	if disp.cards[3] != "2h" {
		t.Fatalf("cards = %v", disp.cards)
	}
}

func TestResetAbandonsInFlightSchedule(t *testing.T) {
	sched := &fakeScheduler{}
	disp := newFakeDisplay()
	seq := New(sched, disp)

	seq.Apply(flop(), false)
	seq.Reset()
	sched.fireAll()

	if len(disp.cards) != 0 {
		t.Fatalf("cards = %v after reset, want stale schedule abandoned", disp.cards)
	}
	if seq.Shown() != 0 {
		t.Fatalf("shown = %d after reset", seq.Shown())
	}
}

func TestDeltaResumesFromShownIndex(t *testing.T) {
	sched := &fakeScheduler{}
	disp := newFakeDisplay()
	seq := New(sched, disp)

	seq.Apply(flop(), false)
	sched.fireAll()

	river := append(flop(), game.Card{Code: "2h"}, game.Card{Code: "9s"})
	seq.Apply(river, false)
	if len(sched.delayed) != 1 {
		t.Fatalf("pacing delays = %d for a two-card delta, want 1", len(sched.delayed))
	}
	sched.fireAll()
	if len(disp.cards) != 5 || disp.cards[4] != "9s" {
		t.Fatalf("cards = %v", disp.cards)
	}
}
