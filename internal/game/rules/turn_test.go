package rules

import "testing"

func TestTurnManagerOpeningDraws(t *testing.T) {
	tm := NewTurnManager()

	expected := []struct {
		turn   int
		active Seat
		draw   int
	}{
		{1, SeatA, OpeningDrawCount},
		{2, SeatB, SecondOpeningDrawCount},
		{3, SeatA, DrawCount},
		{4, SeatB, DrawCount},
		{5, SeatA, DrawCount},
	}

	for i, exp := range expected {
		if tm.TurnNumber() != exp.turn {
			t.Fatalf("step %d: expected turn %d, got %d", i, exp.turn, tm.TurnNumber())
		}
		if tm.ActivePlayer() != exp.active {
			t.Fatalf("step %d: expected active %s, got %s", i, exp.active, tm.ActivePlayer())
		}
		if tm.DrawCount() != exp.draw {
			t.Fatalf("step %d: expected draw count %d, got %d", i, exp.draw, tm.DrawCount())
		}
		if i < len(expected)-1 {
			tm.EndTurn()
		}
	}
}

func TestTurnManagerOpeningDrawFlag(t *testing.T) {
	tm := NewTurnManager()
	if !tm.OpeningDraw() {
		t.Fatal("expected seat A to draw an opening hand on turn 1")
	}
	if next := tm.EndTurn(); next != SeatB {
		t.Fatalf("expected seat B after first swap, got %s", next)
	}
	if !tm.OpeningDraw() {
		t.Fatal("expected seat B to draw an opening hand on turn 2")
	}
	tm.EndTurn()
	if tm.OpeningDraw() {
		t.Fatal("opening hands are drawn once per seat")
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateDraw:   "DRAW",
		StatePlay:   "PLAY",
		StateCombat: "COMBAT",
		StateEnded:  "ENDED",
		StateReset:  "RESET",
		State(99):   "STATE_99",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestSeatOpponent(t *testing.T) {
	if SeatA.Opponent() != SeatB || SeatB.Opponent() != SeatA {
		t.Fatal("opponent seats are not symmetric")
	}
}
