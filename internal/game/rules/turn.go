package rules

import (
	"fmt"
)

// Rule constants shared by the engine and the planners.
const (
	MaxHandSize      = 6  // hand cap while drawing
	HandLimit        = 5  // hand size after the discard step
	BattlefieldSlots = 5  // battlefield slots per player
	MaxMana          = 10 // max mana cap
	StartingHealth   = 30
	DeckSize         = 15
	BestDeckSize     = 15

	OpeningDrawCount       = 3 // first player's first draw of a round
	SecondOpeningDrawCount = 4 // second player's first draw of a round
	DrawCount              = 1

	FitnessCountStep = 2
	MaxFitnessCount  = 11
)

// State is a phase of the turn state machine.
type State int

const (
	StateDraw State = iota
	StatePlay
	StateCombat
	StateEnded
	StateReset
)

var stateNames = map[State]string{
	StateDraw:   "DRAW",
	StatePlay:   "PLAY",
	StateCombat: "COMBAT",
	StateEnded:  "ENDED",
	StateReset:  "RESET",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}

// MarshalText lets views encode states by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Seat identifies one of the two heroes.
type Seat int

const (
	SeatA Seat = iota
	SeatB
)

// Opponent returns the other seat.
func (s Seat) Opponent() Seat {
	return 1 - s
}

func (s Seat) String() string {
	if s == SeatA {
		return "Hero A"
	}
	return "Hero B"
}

// MarshalText lets views encode seats by name.
func (s Seat) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TurnManager tracks the active seat, the turn counter and the opening draw
// asymmetry of a round.
type TurnManager struct {
	turnNumber   int
	activePlayer Seat
	drawCount    int
	firstSwap    bool
}

// NewTurnManager creates a turn manager at turn 1 with seat A active and
// the opening draw count.
func NewTurnManager() *TurnManager {
	return &TurnManager{
		turnNumber:   1,
		activePlayer: SeatA,
		drawCount:    OpeningDrawCount,
		firstSwap:    true,
	}
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the seat that currently has the turn.
func (tm *TurnManager) ActivePlayer() Seat {
	return tm.activePlayer
}

// DrawCount returns how many cards the active seat draws in its DRAW phase.
func (tm *TurnManager) DrawCount() int {
	return tm.drawCount
}

// OpeningDraw reports whether the active seat draws its opening hand this
// turn. Each seat gets one opening draw per round.
func (tm *TurnManager) OpeningDraw() bool {
	return tm.turnNumber <= 2
}

// EndTurn swaps the active seat and increments the turn counter. The
// second seat draws SecondOpeningDrawCount after the first swap of a round;
// every later turn draws DrawCount.
func (tm *TurnManager) EndTurn() Seat {
	tm.activePlayer = tm.activePlayer.Opponent()
	tm.turnNumber++
	if tm.firstSwap {
		tm.firstSwap = false
		tm.drawCount = SecondOpeningDrawCount
	} else {
		tm.drawCount = DrawCount
	}
	return tm.activePlayer
}
