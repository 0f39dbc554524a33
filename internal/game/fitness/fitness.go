// Package fitness holds the per-card fitness table. Deltas are pure
// functions of the event and the turn counters; Tracker applies them to
// card instances.
package fitness

import (
	"fmt"

	"github.com/tcgevolve/tcgsim/internal/game/card"
	"go.uber.org/zap"
)

// Event is an engine event that moves a card's fitness.
type Event int

const (
	EventDrawn Event = iota
	EventPlayed
	EventSurvived
	EventKilled
	EventDied
	EventDefended
	EventDiscarded
)

var eventNames = map[Event]string{
	EventDrawn:     "DRAWN",
	EventPlayed:    "PLAYED",
	EventSurvived:  "SURVIVED",
	EventKilled:    "KILLED",
	EventDied:      "DIED",
	EventDefended:  "DEFENDED",
	EventDiscarded: "DISCARDED",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EVENT_%d", int(e))
}

const (
	DrawnBonus         = 0.2
	KillBonus          = 1.5
	DeathPenalty       = -0.5
	DefendBonus        = 0.5
	SameTurnDiscardHit = -0.2
)

// Played is the bonus for committing a card to the battlefield: the ratio
// of the turn it was drawn to the current turn.
func Played(turnDrawn, currentTurn int) float64 {
	if currentTurn <= 0 {
		return 0
	}
	return float64(turnDrawn) / float64(currentTurn)
}

// Survived is the bonus for a battlefield card that lived through a turn
// it was not played on.
func Survived(turnPlayed, currentTurn int) float64 {
	return float64(currentTurn-turnPlayed) / 2
}

// Discarded is the penalty for a card thrown away from an overfull hand.
func Discarded(turnDrawn, currentTurn int) float64 {
	if turnDrawn == currentTurn {
		return SameTurnDiscardHit
	}
	return -float64(currentTurn - turnDrawn)
}

// Delta returns the fitness change for event on c at currentTurn.
func Delta(event Event, c *card.Card, currentTurn int) float64 {
	switch event {
	case EventDrawn:
		return DrawnBonus
	case EventPlayed:
		return Played(c.TurnDrawn, currentTurn)
	case EventSurvived:
		return Survived(c.TurnPlayed, currentTurn)
	case EventKilled:
		return KillBonus
	case EventDied:
		return DeathPenalty
	case EventDefended:
		return DefendBonus
	case EventDiscarded:
		return Discarded(c.TurnDrawn, currentTurn)
	default:
		return 0
	}
}

// Tracker applies fitness deltas to cards.
type Tracker struct {
	logger *zap.Logger
}

// NewTracker creates a tracker that logs every delta at debug level.
func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{logger: logger}
}

// Apply adds the event's delta to c and returns the delta applied.
func (t *Tracker) Apply(c *card.Card, event Event, currentTurn int) float64 {
	delta := Delta(event, c, currentTurn)
	c.Fitness += delta
	t.logger.Debug("fitness updated",
		zap.Int("card_id", c.ID),
		zap.Stringer("event", event),
		zap.Float64("delta", delta),
		zap.Float64("fitness", c.Fitness),
		zap.Int("turn", currentTurn),
	)
	return delta
}
