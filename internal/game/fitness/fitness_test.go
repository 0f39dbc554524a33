package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tcgevolve/tcgsim/internal/game/card"
	"go.uber.org/zap/zaptest"
)

func TestDeltaTable(t *testing.T) {
	c := card.New(card.Definition{ID: 1, Minion: true, ManaCost: 2, AttackPower: 2, Health: 2})
	c.TurnDrawn = 2
	c.TurnPlayed = 3

	tests := []struct {
		name  string
		event Event
		turn  int
		want  float64
	}{
		{"drawn", EventDrawn, 2, 0.2},
		{"played same turn drawn", EventPlayed, 2, 1},
		{"played later", EventPlayed, 4, 0.5},
		{"survived", EventSurvived, 7, 2},
		{"survived odd span", EventSurvived, 6, 1.5},
		{"killed", EventKilled, 5, 1.5},
		{"died", EventDied, 5, -0.5},
		{"defended", EventDefended, 5, 0.5},
		{"discarded same turn", EventDiscarded, 2, -0.2},
		{"discarded later", EventDiscarded, 5, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Delta(tt.event, c, tt.turn), 1e-9)
		})
	}
}

func TestPlayedRewardsLateDraws(t *testing.T) {
	// A card drawn closer to the turn it is played earns more.
	assert.Greater(t, Played(5, 6), Played(1, 6))
	assert.Equal(t, 0.0, Played(3, 0))
}

func TestTrackerApply(t *testing.T) {
	tracker := NewTracker(zaptest.NewLogger(t))
	c := card.New(card.Definition{ID: 9, Minion: true, ManaCost: 1, AttackPower: 1, Health: 1})

	tracker.Apply(c, EventDrawn, 1)
	tracker.Apply(c, EventKilled, 1)
	delta := tracker.Apply(c, EventDied, 1)

	assert.InDelta(t, -0.5, delta, 1e-9)
	assert.InDelta(t, 1.2, c.Fitness, 1e-9)
}

func TestNilLoggerTracker(t *testing.T) {
	tracker := NewTracker(nil)
	c := card.New(card.Definition{ID: 1, Minion: true, ManaCost: 1, AttackPower: 1, Health: 1})
	tracker.Apply(c, EventDrawn, 1)
	assert.InDelta(t, 0.2, c.Fitness, 1e-9)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "KILLED", EventKilled.String())
	assert.Equal(t, "DEFENDED", EventDefended.String())
	assert.Equal(t, "EVENT_77", Event(77).String())
}
