package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tcgevolve/tcgsim/internal/game/board"
	"github.com/tcgevolve/tcgsim/internal/game/card"
	"github.com/tcgevolve/tcgsim/internal/game/rules"
	"go.uber.org/zap/zaptest"
)

const (
	fillerID    = 1000
	fillerCount = 40
)

// EngineTestHarness sets up a started engine with an empty board so tests
// can deal exact cards into exact zones.
type EngineTestHarness struct {
	t      *testing.T
	engine *Engine
}

// NewEngineTestHarness builds a registry from defs padded with filler cards,
// starts round 1 and clears the board.
func NewEngineTestHarness(t *testing.T, defs ...card.Definition) *EngineTestHarness {
	t.Helper()

	all := append([]card.Definition(nil), defs...)
	for id := fillerID; len(all) < fillerCount; id++ {
		all = append(all, card.Definition{ID: id, Minion: true, ManaCost: 9, AttackPower: 1, Health: 1})
	}
	registry, err := card.NewRegistry(all)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Seed = 7
	engine, err := NewEngine(zaptest.NewLogger(t), registry, nil, opts)
	require.NoError(t, err)
	require.NoError(t, engine.Start())

	h := &EngineTestHarness{t: t, engine: engine}
	h.ClearBoard()
	return h
}

// ClearBoard returns every card to the pool and resets both heroes.
func (h *EngineTestHarness) ClearBoard() {
	h.engine.registry.ReturnAll()
	h.engine.board.Reset(h.engine.opts.StartingHealth)
}

// Player returns the player in seat.
func (h *EngineTestHarness) Player(seat rules.Seat) *board.Player {
	return h.engine.board.Player(seat)
}

// Deal moves card id from the pool into zone for seat.
func (h *EngineTestHarness) Deal(seat rules.Seat, zone card.Zone, id int) *card.Card {
	h.t.Helper()

	c, ok := h.engine.registry.Take(id)
	require.True(h.t, ok, "card %d not in pool", id)
	p := h.Player(seat)

	switch zone {
	case card.ZoneDeck:
		p.AddToDeck(c)
	case card.ZoneHand:
		c.Zone = card.ZoneHand
		c.TurnDrawn = h.engine.turns.TurnNumber()
		p.Hand = append(p.Hand, c)
	case card.ZoneBattlefield:
		slot := p.FreeSlot()
		require.GreaterOrEqual(h.t, slot, 0, "battlefield full")
		c.Zone = card.ZoneBattlefield
		c.Slot = slot
		p.Battlefield[slot] = c
	case card.ZoneGraveyard:
		c.Zone = card.ZoneGraveyard
		p.Graveyard = append(p.Graveyard, c)
	default:
		h.t.Fatalf("cannot deal into %s", zone)
	}
	return c
}

// SetMana gives seat exactly mana current and max mana.
func (h *EngineTestHarness) SetMana(seat rules.Seat, mana int) {
	p := h.Player(seat)
	p.MaxMana = mana
	p.Mana = mana
}

// SetState puts the machine into state with seat active.
func (h *EngineTestHarness) SetState(state rules.State, seat rules.Seat) {
	if h.engine.turns.ActivePlayer() != seat {
		h.engine.turns.EndTurn()
	}
	h.engine.state = state
}

// Tick advances one step and asserts the zone invariants still hold.
func (h *EngineTestHarness) Tick() rules.State {
	h.t.Helper()

	state := h.engine.Tick()
	require.NoError(h.t, h.engine.CheckInvariants())
	return state
}
