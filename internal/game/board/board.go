package board

import (
	"fmt"

	"github.com/tcgevolve/tcgsim/internal/game/card"
	"github.com/tcgevolve/tcgsim/internal/game/rules"
)

// Board is the pair of players sharing one card registry.
type Board struct {
	Players [2]*Player
}

// New creates a board with both heroes at the given health.
func New(health int) *Board {
	return &Board{Players: [2]*Player{
		NewPlayer(rules.SeatA, health),
		NewPlayer(rules.SeatB, health),
	}}
}

// Player returns the player in seat.
func (b *Board) Player(seat rules.Seat) *Player {
	return b.Players[seat]
}

// Reset clears both players.
func (b *Board) Reset(health int) {
	for _, p := range b.Players {
		p.Reset(health)
	}
}

// Census counts the card instances held by the pool and by every zone of
// both players.
func (b *Board) Census(reg *card.Registry) int {
	total := reg.PoolSize()
	for _, p := range b.Players {
		total += len(p.Cards())
	}
	return total
}

// CheckInvariants verifies that every registry instance sits in exactly one
// container, that its zone field agrees with that container, and that the
// zone caps hold.
func (b *Board) CheckInvariants(reg *card.Registry) error {
	seen := make(map[*card.Card]string, reg.Len())
	place := func(c *card.Card, where string, zone card.Zone) error {
		if prev, dup := seen[c]; dup {
			return fmt.Errorf("card %d found in %s and %s", c.ID, prev, where)
		}
		seen[c] = where
		if c.Zone != zone {
			return fmt.Errorf("card %d in %s has zone %s", c.ID, where, c.Zone)
		}
		if c.Health > c.MaxHealth {
			return fmt.Errorf("card %d health %d exceeds max %d", c.ID, c.Health, c.MaxHealth)
		}
		return nil
	}

	for _, c := range reg.Pool() {
		if err := place(c, "pool", card.ZoneUnused); err != nil {
			return err
		}
	}
	for _, p := range b.Players {
		if len(p.Hand) > rules.MaxHandSize {
			return fmt.Errorf("%s hand has %d cards", p.Seat, len(p.Hand))
		}
		zones := []struct {
			name  string
			zone  card.Zone
			cards []*card.Card
		}{
			{"deck", card.ZoneDeck, p.Deck},
			{"hand", card.ZoneHand, p.Hand},
			{"graveyard", card.ZoneGraveyard, p.Graveyard},
		}
		for _, z := range zones {
			for _, c := range z.cards {
				if err := place(c, fmt.Sprintf("%s %s", p.Seat, z.name), z.zone); err != nil {
					return err
				}
			}
		}
		for slot, c := range p.Battlefield {
			if c == nil {
				continue
			}
			if err := place(c, fmt.Sprintf("%s battlefield", p.Seat), card.ZoneBattlefield); err != nil {
				return err
			}
			if c.Slot != slot {
				return fmt.Errorf("card %d in slot %d records slot %d", c.ID, slot, c.Slot)
			}
		}
	}

	if len(seen) != reg.Len() {
		return fmt.Errorf("census %d does not match registry size %d", len(seen), reg.Len())
	}
	return nil
}
