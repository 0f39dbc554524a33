package board

import (
	"errors"
	"math/rand"

	"github.com/tcgevolve/tcgsim/internal/game/card"
	"github.com/tcgevolve/tcgsim/internal/game/rules"
)

var (
	ErrBattlefieldFull = errors.New("battlefield is full")
	ErrNotInHand       = errors.New("card is not in hand")
	ErrNotOnField      = errors.New("card is not on the battlefield")
)

// Player holds one hero's zones and stats.
type Player struct {
	Seat       rules.Seat
	HeroHealth int
	Mana       int
	MaxMana    int

	Deck        []*card.Card
	Hand        []*card.Card // draw order, oldest first
	Battlefield [rules.BattlefieldSlots]*card.Card
	Graveyard   []*card.Card
}

// NewPlayer creates an empty player with the given hero health.
func NewPlayer(seat rules.Seat, health int) *Player {
	return &Player{Seat: seat, HeroHealth: health}
}

// Reset clears every zone and restores hero stats for a new round.
func (p *Player) Reset(health int) {
	p.HeroHealth = health
	p.Mana = 0
	p.MaxMana = 0
	p.Deck = nil
	p.Hand = nil
	p.Battlefield = [rules.BattlefieldSlots]*card.Card{}
	p.Graveyard = nil
}

// AddToDeck places a card in this player's deck.
func (p *Player) AddToDeck(c *card.Card) {
	c.Zone = card.ZoneDeck
	c.Slot = -1
	p.Deck = append(p.Deck, c)
}

// HandFull reports whether the hand is at the draw cap.
func (p *Player) HandFull() bool {
	return len(p.Hand) >= rules.MaxHandSize
}

// DrawRandom moves a random deck card to the end of the hand. It returns nil
// when the deck is empty or the hand is at the draw cap.
func (p *Player) DrawRandom(rng *rand.Rand) *card.Card {
	if len(p.Deck) == 0 || p.HandFull() {
		return nil
	}
	i := rng.Intn(len(p.Deck))
	c := p.Deck[i]
	p.Deck = append(p.Deck[:i], p.Deck[i+1:]...)
	c.Zone = card.ZoneHand
	p.Hand = append(p.Hand, c)
	return c
}

// FreeSlot returns the index of the first empty battlefield slot, or -1.
func (p *Player) FreeSlot() int {
	for i, c := range p.Battlefield {
		if c == nil {
			return i
		}
	}
	return -1
}

// FieldCount returns the number of cards on the battlefield.
func (p *Player) FieldCount() int {
	count := 0
	for _, c := range p.Battlefield {
		if c != nil {
			count++
		}
	}
	return count
}

// Field returns the battlefield cards in slot order.
func (p *Player) Field() []*card.Card {
	var result []*card.Card
	for _, c := range p.Battlefield {
		if c != nil {
			result = append(result, c)
		}
	}
	return result
}

// Attackers returns the battlefield cards that can still attack this turn,
// in slot order.
func (p *Player) Attackers() []*card.Card {
	var result []*card.Card
	for _, c := range p.Battlefield {
		if c != nil && c.CanAttack {
			result = append(result, c)
		}
	}
	return result
}

// ReadyField lets every battlefield card attack again.
func (p *Player) ReadyField() {
	for _, c := range p.Battlefield {
		if c != nil {
			c.CanAttack = true
		}
	}
}

// GainManaCrystal raises max mana by one up to the cap.
func (p *Player) GainManaCrystal() {
	if p.MaxMana < rules.MaxMana {
		p.MaxMana++
	}
}

// RefillMana sets current mana to max mana.
func (p *Player) RefillMana() {
	p.Mana = p.MaxMana
}

// Play moves a hand card into the first open battlefield slot and pays its
// mana cost. Cards without charge cannot attack on the turn they land.
func (p *Player) Play(c *card.Card) (int, error) {
	idx := p.handIndex(c)
	if idx < 0 {
		return -1, ErrNotInHand
	}
	slot := p.FreeSlot()
	if slot < 0 {
		return -1, ErrBattlefieldFull
	}
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	p.Battlefield[slot] = c
	c.Zone = card.ZoneBattlefield
	c.Slot = slot
	c.CanAttack = c.Charge
	p.Mana -= c.ManaCost
	return slot, nil
}

// Destroy moves a battlefield card to the graveyard.
func (p *Player) Destroy(c *card.Card) error {
	if c.Zone != card.ZoneBattlefield || c.Slot < 0 || p.Battlefield[c.Slot] != c {
		return ErrNotOnField
	}
	p.Battlefield[c.Slot] = nil
	p.bury(c)
	return nil
}

// DiscardOldest moves the first card in hand order to the graveyard.
func (p *Player) DiscardOldest() *card.Card {
	if len(p.Hand) == 0 {
		return nil
	}
	c := p.Hand[0]
	p.Hand = p.Hand[1:]
	p.bury(c)
	return c
}

// Cards returns every card this player owns, zone by zone.
func (p *Player) Cards() []*card.Card {
	all := make([]*card.Card, 0, len(p.Deck)+len(p.Hand)+rules.BattlefieldSlots+len(p.Graveyard))
	all = append(all, p.Deck...)
	all = append(all, p.Hand...)
	all = append(all, p.Field()...)
	all = append(all, p.Graveyard...)
	return all
}

func (p *Player) bury(c *card.Card) {
	c.Zone = card.ZoneGraveyard
	c.Slot = -1
	c.CanAttack = false
	p.Graveyard = append(p.Graveyard, c)
}

func (p *Player) handIndex(c *card.Card) int {
	for i, h := range p.Hand {
		if h == c {
			return i
		}
	}
	return -1
}
