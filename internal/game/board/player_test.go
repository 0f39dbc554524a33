package board

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcgevolve/tcgsim/internal/game/card"
	"github.com/tcgevolve/tcgsim/internal/game/rules"
)

func newCard(id, mana, attack, health int) *card.Card {
	return card.New(card.Definition{ID: id, Minion: true, ManaCost: mana, AttackPower: attack, Health: health})
}

func handOf(p *Player, cards ...*card.Card) {
	for _, c := range cards {
		c.Zone = card.ZoneHand
		p.Hand = append(p.Hand, c)
	}
}

func TestPlayer_DrawRandom(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	rng := rand.New(rand.NewSource(3))
	for i := 1; i <= 3; i++ {
		p.AddToDeck(newCard(i, 1, 1, 1))
	}

	c := p.DrawRandom(rng)
	require.NotNil(t, c)
	assert.Equal(t, card.ZoneHand, c.Zone)
	assert.Len(t, p.Deck, 2)
	assert.Len(t, p.Hand, 1)
}

func TestPlayer_DrawRandomEmptyDeck(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	assert.Nil(t, p.DrawRandom(rand.New(rand.NewSource(1))))
}

func TestPlayer_DrawRandomRespectsHandCap(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	for i := 1; i <= rules.MaxHandSize; i++ {
		handOf(p, newCard(i, 1, 1, 1))
	}
	p.AddToDeck(newCard(99, 1, 1, 1))

	assert.Nil(t, p.DrawRandom(rand.New(rand.NewSource(1))))
	assert.Len(t, p.Deck, 1)
	assert.Len(t, p.Hand, rules.MaxHandSize)
}

func TestPlayer_PlayUsesFirstFreeSlot(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	p.Mana = 10
	a, b, c := newCard(1, 2, 1, 1), newCard(2, 3, 1, 1), newCard(3, 1, 1, 1)
	handOf(p, a, b, c)

	slot, err := p.Play(a)
	require.NoError(t, err)
	assert.Equal(t, 0, slot)
	slot, err = p.Play(b)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	require.NoError(t, p.Destroy(a))
	slot, err = p.Play(c)
	require.NoError(t, err)
	assert.Equal(t, 0, slot, "freed slot is reused")

	assert.Equal(t, 4, p.Mana)
	assert.Empty(t, p.Hand)
	assert.Equal(t, 2, p.FieldCount())
	assert.Equal(t, []*card.Card{c, b}, p.Field())
}

func TestPlayer_PlayChargeAndSummoningSickness(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	p.Mana = 5
	plain := newCard(1, 1, 1, 1)
	charger := card.New(card.Definition{ID: 2, Minion: true, Charge: true, ManaCost: 1, AttackPower: 2, Health: 1})
	handOf(p, plain, charger)

	_, err := p.Play(plain)
	require.NoError(t, err)
	_, err = p.Play(charger)
	require.NoError(t, err)

	assert.False(t, plain.CanAttack)
	assert.True(t, charger.CanAttack)
	assert.Equal(t, []*card.Card{charger}, p.Attackers())

	p.ReadyField()
	assert.Len(t, p.Attackers(), 2)
}

func TestPlayer_PlayRejectsFullBattlefield(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	p.Mana = 10
	for i := 0; i < rules.BattlefieldSlots; i++ {
		c := newCard(i+1, 0, 1, 1)
		handOf(p, c)
		_, err := p.Play(c)
		require.NoError(t, err)
	}
	extra := newCard(50, 0, 1, 1)
	handOf(p, extra)

	_, err := p.Play(extra)
	assert.ErrorIs(t, err, ErrBattlefieldFull)
	assert.Equal(t, card.ZoneHand, extra.Zone)
	assert.Equal(t, -1, p.FreeSlot())
}

func TestPlayer_PlayRejectsCardNotInHand(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	_, err := p.Play(newCard(1, 0, 1, 1))
	assert.ErrorIs(t, err, ErrNotInHand)
}

func TestPlayer_DestroyRejectsOffFieldCard(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	assert.ErrorIs(t, p.Destroy(newCard(1, 0, 1, 1)), ErrNotOnField)
}

func TestPlayer_DiscardOldest(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	first, second := newCard(1, 1, 1, 1), newCard(2, 1, 1, 1)
	handOf(p, first, second)

	got := p.DiscardOldest()
	assert.Same(t, first, got)
	assert.Equal(t, card.ZoneGraveyard, first.Zone)
	assert.Equal(t, []*card.Card{second}, p.Hand)
	assert.Equal(t, []*card.Card{first}, p.Graveyard)

	p.Hand = nil
	assert.Nil(t, p.DiscardOldest())
}

func TestPlayer_ManaCrystalCap(t *testing.T) {
	p := NewPlayer(rules.SeatA, 30)
	for i := 0; i < 15; i++ {
		p.GainManaCrystal()
	}
	p.RefillMana()
	assert.Equal(t, rules.MaxMana, p.MaxMana)
	assert.Equal(t, rules.MaxMana, p.Mana)
}

func TestBoard_CheckInvariants(t *testing.T) {
	defs := make([]card.Definition, 6)
	for i := range defs {
		defs[i] = card.Definition{ID: i + 1, Minion: true, ManaCost: 1, AttackPower: 1, Health: 1}
	}
	reg, err := card.NewRegistry(defs)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(5))

	b := New(30)
	for i := 0; i < 2; i++ {
		c, err := reg.TakeRandom(rng)
		require.NoError(t, err)
		b.Player(rules.SeatA).AddToDeck(c)
		c, err = reg.TakeRandom(rng)
		require.NoError(t, err)
		b.Player(rules.SeatB).AddToDeck(c)
	}
	require.NoError(t, b.CheckInvariants(reg))
	assert.Equal(t, reg.Len(), b.Census(reg))

	a := b.Player(rules.SeatA)
	a.Mana = 5
	drawn := a.DrawRandom(rng)
	require.NotNil(t, drawn)
	_, err = a.Play(drawn)
	require.NoError(t, err)
	require.NoError(t, b.CheckInvariants(reg))

	// The same instance in two zones is a violation.
	b.Player(rules.SeatB).Hand = append(b.Player(rules.SeatB).Hand, drawn)
	assert.Error(t, b.CheckInvariants(reg))
}

func TestBoard_CheckInvariantsZoneMismatch(t *testing.T) {
	reg, err := card.NewRegistry([]card.Definition{{ID: 1, Minion: true, ManaCost: 1, AttackPower: 1, Health: 1}})
	require.NoError(t, err)
	b := New(30)
	reg.Pool()[0].Zone = card.ZoneHand
	assert.Error(t, b.CheckInvariants(reg))
}
