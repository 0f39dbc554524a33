package game

import (
	"github.com/tcgevolve/tcgsim/internal/game/card"
	"github.com/tcgevolve/tcgsim/internal/game/rules"
)

// narrationTail is how many narration lines a View carries.
const narrationTail = 20

// CardView is the read-only display state of one card.
type CardView struct {
	ID          int       `json:"id"`
	Owner       string    `json:"owner,omitempty"`
	Zone        card.Zone `json:"zone"`
	Slot        int       `json:"slot"`
	ManaCost    int       `json:"mana_cost"`
	AttackPower int       `json:"attack_power"`
	Health      int       `json:"health"`
	MaxHealth   int       `json:"max_health"`
	Charge      bool      `json:"charge"`
	Taunt       bool      `json:"taunt"`
	CanAttack   bool      `json:"can_attack"`
	Fitness     float64   `json:"fitness"`
}

// HeroView is the read-only display state of one hero.
type HeroView struct {
	Seat        rules.Seat `json:"seat"`
	Health      int        `json:"health"`
	Mana        int        `json:"mana"`
	MaxMana     int        `json:"max_mana"`
	Deck        int        `json:"deck"`
	Hand        int        `json:"hand"`
	Battlefield int        `json:"battlefield"`
	Graveyard   int        `json:"graveyard"`
}

// View is a complete read-only snapshot of the engine for display.
type View struct {
	RoundID      string        `json:"round_id"`
	Round        int           `json:"round"`
	Turn         int           `json:"turn"`
	Tick         int           `json:"tick"`
	State        rules.State   `json:"state"`
	Phase        string        `json:"phase"`
	ActivePlayer rules.Seat    `json:"active_player"`
	Running      bool          `json:"running"`
	Loser        *rules.Seat   `json:"loser,omitempty"`
	Heroes       [2]HeroView   `json:"heroes"`
	Cards        []CardView    `json:"cards"`
	Pool         int           `json:"pool"`
	BestDeck     []CardView    `json:"best_deck"`
	Results      []RoundResult `json:"results"`
	Wins         [2]int        `json:"wins"`
	Narration    []string      `json:"narration"`
}

func newCardView(c *card.Card, owner string) CardView {
	return CardView{
		ID:          c.ID,
		Owner:       owner,
		Zone:        c.Zone,
		Slot:        c.Slot,
		ManaCost:    c.ManaCost,
		AttackPower: c.AttackPower,
		Health:      c.Health,
		MaxHealth:   c.MaxHealth,
		Charge:      c.Charge,
		Taunt:       c.Taunt,
		CanAttack:   c.CanAttack,
		Fitness:     c.Fitness,
	}
}

// View builds a snapshot of the current engine state. The result shares no
// memory with the engine.
func (e *Engine) View() *View {
	v := &View{
		RoundID:      e.roundID,
		Round:        e.round,
		Turn:         e.turns.TurnNumber(),
		Tick:         e.ticks,
		State:        e.state,
		Phase:        e.Phase(),
		ActivePlayer: e.turns.ActivePlayer(),
		Running:      e.running,
		Pool:         e.registry.PoolSize(),
		Results:      e.Results(),
	}
	if e.loser != nil {
		loser := *e.loser
		v.Loser = &loser
	}
	for _, r := range v.Results {
		v.Wins[r.Winner]++
	}

	owners := make(map[*card.Card]string, e.registry.Len())
	for i, p := range e.board.Players {
		v.Heroes[i] = HeroView{
			Seat:        p.Seat,
			Health:      p.HeroHealth,
			Mana:        p.Mana,
			MaxMana:     p.MaxMana,
			Deck:        len(p.Deck),
			Hand:        len(p.Hand),
			Battlefield: p.FieldCount(),
			Graveyard:   len(p.Graveyard),
		}
		for _, c := range p.Cards() {
			owners[c] = p.Seat.String()
		}
	}

	v.Cards = make([]CardView, 0, e.registry.Len())
	for _, c := range e.registry.All() {
		v.Cards = append(v.Cards, newCardView(c, owners[c]))
	}
	for _, c := range e.bestDeck {
		v.BestDeck = append(v.BestDeck, newCardView(c, ""))
	}

	v.Narration = e.narrator.Tail(narrationTail)
	return v
}
