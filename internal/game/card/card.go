package card

import "fmt"

// Zone is the logical location of a card instance.
type Zone int

const (
	ZoneUnused Zone = iota
	ZoneDeck
	ZoneHand
	ZoneBattlefield
	ZoneGraveyard
)

var zoneNames = map[Zone]string{
	ZoneUnused:      "UNUSED",
	ZoneDeck:        "DECK",
	ZoneHand:        "HAND",
	ZoneBattlefield: "BATTLEFIELD",
	ZoneGraveyard:   "GRAVEYARD",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// MarshalText lets views encode zones by name.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// Definition holds the immutable stats of a card.
type Definition struct {
	ID          int  `yaml:"id" json:"id"`
	Minion      bool `yaml:"minion" json:"minion"`
	Charge      bool `yaml:"charge" json:"charge"`
	Taunt       bool `yaml:"taunt" json:"taunt"`
	ManaCost    int  `yaml:"mana_cost" json:"mana_cost"`
	AttackPower int  `yaml:"attack_power" json:"attack_power"`
	Health      int  `yaml:"health" json:"health"`
}

// Validate reports definitions the engine cannot play with.
func (d Definition) Validate() error {
	switch {
	case d.ManaCost < 0:
		return fmt.Errorf("card %d: negative mana cost %d", d.ID, d.ManaCost)
	case d.AttackPower < 0:
		return fmt.Errorf("card %d: negative attack power %d", d.ID, d.AttackPower)
	case d.Health <= 0:
		return fmt.Errorf("card %d: health must be positive, got %d", d.ID, d.Health)
	}
	return nil
}

// Card is a live card instance. Static stats come from its Definition;
// everything else is runtime state mutated by the engine.
type Card struct {
	ID          int
	ManaCost    int
	AttackPower int
	MaxHealth   int
	Health      int
	Minion      bool
	Charge      bool
	Taunt       bool

	CanAttack  bool
	Zone       Zone
	Slot       int // battlefield slot index, -1 elsewhere
	Fitness    float64
	TurnDrawn  int
	TurnPlayed int
}

// New instantiates a card from its definition, placed in the unused pool.
func New(def Definition) *Card {
	return &Card{
		ID:          def.ID,
		ManaCost:    def.ManaCost,
		AttackPower: def.AttackPower,
		MaxHealth:   def.Health,
		Health:      def.Health,
		Minion:      def.Minion,
		Charge:      def.Charge,
		Taunt:       def.Taunt,
		CanAttack:   true,
		Zone:        ZoneUnused,
		Slot:        -1,
	}
}

// Reset restores the per-round runtime state. Fitness is kept, it is the
// only memory carried between rounds.
func (c *Card) Reset() {
	c.Health = c.MaxHealth
	c.CanAttack = true
	c.Zone = ZoneUnused
	c.Slot = -1
	c.TurnDrawn = 0
	c.TurnPlayed = 0
}

// Alive reports whether the card still has health left.
func (c *Card) Alive() bool {
	return c.Health > 0
}

func (c *Card) String() string {
	return fmt.Sprintf("#%d(%d mana %d/%d)", c.ID, c.ManaCost, c.AttackPower, c.Health)
}
