package card

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// DefinitionFile is the top-level YAML structure of a card source.
type DefinitionFile struct {
	Cards []Definition `yaml:"cards"`
}

// LoadDefinitions reads card definitions from a YAML file.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card file: %w", err)
	}
	return ParseDefinitions(data)
}

// ParseDefinitions decodes YAML card definitions. Cards without an explicit
// id are numbered by position, starting at 1.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var df DefinitionFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse card YAML: %w", err)
	}
	if len(df.Cards) == 0 {
		return nil, fmt.Errorf("card file defines no cards")
	}
	for i := range df.Cards {
		if df.Cards[i].ID == 0 {
			df.Cards[i].ID = i + 1
		}
		if err := df.Cards[i].Validate(); err != nil {
			return nil, err
		}
	}
	return df.Cards, nil
}

// GenerateDefinitions builds n minion definitions with stats scaled to
// their mana cost, roughly one in ten with charge and one in ten with taunt.
func GenerateDefinitions(rng *rand.Rand, n int) []Definition {
	defs := make([]Definition, 0, n)
	for i := 0; i < n; i++ {
		cost := 1 + rng.Intn(10)
		budget := 2*cost + 1
		attack := rng.Intn(budget)
		health := budget - attack
		defs = append(defs, Definition{
			ID:          i + 1,
			Minion:      true,
			Charge:      rng.Intn(10) == 0,
			Taunt:       rng.Intn(10) == 0,
			ManaCost:    cost,
			AttackPower: attack,
			Health:      health,
		})
	}
	return defs
}
