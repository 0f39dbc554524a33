package planner

import (
	"github.com/tcgevolve/tcgsim/internal/game/card"
)

// MaxGroupSize is the largest attacker group scored against a single defender.
const MaxGroupSize = 3

// CombatCandidate is an attacker group paired with a target. A nil Target
// means the enemy hero.
type CombatCandidate struct {
	ID          int
	Attackers   []*card.Card
	Target      *card.Card
	CanSurvive  bool
	CanKill     bool
	TotalAttack int
	Power       int
}

// TargetsHero reports whether the candidate attacks the enemy hero.
func (c CombatCandidate) TargetsHero() bool {
	return c.Target == nil
}

// CheckOutcome scores an attacker group against enemy. The group survives
// when the enemy's attack is below the health of the last card added, and
// kills when its combined attack reaches the enemy's health. A group that
// can do neither is sent at the enemy hero instead, scored by its raw attack.
func CheckOutcome(group []*card.Card, enemy *card.Card, id int) CombatCandidate {
	attackers := make([]*card.Card, len(group))
	copy(attackers, group)
	total := sumAttack(attackers)
	last := attackers[len(attackers)-1]

	canSurvive := enemy.AttackPower < last.Health
	canKill := total >= enemy.Health

	if !canSurvive && !canKill {
		return CombatCandidate{
			ID:          id,
			Attackers:   attackers,
			TotalAttack: total,
			Power:       total,
		}
	}

	power := 0
	if canSurvive {
		power++
	}
	if canKill {
		power += 2
	}
	return CombatCandidate{
		ID:          id,
		Attackers:   attackers,
		Target:      enemy,
		CanSurvive:  canSurvive,
		CanKill:     canKill,
		TotalAttack: total,
		Power:       power,
	}
}

// BuildCombatCandidates enumerates attacks for the available attackers.
// With no defenders every attacker is pooled against the hero. Otherwise
// defenders are visited in board order: a taunt defender receives every
// available attacker as a single combined strike scored by its total
// attack, and any other defender is scored against every ordered group of
// one to three attackers. All candidates compete in SelectCombat.
func BuildCombatCandidates(attackers, defenders []*card.Card) []CombatCandidate {
	if len(attackers) == 0 {
		return nil
	}
	if len(defenders) == 0 {
		total := sumAttack(attackers)
		return []CombatCandidate{{
			Attackers:   append([]*card.Card(nil), attackers...),
			TotalAttack: total,
			Power:       total,
		}}
	}

	var candidates []CombatCandidate
	for _, enemy := range defenders {
		if !enemy.Taunt {
			candidates = appendGroups(candidates, attackers, enemy, nil)
			continue
		}
		forced := CheckOutcome(attackers, enemy, len(candidates))
		forced.Target = enemy
		forced.Power = forced.TotalAttack
		candidates = append(candidates, forced)
	}
	return candidates
}

// appendGroups walks ordered attacker groups depth first: a card, then that
// card with each partner, then each pair with a third card.
func appendGroups(candidates []CombatCandidate, attackers []*card.Card, enemy *card.Card, group []*card.Card) []CombatCandidate {
	for _, a := range attackers {
		if containsCard(group, a) {
			continue
		}
		next := append(append([]*card.Card(nil), group...), a)
		candidates = append(candidates, CheckOutcome(next, enemy, len(candidates)))
		if len(next) < MaxGroupSize {
			candidates = appendGroups(candidates, attackers, enemy, next)
		}
	}
	return candidates
}

// SelectCombat picks the candidate with the highest power. A later candidate
// with an equal power replaces an earlier one.
func SelectCombat(candidates []CombatCandidate) (CombatCandidate, bool) {
	if len(candidates) == 0 {
		return CombatCandidate{}, false
	}
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Power >= candidates[best].Power {
			best = i
		}
	}
	return candidates[best], true
}

// PlanCombat runs the whole combat heuristic for one board snapshot.
func PlanCombat(attackers, defenders []*card.Card) (CombatCandidate, bool) {
	return SelectCombat(BuildCombatCandidates(attackers, defenders))
}

func sumAttack(cards []*card.Card) int {
	total := 0
	for _, c := range cards {
		total += c.AttackPower
	}
	return total
}
