// Package planner holds the two decision heuristics of the self-play AI:
// which hand cards to commit, and which attack to make. Both work on
// snapshots of the board and never mutate cards.
package planner

import (
	"github.com/tcgevolve/tcgsim/internal/game/card"
	"github.com/tcgevolve/tcgsim/internal/game/rules"
)

// PlayCandidate is a mana-feasible set of hand cards considered for
// simultaneous play, scored by total attack power.
type PlayCandidate struct {
	ID          int
	Cards       []*card.Card
	TotalAttack int
	TotalMana   int
}

// EligiblePlays returns the minion hand cards affordable with mana, capped so
// that all of them together still fit in the open battlefield slots.
func EligiblePlays(hand []*card.Card, mana, fieldCount int) []*card.Card {
	if fieldCount >= rules.BattlefieldSlots {
		return nil
	}
	var eligible []*card.Card
	for _, c := range hand {
		if c.Minion && c.ManaCost <= mana && fieldCount+len(eligible) < rules.BattlefieldSlots {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

// BuildPlayCandidates grows candidate sets greedily from each eligible card:
// a singleton, then pairs whose running mana stays in budget, then each set
// extended by every further card that still fits. The running total for
// pairs carries across partners, so this is a bounded heuristic and not an
// exhaustive subset search.
func BuildPlayCandidates(playable []*card.Card, mana int) []PlayCandidate {
	var b playBuilder
	for _, first := range playable {
		b.add([]*card.Card{first})

		for start := range playable {
			total := first.ManaCost
			for _, other := range playable[start:] {
				if other == first {
					continue
				}
				set := []*card.Card{first}
				if total+other.ManaCost <= mana {
					total += other.ManaCost
					set = append(set, other)
					b.add(set)
				}

				running := total
				for _, next := range playable {
					if containsCard(set, next) {
						continue
					}
					if running+next.ManaCost <= mana {
						running += next.ManaCost
						set = append(set, next)
						b.add(set)
					}
				}
			}
		}
	}
	return b.candidates
}

// SelectPlay picks the candidate with the highest total attack. A later
// candidate with an equal score replaces an earlier one.
func SelectPlay(candidates []PlayCandidate) (PlayCandidate, bool) {
	if len(candidates) == 0 {
		return PlayCandidate{}, false
	}
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].TotalAttack >= candidates[best].TotalAttack {
			best = i
		}
	}
	return candidates[best], true
}

// PlanPlay runs the whole play heuristic for one hand.
func PlanPlay(hand []*card.Card, mana, fieldCount int) (PlayCandidate, bool) {
	playable := EligiblePlays(hand, mana, fieldCount)
	if len(playable) == 0 {
		return PlayCandidate{}, false
	}
	return SelectPlay(BuildPlayCandidates(playable, mana))
}

type playBuilder struct {
	candidates []PlayCandidate
}

func (b *playBuilder) add(set []*card.Card) {
	cards := make([]*card.Card, len(set))
	copy(cards, set)
	cand := PlayCandidate{ID: len(b.candidates), Cards: cards}
	for _, c := range cards {
		cand.TotalAttack += c.AttackPower
		cand.TotalMana += c.ManaCost
	}
	b.candidates = append(b.candidates, cand)
}

func containsCard(set []*card.Card, c *card.Card) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}
