package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tcgevolve/tcgsim/internal/game/board"
	"github.com/tcgevolve/tcgsim/internal/game/card"
	"github.com/tcgevolve/tcgsim/internal/game/rules"
	"go.uber.org/zap"
)

// Start begins the first round: decks are drawn at random and ticking is
// enabled.
func (e *Engine) Start() error {
	if e.started {
		return ErrRoundActive
	}
	e.started = true
	e.round = 1
	e.beginRound()
	return nil
}

// NewRound harvests the finished round and starts the next one. Every card
// returns to the pool with its fitness intact, the curated share of each
// deck grows, and fresh decks are drawn.
func (e *Engine) NewRound() error {
	if !e.started || e.state != rules.StateReset {
		return ErrRoundNotFinished
	}

	e.registry.ReturnAll()
	e.board.Reset(e.opts.StartingHealth)
	e.maxFitnessCount = min(e.maxFitnessCount+rules.FitnessCountStep, rules.MaxFitnessCount)
	e.bestDeck = e.registry.TopByFitness(rules.BestDeckSize)
	e.narrateBestDeck()

	e.turns = rules.NewTurnManager()
	e.state = rules.StateDraw
	e.loser = nil
	e.round++
	e.beginRound()
	return nil
}

func (e *Engine) beginRound() {
	e.roundID = uuid.NewString()
	e.ticks = 0
	e.curatedExhausted = false
	if e.opts.RecordReplay {
		e.replay = NewReplay(e.roundID)
	}

	for _, p := range e.board.Players {
		e.DrawDecks(p)
	}
	e.running = true

	e.narrator.Narrate(fmt.Sprintf("Round %d begins", e.round))
	e.logger.Info("round started",
		zap.Int("round", e.round),
		zap.String("round_id", e.roundID),
		zap.Int("max_fitness_count", e.maxFitnessCount),
		zap.Int("pool", e.registry.PoolSize()),
	)
	if e.replay != nil {
		e.replay.Record(e.View())
	}
}

// DrawDecks fills p's deck from the pool. After the first round the
// highest-fitness cards are taken first, up to the round's curated count;
// the rest of the deck is random. Once no card with positive fitness is
// left, curation stops for the remainder of the round setup.
func (e *Engine) DrawDecks(p *board.Player) {
	curated := 0
	for len(p.Deck) < e.opts.DeckSize {
		if e.round > 1 && !e.curatedExhausted && curated < e.maxFitnessCount {
			if c, ok := e.registry.TakeFittest(); ok {
				p.AddToDeck(c)
				curated++
				continue
			}
			e.curatedExhausted = true
		}
		c, err := e.registry.TakeRandom(e.rng)
		if err != nil {
			e.logger.Warn("deck left short", zap.Stringer("seat", p.Seat), zap.Int("size", len(p.Deck)), zap.Error(err))
			return
		}
		p.AddToDeck(c)
	}
	e.logger.Debug("deck drawn", zap.Stringer("seat", p.Seat), zap.Int("curated", curated))
}

func (e *Engine) narrateBestDeck() {
	if len(e.bestDeck) == 0 {
		e.narrator.Narrate("Best deck: no card has positive fitness yet")
		return
	}
	var b strings.Builder
	b.WriteString("Best deck:")
	for i, c := range e.bestDeck {
		fmt.Fprintf(&b, "\n%2d. %s fitness %.2f", i+1, c, c.Fitness)
		if c.Charge {
			b.WriteString(" [charge]")
		}
		if c.Taunt {
			b.WriteString(" [taunt]")
		}
	}
	e.narrator.Narrate(b.String())
}

// Round returns the 1-based round number, 0 before Start.
func (e *Engine) Round() int {
	return e.round
}

// RoundID returns the identifier of the current round.
func (e *Engine) RoundID() string {
	return e.roundID
}

// MaxFitnessCount returns how many cards per deck the next curated draw may
// take by fitness.
func (e *Engine) MaxFitnessCount() int {
	return e.maxFitnessCount
}

// BestDeck returns the top cards by fitness captured at the last NewRound.
func (e *Engine) BestDeck() []*card.Card {
	return append([]*card.Card(nil), e.bestDeck...)
}

// Loser returns the seat that lost the current round, if it has finished.
func (e *Engine) Loser() (rules.Seat, bool) {
	if e.loser == nil {
		return 0, false
	}
	return *e.loser, true
}

// Results returns the outcome of every finished round.
func (e *Engine) Results() []RoundResult {
	return append([]RoundResult(nil), e.results...)
}

// Replay returns the recording of the current round, or nil when replays
// are disabled.
func (e *Engine) Replay() *Replay {
	return e.replay
}
