package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/tcgevolve/tcgsim/internal/game/board"
	"github.com/tcgevolve/tcgsim/internal/game/card"
	"github.com/tcgevolve/tcgsim/internal/game/fitness"
	"github.com/tcgevolve/tcgsim/internal/game/planner"
	"github.com/tcgevolve/tcgsim/internal/game/rules"
	"go.uber.org/zap"
)

var (
	// ErrRoundActive is returned when starting a round while one is running.
	ErrRoundActive = errors.New("round already active")
	// ErrRoundNotFinished is returned when asking for the next round before
	// the current one reached RESET.
	ErrRoundNotFinished = errors.New("round not finished")
)

// Options configures an Engine.
type Options struct {
	Seed                int64
	DeckSize            int
	StartingHealth      int
	InitialFitnessCount int
	NarrationLimit      int
	RecordReplay        bool
}

// DefaultOptions returns the standard rule set.
func DefaultOptions() Options {
	return Options{
		DeckSize:            rules.DeckSize,
		StartingHealth:      rules.StartingHealth,
		InitialFitnessCount: 1,
		NarrationLimit:      500,
	}
}

// RoundResult summarizes a finished round.
type RoundResult struct {
	Round   int        `json:"round"`
	RoundID string     `json:"round_id"`
	Winner  rules.Seat `json:"winner"`
	Loser   rules.Seat `json:"loser"`
	Turns   int        `json:"turns"`
	Ticks   int        `json:"ticks"`
}

// Engine is the self-play turn state machine and round controller. It
// advances one atomic action per Tick. An Engine is owned by a single
// goroutine and is not safe for concurrent use.
type Engine struct {
	logger   *zap.Logger
	registry *card.Registry
	board    *board.Board
	tracker  *fitness.Tracker
	narrator Narrator
	rng      *rand.Rand
	opts     Options

	turns   *rules.TurnManager
	state   rules.State
	running bool
	started bool
	round   int
	roundID string
	ticks   int

	pendingPlay      []*card.Card
	reEvaluateCombat bool

	maxFitnessCount  int
	curatedExhausted bool
	bestDeck         []*card.Card

	loser   *rules.Seat
	results []RoundResult
	replay  *Replay
}

// NewEngine creates an engine over registry. The registry must hold enough
// cards to fill both decks.
func NewEngine(logger *zap.Logger, registry *card.Registry, narrator Narrator, opts Options) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if opts.DeckSize <= 0 {
		opts.DeckSize = defaults.DeckSize
	}
	if opts.StartingHealth <= 0 {
		opts.StartingHealth = defaults.StartingHealth
	}
	if opts.InitialFitnessCount <= 0 {
		opts.InitialFitnessCount = defaults.InitialFitnessCount
	}
	if narrator == nil {
		narrator = NewMemoryNarrator(opts.NarrationLimit)
	}
	if registry.Len() < 2*opts.DeckSize {
		return nil, fmt.Errorf("%w: %d cards cannot fill two decks of %d",
			card.ErrPoolExhausted, registry.Len(), opts.DeckSize)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		logger:          logger,
		registry:        registry,
		board:           board.New(opts.StartingHealth),
		tracker:         fitness.NewTracker(logger),
		narrator:        narrator,
		rng:             rand.New(rand.NewSource(seed)),
		opts:            opts,
		turns:           rules.NewTurnManager(),
		state:           rules.StateDraw,
		maxFitnessCount: min(opts.InitialFitnessCount, rules.MaxFitnessCount),
	}, nil
}

// Tick executes one state machine step and returns the resulting state.
// It does nothing while the engine is stopped.
func (e *Engine) Tick() rules.State {
	if !e.running {
		return e.state
	}
	if e.checkHeroes() {
		return e.state
	}

	switch e.state {
	case rules.StateDraw:
		e.stepDraw()
	case rules.StatePlay:
		e.stepPlay()
	case rules.StateCombat:
		e.stepCombat()
	case rules.StateEnded:
		e.stepEnded()
	}
	e.ticks++
	e.checkHeroes()

	if e.replay != nil {
		e.replay.Record(e.View())
	}
	return e.state
}

func (e *Engine) active() *board.Player {
	return e.board.Player(e.turns.ActivePlayer())
}

func (e *Engine) opponent() *board.Player {
	return e.board.Player(e.turns.ActivePlayer().Opponent())
}

func (e *Engine) narrate(format string, args ...any) {
	e.narrator.Narrate(fmt.Sprintf("Turn %d: ", e.turns.TurnNumber()) + fmt.Sprintf(format, args...))
}

func (e *Engine) stepDraw() {
	p := e.active()
	turn := e.turns.TurnNumber()

	if e.turns.OpeningDraw() {
		e.narrate("%s draws an opening hand of %d cards", p.Seat, e.turns.DrawCount())
	}
	for i := 0; i < e.turns.DrawCount(); i++ {
		if len(p.Deck) == 0 {
			p.HeroHealth--
			e.narrate("%s has an empty deck and takes 1 damage (%d health)", p.Seat, p.HeroHealth)
			break
		}
		c := p.DrawRandom(e.rng)
		if c == nil {
			break
		}
		c.TurnDrawn = turn
		e.tracker.Apply(c, fitness.EventDrawn, turn)
		e.narrate("%s draws %s", p.Seat, c)
	}

	p.ReadyField()
	p.GainManaCrystal()
	for _, player := range e.board.Players {
		player.RefillMana()
	}
	e.state = rules.StatePlay
}

func (e *Engine) stepPlay() {
	p := e.active()
	turn := e.turns.TurnNumber()

	if len(e.pendingPlay) == 0 {
		if p.Mana <= 0 {
			e.endPlay()
			return
		}
		play, ok := planner.PlanPlay(p.Hand, p.Mana, p.FieldCount())
		if !ok {
			e.endPlay()
			return
		}
		e.pendingPlay = append([]*card.Card(nil), play.Cards...)
		e.logger.Debug("play selected",
			zap.Int("candidate", play.ID),
			zap.Int("cards", len(play.Cards)),
			zap.Int("total_attack", play.TotalAttack),
			zap.Int("total_mana", play.TotalMana),
		)
	}

	c := e.pendingPlay[0]
	e.pendingPlay = e.pendingPlay[1:]
	if c.Zone != card.ZoneHand || c.ManaCost > p.Mana {
		e.pendingPlay = nil
		return
	}
	slot, err := p.Play(c)
	if err != nil {
		e.logger.Warn("play rejected", zap.Int("card_id", c.ID), zap.Error(err))
		e.pendingPlay = nil
		return
	}
	c.TurnPlayed = turn
	e.tracker.Apply(c, fitness.EventPlayed, turn)
	e.narrate("%s plays %s into slot %d (%d mana left)", p.Seat, c, slot+1, p.Mana)
}

// endPlay rewards cards that lived through a turn they were not played on
// and moves to COMBAT.
func (e *Engine) endPlay() {
	p := e.active()
	turn := e.turns.TurnNumber()
	for _, c := range p.Field() {
		if c.TurnPlayed != turn {
			e.tracker.Apply(c, fitness.EventSurvived, turn)
		}
	}
	e.pendingPlay = nil
	e.state = rules.StateCombat
}

func (e *Engine) stepCombat() {
	p := e.active()
	attackers := p.Attackers()
	if len(attackers) == 0 {
		e.finishCombat()
		return
	}
	chosen, ok := planner.PlanCombat(attackers, e.opponent().Field())
	if !ok {
		e.finishCombat()
		return
	}
	e.logger.Debug("attack selected",
		zap.Int("candidate", chosen.ID),
		zap.Int("attackers", len(chosen.Attackers)),
		zap.Bool("hero", chosen.TargetsHero()),
		zap.Int("power", chosen.Power),
	)
	e.resolveCombat(chosen)
	e.reEvaluateCombat = len(p.Attackers()) > 0
}

func (e *Engine) resolveCombat(chosen planner.CombatCandidate) {
	p, opp := e.active(), e.opponent()
	turn := e.turns.TurnNumber()

	if chosen.TargetsHero() {
		for _, a := range chosen.Attackers {
			opp.HeroHealth -= a.AttackPower
			a.CanAttack = false
		}
		e.narrate("%s attacks %s for %d (%d health left)", p.Seat, opp.Seat, chosen.TotalAttack, opp.HeroHealth)
		return
	}

	target := chosen.Target
	for _, a := range chosen.Attackers {
		if !target.Alive() {
			break
		}
		a.Health -= target.AttackPower
		target.Health -= a.AttackPower
		a.CanAttack = false
		e.narrate("%s's %s attacks %s", p.Seat, a, target)

		if !a.Alive() {
			if err := p.Destroy(a); err != nil {
				e.logger.Warn("destroy attacker failed", zap.Int("card_id", a.ID), zap.Error(err))
			}
			e.tracker.Apply(a, fitness.EventDied, turn)
			e.tracker.Apply(target, fitness.EventDefended, turn)
			e.narrate("%s's #%d dies", p.Seat, a.ID)
		}
		if !target.Alive() {
			if err := opp.Destroy(target); err != nil {
				e.logger.Warn("destroy target failed", zap.Int("card_id", target.ID), zap.Error(err))
			}
			e.tracker.Apply(a, fitness.EventKilled, turn)
			e.narrate("%s's #%d is destroyed", opp.Seat, target.ID)
			break
		}
	}
}

// finishCombat runs the discard sub-step and ends the turn.
func (e *Engine) finishCombat() {
	p := e.active()
	turn := e.turns.TurnNumber()
	for len(p.Hand) > rules.HandLimit {
		c := p.DiscardOldest()
		e.tracker.Apply(c, fitness.EventDiscarded, turn)
		e.narrate("%s discards %s", p.Seat, c)
	}
	e.reEvaluateCombat = false
	e.state = rules.StateEnded
}

func (e *Engine) stepEnded() {
	next := e.turns.EndTurn()
	e.narrate("%s's turn", next)
	e.state = rules.StateDraw
}

// checkHeroes moves the engine to RESET once either hero is at or below 0
// health. Seat A loses when both are.
func (e *Engine) checkHeroes() bool {
	a, b := e.board.Player(rules.SeatA), e.board.Player(rules.SeatB)
	if a.HeroHealth > 0 && b.HeroHealth > 0 {
		return false
	}
	loser := rules.SeatA
	if a.HeroHealth > 0 {
		loser = rules.SeatB
	}
	e.finishRound(loser)
	return true
}

func (e *Engine) finishRound(loser rules.Seat) {
	e.state = rules.StateReset
	e.running = false
	e.pendingPlay = nil
	e.reEvaluateCombat = false
	e.loser = &loser

	result := RoundResult{
		Round:   e.round,
		RoundID: e.roundID,
		Winner:  loser.Opponent(),
		Loser:   loser,
		Turns:   e.turns.TurnNumber(),
		Ticks:   e.ticks,
	}
	e.results = append(e.results, result)

	e.narrate("%s wins round %d", result.Winner, e.round)
	e.logger.Info("round finished",
		zap.Int("round", e.round),
		zap.String("round_id", e.roundID),
		zap.Stringer("winner", result.Winner),
		zap.Int("turns", result.Turns),
		zap.Int("ticks", result.Ticks),
	)
}

// State returns the current turn state.
func (e *Engine) State() rules.State {
	return e.state
}

// Running reports whether ticks currently advance the engine.
func (e *Engine) Running() bool {
	return e.running
}

// Board returns the zone model.
func (e *Engine) Board() *board.Board {
	return e.board
}

// Registry returns the card registry.
func (e *Engine) Registry() *card.Registry {
	return e.registry
}

// Turns returns the turn manager of the current round.
func (e *Engine) Turns() *rules.TurnManager {
	return e.turns
}

// Narrator returns the narration log.
func (e *Engine) Narrator() Narrator {
	return e.narrator
}

// ReEvaluateCombat reports whether the last attack left attackers that will
// be re-planned on the next tick.
func (e *Engine) ReEvaluateCombat() bool {
	return e.reEvaluateCombat
}

// Phase returns a display label for the current state.
func (e *Engine) Phase() string {
	if !e.started {
		return "Pre-Game"
	}
	switch e.state {
	case rules.StateDraw:
		return "Draw"
	case rules.StatePlay:
		return "Play"
	case rules.StateCombat:
		return "Combat"
	case rules.StateEnded:
		return "Discard"
	default:
		return "Finished"
	}
}

// CheckInvariants verifies card conservation and zone consistency.
func (e *Engine) CheckInvariants() error {
	return e.board.CheckInvariants(e.registry)
}
