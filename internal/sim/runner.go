// Package sim drives a game.Engine from a timer. The engine is owned by the
// Run goroutine; every other caller talks to it through commands and reads
// published views.
package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tcgevolve/tcgsim/internal/game"
	"github.com/tcgevolve/tcgsim/internal/game/rules"
	"go.uber.org/zap"
)

var (
	// ErrInvalidInterval is returned for negative tick intervals.
	ErrInvalidInterval = errors.New("tick interval must not be negative")
	// ErrStopped is returned when a command is sent after Run returned.
	ErrStopped = errors.New("runner stopped")
)

// Options configures a Runner.
type Options struct {
	// Interval between ticks. Zero pauses the simulation.
	Interval time.Duration
	// MaxRounds, when positive, advances rounds automatically and makes Run
	// return once that many rounds have finished.
	MaxRounds int
	// AutoStart starts round 1 as soon as Run begins.
	AutoStart bool
}

type commandKind int

const (
	cmdStart commandKind = iota
	cmdNextRound
	cmdSetInterval
	cmdStep
)

type command struct {
	kind     commandKind
	interval time.Duration
	reply    chan error
}

// Runner is the tick scheduler around an Engine.
type Runner struct {
	logger *zap.Logger
	engine *game.Engine
	opts   Options

	cmds     chan command
	done     chan struct{}
	interval atomic.Int64
	current  atomic.Pointer[game.View]
	replay   atomic.Pointer[game.Replay]

	mu          sync.Mutex
	subscribers map[int]chan *game.View
	nextID      int
}

// NewRunner wraps engine. The engine must not be touched by anyone else once
// Run has been called.
func NewRunner(logger *zap.Logger, engine *game.Engine, opts Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Interval < 0 {
		opts.Interval = 0
	}
	r := &Runner{
		logger:      logger,
		engine:      engine,
		opts:        opts,
		cmds:        make(chan command),
		done:        make(chan struct{}),
		subscribers: make(map[int]chan *game.View),
	}
	r.interval.Store(int64(opts.Interval))
	r.current.Store(engine.View())
	r.replay.Store(engine.Replay())
	return r
}

// Run ticks the engine until ctx is cancelled or MaxRounds rounds have
// finished.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	if r.opts.AutoStart {
		if err := r.engine.Start(); err != nil {
			return err
		}
	}
	r.publish()

	var ticker *time.Ticker
	var tickC <-chan time.Time
	resetTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
		if d := r.Interval(); d > 0 {
			ticker = time.NewTicker(d)
			tickC = ticker.C
		}
	}
	resetTicker()
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	r.logger.Info("simulation runner started",
		zap.Duration("interval", r.Interval()),
		zap.Int("max_rounds", r.opts.MaxRounds),
		zap.Bool("auto_start", r.opts.AutoStart),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("simulation runner stopped", zap.Int("rounds", len(r.engine.Results())))
			return nil

		case cmd := <-r.cmds:
			err := r.handle(cmd)
			if cmd.kind == cmdSetInterval && err == nil {
				resetTicker()
			}
			cmd.reply <- err
			if r.finished() {
				return nil
			}

		case <-tickC:
			r.step()
			if r.finished() {
				r.logger.Info("round limit reached", zap.Int("rounds", r.opts.MaxRounds))
				return nil
			}
		}
	}
}

func (r *Runner) handle(cmd command) error {
	var err error
	switch cmd.kind {
	case cmdStart:
		err = r.engine.Start()
	case cmdNextRound:
		err = r.engine.NewRound()
	case cmdSetInterval:
		if cmd.interval < 0 {
			return ErrInvalidInterval
		}
		r.interval.Store(int64(cmd.interval))
		r.logger.Debug("tick interval changed", zap.Duration("interval", cmd.interval))
	case cmdStep:
		r.step()
		return nil
	}
	if err == nil {
		r.publish()
	}
	return err
}

// step runs one engine tick and, with a round limit set, rolls finished
// rounds straight into the next one.
func (r *Runner) step() {
	wasRunning := r.engine.Running()
	state := r.engine.Tick()
	if wasRunning && state == rules.StateReset && r.opts.MaxRounds > 0 && !r.finished() {
		if err := r.engine.NewRound(); err != nil {
			r.logger.Error("failed to start next round", zap.Error(err))
		}
	}
	r.publish()
}

func (r *Runner) finished() bool {
	return r.opts.MaxRounds > 0 && len(r.engine.Results()) >= r.opts.MaxRounds
}

func (r *Runner) publish() {
	view := r.engine.View()
	r.current.Store(view)
	r.replay.Store(r.engine.Replay())

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.subscribers {
		// Keep only the newest view for slow subscribers.
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

func (r *Runner) send(ctx context.Context, cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins round 1.
func (r *Runner) Start(ctx context.Context) error {
	return r.send(ctx, command{kind: cmdStart})
}

// NextRound starts the next round after the current one reached RESET.
func (r *Runner) NextRound(ctx context.Context) error {
	return r.send(ctx, command{kind: cmdNextRound})
}

// SetInterval changes the tick interval. Zero pauses; resuming continues
// exactly where ticking stopped.
func (r *Runner) SetInterval(ctx context.Context, d time.Duration) error {
	return r.send(ctx, command{kind: cmdSetInterval, interval: d})
}

// Step runs a single tick regardless of the interval.
func (r *Runner) Step(ctx context.Context) error {
	return r.send(ctx, command{kind: cmdStep})
}

// Interval returns the current tick interval.
func (r *Runner) Interval() time.Duration {
	return time.Duration(r.interval.Load())
}

// Snapshot returns the most recently published view.
func (r *Runner) Snapshot() *game.View {
	return r.current.Load()
}

// Replay returns the recording of the round being played, or nil when the
// engine does not record replays. It is safe to read while ticks run.
func (r *Runner) Replay() *game.Replay {
	return r.replay.Load()
}

// Subscribe returns a channel receiving every published view. Slow readers
// only see the latest one. The returned func unsubscribes.
func (r *Runner) Subscribe() (<-chan *game.View, func()) {
	ch := make(chan *game.View, 1)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subscribers[id] = ch
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	}
}
