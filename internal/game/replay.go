package game

import (
	"sync"
)

// ReplayFrame is one recorded view and its position in the recording.
type ReplayFrame struct {
	RoundID string `json:"round_id"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	View    *View  `json:"view"`
}

// Replay records the view after every tick of one round. The engine
// appends to it while spectators read it from other goroutines.
type Replay struct {
	roundID string

	mu    sync.RWMutex
	views []*View
}

// NewReplay creates an empty recording for a round.
func NewReplay(roundID string) *Replay {
	return &Replay{roundID: roundID}
}

// RoundID returns the round the recording belongs to.
func (r *Replay) RoundID() string {
	return r.roundID
}

// Record appends view. Views must not be modified afterwards.
func (r *Replay) Record(view *View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.views = append(r.views, view)
}

// Len returns the number of recorded views.
func (r *Replay) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.views)
}

// Frame returns the view at index.
func (r *Replay) Frame(index int) (ReplayFrame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.views) {
		return ReplayFrame{}, false
	}
	return ReplayFrame{
		RoundID: r.roundID,
		Index:   index,
		Total:   len(r.views),
		View:    r.views[index],
	}, true
}

// Cursor returns a new cursor positioned on the first frame.
func (r *Replay) Cursor() *ReplayCursor {
	return &ReplayCursor{replay: r}
}

// ReplayCursor is a position in a Replay. Each spectator keeps its own; a
// cursor is not safe for concurrent use.
type ReplayCursor struct {
	replay *Replay
	index  int
}

// Replay returns the recording the cursor walks.
func (c *ReplayCursor) Replay() *Replay {
	return c.replay
}

// Index returns the cursor position.
func (c *ReplayCursor) Index() int {
	return c.index
}

// Seek moves to index, clamped to the recorded range, and returns that
// frame. It fails only when nothing has been recorded.
func (c *ReplayCursor) Seek(index int) (ReplayFrame, bool) {
	n := c.replay.Len()
	if n == 0 {
		return ReplayFrame{}, false
	}
	c.index = max(0, min(index, n-1))
	return c.replay.Frame(c.index)
}

// Rewind moves to the first frame.
func (c *ReplayCursor) Rewind() (ReplayFrame, bool) {
	return c.Seek(0)
}

// Step moves by delta frames; negative deltas go back.
func (c *ReplayCursor) Step(delta int) (ReplayFrame, bool) {
	return c.Seek(c.index + delta)
}
