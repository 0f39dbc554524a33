package game

import (
	"fmt"
	"io"
	"sync"
)

// Narrator is the append-only, human-readable turn log.
type Narrator interface {
	Narrate(line string)
	// Lines returns the retained lines, oldest first.
	Lines() []string
	// Tail returns up to count of the most recent retained lines.
	Tail(count int) []string
	// Total returns how many lines were ever narrated.
	Total() int
}

// MemoryNarrator keeps the most recent lines in memory.
type MemoryNarrator struct {
	mu    sync.RWMutex
	limit int
	lines []string
	total int
}

// NewMemoryNarrator keeps at most limit lines; limit <= 0 keeps everything.
func NewMemoryNarrator(limit int) *MemoryNarrator {
	return &MemoryNarrator{limit: limit}
}

func (n *MemoryNarrator) Narrate(line string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.total++
	n.lines = append(n.lines, line)
	if n.limit > 0 && len(n.lines) > n.limit {
		n.lines = append([]string(nil), n.lines[len(n.lines)-n.limit:]...)
	}
}

func (n *MemoryNarrator) Lines() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]string, len(n.lines))
	copy(out, n.lines)
	return out
}

func (n *MemoryNarrator) Total() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.total
}

func (n *MemoryNarrator) Tail(count int) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	start := 0
	if count >= 0 && len(n.lines) > count {
		start = len(n.lines) - count
	}
	out := make([]string, len(n.lines)-start)
	copy(out, n.lines[start:])
	return out
}

// WriterNarrator mirrors every line to an io.Writer.
type WriterNarrator struct {
	*MemoryNarrator
	w io.Writer
}

// NewWriterNarrator writes lines to w and keeps the last limit in memory.
func NewWriterNarrator(w io.Writer, limit int) *WriterNarrator {
	return &WriterNarrator{MemoryNarrator: NewMemoryNarrator(limit), w: w}
}

func (n *WriterNarrator) Narrate(line string) {
	n.MemoryNarrator.Narrate(line)
	fmt.Fprintln(n.w, line)
}
