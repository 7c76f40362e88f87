package sim

import (
	"sync"

	"TimetableSim/internal/campus"
)

// Snapshot is a host position at simulation step T.
type Snapshot struct {
	T   float64
	Pos campus.Coord
}

// History is a fixed size ring of recent snapshots.
type History struct {
	buf   []Snapshot
	head  int
	size  int
	mu    sync.RWMutex
	limit int
}

func newHistory(steps int) *History {
	n := steps + 4
	return &History{buf: make([]Snapshot, n), limit: n}
}

func (h *History) push(s Snapshot) {
	h.mu.Lock()
	h.buf[h.head] = s
	h.head = (h.head + 1) % h.limit
	if h.size < h.limit {
		h.size++
	}
	h.mu.Unlock()
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// At interpolates the position at t. Times outside the kept window return
// the earliest or latest snapshot.
func (h *History) At(t float64) (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size == 0 {
		return Snapshot{}, false
	}
	found := false
	var after, before Snapshot
	for i := 0; i < h.size; i++ {
		s := h.buf[(h.head-1-i+h.limit)%h.limit]
		if s.T >= t {
			after = s
			found = true
		}
		if s.T <= t {
			before = s
			if !found {
				return s, true
			}
			if after.T == before.T {
				return before, true
			}
			alpha := (t - before.T) / (after.T - before.T)
			return Snapshot{
				T: t,
				Pos: campus.Coord{
					X: before.Pos.X + alpha*(after.Pos.X-before.Pos.X),
					Y: before.Pos.Y + alpha*(after.Pos.Y-before.Pos.Y),
				},
			}, true
		}
	}
	return h.buf[(h.head-h.size+h.limit)%h.limit], true
}
