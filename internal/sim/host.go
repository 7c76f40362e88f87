package sim

import (
	"fmt"

	"TimetableSim/internal/campus"
)

// Host is one simulated person driven by a movement strategy.
type Host struct {
	ID     campus.EntityID
	Pos    campus.Coord
	Speed  float64
	Active bool

	move  campus.Movement
	route []campus.Coord
	next  int
	trail *History
}

// Moving reports whether the host still has waypoints to walk.
func (h *Host) Moving() bool { return h.next < len(h.route) }

// Destination is the last waypoint of the current route.
func (h *Host) Destination() (campus.Coord, bool) {
	if len(h.route) == 0 {
		return campus.Coord{}, false
	}
	return h.route[len(h.route)-1], true
}

func (h *Host) Trail() *History { return h.trail }

// advance walks the host for one step of dt seconds. A host that has
// arrived asks its movement for the next route first.
func (h *Host) advance(now, dt float64) error {
	if !h.Active {
		return nil
	}
	if !h.Moving() {
		p, err := h.move.Path(now)
		if err != nil {
			return fmt.Errorf("host %d at step %.0f: %w", h.ID, now, err)
		}
		if p != nil && p.Len() > 0 {
			h.route = append(h.route[:0], p.Waypoints...)
			h.next = 0
			h.Speed = p.Speed
		}
	}

	budget := h.Speed * dt
	for h.Moving() && budget > 0 {
		target := h.route[h.next]
		d := h.Pos.Dist(target)
		if d <= budget {
			h.Pos = target
			budget -= d
			h.next++
			continue
		}
		h.Pos = campus.MoveTowards(h.Pos, target, budget)
		budget = 0
	}
	// A zero-length route is consumed without walking.
	for h.Moving() && h.Pos == h.route[h.next] {
		h.next++
	}

	h.Active = h.move.IsActive()
	h.trail.push(Snapshot{T: now, Pos: h.Pos})
	return nil
}
