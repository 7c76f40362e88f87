package campus

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"
)

// Path is an ordered list of waypoints walked at Speed.
type Path struct {
	Waypoints []Coord
	Speed     float64
}

func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Waypoints)
}

// Movement is what the simulation driver needs from a movement strategy.
type Movement interface {
	InitialLocation() Coord
	// Path returns the next route, or nil when the host should stay put.
	Path(now float64) (*Path, error)
	IsActive() bool
	// Replicate creates the movement of the next entity.
	Replicate() (Movement, error)
}

// TimetableMovement walks an entity through its schedule.
type TimetableMovement struct {
	state    *State
	id       EntityID
	schedule Schedule
	last     Node
	done     bool

	rng      *rand.Rand
	speedMin float64
	speedMax float64
}

var _ Movement = (*TimetableMovement)(nil)

func (m *TimetableMovement) ID() EntityID       { return m.id }
func (m *TimetableMovement) Schedule() Schedule { return m.schedule }

// Current is the node the entity was last sent to.
func (m *TimetableMovement) Current() Node {
	if m.last == nil {
		return m.schedule.Home()
	}
	return m.last
}

func (m *TimetableMovement) InitialLocation() Coord {
	m.last = m.schedule.Home()
	return m.last.Location()
}

// IsActive is false once the entity is back home after its last entry.
func (m *TimetableMovement) IsActive() bool { return !m.done }

func (m *TimetableMovement) Replicate() (Movement, error) {
	next, err := m.state.NewMovement()
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Path decides where the entity goes at step now. Entries are scanned in
// order; an active entry at the current node ends the step without a path.
func (m *TimetableMovement) Path(now float64) (*Path, error) {
	if m.done {
		return nil, nil
	}
	if m.last == nil {
		m.last = m.schedule.Home()
	}
	timing := m.state.Timing()

	var (
		next       Node
		lastStatus Status
	)
	for _, entry := range m.schedule[1:] {
		status := timing.Evaluate(entry, now)
		switch status {
		case Future:
		case Active:
			if entry.Node == m.last {
				return nil, nil
			}
			next = entry.Node
		case Past:
		default:
			return nil, fmt.Errorf("%w: %v for entity %d", ErrInvalidStatus, status, m.id)
		}
		lastStatus = status
	}

	final := m.schedule[len(m.schedule)-1]
	if lastStatus == Past && m.last == final.Node {
		m.done = true
		m.state.log.Debug("day complete", zap.Int64("entity", int64(m.id)), zap.Float64("step", now))
	}
	if next == nil {
		return nil, nil
	}

	nodes := m.state.finder.ShortestPath(m.last, next)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %v to %v for entity %d", ErrNoRoute,
			m.last.Location(), next.Location(), m.id)
	}
	p := &Path{Waypoints: make([]Coord, 0, len(nodes)), Speed: m.speed()}
	for _, n := range nodes {
		p.Waypoints = append(p.Waypoints, n.Location())
	}
	m.last = next
	return p, nil
}

func (m *TimetableMovement) speed() float64 {
	if m.speedMax <= m.speedMin {
		return m.speedMin
	}
	return m.speedMin + m.rng.Float64()*(m.speedMax-m.speedMin)
}
