// Package sim is the step driver that moves hosts along the paths their
// movements hand out.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"TimetableSim/internal/campus"
)

var ErrFinished = errors.New("sim: run finished")

type Config struct {
	StepSeconds  float64 // simulated seconds per step
	RunSteps     float64
	TrailSteps   int
	Hosts        int
	ProgressStep float64 // log progress every this many steps, 0 disables
}

// HostView is the read-only state of one host in a frame.
type HostView struct {
	ID     campus.EntityID
	Pos    campus.Coord
	Active bool
	Moving bool
}

// Frame is what observers see after a step.
type Frame struct {
	Now    float64
	Hour   float64
	Hosts  []HostView
	Active int
}

// Engine owns the hosts and advances them one step at a time.
type Engine struct {
	mu    sync.Mutex
	state *campus.State
	cfg   Config
	log   *zap.Logger
	hosts []*Host
	byID  map[campus.EntityID]*Host
	now   float64
}

func New(state *campus.State, cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.StepSeconds <= 0 {
		cfg.StepSeconds = campus.DefaultStepSeconds
	}
	if cfg.TrailSteps <= 0 {
		cfg.TrailSteps = 60
	}
	cfg.ProgressStep = math.Floor(cfg.ProgressStep)
	if cfg.ProgressStep < 1 {
		cfg.ProgressStep = 0
	}
	return &Engine{state: state, cfg: cfg, log: log, byID: map[campus.EntityID]*Host{}}
}

// Spawn creates cfg.Hosts hosts. The first movement comes from the state;
// every following one is replicated from its predecessor.
func (e *Engine) Spawn() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var prev campus.Movement
	for i := 0; i < e.cfg.Hosts; i++ {
		var (
			next campus.Movement
			err  error
		)
		if prev == nil {
			next, err = e.state.NewMovement()
		} else {
			next, err = prev.Replicate()
		}
		if err != nil {
			return fmt.Errorf("spawn host %d of %d: %w", i+1, e.cfg.Hosts, err)
		}
		e.addHostLocked(next)
		prev = next
	}
	e.log.Info("hosts spawned", zap.Int("hosts", len(e.hosts)))
	return nil
}

func (e *Engine) addHostLocked(m campus.Movement) *Host {
	id := campus.EntityID(len(e.hosts))
	if tm, ok := m.(*campus.TimetableMovement); ok {
		id = tm.ID()
	}
	h := &Host{
		ID:     id,
		Pos:    m.InitialLocation(),
		Active: true,
		move:   m,
		trail:  newHistory(e.cfg.TrailSteps),
	}
	h.trail.push(Snapshot{T: e.now, Pos: h.Pos})
	e.hosts = append(e.hosts, h)
	e.byID[id] = h
	return h
}

func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// Done reports whether the configured run length has been reached.
func (e *Engine) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doneLocked()
}

func (e *Engine) doneLocked() bool {
	return e.cfg.RunSteps > 0 && e.now >= e.cfg.RunSteps
}

// Step advances the clock by one step and moves every active host. A
// movement error stops the run.
func (e *Engine) Step() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doneLocked() {
		return ErrFinished
	}
	e.now++
	for _, h := range e.hosts {
		if err := h.advance(e.now, e.cfg.StepSeconds); err != nil {
			return err
		}
	}
	if e.cfg.ProgressStep > 0 && int64(e.now)%int64(e.cfg.ProgressStep) == 0 {
		e.log.Info("progress",
			zap.Float64("step", e.now),
			zap.Float64("hour", e.state.Timing().HourOfDay(e.now)),
			zap.Int("active", e.activeLocked()))
	}
	return nil
}

func (e *Engine) activeLocked() int {
	n := 0
	for _, h := range e.hosts {
		if h.Active {
			n++
		}
	}
	return n
}

// Run steps until the run length is reached or ctx ends. A positive pace
// waits that long between steps.
func (e *Engine) Run(ctx context.Context, pace time.Duration) error {
	var tick <-chan time.Time
	if pace > 0 {
		ticker := time.NewTicker(pace)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(); err != nil {
			if errors.Is(err, ErrFinished) {
				e.log.Info("run finished", zap.Float64("step", e.Now()))
				return nil
			}
			return err
		}
	}
}

// Snapshot returns the current frame with hosts ordered by id.
func (e *Engine) Snapshot() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := Frame{
		Now:   e.now,
		Hour:  e.state.Timing().HourOfDay(e.now),
		Hosts: make([]HostView, 0, len(e.hosts)),
	}
	for _, h := range e.hosts {
		f.Hosts = append(f.Hosts, HostView{ID: h.ID, Pos: h.Pos, Active: h.Active, Moving: h.Moving()})
		if h.Active {
			f.Active++
		}
	}
	sort.Slice(f.Hosts, func(i, j int) bool { return f.Hosts[i].ID < f.Hosts[j].ID })
	return f
}

// Host returns the host with id.
func (e *Engine) Host(id campus.EntityID) (*Host, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.byID[id]
	return h, ok
}

// PositionAt interpolates a host position from its trail.
func (e *Engine) PositionAt(id campus.EntityID, t float64) (campus.Coord, bool) {
	h, ok := e.Host(id)
	if !ok {
		return campus.Coord{}, false
	}
	s, ok := h.trail.At(t)
	return s.Pos, ok
}
