package campus

import (
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"
)

// Options configures schedule generation for one run.
type Options struct {
	Timing          Timing
	StartTag        int
	Activities      int
	SpawnBands      []int
	ActivityWeights []float64 // parsed and kept, not used for room choice
	Hosts           int
	MaxAttempts     int
	Seed            int64
	WalkSpeedMin    float64
	WalkSpeedMax    float64
	Origin          Coord
}

func DefaultOptions() Options {
	return Options{
		Timing:          DefaultTiming(),
		StartTag:        1,
		Activities:      DefaultActivities,
		SpawnBands:      []int{25, 25, 25, 25},
		ActivityWeights: []float64{25, 25, 25, 25},
		MaxAttempts:     DefaultMaxRoomDraws,
		WalkSpeedMin:    DefaultWalkSpeedMin,
		WalkSpeedMax:    DefaultWalkSpeedMax,
	}
}

// State owns everything shared between the entities of a run: the room
// map, the capacity ledger, the schedule table and the id counter.
type State struct {
	graph  Graph
	nodes  []Node
	finder PathFinder
	source RoomSource
	log    *zap.Logger

	roomsMu sync.Mutex
	rooms   *RoomMap

	mu     sync.RWMutex
	opts   Options
	ledger *CapacityLedger
	world  *World
	rng    *rand.Rand
}

func NewState(graph Graph, finder PathFinder, source RoomSource, opts Options, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	s := &State{
		graph:  graph,
		nodes:  graph.Nodes(),
		finder: finder,
		source: source,
		log:    log,
		opts:   opts,
	}
	s.resetLocked()
	return s
}

func (s *State) resetLocked() {
	s.ledger = NewCapacityLedger()
	s.world = newWorld()
	s.rng = rand.New(rand.NewSource(s.opts.Seed))
}

// Reset drops the room map, ledger, schedules and id counter so the next
// run starts from scratch.
func (s *State) Reset() {
	s.roomsMu.Lock()
	s.rooms = nil
	s.roomsMu.Unlock()

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.log.Debug("simulation state reset")
}

// Rooms loads the room map on first use and returns the same map on every
// later call of the run.
func (s *State) Rooms() (*RoomMap, error) {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	if s.rooms != nil {
		return s.rooms, nil
	}
	m, err := LoadRoomMap(s.source, s.Options().Origin)
	if err != nil {
		return nil, err
	}
	s.rooms = m
	s.log.Info("room map loaded", zap.Int("records", m.Len()), zap.Int("types", len(m.Types())))
	return m, nil
}

func (s *State) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Timing is read by every clock evaluation, so a reconfiguration between
// runs is picked up without regenerating schedules.
func (s *State) Timing() Timing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.Timing
}

func (s *State) SetTiming(t Timing) {
	s.mu.Lock()
	s.opts.Timing = t
	s.mu.Unlock()
}

// NewMovement assigns the next entity id, generates its schedule and
// registers the movement under that id. Generations never overlap.
func (s *State) NewMovement() (*TimetableMovement, error) {
	rooms, err := s.Rooms()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.world.NewEntity()
	gen := &Generator{
		Nodes:       s.nodes,
		Rooms:       rooms,
		Ledger:      s.ledger,
		Timing:      s.opts.Timing,
		StartTag:    s.opts.StartTag,
		Activities:  s.opts.Activities,
		SpawnBands:  s.opts.SpawnBands,
		Hosts:       s.opts.Hosts,
		MaxAttempts: s.opts.MaxAttempts,
		Rand:        s.rng,
		Log:         s.log,
	}
	plan, err := gen.Generate(id)
	if err != nil {
		return nil, fmt.Errorf("schedule for entity %d: %w", id, err)
	}
	m := &TimetableMovement{
		state:    s,
		id:       id,
		schedule: plan,
		rng:      rand.New(rand.NewSource(s.opts.Seed + int64(id))),
		speedMin: s.opts.WalkSpeedMin,
		speedMax: s.opts.WalkSpeedMax,
	}
	s.world.SetComponent(id, compSchedule, plan)
	s.world.SetComponent(id, compMovement, m)
	s.log.Debug("schedule generated", zap.Int64("entity", int64(id)), zap.Int("entries", len(plan)))
	return m, nil
}

func (s *State) movement(id EntityID) (*TimetableMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.world.Movement(id)
	if m == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	return m, nil
}

func (s *State) InitialLocation(id EntityID) (Coord, error) {
	m, err := s.movement(id)
	if err != nil {
		return Coord{}, err
	}
	return m.InitialLocation(), nil
}

// NextPath runs one controller step for id. A nil path means there is
// nothing to do this step.
func (s *State) NextPath(id EntityID, now float64) (*Path, error) {
	m, err := s.movement(id)
	if err != nil {
		return nil, err
	}
	return m.Path(now)
}

func (s *State) IsActive(id EntityID) bool {
	m, err := s.movement(id)
	if err != nil {
		return false
	}
	return m.IsActive()
}

// Schedule returns the stored schedule of id.
func (s *State) Schedule(id EntityID) (Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.Schedule(id)
}

// EntitySchedule pairs an id with its schedule.
type EntitySchedule struct {
	ID       EntityID
	Schedule Schedule
}

// Schedules lists the schedule table in id order.
func (s *State) Schedules() []EntitySchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.world.Entities(compSchedule)
	out := make([]EntitySchedule, 0, len(ids))
	for _, id := range ids {
		plan, _ := s.world.Schedule(id)
		out = append(out, EntitySchedule{ID: id, Schedule: plan})
	}
	return out
}

// Occupation snapshots the capacity ledger.
func (s *State) Occupation() []Occupancy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Occupation()
}

// Spawned is the number of ids issued in this run.
func (s *State) Spawned() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.Issued()
}
