package campus

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
)

// ScheduleEntry sends an entity to Node from step Start on. Its duration
// comes from the Timing in force when it is evaluated.
type ScheduleEntry struct {
	Node  Node
	Start float64
}

// Schedule is one entity's day: index 0 is the spawn placement, the last
// entry returns to it and everything in between is an activity.
type Schedule []ScheduleEntry

// Activities returns the entries between spawn and return.
func (s Schedule) Activities() []ScheduleEntry {
	if len(s) < 2 {
		return nil
	}
	return s[1 : len(s)-1]
}

func (s Schedule) Home() Node {
	if len(s) == 0 {
		return nil
	}
	return s[0].Node
}

var (
	morningRooms   = []RoomType{SeminarRoom, LectureHall, PCRoom, Library}
	lunchRooms     = []RoomType{Mensa, Leisure, Table}
	afternoonRooms = []RoomType{SeminarRoom, PCRoom, LectureHall, Library, Table, Leisure}
)

// RoomPreference returns the room types allowed at a given hour of day.
func RoomPreference(hour float64) []RoomType {
	switch {
	case hour < lunchStartHour:
		return morningRooms
	case hour < afternoonStartHour:
		return lunchRooms
	default:
		return afternoonRooms
	}
}

// SpawnThresholds turns percentage bands into cumulative entity counts:
// t[i] = t[i-1] + floor(hosts*band[i]/100).
func SpawnThresholds(hosts int, bands []int) []int {
	out := make([]int, len(bands))
	acc := 0
	for i, b := range bands {
		acc += int(math.Floor(float64(hosts) * float64(b) / spawnProbabilityTotal))
		out[i] = acc
	}
	return out
}

// StartBucket picks the first band whose threshold reaches index, clamped
// to the available start nodes.
func StartBucket(index EntityID, thresholds []int, candidates int) int {
	bucket := 0
	for ; bucket < len(thresholds); bucket++ {
		if thresholds[bucket] >= int(index) {
			break
		}
	}
	if bucket > candidates-1 {
		bucket = candidates - 1
	}
	if bucket < 0 {
		bucket = 0
	}
	return bucket
}

// Generator builds schedules. It mutates Ledger and draws from Rand, so
// callers must not run two generations at once.
type Generator struct {
	Nodes       []Node // draw set for activity rooms
	Rooms       *RoomMap
	Ledger      *CapacityLedger
	Timing      Timing
	StartTag    int
	Activities  int
	SpawnBands  []int
	Hosts       int
	MaxAttempts int
	Rand        *rand.Rand
	Log         *zap.Logger
}

// StartNode resolves the spawn and return node of entity index.
func (g *Generator) StartNode(index EntityID) (Node, error) {
	candidates := TaggedNodes(g.Nodes, g.StartTag)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: tag %d", ErrNoStartNodes, g.StartTag)
	}
	thresholds := SpawnThresholds(g.Hosts, g.SpawnBands)
	return candidates[StartBucket(index, thresholds, len(candidates))], nil
}

// Generate builds the schedule of entity index.
func (g *Generator) Generate(index EntityID) (Schedule, error) {
	if g.Rand == nil {
		return nil, errors.New("campus: generator has no random source")
	}
	sph := g.Timing.StepsPerHour()
	if sph <= 0 {
		return nil, fmt.Errorf("campus: no steps per hour for run of %.0f steps", g.Timing.RunSteps)
	}
	if err := g.Timing.ValidatePlan(g.Activities); err != nil {
		return nil, fmt.Errorf("campus: %w", err)
	}
	start, err := g.StartNode(index)
	if err != nil {
		return nil, err
	}

	plan := make(Schedule, 0, g.Activities+2)
	plan = append(plan, ScheduleEntry{Node: start, Start: 0})

	step := (g.Timing.ActivityHours + g.Timing.PauseHours) * sph
	timeBeforeAct := sph
	for i := 0; i < g.Activities; i++ {
		types := RoomPreference(g.Timing.HourOfDay(timeBeforeAct))
		room, err := g.pickRoom(timeBeforeAct, types)
		if err != nil {
			g.logger().Warn("room selection failed",
				zap.Int64("entity", int64(index)),
				zap.Int("activity", i),
				zap.Error(err))
			return nil, err
		}
		plan = append(plan, ScheduleEntry{Node: room, Start: timeBeforeAct})
		timeBeforeAct += step
	}

	end := math.Min(g.Timing.EndOfDay*sph, timeBeforeAct)
	plan = append(plan, ScheduleEntry{Node: start, Start: end})
	return plan, nil
}

// pickRoom draws uniformly from all nodes until one is a room of an
// allowed type with a free seat in bucket.
func (g *Generator) pickRoom(bucket float64, types []RoomType) (Node, error) {
	index, total := g.Rooms.Lookup(types)
	capErr := &CapacityError{Types: types, Capacity: total, Bucket: bucket}
	if len(g.Nodes) == 0 || len(index) == 0 {
		return nil, capErr
	}
	limit := g.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxRoomDraws
	}
	for attempt := 0; attempt < limit; attempt++ {
		n := g.Nodes[g.Rand.Intn(len(g.Nodes))]
		rec, ok := index[n.Location()]
		if !ok {
			continue
		}
		if !g.Ledger.TryAcquire(bucket, rec.Location, rec.Capacity) {
			continue
		}
		return n, nil
	}
	capErr.Attempts = limit
	return nil, capErr
}

func (g *Generator) logger() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}
