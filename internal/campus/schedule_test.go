package campus

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startTag = 1

func TestSpawnThresholdsAndBuckets(t *testing.T) {
	thresholds := SpawnThresholds(100, []int{10, 20, 30, 40})
	assert.Equal(t, []int{10, 30, 60, 100}, thresholds)

	tests := []struct {
		index EntityID
		want  int
	}{
		{0, 0}, {10, 0}, {11, 1}, {30, 1}, {31, 2}, {60, 2}, {61, 3}, {100, 3},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, StartBucket(tc.index, thresholds, 4), "index %d", tc.index)
	}

	// Past the last threshold and with fewer candidates than bands the
	// bucket is clamped.
	assert.Equal(t, 3, StartBucket(101, thresholds, 4))
	assert.Equal(t, 1, StartBucket(50, thresholds, 2))
	assert.Equal(t, 0, StartBucket(50, thresholds, 1))
}

func TestSpawnThresholdsFloor(t *testing.T) {
	assert.Equal(t, []int{2, 4, 6, 8}, SpawnThresholds(9, []int{25, 25, 25, 25}))
}

func TestStartNodeIsDeterministicPerIndex(t *testing.T) {
	entrances := []Node{
		newTestNode("a", 0, 0, startTag),
		newTestNode("b", 1, 0, startTag),
		newTestNode("c", 2, 0, startTag),
		newTestNode("d", 3, 0, startTag),
	}
	nodes := append([]Node{newTestNode("x", 9, 9)}, entrances...)
	for index := EntityID(0); index < 20; index++ {
		var picked []Node
		for run := 0; run < 3; run++ {
			g := &Generator{
				Nodes:      nodes,
				StartTag:   startTag,
				SpawnBands: []int{10, 20, 30, 40},
				Hosts:      20,
				Rand:       rand.New(rand.NewSource(int64(run))),
			}
			n, err := g.StartNode(index)
			require.NoError(t, err)
			picked = append(picked, n)
		}
		assert.Same(t, picked[0], picked[1])
		assert.Same(t, picked[0], picked[2])
	}

	g := &Generator{Nodes: nodes, StartTag: startTag, SpawnBands: []int{10, 20, 30, 40}, Hosts: 20}
	n, _ := g.StartNode(2)
	assert.Same(t, entrances[0], n)
	n, _ = g.StartNode(3)
	assert.Same(t, entrances[1], n)
	n, _ = g.StartNode(19)
	assert.Same(t, entrances[3], n)
}

func TestStartNodeWithoutCandidates(t *testing.T) {
	g := &Generator{Nodes: []Node{newTestNode("x", 0, 0)}, StartTag: startTag, SpawnBands: []int{100, 0, 0, 0}, Hosts: 1}
	_, err := g.StartNode(0)
	assert.True(t, errors.Is(err, ErrNoStartNodes))
}

// Day 8-16 with ten steps per hour, one two-hour activity and no pause.
func TestGenerateSingleActivityTimes(t *testing.T) {
	home := newTestNode("entrance", 0, 0, startTag)
	hall := newTestNode("hall", 5, -5)
	opts := DefaultOptions()
	opts.Timing = scenarioTiming(2, 0)
	opts.Activities = 1
	opts.Hosts = 1
	s, _ := newTestState(t, []Node{home, hall}, "# room: HS 1; capacity: 5\nPOINT (5 5)\n", opts)

	m, err := s.NewMovement()
	require.NoError(t, err)
	plan := m.Schedule()
	require.Len(t, plan, 3)

	assert.Same(t, home, plan[0].Node)
	assert.Equal(t, 0.0, plan[0].Start)
	assert.Same(t, hall, plan[1].Node)
	assert.Equal(t, 10.0, plan[1].Start)
	assert.Same(t, home, plan[2].Node)
	assert.Equal(t, 30.0, plan[2].Start)

	stored, ok := s.Schedule(m.ID())
	require.True(t, ok)
	assert.Equal(t, plan, stored)
}

func TestGenerateReturnClampedToEndOfDay(t *testing.T) {
	home := newTestNode("entrance", 0, 0, startTag)
	hall := newTestNode("hall", 1, -1)
	mensa := newTestNode("mensa", 2, -2)
	opts := DefaultOptions()
	opts.Timing = scenarioTiming(2, 0)
	opts.Activities = 8
	opts.Hosts = 1
	desc := "# room: HS 1; capacity: 5\nPOINT (1 1)\n# room: Mensa; capacity: 5\nPOINT (2 2)\n"
	s, _ := newTestState(t, []Node{home, hall, mensa}, desc, opts)

	m, err := s.NewMovement()
	require.NoError(t, err)
	plan := m.Schedule()
	require.Len(t, plan, 10)

	for i, entry := range plan.Activities() {
		assert.Equal(t, 10.0+20*float64(i), entry.Start)
	}
	// 13:00 falls into lunch.
	assert.Same(t, mensa, plan[3].Node)
	assert.Equal(t, 160.0, plan[9].Start)

	for i := 1; i < len(plan); i++ {
		assert.LessOrEqual(t, plan[i-1].Start, plan[i].Start)
	}
}

func TestGenerateRejectsActivitiesPastReturn(t *testing.T) {
	home := newTestNode("entrance", 0, 0, startTag)
	hall := newTestNode("hall", 1, -1)
	opts := DefaultOptions()
	opts.Timing = Timing{StartOfDay: 0, EndOfDay: 8, ActivityHours: 2, RunSteps: 80}
	opts.Activities = 5
	opts.Hosts = 1
	s, _ := newTestState(t, []Node{home, hall}, "# room: HS 1; capacity: 5\nPOINT (1 1)\n", opts)

	assert.NoError(t, opts.Timing.Validate())
	assert.Equal(t, 90.0, opts.Timing.LastActivityStart(5))
	assert.Error(t, opts.Timing.ValidatePlan(5))
	assert.NoError(t, opts.Timing.ValidatePlan(4))

	_, err := s.NewMovement()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after the return home")
}

func TestGenerateRespectsSingleSeat(t *testing.T) {
	home := newTestNode("entrance", 0, 0, startTag)
	seminar := newTestNode("seminar", 4, -4)
	opts := DefaultOptions()
	opts.Timing = scenarioTiming(2, 0)
	opts.Activities = 1
	opts.Hosts = 2
	opts.MaxAttempts = 50
	s, _ := newTestState(t, []Node{home, seminar}, "# room: Seminar 1; capacity: 1\nPOINT (4 4)\n", opts)

	first, err := s.NewMovement()
	require.NoError(t, err)
	assert.Same(t, seminar, first.Schedule()[1].Node)

	_, err = s.NewMovement()
	require.Error(t, err)
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, morningRooms, capErr.Types)
	assert.Equal(t, 1, capErr.Capacity)
	assert.Equal(t, 50, capErr.Attempts)
	assert.Contains(t, err.Error(), "SEMINAR_ROOM")

	// The failed entity still consumed its id.
	assert.Equal(t, 2, s.Spawned())
	left, ok := s.ledger.Remaining(10, seminar.Location())
	require.True(t, ok)
	assert.Equal(t, 0, left)
}

func TestGenerateFallsBackToAnotherRoom(t *testing.T) {
	home := newTestNode("entrance", 0, 0, startTag)
	a := newTestNode("seminar-a", 4, -4)
	b := newTestNode("seminar-b", 6, -6)
	opts := DefaultOptions()
	opts.Timing = scenarioTiming(2, 0)
	opts.Activities = 1
	opts.Hosts = 2
	desc := "# room: Seminar A; capacity: 1\nPOINT (4 4)\n# room: Seminar B; capacity: 1\nPOINT (6 6)\n"
	s, _ := newTestState(t, []Node{home, a, b}, desc, opts)

	first, err := s.NewMovement()
	require.NoError(t, err)
	second, err := s.NewMovement()
	require.NoError(t, err)

	rooms := []Node{first.Schedule()[1].Node, second.Schedule()[1].Node}
	assert.ElementsMatch(t, []Node{a, b}, rooms)
}

func TestGenerateWithoutMatchingRooms(t *testing.T) {
	home := newTestNode("entrance", 0, 0, startTag)
	opts := DefaultOptions()
	opts.Timing = scenarioTiming(2, 0)
	opts.Activities = 1
	opts.Hosts = 1
	s, _ := newTestState(t, []Node{home}, "# room: Mensa; capacity: 9\nPOINT (0 0)\n", opts)

	_, err := s.NewMovement()
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 0, capErr.Capacity)
}

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	nodes := []Node{newTestNode("entrance", 0, 0, startTag)}
	desc := ""
	for i := 1; i <= 6; i++ {
		x := float64(i)
		nodes = append(nodes, newTestNode("hall", x, -x))
		desc += fmt.Sprintf("# room: HS %d; capacity: 2\nPOINT (%d %d)\n", i, i, i)
	}
	opts := DefaultOptions()
	opts.Timing = scenarioTiming(1, 0)
	opts.Activities = 2
	opts.Hosts = 4
	opts.Seed = 42

	run := func() [][]Coord {
		s, _ := newTestState(t, nodes, desc, opts)
		var out [][]Coord
		for i := 0; i < 4; i++ {
			m, err := s.NewMovement()
			require.NoError(t, err)
			var locs []Coord
			for _, e := range m.Schedule() {
				locs = append(locs, e.Node.Location())
			}
			out = append(out, locs)
		}
		return out
	}
	assert.Equal(t, run(), run())
}
