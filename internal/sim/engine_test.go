package sim

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimetableSim/internal/campus"
	"TimetableSim/internal/campus/mapfile"
)

// entrance (0,0) - junction (10,0) - hall (10,-10), ten steps per hour.
const campusWKT = "LINESTRING (0 0, 10 0, 10 10)\n"

func source(text string) campus.RoomSource {
	return func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(text)), nil }
}

func newEngine(t *testing.T, wkt, rooms string, hosts int) *Engine {
	t.Helper()
	m := mapfile.NewMap()
	require.NoError(t, mapfile.Read(strings.NewReader("POINT (0 0)\n"), 1, campus.Coord{}, m))
	require.NoError(t, mapfile.Read(strings.NewReader(wkt), 2, campus.Coord{}, m))

	opts := campus.DefaultOptions()
	opts.Timing = campus.Timing{StartOfDay: 8, EndOfDay: 16, ActivityHours: 2, RunSteps: 80}
	opts.Activities = 1
	opts.Hosts = hosts
	opts.MaxAttempts = 500
	opts.WalkSpeedMin, opts.WalkSpeedMax = 1, 1
	state := campus.NewState(m, mapfile.DijkstraPathFinder{}, source(rooms), opts, nil)

	e := New(state, Config{StepSeconds: 1, RunSteps: 80, TrailSteps: 100, Hosts: hosts}, nil)
	require.NoError(t, e.Spawn())
	return e
}

func stepTo(t *testing.T, e *Engine, step float64) {
	t.Helper()
	for e.Now() < step {
		require.NoError(t, e.Step())
	}
}

func TestEngineWalksHostsThroughTheDay(t *testing.T) {
	e := newEngine(t, campusWKT, "# room: HS 1; capacity: 5\nPOINT (10 10)\n", 2)
	frame := e.Snapshot()
	require.Len(t, frame.Hosts, 2)
	assert.Equal(t, campus.EntityID(0), frame.Hosts[0].ID)
	assert.Equal(t, campus.EntityID(1), frame.Hosts[1].ID)

	checks := []struct {
		step   float64
		pos    campus.Coord
		active bool
	}{
		{10, campus.Coord{X: 0, Y: 0}, true},
		{11, campus.Coord{X: 1, Y: 0}, true},
		{25, campus.Coord{X: 10, Y: -5}, true},
		{30, campus.Coord{X: 10, Y: -10}, true},
		{35, campus.Coord{X: 10, Y: -5}, true},
		{50, campus.Coord{X: 0, Y: 0}, true},
		{51, campus.Coord{X: 0, Y: 0}, false},
	}
	for _, c := range checks {
		stepTo(t, e, c.step)
		for _, h := range e.Snapshot().Hosts {
			assert.InDelta(t, c.pos.X, h.Pos.X, 1e-9, "step %v host %d", c.step, h.ID)
			assert.InDelta(t, c.pos.Y, h.Pos.Y, 1e-9, "step %v host %d", c.step, h.ID)
			assert.Equal(t, c.active, h.Active, "step %v host %d", c.step, h.ID)
		}
	}
	assert.Equal(t, 0, e.Snapshot().Active)

	pos, ok := e.PositionAt(0, 24.5)
	require.True(t, ok)
	assert.InDelta(t, 10.0, pos.X, 1e-9)
	assert.InDelta(t, -4.5, pos.Y, 1e-9)
}

func TestEngineRunStopsAtRunLength(t *testing.T) {
	e := newEngine(t, campusWKT, "# room: HS 1; capacity: 5\nPOINT (10 10)\n", 1)
	require.NoError(t, e.Run(context.Background(), 0))
	assert.Equal(t, 80.0, e.Now())
	assert.True(t, e.Done())
	assert.True(t, errors.Is(e.Step(), ErrFinished))
}

func TestEngineProgressStepIsWhole(t *testing.T) {
	e := newEngine(t, campusWKT, "# room: HS 1; capacity: 5\nPOINT (10 10)\n", 1)
	for _, tc := range []struct{ in, want float64 }{{0.5, 0}, {-3, 0}, {1, 1}, {2.7, 2}} {
		sub := New(e.state, Config{RunSteps: 80, Hosts: 1, ProgressStep: tc.in}, nil)
		assert.Equal(t, tc.want, sub.cfg.ProgressStep, "progress step %v", tc.in)
	}

	sub := New(e.state, Config{RunSteps: 20, ProgressStep: 0.5}, nil)
	require.NotPanics(t, func() { require.NoError(t, sub.Run(context.Background(), 0)) })
	assert.Equal(t, 20.0, sub.Now())
}

func TestEngineRunHonoursContext(t *testing.T) {
	e := newEngine(t, campusWKT, "# room: HS 1; capacity: 5\nPOINT (10 10)\n", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(e.Run(ctx, 0), context.Canceled))
	assert.Equal(t, 0.0, e.Now())
}

func TestEngineStopsOnMissingRoute(t *testing.T) {
	// The hall sits on its own segment with no link to the entrance.
	island := "LINESTRING (0 0, 5 0)\nLINESTRING (10 10, 12 10)\n"
	e := newEngine(t, island, "# room: HS 1; capacity: 5\nPOINT (10 10)\n", 1)

	err := e.Run(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, campus.ErrNoRoute))
	assert.Equal(t, 11.0, e.Now())
}

func TestEngineSpawnFailsWhenRoomsRunOut(t *testing.T) {
	m := mapfile.NewMap()
	require.NoError(t, mapfile.Read(strings.NewReader("POINT (0 0)\n"), 1, campus.Coord{}, m))
	require.NoError(t, mapfile.Read(strings.NewReader(campusWKT), 2, campus.Coord{}, m))
	opts := campus.DefaultOptions()
	opts.Timing = campus.Timing{StartOfDay: 8, EndOfDay: 16, ActivityHours: 2, RunSteps: 80}
	opts.Activities = 1
	opts.Hosts = 2
	opts.MaxAttempts = 500
	state := campus.NewState(m, mapfile.DijkstraPathFinder{}, source("# room: Seminar; capacity: 1\nPOINT (10 10)\n"), opts, nil)

	e := New(state, Config{RunSteps: 80, Hosts: 2}, nil)
	err := e.Spawn()
	var capErr *campus.CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Len(t, e.Snapshot().Hosts, 1)
}

func TestHistoryInterpolates(t *testing.T) {
	h := newHistory(2)
	_, ok := h.At(0)
	assert.False(t, ok)

	for i := 0; i < 10; i++ {
		h.push(Snapshot{T: float64(i), Pos: campus.Coord{X: float64(i) * 2}})
	}
	assert.Equal(t, 6, h.Len())

	s, ok := h.At(7.5)
	require.True(t, ok)
	assert.InDelta(t, 15.0, s.Pos.X, 1e-9)

	// Outside the kept window the nearest end is returned.
	s, _ = h.At(1)
	assert.Equal(t, 4.0, s.T)
	s, _ = h.At(20)
	assert.Equal(t, 9.0, s.T)
}
