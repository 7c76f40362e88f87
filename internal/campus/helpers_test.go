package campus

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testNode struct {
	name string
	loc  Coord
	tags map[int]bool
}

func (n *testNode) Location() Coord     { return n.loc }
func (n *testNode) HasTag(tag int) bool { return n.tags[tag] }

func newTestNode(name string, x, y float64, tags ...int) *testNode {
	n := &testNode{name: name, loc: Coord{X: x, Y: y}, tags: map[int]bool{}}
	for _, t := range tags {
		n.tags[t] = true
	}
	return n
}

type testGraph []Node

func (g testGraph) Nodes() []Node { return g }

// directFinder routes straight from one node to the other unless the pair
// is listed as cut.
type directFinder struct {
	cut   map[Node]bool
	calls int
}

func (f *directFinder) ShortestPath(from, to Node) []Node {
	f.calls++
	if f.cut[from] || f.cut[to] {
		return nil
	}
	if from == to {
		return []Node{from}
	}
	return []Node{from, to}
}

type countingSource struct {
	text  string
	opens int
}

func (c *countingSource) open() (io.ReadCloser, error) {
	c.opens++
	return io.NopCloser(strings.NewReader(c.text)), nil
}

func stringSource(text string) RoomSource {
	return (&countingSource{text: text}).open
}

// scenarioTiming has ten steps per simulated hour over an 8-16 day.
func scenarioTiming(activityHours, pauseHours float64) Timing {
	return Timing{
		StartOfDay:    8,
		EndOfDay:      16,
		ActivityHours: activityHours,
		PauseHours:    pauseHours,
		RunSteps:      80,
	}
}

func newTestState(t *testing.T, nodes []Node, desc string, opts Options) (*State, *directFinder) {
	t.Helper()
	finder := &directFinder{cut: map[Node]bool{}}
	s := NewState(testGraph(nodes), finder, stringSource(desc), opts, nil)
	_, err := s.Rooms()
	require.NoError(t, err)
	return s, finder
}
