// Package mapfile reads campus walkway graphs from WKT files and finds
// shortest paths over them.
package mapfile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"TimetableSim/internal/campus"
)

// Node is a vertex of the walkway graph. Its gonum id is its insertion
// index in the owning Map.
type Node struct {
	index int
	loc   campus.Coord
	tags  map[int]bool
	m     *Map
}

var _ graph.Node = (*Node)(nil)

func (n *Node) ID() int64              { return int64(n.index) }
func (n *Node) Location() campus.Coord { return n.loc }
func (n *Node) HasTag(tag int) bool    { return n.tags[tag] }
func (n *Node) Index() int             { return n.index }

func (n *Node) String() string { return n.loc.String() }

// Neighbors returns the adjacent nodes ordered by index.
func (n *Node) Neighbors() []*Node {
	adj := graph.NodesOf(n.m.g.From(n.ID()))
	out := make([]*Node, 0, len(adj))
	for _, a := range adj {
		out = append(out, n.m.nodes[a.ID()])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

// Map is an undirected graph weighted by Euclidean edge length. Nodes are
// unique per location.
type Map struct {
	g     *simple.WeightedUndirectedGraph
	nodes []*Node
	byLoc map[campus.Coord]*Node
}

func NewMap() *Map {
	return &Map{
		g:     simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		byLoc: make(map[campus.Coord]*Node),
	}
}

// AddNode returns the node at loc, creating it if needed, and tags it.
func (m *Map) AddNode(loc campus.Coord, tag int) *Node {
	n, ok := m.byLoc[loc]
	if !ok {
		n = &Node{index: len(m.nodes), loc: loc, tags: make(map[int]bool), m: m}
		m.nodes = append(m.nodes, n)
		m.byLoc[loc] = n
		m.g.AddNode(n)
	}
	if tag > 0 {
		n.tags[tag] = true
	}
	return n
}

// Connect links a and b both ways, ignoring self loops and duplicates.
func (m *Map) Connect(a, b *Node) {
	if a == b || m.g.HasEdgeBetween(a.ID(), b.ID()) {
		return
	}
	m.g.SetWeightedEdge(m.g.NewWeightedEdge(a, b, a.loc.Dist(b.loc)))
}

// Nodes returns the nodes in insertion order.
func (m *Map) Nodes() []campus.Node {
	out := make([]campus.Node, len(m.nodes))
	for i, n := range m.nodes {
		out[i] = n
	}
	return out
}

func (m *Map) NodeAt(loc campus.Coord) *Node { return m.byLoc[loc] }

func (m *Map) Len() int { return len(m.nodes) }

// Connected reports whether the map forms a single component.
func (m *Map) Connected() bool {
	return len(topo.ConnectedComponents(m.g)) <= 1
}
