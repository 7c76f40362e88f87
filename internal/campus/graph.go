package campus

// Node is a vertex of the campus graph. The core only reads it.
type Node interface {
	Location() Coord
	HasTag(tag int) bool
}

// Graph exposes the vertices in their natural order.
type Graph interface {
	Nodes() []Node
}

// PathFinder computes a route between two nodes, both ends included. An
// empty result means the nodes are not connected.
type PathFinder interface {
	ShortestPath(from, to Node) []Node
}

// TaggedNodes filters nodes carrying tag, keeping their order.
func TaggedNodes(nodes []Node, tag int) []Node {
	out := make([]Node, 0)
	for _, n := range nodes {
		if n.HasTag(tag) {
			out = append(out, n)
		}
	}
	return out
}
