package mapfile

import (
	"gonum.org/v1/gonum/graph/path"

	"TimetableSim/internal/campus"
)

// DijkstraPathFinder finds shortest walks by Euclidean edge length.
type DijkstraPathFinder struct{}

var _ campus.PathFinder = DijkstraPathFinder{}

// ShortestPath returns from..to inclusive, or nil when to is unreachable or
// the ends are not nodes of one Map.
func (DijkstraPathFinder) ShortestPath(from, to campus.Node) []campus.Node {
	src, ok := from.(*Node)
	if !ok {
		return nil
	}
	dst, ok := to.(*Node)
	if !ok || src.m != dst.m {
		return nil
	}
	if src == dst {
		return []campus.Node{src}
	}

	walk, _ := path.DijkstraFrom(src, src.m.g).To(dst.ID())
	if len(walk) == 0 {
		return nil
	}
	out := make([]campus.Node, len(walk))
	for i, n := range walk {
		out[i] = src.m.nodes[n.ID()]
	}
	return out
}

// PathLength sums the edge lengths of a route.
func PathLength(route []campus.Node) float64 {
	total := 0.0
	for i := 1; i < len(route); i++ {
		total += route[i-1].Location().Dist(route[i].Location())
	}
	return total
}
