package features

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"cascadeforecast/internal/cascade"
)

// TreeGraph loads a cascade into a directed parent -> child graph keyed by user id.
func TreeGraph(c *cascade.Cascade) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	g.AddNode(simple.Node(c.Root()))
	for i := 0; i < c.Len(); i++ {
		g.AddNode(simple.Node(c.EventAt(i).UserID))
	}
	c.Tree().Edges(func(parent, child int64) {
		g.SetEdge(g.NewEdge(simple.Node(parent), simple.Node(child)))
	})
	return g
}

// StructuralFeatures measures the prefix tree with a breadth-first walk from the root.
func StructuralFeatures(c *cascade.Cascade) Structural {
	g := TreeGraph(c)
	var s Structural
	s.NumNodes = float64(g.Nodes().Len())
	n := c.Len()
	if n == 0 {
		return s
	}

	breadth := make(map[int]int)
	sum, deepest := 0, 0
	var bf traverse.BreadthFirst
	bf.Walk(g, simple.Node(c.Root()), func(_ graph.Node, d int) bool {
		if d == 0 {
			return false
		}
		breadth[d]++
		sum += d
		if d > deepest {
			deepest = d
		}
		return false
	})
	s.Depth = float64(deepest)
	s.AvgDepth = float64(sum) / float64(n)
	s.WienerRootAvg = float64(sum) / s.NumNodes
	for _, b := range breadth {
		if float64(b) > s.MaxBreadth {
			s.MaxBreadth = float64(b)
		}
	}

	parents := 0
	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		out := g.From(id).Len()
		switch {
		case out > 0:
			parents++
		case id != c.Root():
			s.Leaves++
		}
	}
	if parents > 0 {
		s.BranchingFactor = float64(n) / float64(parents)
	}
	return s
}
