package graph

import (
	"math"
	"testing"
)

func TestSetNodeCreateVsOverwrite(t *testing.T) {
	g := New()
	if existed := g.SetNode(Node{Id: 1, OsmID: 1, Lat: 1, Lon: 1}); existed {
		t.Fatalf("expected false on first insert")
	}
	if existed := g.SetNode(Node{Id: 1, OsmID: 1, Lat: 2, Lon: 2}); !existed {
		t.Fatalf("expected true on overwrite")
	}
	n, ok := g.GetNode(1)
	if !ok || n.Lat != 2 || n.Lon != 2 {
		t.Fatalf("overwrite did not stick: %+v", n)
	}
}

func TestSetNodeKeepsEdgesOnOverwrite(t *testing.T) {
	g := New()
	g.SetNode(Node{Id: 1, OsmID: 1})
	g.SetNode(Node{Id: 2, OsmID: 2})
	g.SetEdge(1, Edge{To: 2, Cost: 10})

	g.SetNode(Node{Id: 1, OsmID: 1, Lat: 5, Lon: 5})

	edges := g.GetEdges(1)
	if len(edges) != 1 || edges[0].To != 2 {
		t.Fatalf("expected edge to survive node overwrite, got %+v", edges)
	}
}

func TestSetNodeZeroIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on id 0")
		}
	}()
	New().SetNode(Node{Id: 0})
}

func TestGetEdgeMissingIsInf(t *testing.T) {
	g := New()
	g.SetNode(Node{Id: 1, OsmID: 1})
	if c := g.GetEdge(1, 2); !math.IsInf(float64(c), 1) {
		t.Fatalf("expected +Inf for missing edge, got %v", c)
	}
}

func TestSetEdgeRequiresExistingTarget(t *testing.T) {
	g := New()
	g.SetNode(Node{Id: 1, OsmID: 1})
	if ok := g.SetEdge(1, Edge{To: 2, Cost: 1}); ok {
		t.Fatalf("expected false: target node 2 does not exist")
	}
	if edges := g.GetEdges(1); len(edges) != 0 {
		t.Fatalf("no edge should have been added")
	}
}

func TestSetEdgeCreateVsUpdate(t *testing.T) {
	g := New()
	g.SetNode(Node{Id: 1, OsmID: 1})
	g.SetNode(Node{Id: 2, OsmID: 2})

	if ok := g.SetEdge(1, Edge{To: 2, Cost: 10}); !ok {
		t.Fatalf("expected true creating new edge")
	}
	if c := g.GetEdge(1, 2); c != 10 {
		t.Fatalf("expected cost 10, got %v", c)
	}

	if ok := g.SetEdge(1, Edge{To: 2, Cost: 20}); !ok {
		t.Fatalf("expected true updating existing edge")
	}
	if c := g.GetEdge(1, 2); c != 20 {
		t.Fatalf("expected updated cost 20, got %v", c)
	}
	if edges := g.GetEdges(1); len(edges) != 1 {
		t.Fatalf("update should not duplicate the edge, got %+v", edges)
	}
}

func TestSetEdgeRequiresExistingSource(t *testing.T) {
	g := New()
	g.SetNode(Node{Id: 2, OsmID: 2})
	if ok := g.SetEdge(1, Edge{To: 2, Cost: 5}); ok {
		t.Fatalf("expected false: source node 1 does not exist")
	}
	if c := g.GetEdge(1, 2); !math.IsInf(float64(c), 1) {
		t.Fatalf("expected no edge from a missing source node, got cost %v", c)
	}
}

func TestDeleteEdgeAndNode(t *testing.T) {
	g := New()
	g.SetNode(Node{Id: 1, OsmID: 1})
	g.SetNode(Node{Id: 2, OsmID: 2})
	g.SetEdge(1, Edge{To: 2, Cost: 1})

	if !g.DeleteEdge(1, 2) {
		t.Fatalf("expected edge to exist")
	}
	if g.DeleteEdge(1, 2) {
		t.Fatalf("expected second delete to be a no-op")
	}

	if !g.DeleteNode(2) {
		t.Fatalf("expected node to exist")
	}
	if _, ok := g.GetNode(2); ok {
		t.Fatalf("node should be gone")
	}
}

func TestCloneEdges(t *testing.T) {
	g := New()
	g.SetNode(Node{Id: 1, OsmID: 1})
	g.SetNode(Node{Id: 2, OsmID: 2})
	g.SetNode(Node{Id: 3, OsmID: 1}) // phantom clone of node 1
	g.SetEdge(1, Edge{To: 2, Cost: 7})

	g.CloneEdges(3, 1)

	cloned := g.GetEdges(3)
	if len(cloned) != 1 || cloned[0].To != 2 || cloned[0].Cost != 7 {
		t.Fatalf("expected cloned edges to match source, got %+v", cloned)
	}

	// Mutating the source afterwards must not affect the clone.
	g.SetEdge(1, Edge{To: 2, Cost: 99})
	if c := g.GetEdge(3, 2); c != 7 {
		t.Fatalf("clone should be a snapshot, got cost %v", c)
	}
}

// nineNodeFixture uses the same layout as astar's gridFixture: a 3x3
// lattice of canonical nodes at 0.01-degree spacing.
func nineNodeFixture() *Graph {
	g := New()
	coords := [9][2]float32{
		{0.00, 0.00}, {0.00, 0.01}, {0.00, 0.02},
		{0.01, 0.00}, {0.01, 0.01}, {0.01, 0.02},
		{0.02, 0.00}, {0.02, 0.01}, {0.02, 0.02},
	}
	for i, c := range coords {
		id := int64(i + 1)
		g.SetNode(Node{Id: id, OsmID: id, Lat: c[0], Lon: c[1]})
	}
	return g
}

func TestFindNearestNodeSkipsPhantoms(t *testing.T) {
	g := nineNodeFixture()
	g.SetNode(Node{Id: 100, OsmID: 1, Lat: 0, Lon: 0}) // phantom, same coords as node 1

	n, ok := g.FindNearestNode(0.001, 0.001)
	if !ok {
		t.Fatalf("expected a nearest node")
	}
	if n.Id != 1 {
		t.Fatalf("expected canonical node 1 (not the phantom), got %+v", n)
	}
}

func TestIterOrdersByID(t *testing.T) {
	g := New()
	g.SetNode(Node{Id: 3, OsmID: 3})
	g.SetNode(Node{Id: 1, OsmID: 1})
	g.SetNode(Node{Id: 2, OsmID: 2})

	var seen []int64
	g.Iter(func(n Node, _ []Edge) { seen = append(seen, n.Id) })

	want := []int64{1, 2, 3}
	for i, id := range want {
		if seen[i] != id {
			t.Fatalf("expected ascending order %v, got %v", want, seen)
		}
	}
}
