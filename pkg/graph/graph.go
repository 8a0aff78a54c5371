// Package graph holds the mutable routing graph: a set of nodes keyed by
// an internal id, each carrying its outgoing edges. Unlike a CSR graph
// sized and frozen at load time, this graph grows and rewires in place —
// the builder clones nodes and reroutes edges while lowering turn
// restrictions, and that only works if insertion and edge rewrites are
// cheap at arbitrary points in the id space.
package graph

import (
	"math"
	"sort"

	"github.com/azybler/map_router/pkg/distance"
)

var inf32 = float32(math.Inf(1))

// Node is a point in the routing graph.
//
// Id is the graph-internal identifier. OsmID is the originating OSM node
// id. For a canonical node the two are equal; a node produced by
// turn-restriction lowering (a "phantom") keeps the OsmID of the node it
// was cloned from but carries a distinct Id so the search can tell which
// copy it is standing on. Id 0 is reserved and never a valid node.
type Node struct {
	Id    int64
	OsmID int64
	Lat   float32
	Lon   float32
}

// Edge is a directed connection from its owning node to To, weighted by
// Cost (already includes the profile's way penalty, not just physical
// length).
type Edge struct {
	To   int64
	Cost float32
}

type entry struct {
	node  Node
	edges []Edge
}

// Graph is a directed, weighted graph of Nodes and Edges keyed by node id.
// The zero value is not ready to use — call New.
type Graph struct {
	nodes map[int64]*entry
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[int64]*entry)}
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// GetNode returns the node with the given id, and whether it exists.
func (g *Graph) GetNode(id int64) (Node, bool) {
	e, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return e.node, true
}

// SetNode inserts or overwrites a node. An existing node's outgoing edges
// are kept; only its Lat/Lon/OsmID fields change. Returns true if a node
// with this id already existed.
//
// Panics if node.Id is 0 — 0 is the reserved "no node" sentinel and must
// never be stored.
func (g *Graph) SetNode(node Node) bool {
	if node.Id == 0 {
		panic("graph: SetNode called with id 0")
	}
	e, ok := g.nodes[node.Id]
	if !ok {
		g.nodes[node.Id] = &entry{node: node}
		return false
	}
	e.node = node
	return true
}

// DeleteNode removes a node and its outgoing edges. Returns true if it existed.
// Incoming edges from other nodes are left dangling — callers resolving
// edges must check GetNode on the target.
func (g *Graph) DeleteNode(id int64) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	delete(g.nodes, id)
	return true
}

// GetEdges returns the outgoing edges of fromID, or nil if the node
// doesn't exist or has none. The returned slice must not be mutated.
func (g *Graph) GetEdges(fromID int64) []Edge {
	e, ok := g.nodes[fromID]
	if !ok {
		return nil
	}
	return e.edges
}

// GetEdge returns the cost of the edge fromID->toID, or +Inf if no such
// edge exists.
func (g *Graph) GetEdge(fromID, toID int64) float32 {
	for _, edge := range g.GetEdges(fromID) {
		if edge.To == toID {
			return edge.Cost
		}
	}
	return inf32
}

// SetEdge creates or updates the edge fromID->edge.To with edge.Cost.
//
// Does nothing and returns false if fromID is 0, edge.To is 0, or either
// fromID or edge.To does not exist as a node in the graph — an edge must
// always connect two real nodes. Otherwise returns true.
func (g *Graph) SetEdge(fromID int64, edge Edge) bool {
	if fromID == 0 || edge.To == 0 {
		return false
	}
	if _, ok := g.nodes[edge.To]; !ok {
		return false
	}
	e, ok := g.nodes[fromID]
	if !ok {
		return false
	}
	for i := range e.edges {
		if e.edges[i].To == edge.To {
			e.edges[i].Cost = edge.Cost
			return true
		}
	}
	e.edges = append(e.edges, edge)
	return true
}

// DeleteEdge removes the edge fromID->toID, if any. Returns true if it existed.
func (g *Graph) DeleteEdge(fromID, toID int64) bool {
	e, ok := g.nodes[fromID]
	if !ok {
		return false
	}
	for i := range e.edges {
		if e.edges[i].To == toID {
			e.edges[i] = e.edges[len(e.edges)-1]
			e.edges = e.edges[:len(e.edges)-1]
			return true
		}
	}
	return false
}

// CloneEdges replaces dst's outgoing edges with a copy of src's. Used by
// the turn-restriction lowering pass to give a freshly cloned phantom
// node the same onward connectivity as the node it was cloned from.
func (g *Graph) CloneEdges(dst, src int64) {
	srcEdges := g.GetEdges(src)
	e, ok := g.nodes[dst]
	if !ok {
		e = &entry{}
		g.nodes[dst] = e
	}
	e.edges = append([]Edge(nil), srcEdges...)
}

// FindNearestNode performs a linear scan over canonical nodes (those with
// Id == OsmID) and returns the one closest to lat/lon. Phantom nodes are
// never returned — routes start and end on real OSM positions.
//
// This is O(n) and exists for small graphs and tests; pkg/kdtree provides
// a logarithmic-time index over the same canonical-node set for
// production lookups.
func (g *Graph) FindNearestNode(lat, lon float32) (Node, bool) {
	var best Node
	found := false
	bestDist := inf32
	for _, e := range g.nodes {
		n := e.node
		if n.Id != n.OsmID {
			continue
		}
		d := distance.Haversine(lat, lon, n.Lat, n.Lon)
		if !found || d < bestDist || (d == bestDist && n.Id < best.Id) {
			best, bestDist, found = n, d, true
		}
	}
	return best, found
}

// Iter calls fn for every node in the graph, in ascending id order. The
// edges slice must not be retained or mutated by fn.
func (g *Graph) Iter(fn func(node Node, edges []Edge)) {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		e := g.nodes[id]
		fn(e.node, e.edges)
	}
}
