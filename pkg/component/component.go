// Package component extracts the largest weakly connected component of a
// routing graph. Real-world OSM extracts routinely contain small
// disconnected islands (a service road cut off by a parsing bbox, a
// footpath with no connecting edge) that can never reach the rest of the
// network; preprocessing them out keeps the search space honest and
// avoids nearest-node snapping onto a node with nowhere to go.
package component

import "github.com/azybler/map_router/pkg/graph"

// unionFind is a disjoint-set structure with path halving and union by
// rank, keyed by graph node id rather than a dense array index — the
// routing graph's id space is sparse (phantom ids live far above
// canonical ones), so an id-keyed map is the right shape here, unlike the
// contiguous-array union-find a CSR graph would use.
type unionFind struct {
	parent map[int64]int64
	rank   map[int64]byte
	size   map[int64]uint32
}

func newUnionFind(ids []int64) *unionFind {
	uf := &unionFind{
		parent: make(map[int64]int64, len(ids)),
		rank:   make(map[int64]byte, len(ids)),
		size:   make(map[int64]uint32, len(ids)),
	}
	for _, id := range ids {
		uf.parent[id] = id
		uf.size[id] = 1
	}
	return uf
}

func (uf *unionFind) find(x int64) int64 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y int64) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// Largest returns the node ids belonging to g's largest weakly connected
// component, treating every edge as undirected (a one-way street still
// connects its two endpoints for reachability purposes even though a
// route can only traverse it one way).
func Largest(g *graph.Graph) []int64 {
	var ids []int64
	g.Iter(func(n graph.Node, _ []graph.Edge) { ids = append(ids, n.Id) })
	if len(ids) == 0 {
		return nil
	}

	uf := newUnionFind(ids)
	g.Iter(func(n graph.Node, edges []graph.Edge) {
		for _, e := range edges {
			if _, ok := uf.parent[e.To]; ok {
				uf.union(n.Id, e.To)
			}
		}
	})

	var bestRoot int64
	var bestSize uint32
	for _, id := range ids {
		root := uf.find(id)
		if uf.size[root] > bestSize {
			bestRoot, bestSize = root, uf.size[root]
		}
	}

	members := make([]int64, 0, bestSize)
	for _, id := range ids {
		if uf.find(id) == bestRoot {
			members = append(members, id)
		}
	}
	return members
}

// Filter builds a new graph containing only the given node ids and the
// edges between them.
func Filter(g *graph.Graph, ids []int64) *graph.Graph {
	keep := make(map[int64]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	out := graph.New()
	g.Iter(func(n graph.Node, _ []graph.Edge) {
		if keep[n.Id] {
			out.SetNode(n)
		}
	})
	g.Iter(func(n graph.Node, edges []graph.Edge) {
		if !keep[n.Id] {
			return
		}
		for _, e := range edges {
			if keep[e.To] {
				out.SetEdge(n.Id, e)
			}
		}
	})
	return out
}
