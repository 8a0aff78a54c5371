// Package kdtree provides a static 2-D k-d tree over canonical graph nodes
// (lat/lon, axes alternating by depth), used to answer nearest-node
// queries in O(log n) instead of the linear scan graph.FindNearestNode
// falls back to.
package kdtree

import (
	"sort"

	"github.com/azybler/map_router/pkg/distance"
	"github.com/azybler/map_router/pkg/graph"
)

// Tree is an immutable k-d tree over a fixed set of nodes. Build it once
// after the graph is finalized; it does not support insertion.
type Tree struct {
	root *node
}

type node struct {
	pivot       graph.Node
	left, right *node
}

// Build constructs a Tree from nodes. Only canonical nodes (Id == OsmID)
// should be passed in — phantom nodes produced by turn-restriction
// lowering have no independent position and are never valid answers to a
// nearest-node query.
func Build(nodes []graph.Node) *Tree {
	if len(nodes) == 0 {
		return &Tree{}
	}
	cp := make([]graph.Node, len(nodes))
	copy(cp, nodes)
	return &Tree{root: buildNode(cp, true)}
}

// BuildFromGraph collects every canonical node in g and builds a Tree
// over them.
func BuildFromGraph(g *graph.Graph) *Tree {
	var nodes []graph.Node
	g.Iter(func(n graph.Node, _ []graph.Edge) {
		if n.Id == n.OsmID {
			nodes = append(nodes, n)
		}
	})
	return Build(nodes)
}

// buildNode recursively builds a subtree, splitting on longitude when
// lonDivides is true and latitude otherwise, alternating at each level.
// Ties in the sort are broken by input order (sort.SliceStable), matching
// the reference construction so trees built from the same input are
// reproducible.
func buildNode(nodes []graph.Node, lonDivides bool) *node {
	if len(nodes) == 0 {
		return nil
	}
	if lonDivides {
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Lon < nodes[j].Lon })
	} else {
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Lat < nodes[j].Lat })
	}

	mid := len(nodes) / 2
	n := &node{pivot: nodes[mid]}
	n.left = buildNode(nodes[:mid], !lonDivides)
	n.right = buildNode(nodes[mid+1:], !lonDivides)
	return n
}

// FindNearestNode returns the canonical node closest to lat/lon, and
// false if the tree is empty.
func (t *Tree) FindNearestNode(lat, lon float32) (graph.Node, bool) {
	if t.root == nil {
		return graph.Node{}, false
	}
	best := t.root.pivot
	bestDist := distance.Haversine(lat, lon, best.Lat, best.Lon)
	best, bestDist = t.root.findNearest(lat, lon, true, best, bestDist)
	return best, true
}

// findNearest recurses down the tree, always descending into the branch
// the query point falls on, and only visiting the other branch when the
// query point could plausibly be closer to a node across the splitting
// hyperplane than the current best match. The hyperplane distance is
// computed by setting the splitting coordinate to the pivot's value and
// holding the non-splitting coordinate at the query's — an approximation
// of the distance to anything on the far side that holds well away from
// the poles and the antimeridian.
func (n *node) findNearest(lat, lon float32, lonDivides bool, best graph.Node, bestDist float32) (graph.Node, float32) {
	d := distance.Haversine(lat, lon, n.pivot.Lat, n.pivot.Lon)
	if d < bestDist {
		best, bestDist = n.pivot, d
	}

	var nearBranch, farBranch *node
	var queryBeforePivot bool
	if lonDivides {
		queryBeforePivot = lon < n.pivot.Lon
	} else {
		queryBeforePivot = lat < n.pivot.Lat
	}
	if queryBeforePivot {
		nearBranch, farBranch = n.left, n.right
	} else {
		nearBranch, farBranch = n.right, n.left
	}

	if nearBranch != nil {
		best, bestDist = nearBranch.findNearest(lat, lon, !lonDivides, best, bestDist)
	}

	if farBranch != nil {
		axisLat, axisLon := lat, lon
		if lonDivides {
			axisLon = n.pivot.Lon
		} else {
			axisLat = n.pivot.Lat
		}
		distToAxis := distance.Haversine(lat, lon, axisLat, axisLon)
		if distToAxis < bestDist {
			best, bestDist = farBranch.findNearest(lat, lon, !lonDivides, best, bestDist)
		}
	}

	return best, bestDist
}
