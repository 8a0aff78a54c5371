// Package snap answers "which road is closest to this coordinate" at query
// time. The k-d tree in pkg/kdtree only ever answers "which graph node is
// closest" — a user-supplied start/end coordinate rarely lands exactly on
// one, so routing against the raw nearest node can walk the result onto the
// wrong side of a road or miss a shortcut down a side street a few meters
// away. Snapping instead finds the closest point on any edge's line segment
// and hands back whichever endpoint of that edge is nearer.
package snap

import (
	"errors"

	"github.com/tidwall/rtree"

	"github.com/azybler/map_router/pkg/geo"
	"github.com/azybler/map_router/pkg/graph"
)

// MaxDistanceMeters bounds how far a query point may be from the nearest
// edge before it is considered off the road network entirely.
const MaxDistanceMeters = 500.0

// ErrTooFar is returned when no edge lies within MaxDistanceMeters.
var ErrTooFar = errors.New("snap: no road within range of the query point")

type indexedEdge struct {
	from, to     int64
	lat1, lon1   float64
	lat2, lon2   float64
}

// Index is a spatial index over a graph's edges, used to resolve query
// coordinates to the nearest routable node.
type Index struct {
	tree  rtree.RTree
	edges []indexedEdge
}

// Build indexes every edge of g. Edges between phantom nodes are indexed
// too (their coordinates are identical to the canonical node they were
// cloned from, so this changes nothing about which edge is nearest); it is
// simpler to index uniformly than to special-case them out.
func Build(g *graph.Graph) *Index {
	idx := &Index{}
	g.Iter(func(n graph.Node, edges []graph.Edge) {
		for _, e := range edges {
			to, ok := g.GetNode(e.To)
			if !ok {
				continue
			}
			ei := indexedEdge{
				from: n.Id, to: e.To,
				lat1: float64(n.Lat), lon1: float64(n.Lon),
				lat2: float64(to.Lat), lon2: float64(to.Lon),
			}
			idx.edges = append(idx.edges, ei)

			minLat, maxLat := ei.lat1, ei.lat2
			if minLat > maxLat {
				minLat, maxLat = maxLat, minLat
			}
			minLon, maxLon := ei.lon1, ei.lon2
			if minLon > maxLon {
				minLon, maxLon = maxLon, minLon
			}
			idx.tree.Insert(
				[2]float64{minLat, minLon},
				[2]float64{maxLat, maxLon},
				len(idx.edges)-1,
			)
		}
	})
	return idx
}

// Result is the outcome of snapping a query coordinate to the road network.
type Result struct {
	// NodeID is the nearer of the matched edge's two endpoints — the id an
	// A* search in pkg/astar should actually use as its start or end.
	NodeID int64
	// EdgeFrom, EdgeTo identify the matched edge itself.
	EdgeFrom, EdgeTo int64
	// DistanceMeters is the distance from the query point to the nearest
	// point on the matched edge, not to NodeID.
	DistanceMeters float64
}

// Nearest returns the road edge nearest to (lat, lon) and the better of its
// two endpoints to route from/to. Returns ErrTooFar if every edge within the
// index's search radius is farther than MaxDistanceMeters.
func (idx *Index) Nearest(lat, lon float64) (Result, error) {
	// A 0.01deg pad (~1.1km at the equator) comfortably covers
	// MaxDistanceMeters; widen the search (fourfold, up to twice) if nothing
	// turns up, since a sparse area can have its nearest edge farther than
	// the initial pad.
	pad := 0.01
	var best Result
	bestDist := MaxDistanceMeters + 1

	for attempt := 0; attempt < 3; attempt++ {
		bestDist = MaxDistanceMeters + 1
		idx.tree.Search(
			[2]float64{lat - pad, lon - pad},
			[2]float64{lat + pad, lon + pad},
			func(_, _ [2]float64, value interface{}) bool {
				e := idx.edges[value.(int)]
				d, ratio := geo.PointToSegmentDist(lat, lon, e.lat1, e.lon1, e.lat2, e.lon2)
				if d >= bestDist {
					return true
				}
				bestDist = d
				nodeID := e.from
				if ratio > 0.5 {
					nodeID = e.to
				}
				best = Result{
					NodeID:         nodeID,
					EdgeFrom:       e.from,
					EdgeTo:         e.to,
					DistanceMeters: d,
				}
				return true
			},
		)
		if bestDist <= MaxDistanceMeters {
			break
		}
		pad *= 4
	}

	if bestDist > MaxDistanceMeters {
		return Result{}, ErrTooFar
	}
	return best, nil
}
