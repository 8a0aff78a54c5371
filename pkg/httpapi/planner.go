package httpapi

import (
	"errors"

	"github.com/paulmach/go.geojson"

	"github.com/azybler/map_router/pkg/astar"
	"github.com/azybler/map_router/pkg/graph"
	"github.com/azybler/map_router/pkg/kdtree"
	"github.com/azybler/map_router/pkg/routeerr"
	"github.com/azybler/map_router/pkg/snap"
)

// ErrNoRoute is returned when the A* search exhausts its frontier without
// reaching the destination.
var ErrNoRoute = errors.New("httpapi: no route between the given points")

// Planner answers routing queries against one pre-compiled graph. A server
// process holds one Planner per profile it was built for; query-time
// profile selection is just picking which Planner handles the request —
// see NewHandlers.
type Planner struct {
	ProfileName string
	g           *graph.Graph
	tree        *kdtree.Tree
	index       *snap.Index
}

// NewPlanner builds the query-time indexes (k-d tree, edge r-tree) over an
// already-compiled graph. Building these is a few seconds of work even for
// a large metro extract, so it happens once at server startup, not per
// request.
func NewPlanner(profileName string, g *graph.Graph) *Planner {
	return &Planner{
		ProfileName: profileName,
		g:           g,
		tree:        kdtree.BuildFromGraph(g),
		index:       snap.Build(g),
	}
}

// Stats reports the size of the loaded graph.
func (p *Planner) Stats() StatsResponse { return StatsResponse{NumNodes: p.g.Len()} }

// snapOrNearestNode prefers snapping to the nearest road edge; a point
// whose nearest edge is out of snap.MaxDistanceMeters (e.g. it falls in a
// patch of the extract with no indexed edges at all, such as an isolated
// component trimmed by pkg/component before persistence) falls back to the
// k-d tree's plain nearest-canonical-node search, which has no distance
// cutoff.
func (p *Planner) snapOrNearestNode(ll LatLng) (int64, error) {
	res, err := p.index.Nearest(ll.Lat, ll.Lng)
	if err == nil {
		return res.NodeID, nil
	}
	n, ok := p.tree.FindNearestNode(float32(ll.Lat), float32(ll.Lng))
	if !ok {
		return 0, err
	}
	return n.Id, nil
}

// Route snaps start and end to their nearest road edges (pkg/snap), then
// finds a history-aware A* route between the resulting node ids. The
// result is returned as a single-feature GeoJSON FeatureCollection holding
// a LineString, the same shape cmd/route emits, alongside the route's
// total edge cost.
func (p *Planner) Route(start, end LatLng) (*geojson.FeatureCollection, float64, error) {
	fromID, err := p.snapOrNearestNode(start)
	if err != nil {
		return nil, 0, err
	}
	toID, err := p.snapOrNearestNode(end)
	if err != nil {
		return nil, 0, err
	}

	path, err := astar.FindRouteWithoutTurnAround(p.g, fromID, toID, routeerr.DefaultStepLimit)
	if err != nil {
		return nil, 0, err
	}
	if path == nil {
		return nil, 0, ErrNoRoute
	}

	coords := make([][]float64, len(path))
	var cost float64
	for i, id := range path {
		n, ok := p.g.GetNode(id)
		if !ok {
			return nil, 0, ErrNoRoute
		}
		coords[i] = []float64{float64(n.Lon), float64(n.Lat)}
		if i > 0 {
			cost += float64(p.g.GetEdge(path[i-1], id))
		}
	}

	line := geojson.NewLineStringFeature(coords)
	fc := geojson.NewFeatureCollection()
	fc.AddFeature(line)
	return fc, cost, nil
}
