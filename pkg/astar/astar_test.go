package astar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azybler/map_router/pkg/graph"
	"github.com/azybler/map_router/pkg/routeerr"
)

// addEdge adds the single directed edge from->to; fixtures call it once
// per direction they want.
func addEdge(g *graph.Graph, from, to int64, cost float32) {
	g.SetEdge(from, graph.Edge{To: to, Cost: cost})
}

// simpleDiamondFixture is a 5-node diamond: the top route 1-2-3-4 costs
// 200 per hop, the bottom route 2-5-4 costs 100 per hop and is cheaper
// overall despite being geometrically no shorter.
func simpleDiamondFixture() *graph.Graph {
	g := graph.New()
	for id := int64(1); id <= 5; id++ {
		g.SetNode(graph.Node{Id: id, OsmID: id})
	}
	addEdge(g, 1, 2, 200)
	addEdge(g, 2, 1, 200)
	addEdge(g, 2, 3, 200)
	addEdge(g, 3, 2, 200)
	addEdge(g, 3, 4, 200)
	addEdge(g, 4, 3, 200)
	addEdge(g, 2, 5, 100)
	addEdge(g, 5, 2, 100)
	addEdge(g, 5, 4, 100)
	addEdge(g, 4, 5, 100)
	return g
}

func TestFindRouteSimple(t *testing.T) {
	g := simpleDiamondFixture()
	path, err := FindRoute(g, 1, 4, 100)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 5, 4}, path)
}

func TestFindRouteWithoutTurnAroundSimple(t *testing.T) {
	g := simpleDiamondFixture()
	path, err := FindRouteWithoutTurnAround(g, 1, 4, 100)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 5, 4}, path)
}

func TestFindRouteStepLimitExceeded(t *testing.T) {
	g := simpleDiamondFixture()
	_, err := FindRoute(g, 1, 4, 2)
	require.Error(t, err)
	var limitErr *routeerr.StepLimitExceeded
	require.ErrorAs(t, err, &limitErr)
	require.Equal(t, 2, limitErr.Limit)
}

func TestFindRouteWithoutTurnAroundStepLimitExceeded(t *testing.T) {
	g := simpleDiamondFixture()
	_, err := FindRouteWithoutTurnAround(g, 1, 4, 2)
	var limitErr *routeerr.StepLimitExceeded
	require.ErrorAs(t, err, &limitErr)
}

func TestFindRouteInvalidReference(t *testing.T) {
	g := simpleDiamondFixture()
	_, err := FindRoute(g, 1, 999, 100)
	var refErr *routeerr.InvalidReference
	require.ErrorAs(t, err, &refErr)
}

func TestFindRouteNoPath(t *testing.T) {
	g := graph.New()
	g.SetNode(graph.Node{Id: 1, OsmID: 1})
	g.SetNode(graph.Node{Id: 2, OsmID: 2})
	path, err := FindRoute(g, 1, 2, 100)
	require.NoError(t, err)
	require.Nil(t, path)
}

// gridFixture is a 3x3 grid where the two direct routes from the
// top-left to the bottom-middle node are artificially expensive, making
// the five-hop route around the edge of the grid the actual optimum —
// the geometrically shortest route is not the cheapest one.
//
//	1 - 2 - 3
//	|   |   |
//	4 - 5 - 6
//	|   |   |
//	7 - 8 - 9
func gridFixture() *graph.Graph {
	g := graph.New()
	coords := map[int64][2]float32{
		1: {0.00, 0.00}, 2: {0.00, 0.01}, 3: {0.00, 0.02},
		4: {0.01, 0.00}, 5: {0.01, 0.01}, 6: {0.01, 0.02},
		7: {0.02, 0.00}, 8: {0.02, 0.01}, 9: {0.02, 0.02},
	}
	for id, c := range coords {
		g.SetNode(graph.Node{Id: id, OsmID: id, Lat: c[0], Lon: c[1]})
	}
	cheap := []struct{ a, b int64 }{
		{1, 2}, {2, 3}, {1, 4}, {7, 8}, {5, 6}, {3, 6}, {6, 9}, {9, 8},
	}
	for _, e := range cheap {
		addEdge(g, e.a, e.b, 100)
		addEdge(g, e.b, e.a, 100)
	}
	expensive := []struct{ a, b int64 }{
		{4, 7}, {5, 8},
	}
	for _, e := range expensive {
		addEdge(g, e.a, e.b, 1000)
		addEdge(g, e.b, e.a, 1000)
	}
	addEdge(g, 4, 5, 150)
	addEdge(g, 5, 4, 150)
	return g
}

func TestFindRouteShortestHopCountIsNotOptimal(t *testing.T) {
	g := gridFixture()
	path, err := FindRoute(g, 1, 8, 100)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 6, 9, 8}, path)
}

// turnRestrictionFixture mirrors the output of the graph builder lowering
// a mandatory "1 via 2 to 4" turn restriction: node 20 is a phantom clone
// of node 2 (same OsmID, distinct id), inserted on the path from 1 so
// that arriving via it only offers the mandated continuation onward.
// A flat search has no memory of having passed through the phantom and
// will happily backtrack across OSM node 2 again; the history-aware
// search won't.
func turnRestrictionFixture() *graph.Graph {
	g := graph.New()
	g.SetNode(graph.Node{Id: 1, OsmID: 1})
	g.SetNode(graph.Node{Id: 2, OsmID: 2})
	g.SetNode(graph.Node{Id: 20, OsmID: 2}) // phantom clone of node 2
	g.SetNode(graph.Node{Id: 3, OsmID: 3})
	g.SetNode(graph.Node{Id: 4, OsmID: 4})
	g.SetNode(graph.Node{Id: 5, OsmID: 5})

	addEdge(g, 1, 20, 10)
	addEdge(g, 2, 1, 10)
	addEdge(g, 2, 3, 10)
	addEdge(g, 2, 4, 10)
	addEdge(g, 20, 4, 10)
	addEdge(g, 3, 2, 10)
	addEdge(g, 3, 5, 10)
	addEdge(g, 4, 2, 10)
	addEdge(g, 4, 5, 100)
	addEdge(g, 5, 3, 10)
	addEdge(g, 5, 4, 100)

	return g
}

func TestFindRouteIgnoresLoweredTurnRestriction(t *testing.T) {
	g := turnRestrictionFixture()
	path, err := FindRoute(g, 1, 3, 100)
	require.NoError(t, err)
	// A flat search is memoryless: it takes the direct 4->2 edge, which
	// is exactly the turn the restriction this fixture encodes forbids.
	require.Equal(t, []int64{1, 20, 4, 2, 3}, path)
}

func TestFindRouteWithoutTurnAroundRespectsLoweredTurnRestriction(t *testing.T) {
	g := turnRestrictionFixture()
	path, err := FindRouteWithoutTurnAround(g, 1, 3, 100)
	require.NoError(t, err)
	// The history-aware search refuses to turn back onto OSM node 2 right
	// after arriving via its phantom clone, so it takes the longer (but
	// legal) route through 5 instead.
	require.Equal(t, []int64{1, 20, 4, 5, 3}, path)
}
