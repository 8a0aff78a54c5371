package snap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azybler/map_router/pkg/graph"
)

func lineFixture() *graph.Graph {
	g := graph.New()
	g.SetNode(graph.Node{Id: 1, OsmID: 1, Lat: 0, Lon: 0})
	g.SetNode(graph.Node{Id: 2, OsmID: 2, Lat: 0, Lon: 0.01})
	g.SetEdge(1, graph.Edge{To: 2, Cost: 100})
	g.SetEdge(2, graph.Edge{To: 1, Cost: 100})
	return g
}

func TestNearestPicksCloserEndpoint(t *testing.T) {
	idx := Build(lineFixture())

	res, err := idx.Nearest(0.0001, 0.001) // closer to node 1
	require.NoError(t, err)
	require.Equal(t, int64(1), res.NodeID)

	res, err = idx.Nearest(0.0001, 0.009) // closer to node 2
	require.NoError(t, err)
	require.Equal(t, int64(2), res.NodeID)
}

func TestNearestTooFarIsError(t *testing.T) {
	idx := Build(lineFixture())
	_, err := idx.Nearest(50, 50)
	require.ErrorIs(t, err, ErrTooFar)
}

func TestNearestIdentifiesMatchedEdge(t *testing.T) {
	idx := Build(lineFixture())
	res, err := idx.Nearest(0.0001, 0.005)
	require.NoError(t, err)
	require.True(t, (res.EdgeFrom == 1 && res.EdgeTo == 2) || (res.EdgeFrom == 2 && res.EdgeTo == 1))
}
