package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azybler/map_router/pkg/profile"
)

// fakeScanner replays a fixed slice of Features, the same shape any real
// osmsource.Scanner (XML or PBF backed) presents to the builder.
type fakeScanner struct {
	features []Feature
	i        int
}

func (s *fakeScanner) Scan() bool {
	if s.i >= len(s.features) {
		return false
	}
	s.i++
	return true
}
func (s *fakeScanner) Feature() Feature { return s.features[s.i-1] }
func (s *fakeScanner) Err() error       { return nil }

func nodeFeature(id int64, lat, lon float32) Feature {
	return Feature{Node: &RawNode{ID: id, Lat: lat, Lon: lon}}
}

func wayFeature(id int64, tags profile.Tags, nodes ...int64) Feature {
	return Feature{Way: &RawWay{ID: id, Nodes: nodes, Tags: tags}}
}

func relationFeature(id int64, tags profile.Tags, members ...RelationMember) Feature {
	return Feature{Relation: &RawRelation{ID: id, Tags: tags, Members: members}}
}

func TestAddFeaturesBuildsBidirectionalEdges(t *testing.T) {
	b := New(&profile.CarProfile, [4]float32{})
	s := &fakeScanner{features: []Feature{
		nodeFeature(1, 0, 0),
		nodeFeature(2, 0, 0.001),
		wayFeature(10, profile.Tags{"highway": "residential"}, 1, 2),
	}}
	require.NoError(t, b.AddFeatures(s))

	g := b.Graph()
	require.Greater(t, g.GetEdge(1, 2), float32(0))
	require.Greater(t, g.GetEdge(2, 1), float32(0), "residential ways are bidirectional")
}

func TestAddFeaturesOnewayOmitsReverseEdge(t *testing.T) {
	b := New(&profile.CarProfile, [4]float32{})
	s := &fakeScanner{features: []Feature{
		nodeFeature(1, 0, 0),
		nodeFeature(2, 0, 0.001),
		wayFeature(10, profile.Tags{"highway": "residential", "oneway": "yes"}, 1, 2),
	}}
	require.NoError(t, b.AddFeatures(s))

	g := b.Graph()
	require.Greater(t, g.GetEdge(1, 2), float32(0))
	require.Nil(t, g.GetEdges(2), "oneway street must not get a reverse edge")
}

func TestAddFeaturesDropsNodesOutsideBBox(t *testing.T) {
	bbox := [4]float32{-1, -1, 1, 1}
	b := New(&profile.CarProfile, bbox)
	s := &fakeScanner{features: []Feature{
		nodeFeature(1, 0, 0),
		nodeFeature(2, 50, 50), // outside bbox
		nodeFeature(3, 0, 0.001),
		// Connects node 1 so cleanup of way-less nodes keeps it; the
		// reference to the dropped node 2 is filtered out of the way.
		wayFeature(10, profile.Tags{"highway": "residential"}, 1, 3, 2),
	}}
	require.NoError(t, b.AddFeatures(s))

	_, ok := b.Graph().GetNode(1)
	require.True(t, ok, "node inside bbox must survive")
	_, ok = b.Graph().GetNode(2)
	require.False(t, ok, "node outside bbox must be dropped")
}

func TestAddFeaturesDropsUnconnectedNodes(t *testing.T) {
	b := New(&profile.CarProfile, [4]float32{})
	s := &fakeScanner{features: []Feature{
		nodeFeature(1, 0, 0),
		nodeFeature(2, 0, 0.001),
		nodeFeature(3, 10, 10), // never referenced by any way
		wayFeature(10, profile.Tags{"highway": "residential"}, 1, 2),
	}}
	require.NoError(t, b.AddFeatures(s))

	_, ok := b.Graph().GetNode(3)
	require.False(t, ok, "node referenced by no way must be cleaned up")
}

func TestAddFeaturesImpassableWayContributesNoEdges(t *testing.T) {
	b := New(&profile.CarProfile, [4]float32{})
	s := &fakeScanner{features: []Feature{
		nodeFeature(1, 0, 0),
		nodeFeature(2, 0, 0.001),
		wayFeature(10, profile.Tags{"highway": "footway"}, 1, 2), // cars can't use footways
	}}
	require.NoError(t, b.AddFeatures(s))

	require.Nil(t, b.Graph().GetEdges(1), "impassable way must contribute no edges")
}

// squareFixture builds a 4-way junction (nodes 1..4 around node 5) with
// one-segment ways radiating out from the center, suitable for testing
// restriction lowering: from=way(1,5), via=node 5, to=way(5,3).
func squareFixture(t *testing.T, p *profile.Profile, relation Feature) *Builder {
	t.Helper()
	b := New(p, [4]float32{})
	s := &fakeScanner{features: []Feature{
		nodeFeature(1, 0.001, 0),
		nodeFeature(2, 0, 0.001),
		nodeFeature(3, -0.001, 0),
		nodeFeature(4, 0, -0.001),
		nodeFeature(5, 0, 0),
		wayFeature(101, profile.Tags{"highway": "residential"}, 1, 5),
		wayFeature(102, profile.Tags{"highway": "residential"}, 5, 2),
		wayFeature(103, profile.Tags{"highway": "residential"}, 5, 3),
		wayFeature(104, profile.Tags{"highway": "residential"}, 5, 4),
		relation,
	}}
	require.NoError(t, b.AddFeatures(s))
	return b
}

// findPhantomOf returns the graph id of the phantom clone of osmID, if any.
func findPhantomOf(b *Builder, osmID int64) int64 {
	g := b.Graph()
	for id := MaxNodeID + 1; id < MaxNodeID+10; id++ {
		if n, ok := g.GetNode(id); ok && n.OsmID == osmID {
			return id
		}
	}
	return 0
}

func TestProhibitoryRestrictionClonesViaNode(t *testing.T) {
	restriction := relationFeature(900,
		profile.Tags{"type": "restriction", "restriction": "no_straight_on"},
		RelationMember{Type: WayType, Ref: 101, Role: "from"},
		RelationMember{Type: NodeType, Ref: 5, Role: "via"},
		RelationMember{Type: WayType, Ref: 103, Role: "to"},
	)
	b := squareFixture(t, &profile.CarProfile, restriction)
	g := b.Graph()

	require.Greater(t, g.Len(), 5, "a phantom clone of node 5 must have been created")

	phantomID := findPhantomOf(b, 5)
	require.NotZero(t, phantomID, "could not find a phantom clone of node 5")

	// The edge 1 -> phantom(5) must no longer go to canonical 5.
	require.GreaterOrEqual(t, g.GetEdge(1, 5), float32(1e20), "edge 1->5 must have been redirected to the phantom")
	require.Less(t, g.GetEdge(1, phantomID), float32(1e20), "edge 1->phantom must exist")

	// The prohibited maneuver (phantom -> node 3) must be gone, while the
	// other two directions remain available.
	require.GreaterOrEqual(t, g.GetEdge(phantomID, 3), float32(1e20), "prohibited turn phantom->3 must be removed")
	require.Less(t, g.GetEdge(phantomID, 2), float32(1e20), "unrestricted turn phantom->2 must survive")
	require.Less(t, g.GetEdge(phantomID, 4), float32(1e20), "unrestricted turn phantom->4 must survive")
}

func TestMandatoryRestrictionLeavesOnlyOneEdge(t *testing.T) {
	restriction := relationFeature(901,
		profile.Tags{"type": "restriction", "restriction": "only_straight_on"},
		RelationMember{Type: WayType, Ref: 101, Role: "from"},
		RelationMember{Type: NodeType, Ref: 5, Role: "via"},
		RelationMember{Type: WayType, Ref: 103, Role: "to"},
	)
	b := squareFixture(t, &profile.CarProfile, restriction)
	g := b.Graph()

	phantomID := findPhantomOf(b, 5)
	require.NotZero(t, phantomID, "could not find a phantom clone of node 5")

	edges := g.GetEdges(phantomID)
	require.Len(t, edges, 1)
	require.Equal(t, int64(3), edges[0].To)
}

func TestFlattenMemberNodesSimpleViaNode(t *testing.T) {
	// from: [1,5] (way), via: node 5, to: [5,3] (way), already oriented.
	got, err := flattenMemberNodes([][]int64{{1, 5}, {5}, {5, 3}})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 5, 3}, got)
}

func TestFlattenMemberNodesReversesMisorientedFrom(t *testing.T) {
	// The "from" way is digitized 5->1 instead of 1->5; it must be
	// reversed so it still ends at the shared junction (5).
	got, err := flattenMemberNodes([][]int64{{5, 1}, {5}, {5, 3}})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 5, 3}, got)
}

func TestFlattenMemberNodesDisjointIsError(t *testing.T) {
	_, err := flattenMemberNodes([][]int64{{1, 2}, {99}, {99, 3}})
	require.Error(t, err)
}
