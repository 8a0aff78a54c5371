package builder

import "github.com/azybler/map_router/pkg/profile"

// FeatureType distinguishes which OSM element kind a relation member
// refers to.
type FeatureType int

const (
	NodeType FeatureType = iota
	WayType
	RelationType
)

// RawNode is a transient OSM node as read off the wire, before it
// becomes a graph.Node.
type RawNode struct {
	ID   int64
	Lat  float32
	Lon  float32
	Tags profile.Tags
}

// RawWay is a transient OSM way: an ordered list of node ids plus tags.
type RawWay struct {
	ID    int64
	Nodes []int64
	Tags  profile.Tags
}

// RelationMember is one member of an OSM relation.
type RelationMember struct {
	Type FeatureType
	Ref  int64
	Role string
}

// RawRelation is a transient OSM relation. Only type=restriction
// relations are meaningful to the builder; everything else is ignored.
type RawRelation struct {
	ID      int64
	Members []RelationMember
	Tags    profile.Tags
}

// Feature is a tagged union of the three OSM element kinds a source
// stream can produce. Exactly one field is non-nil.
type Feature struct {
	Node     *RawNode
	Way      *RawWay
	Relation *RawRelation
}

// Scanner is the feature-stream interface the builder consumes,
// deliberately shaped like paulmach/osm/osmpbf.Scanner (Scan/Err, with
// the decoded value pulled off separately) so an OSM XML or PBF reader
// can implement it directly instead of buffering a whole file's features
// into memory.
type Scanner interface {
	// Scan advances to the next feature, returning false at EOF or on
	// error — check Err() to distinguish the two.
	Scan() bool
	// Feature returns the feature Scan just advanced to.
	Feature() Feature
	// Err returns the first error encountered, if any.
	Err() error
}
