// Package builder consumes a stream of OSM features and turns them into
// a routing graph.Graph: nodes become graph nodes filtered to a bounding
// box, ways become weighted edges per the profile's penalties and
// direction rules, and turn-restriction relations are lowered into
// cloned "phantom" nodes so a memoryless search still respects them (see
// Builder.storeRestriction).
package builder

import (
	"fmt"
	"log"
	"math"

	"github.com/azybler/map_router/pkg/distance"
	"github.com/azybler/map_router/pkg/graph"
	"github.com/azybler/map_router/pkg/profile"
)

// MaxNodeID bounds the canonical OSM node id space. Ids at or above it
// are reserved for phantom nodes created while lowering turn
// restrictions, so a phantom id can never collide with a genuine OSM id
// (OSM's own id space is far below this bound today, but the reservation
// leaves headroom rather than relying on that staying true).
const MaxNodeID = int64(1) << 51

// Builder accumulates OSM features into a graph.Graph under a single
// profile. It is not safe for concurrent use — feed it features from one
// goroutine, same as the OSM readers it's paired with.
type Builder struct {
	g       *graph.Graph
	profile *profile.Profile
	bbox    [4]float32 // minLon, minLat, maxLon, maxLat
	ignoreBBox bool

	phantomCounter int64
	unusedNodes    map[int64]bool
	wayNodes       map[int64][]int64

	// Warnf receives a message for every restriction relation that cannot
	// be turned into a node path, and for an invalid bbox passed to New.
	// Other dropped features (impassable or too-short ways, out-of-bbox
	// nodes, restrictions whose edges are missing) are not reported.
	// Defaults to log.Printf, matching how the rest of this module logs.
	Warnf func(format string, args ...any)
}

// New creates a Builder for p. bbox is [minLon, minLat, maxLon, maxLat];
// pass a zero bbox (or one that isn't finite, or has minLon >= maxLon or
// minLat >= maxLat) to disable bbox filtering and accept every node. An
// invalid non-zero bbox is logged and ignored rather than silently applied.
func New(p *profile.Profile, bbox [4]float32) *Builder {
	b := &Builder{
		g:              graph.New(),
		profile:        p,
		bbox:           bbox,
		phantomCounter: MaxNodeID,
		unusedNodes:    make(map[int64]bool),
		wayNodes:       make(map[int64][]int64),
		Warnf:          log.Printf,
	}
	if bbox == [4]float32{} {
		b.ignoreBBox = true
	} else if !validBBox(bbox) {
		b.Warnf("builder: ignoring invalid bbox %v", bbox)
		b.ignoreBBox = true
	}
	return b
}

// validBBox reports whether bbox's four bounds are all finite and form a
// non-empty box: minLon < maxLon and minLat < maxLat.
func validBBox(bbox [4]float32) bool {
	for _, v := range bbox {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	minLon, minLat, maxLon, maxLat := bbox[0], bbox[1], bbox[2], bbox[3]
	return minLon < maxLon && minLat < maxLat
}

// Graph returns the graph built so far. Valid to call at any point, but
// only complete once AddFeatures has finished consuming its scanner.
func (b *Builder) Graph() *graph.Graph { return b.g }

// AddFeatures consumes every feature s produces, then deletes any node
// that turned out to belong to no way (a lone OSM node with no
// connectivity is useless to routing and just bloats the k-d tree).
func (b *Builder) AddFeatures(s Scanner) error {
	for s.Scan() {
		f := s.Feature()
		switch {
		case f.Node != nil:
			b.addNode(*f.Node)
		case f.Way != nil:
			b.addWay(*f.Way)
		case f.Relation != nil:
			b.addRelation(*f.Relation)
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	b.cleanup()
	return nil
}

func (b *Builder) cleanup() {
	for id := range b.unusedNodes {
		b.g.DeleteNode(id)
	}
}

func (b *Builder) inBBox(lat, lon float32) bool {
	if b.ignoreBBox {
		return true
	}
	return lon >= b.bbox[0] && lat >= b.bbox[1] && lon <= b.bbox[2] && lat <= b.bbox[3]
}

func (b *Builder) addNode(n RawNode) {
	if n.ID == 0 || n.ID >= MaxNodeID {
		return
	}
	if !b.inBBox(n.Lat, n.Lon) {
		return
	}
	if _, exists := b.g.GetNode(n.ID); exists {
		// First occurrence wins; a duplicate id later in the stream is
		// dropped rather than overwriting the node already recorded.
		return
	}
	b.g.SetNode(graph.Node{Id: n.ID, OsmID: n.ID, Lat: n.Lat, Lon: n.Lon})
	b.unusedNodes[n.ID] = true
}

func (b *Builder) addWay(w RawWay) {
	penalty := b.profile.WayPenalty(w.Tags)
	if !(penalty >= 1.0 && penalty < 1e30) {
		return
	}

	nodes := make([]int64, 0, len(w.Nodes))
	for _, id := range w.Nodes {
		if _, ok := b.g.GetNode(id); ok {
			nodes = append(nodes, id)
		}
	}
	if len(nodes) < 2 {
		return
	}

	forward, backward := b.profile.WayDirection(w.Tags)
	b.createEdges(nodes, penalty, forward, backward)

	for _, id := range nodes {
		delete(b.unusedNodes, id)
	}
	b.wayNodes[w.ID] = nodes
}

func (b *Builder) createEdges(nodes []int64, penalty float32, forward, backward bool) {
	for i := 0; i+1 < len(nodes); i++ {
		a, _ := b.g.GetNode(nodes[i])
		c, _ := b.g.GetNode(nodes[i+1])
		cost := penalty * distance.Haversine(a.Lat, a.Lon, c.Lat, c.Lon)
		if forward {
			b.g.SetEdge(nodes[i], graph.Edge{To: nodes[i+1], Cost: cost})
		}
		if backward {
			b.g.SetEdge(nodes[i+1], graph.Edge{To: nodes[i], Cost: cost})
		}
	}
}

func (b *Builder) addRelation(r RawRelation) {
	kind := b.profile.RestrictionKind(r.Tags)
	if kind == profile.Inapplicable {
		return
	}

	nodes, err := b.restrictionNodes(r)
	if err != nil {
		b.Warnf("builder: relation %d: %v", r.ID, err)
		return
	}

	if err := b.storeRestriction(nodes, kind); err != nil {
		b.Warnf("builder: relation %d: %v", r.ID, err)
	}
}

// invalidRestrictionError reports why a restriction relation could not
// be turned into a node path, mirroring the OSM turn-restriction schema's
// own validity rules (exactly one from, exactly one to, at least one
// via, and all members chained end-to-end).
type invalidRestrictionError struct {
	reason string
}

func (e *invalidRestrictionError) Error() string { return "invalid restriction: " + e.reason }

func (b *Builder) restrictionNodes(r RawRelation) ([]int64, error) {
	var from, to *RelationMember
	var vias []RelationMember
	for i := range r.Members {
		m := &r.Members[i]
		switch m.Role {
		case "from":
			if from != nil {
				return nil, &invalidRestrictionError{"multiple from members"}
			}
			from = m
		case "to":
			if to != nil {
				return nil, &invalidRestrictionError{"multiple to members"}
			}
			to = m
		case "via":
			vias = append(vias, *m)
		}
	}
	if from == nil {
		return nil, &invalidRestrictionError{"missing from member"}
	}
	if to == nil {
		return nil, &invalidRestrictionError{"missing to member"}
	}
	if len(vias) == 0 {
		return nil, &invalidRestrictionError{"missing via member"}
	}

	ordered := append([]RelationMember{*from}, vias...)
	ordered = append(ordered, *to)

	lists := make([][]int64, len(ordered))
	for i, m := range ordered {
		nodes, err := b.memberNodes(m)
		if err != nil {
			return nil, err
		}
		lists[i] = nodes
	}

	return flattenMemberNodes(lists)
}

func (b *Builder) memberNodes(m RelationMember) ([]int64, error) {
	switch m.Type {
	case NodeType:
		if m.Role != "via" {
			return nil, &invalidRestrictionError{"node member used in a non-via role"}
		}
		if _, ok := b.g.GetNode(m.Ref); !ok {
			return nil, &invalidRestrictionError{fmt.Sprintf("reference to unknown node %d", m.Ref)}
		}
		return []int64{m.Ref}, nil
	case WayType:
		nodes, ok := b.wayNodes[m.Ref]
		if !ok {
			return nil, &invalidRestrictionError{fmt.Sprintf("reference to unknown way %d", m.Ref)}
		}
		return nodes, nil
	default:
		return nil, &invalidRestrictionError{"member is neither a node nor a way"}
	}
}

// flattenMemberNodes merges the from/via.../to member node lists into a
// single path of node ids describing the restricted maneuver, re-using
// only the nodes immediately around the junction rather than each
// member's full way geometry: the from member contributes its last edge,
// a via way contributes every node after the one it shares with the
// previous segment, and the to member contributes only the single node
// one step into it. Members are reoriented (reversed) as needed so each
// one's first node matches the previous segment's last node.
func flattenMemberNodes(lists [][]int64) ([]int64, error) {
	if len(lists) < 2 {
		return nil, &invalidRestrictionError{"restriction has fewer than two members"}
	}

	normalized := make([][]int64, len(lists))
	for i, l := range lists {
		cp := make([]int64, len(l))
		copy(cp, l)
		normalized[i] = cp
	}

	first := normalized[0]
	if len(first) < 2 {
		return nil, &invalidRestrictionError{"from member has fewer than two nodes"}
	}
	if next := normalized[1]; len(next) > 0 {
		if first[0] == next[0] || first[0] == next[len(next)-1] {
			reverseInt64(first)
		}
	}

	result := append([]int64(nil), first[len(first)-2:]...)

	for idx := 1; idx < len(normalized); idx++ {
		cur := normalized[idx]
		if len(cur) == 0 {
			return nil, &invalidRestrictionError{"member has no nodes"}
		}
		junction := result[len(result)-1]
		if cur[0] != junction {
			if cur[len(cur)-1] == junction {
				reverseInt64(cur)
			} else {
				return nil, &invalidRestrictionError{"members are not chained end-to-end"}
			}
		}

		if idx == len(normalized)-1 {
			if len(cur) < 2 {
				return nil, &invalidRestrictionError{"to member has fewer than two nodes"}
			}
			result = append(result, cur[1])
		} else {
			result = append(result, cur[1:]...)
		}
	}

	return result, nil
}

func reverseInt64(s []int64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// storeRestriction lowers a restriction's node path into graph mutations
// via a staged GraphChange, so a failure partway through never leaves the
// graph half-modified.
func (b *Builder) storeRestriction(nodes []int64, kind profile.TurnRestrictionKind) error {
	change := newGraphChange(b.phantomCounter)

	cloned, ok := change.restrictionAsClonedNodes(b.g, nodes)
	if !ok {
		// The restriction's edges no longer exist in the graph (e.g. one
		// of its ways was impassable to this profile) — nothing to do.
		return nil
	}

	switch kind {
	case profile.Mandatory:
		for i := 1; i+1 < len(cloned); i++ {
			change.ensureOnlyEdge(b.g, cloned[i], cloned[i+1])
		}
	case profile.Prohibitory:
		change.removeEdge(cloned[len(cloned)-2], cloned[len(cloned)-1])
	}

	change.apply(b.g)
	b.phantomCounter = change.phantomCounter
	return nil
}
