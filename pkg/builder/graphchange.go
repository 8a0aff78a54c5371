package builder

import "github.com/azybler/map_router/pkg/graph"

// graphChange stages the mutations a turn-restriction lowering produces —
// node clones, edge removals, edge additions — so the whole restriction
// applies atomically: if any step along the way turns out to be
// impossible (the path's edges don't actually exist in the graph
// anymore), nothing has been touched yet and the restriction is simply
// dropped.
type graphChange struct {
	newNodes       map[int64]int64 // new phantom id -> source node id it was cloned from
	edgesToRemove  map[[2]int64]bool
	edgesToAdd     map[int64]map[int64]float32
	phantomCounter int64
}

func newGraphChange(phantomCounter int64) *graphChange {
	return &graphChange{
		newNodes:      make(map[int64]int64),
		edgesToRemove: make(map[[2]int64]bool),
		edgesToAdd:    make(map[int64]map[int64]float32),
		phantomCounter: phantomCounter,
	}
}

func (c *graphChange) cloneNode(src int64) int64 {
	c.phantomCounter++
	id := c.phantomCounter
	c.newNodes[id] = src
	return id
}

// originalOf resolves a possibly-staged node id back to the real graph
// node it ultimately derives from: a phantom staged earlier in this same
// restriction's lowering still only exists in newNodes, not in the graph
// yet, so edge lookups against the live graph must be redirected through
// whatever it was cloned from.
func (c *graphChange) originalOf(id int64) int64 {
	if src, ok := c.newNodes[id]; ok {
		return src
	}
	return id
}

// getToNodeIDByEdge finds the existing edge leaving fromNodeID (resolved
// to its original node) that targets a node whose OsmID is toOsmID, and
// returns that target's graph id. Returns (0, false) if no such edge
// exists — the path this restriction describes doesn't match the graph's
// actual connectivity (the way may have become impassable to this
// profile, or OSM data may simply be inconsistent), and the restriction
// must be dropped rather than applied onto a nonexistent edge.
func (c *graphChange) getToNodeIDByEdge(g *graph.Graph, fromNodeID, toOsmID int64) (int64, bool) {
	origin := c.originalOf(fromNodeID)
	for _, e := range g.GetEdges(origin) {
		n, ok := g.GetNode(e.To)
		if ok && n.OsmID == toOsmID {
			return e.To, true
		}
	}
	return 0, false
}

// restrictionAsClonedNodes walks the restriction's OSM-id node path and
// rewrites it into a sequence of graph node ids: every via node strictly
// between the first and last step is replaced by a freshly cloned
// phantom (unless the edge leading to it already targets a phantom that an
// earlier restriction committed to the graph, which is then reused as is),
// while the first and last nodes stay on
// their original ids. This is what lets a memoryless A* search treat
// "standing on the via node after arriving via this restricted path" as
// distinguishable from "standing on the via node having arrived any
// other way".
//
// Returns ok=false if the path doesn't correspond to real graph edges.
func (c *graphChange) restrictionAsClonedNodes(g *graph.Graph, osmPath []int64) ([]int64, bool) {
	cloned := make([]int64, 1, len(osmPath))
	cloned[0] = osmPath[0]

	for i := 1; i < len(osmPath); i++ {
		previousNodeID := cloned[i-1]
		osmID := osmPath[i]

		candidateNodeID, ok := c.getToNodeIDByEdge(g, previousNodeID, osmID)
		if !ok {
			return nil, false
		}

		isLast := i == len(osmPath)-1
		alreadyCanonical := candidateNodeID == osmID

		var nodeID int64
		if !alreadyCanonical || isLast {
			// Either the edge already leads to a phantom committed by an
			// earlier restriction (reused, nothing left to do), or this is
			// the final node, which always stays on its real id — a
			// restriction only needs to disambiguate the nodes strictly
			// between its endpoints.
			nodeID = candidateNodeID
		} else {
			nodeID = c.cloneNode(candidateNodeID)
			key := [2]int64{previousNodeID, osmID}
			c.edgesToRemove[key] = true
			c.stageEdge(g, previousNodeID, nodeID)
		}

		cloned = append(cloned, nodeID)
	}

	return cloned, true
}

// edgeCost looks up the cost the staged from->to edge should carry. to is
// very often a phantom id minted this instant by cloneNode — one that, by
// definition, is not yet the target of any live edge in g — so the lookup
// against g must resolve both endpoints back to the real nodes they derive
// from, not just from.
func (c *graphChange) edgeCost(g *graph.Graph, from, to int64) float32 {
	if pending, ok := c.edgesToAdd[from]; ok {
		if cost, ok := pending[to]; ok {
			return cost
		}
	}
	return g.GetEdge(c.originalOf(from), c.originalOf(to))
}

func (c *graphChange) stageEdge(g *graph.Graph, from, to int64) {
	cost := c.edgeCost(g, from, to)
	if c.edgesToAdd[from] == nil {
		c.edgesToAdd[from] = make(map[int64]float32)
	}
	c.edgesToAdd[from][to] = cost
}

// ensureOnlyEdge restricts from's outgoing connectivity to exactly the
// single edge from->to: every other edge the node it was cloned from
// carries is staged for removal. This is how a Mandatory restriction
// (only_straight_on, ...) gets enforced — the phantom node representing
// "standing at the junction, having arrived via the mandated path" simply
// has nowhere else to go.
func (c *graphChange) ensureOnlyEdge(g *graph.Graph, from, to int64) {
	if pending, ok := c.edgesToAdd[from]; ok {
		keep, hasKeep := pending[to]
		clear(pending)
		if hasKeep {
			pending[to] = keep
		}
	}

	origin := c.originalOf(from)
	for _, e := range g.GetEdges(origin) {
		c.edgesToRemove[[2]int64{from, e.To}] = true
	}
	c.stageEdge(g, from, to)
}

// removeEdge stages the removal of from->to — how a Prohibitory
// restriction (no_left_turn, ...) is enforced: the phantom node
// representing "having arrived via the restricted path" simply lacks the
// one edge the maneuver would have taken.
func (c *graphChange) removeEdge(from, to int64) {
	c.edgesToRemove[[2]int64{from, to}] = true
}

// apply commits every staged clone, removal and addition to g, in that
// order: clones must exist before edges can target them, and additions
// must come after removals so a removal can never undo an edge this same
// change just added to the same (from, to) pair.
func (c *graphChange) apply(g *graph.Graph) {
	for newID, oldID := range c.newNodes {
		old, ok := g.GetNode(oldID)
		if !ok {
			continue
		}
		g.SetNode(graph.Node{Id: newID, OsmID: old.OsmID, Lat: old.Lat, Lon: old.Lon})
		g.CloneEdges(newID, oldID)
	}
	for pair := range c.edgesToRemove {
		g.DeleteEdge(pair[0], pair[1])
	}
	for from, edges := range c.edgesToAdd {
		for to, cost := range edges {
			g.SetEdge(from, graph.Edge{To: to, Cost: cost})
		}
	}
}
