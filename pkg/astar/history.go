package astar

import (
	"github.com/azybler/map_router/pkg/distance"
	"github.com/azybler/map_router/pkg/graph"
	"github.com/azybler/map_router/pkg/routeerr"
)

// stateKey identifies a search state as (node currently standing on, OSM
// id of the node arrived from). Carrying the latter is what lets the
// search refuse to turn straight back the way it came — a flat A* search
// forgets how it got to a node and so cannot tell a genuine loop back
// from a legitimate revisit via a different approach.
//
// beforeOsmID of 0 marks the start of the search, which has no
// predecessor and so can never be turned away from.
type stateKey struct {
	nodeID      int64
	beforeOsmID int64
}

type historyItem struct {
	at    stateKey
	osmID int64
	cost  float32
	score float32
}

// historyHeap is historyItem's counterpart to flatHeap.
type historyHeap struct {
	items []historyItem
}

func (h *historyHeap) Len() int { return len(h.items) }

func (h *historyHeap) Push(it historyItem) {
	h.items = append(h.items, it)
	h.siftUp(len(h.items) - 1)
}

func (h *historyHeap) Pop() historyItem {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *historyHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].score >= h.items[parent].score {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *historyHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].score < h.items[smallest].score {
			smallest = left
		}
		if right < n && h.items[right].score < h.items[smallest].score {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// FindRouteWithoutTurnAround is FindRoute's history-aware counterpart: it
// forbids immediately crossing back over the OSM node it just arrived
// via, which is how a turn restriction lowered into phantom nodes
// actually gets enforced by the search (see pkg/builder for the
// lowering). Signature and return semantics match FindRoute.
func FindRouteWithoutTurnAround(g *graph.Graph, fromID, toID int64, stepLimit int) ([]int64, error) {
	toNode, ok := g.GetNode(toID)
	if !ok {
		return nil, &routeerr.InvalidReference{NodeID: toID}
	}
	fromNode, ok := g.GetNode(fromID)
	if !ok {
		return nil, &routeerr.InvalidReference{NodeID: fromID}
	}

	start := stateKey{nodeID: fromID, beforeOsmID: 0}

	knownCost := map[stateKey]float32{start: 0}
	cameFrom := map[stateKey]stateKey{}

	var frontier historyHeap
	frontier.Push(historyItem{
		at:    start,
		osmID: fromNode.OsmID,
		cost:  0,
		score: distance.Haversine(fromNode.Lat, fromNode.Lon, toNode.Lat, toNode.Lon),
	})

	steps := 0
	for frontier.Len() > 0 {
		item := frontier.Pop()

		if item.at.nodeID == toID {
			return reconstructHistoryPath(cameFrom, item.at), nil
		}

		if best, ok := knownCost[item.at]; ok && item.cost > best {
			continue
		}

		steps++
		if steps > stepLimit {
			return nil, &routeerr.StepLimitExceeded{Limit: stepLimit}
		}

		for _, edge := range g.GetEdges(item.at.nodeID) {
			neighbor, ok := g.GetNode(edge.To)
			if !ok {
				continue
			}
			// Forbid turning straight back onto the OSM node we just came from.
			if neighbor.OsmID == item.at.beforeOsmID {
				continue
			}

			neighborAt := stateKey{nodeID: edge.To, beforeOsmID: item.osmID}
			neighborCost := item.cost + edge.Cost
			if best, seen := knownCost[neighborAt]; seen && neighborCost > best {
				continue
			}
			knownCost[neighborAt] = neighborCost
			cameFrom[neighborAt] = item.at
			frontier.Push(historyItem{
				at:    neighborAt,
				osmID: neighbor.OsmID,
				cost:  neighborCost,
				score: neighborCost + distance.Haversine(neighbor.Lat, neighbor.Lon, toNode.Lat, toNode.Lon),
			})
		}
	}

	return nil, nil
}

func reconstructHistoryPath(cameFrom map[stateKey]stateKey, last stateKey) []int64 {
	path := []int64{last.nodeID}
	for {
		prev, ok := cameFrom[last]
		if !ok {
			break
		}
		path = append(path, prev.nodeID)
		last = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
