// Package astar implements shortest-path search over pkg/graph. Two
// variants are provided: FindRoute is a plain memoryless A* search — fast,
// but free to take a turn that a multi-way-point turn restriction forbids
// because the restriction was lowered into phantom nodes the search
// happens not to be standing on. FindRouteWithoutTurnAround additionally
// tracks the OSM id the search arrived from, so it can refuse to turn
// straight back onto it; this is what production routing should use.
//
// Both use the haversine distance to the destination as the heuristic,
// which never overestimates the remaining cost and so keeps the search
// admissible.
package astar

import (
	"github.com/azybler/map_router/pkg/distance"
	"github.com/azybler/map_router/pkg/graph"
	"github.com/azybler/map_router/pkg/routeerr"
)

// flatItem is a single frontier entry for the memoryless search.
type flatItem struct {
	at    int64
	cost  float32
	score float32
}

// flatHeap is a concrete-typed min-heap ordered by score. Avoids the
// interface boxing overhead of container/heap for a queue this hot.
type flatHeap struct {
	items []flatItem
}

func (h *flatHeap) Len() int { return len(h.items) }

func (h *flatHeap) Push(it flatItem) {
	h.items = append(h.items, it)
	h.siftUp(len(h.items) - 1)
}

func (h *flatHeap) Pop() flatItem {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *flatHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].score >= h.items[parent].score {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *flatHeap) siftDown(i int) {
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

// FindRoute searches g from fromID to toID and returns the sequence of
// node ids forming the least-cost path, including both endpoints.
//
// A nil, nil return means the frontier was exhausted without reaching
// toID: no route exists. step is incremented once per node popped off
// the frontier that was not already known-stale; if it exceeds stepLimit
// the search aborts with *routeerr.StepLimitExceeded.
func FindRoute(g *graph.Graph, fromID, toID int64, stepLimit int) ([]int64, error) {
	toNode, ok := g.GetNode(toID)
	if !ok {
		return nil, &routeerr.InvalidReference{NodeID: toID}
	}
	fromNode, ok := g.GetNode(fromID)
	if !ok {
		return nil, &routeerr.InvalidReference{NodeID: fromID}
	}

	knownCost := map[int64]float32{fromID: 0}
	cameFrom := map[int64]int64{}

	var frontier flatHeap
	frontier.Push(flatItem{
		at:    fromID,
		cost:  0,
		score: distance.Haversine(fromNode.Lat, fromNode.Lon, toNode.Lat, toNode.Lon),
	})

	steps := 0
	for frontier.Len() > 0 {
		item := frontier.Pop()

		if item.at == toID {
			return reconstructFlatPath(cameFrom, toID), nil
		}

		// Stale entry: a cheaper path to this node was already found and
		// pushed after this one. Skip without counting it as a step.
		if best, ok := knownCost[item.at]; ok && item.cost > best {
			continue
		}

		steps++
		if steps > stepLimit {
			return nil, &routeerr.StepLimitExceeded{Limit: stepLimit}
		}

		for _, edge := range g.GetEdges(item.at) {
			neighbor, ok := g.GetNode(edge.To)
			if !ok {
				continue
			}
			neighborCost := item.cost + edge.Cost
			if best, seen := knownCost[edge.To]; seen && neighborCost > best {
				continue
			}
			knownCost[edge.To] = neighborCost
			cameFrom[edge.To] = item.at
			frontier.Push(flatItem{
				at:    edge.To,
				cost:  neighborCost,
				score: neighborCost + distance.Haversine(neighbor.Lat, neighbor.Lon, toNode.Lat, toNode.Lon),
			})
		}
	}

	return nil, nil
}

func reconstructFlatPath(cameFrom map[int64]int64, last int64) []int64 {
	path := []int64{last}
	for {
		prev, ok := cameFrom[last]
		if !ok {
			break
		}
		path = append(path, prev)
		last = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
