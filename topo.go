package depgraph

import "container/heap"

// idHeap is a min-heap of rule IDs. Popping the lowest ID first makes every
// ordering decision fall back to registration order.
type idHeap []int

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder returns a deterministic topological order using Kahn's
// algorithm. The graph must already be known to be acyclic.
func topoOrder(deps, dependents [][]int) []int {
	indeg := make([]int, len(deps))
	ready := &idHeap{}
	for id := range deps {
		indeg[id] = len(deps[id])
		if indeg[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	order := make([]int, 0, len(deps))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(int)
		order = append(order, id)
		for _, d := range dependents[id] {
			indeg[d]--
			if indeg[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}
	return order
}
