package depgraph

// detectCycle runs a three-colour depth-first search over deps, where
// deps[u] lists the rules u depends on. Rules are visited in ID order and
// their dependencies in ascending order, so the reported cycle is stable.
//
// It returns nil for an acyclic graph, otherwise the chain [v ... u v] in
// which every element depends on the next.
func detectCycle(deps [][]int) []int {
	const (
		white = iota // unvisited
		grey         // on the current DFS path
		black        // fully explored
	)

	color := make([]uint8, len(deps))
	var stack []int

	var visit func(u int) []int
	visit = func(u int) []int {
		color[u] = grey
		stack = append(stack, u)
		for _, v := range deps[u] {
			switch color[v] {
			case grey:
				start := len(stack) - 1
				for stack[start] != v {
					start--
				}
				cycle := make([]int, 0, len(stack)-start+1)
				cycle = append(cycle, stack[start:]...)
				return append(cycle, v)
			case white:
				if cycle := visit(v); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[u] = black
		return nil
	}

	for u := range deps {
		if color[u] != white {
			continue
		}
		if cycle := visit(u); cycle != nil {
			return cycle
		}
	}
	return nil
}
