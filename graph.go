package depgraph

// Graph is a validated, acyclic set of rules. It is immutable and safe for
// concurrent read access; see Make for the filesystem caveat.
type Graph struct {
	// rules is the arena; a rule's ID is its index.
	rules []Rule
	// producer maps every output path to the rule producing it.
	producer map[Path]int
	// deps[i] holds the IDs of rules producing inputs of rule i, ascending.
	deps [][]int
	// dependents[i] holds the IDs of rules reading outputs of rule i, ascending.
	dependents [][]int
	// leaves are inputs produced by no rule, in first-seen order.
	leaves []leafInput
	// order is the deterministic topological order of rule IDs.
	order []int
}

type leafInput struct {
	path   Path
	reader int
}

// Len returns the number of rules.
func (g *Graph) Len() int { return len(g.rules) }

// Rule returns a copy of the rule with the given ID.
func (g *Graph) Rule(id int) (Rule, bool) {
	if id < 0 || id >= len(g.rules) {
		return Rule{}, false
	}
	return g.rules[id].clone(), true
}

// Rules returns copies of all rules in registration order.
func (g *Graph) Rules() []Rule {
	out := make([]Rule, len(g.rules))
	for i, r := range g.rules {
		out[i] = r.clone()
	}
	return out
}

// Order returns the rules in the order Make visits them: every rule comes
// after all rules producing its inputs, ties broken by registration order.
func (g *Graph) Order() []RuleRef {
	out := make([]RuleRef, len(g.order))
	for i, id := range g.order {
		out[i] = g.rules[id].Ref()
	}
	return out
}

// Producer returns the rule that produces p, if any.
func (g *Graph) Producer(p string) (RuleRef, bool) {
	id, ok := g.producer[NewPath(p)]
	if !ok {
		return RuleRef{}, false
	}
	return g.rules[id].Ref(), true
}

// Dependencies returns the rules producing inputs of rule id.
func (g *Graph) Dependencies(id int) []RuleRef {
	if id < 0 || id >= len(g.rules) {
		return nil
	}
	return g.refs(g.deps[id])
}

// Dependents returns the rules reading outputs of rule id.
func (g *Graph) Dependents(id int) []RuleRef {
	if id < 0 || id >= len(g.rules) {
		return nil
	}
	return g.refs(g.dependents[id])
}

// Leaves returns the source inputs: paths read by some rule and produced by none.
func (g *Graph) Leaves() []Path {
	out := make([]Path, len(g.leaves))
	for i, l := range g.leaves {
		out[i] = l.path
	}
	return out
}

func (g *Graph) refs(ids []int) []RuleRef {
	out := make([]RuleRef, len(ids))
	for i, id := range ids {
		out[i] = g.rules[id].Ref()
	}
	return out
}

// upstreamRan reports whether any producer of rule id's inputs ran.
func (g *Graph) upstreamRan(id int, ran []bool) bool {
	for _, d := range g.deps[id] {
		if ran[d] {
			return true
		}
	}
	return false
}
