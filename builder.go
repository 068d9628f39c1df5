package depgraph

import (
	"context"
	"sort"

	"github.com/specialistvlad/depgraph/internal/ctxlog"
)

// GraphBuilder accumulates rules. Nothing is validated until Build, so rules
// may be registered in any order and may reference each other freely.
type GraphBuilder struct {
	rules    []Rule
	consumed bool
}

// NewBuilder creates a GraphBuilder with no rules.
func NewBuilder() *GraphBuilder {
	return &GraphBuilder{}
}

// AddRule registers a rule producing outputs from inputs with action. Paths
// are normalized with filepath.Clean. The builder is returned for chaining.
func (b *GraphBuilder) AddRule(outputs, inputs []string, action Action) *GraphBuilder {
	b.rules = append(b.rules, Rule{
		ID:      len(b.rules),
		Outputs: toPaths(outputs),
		Inputs:  toPaths(inputs),
		Action:  action,
	})
	return b
}

// AddRuleFunc is AddRule for a plain function.
func (b *GraphBuilder) AddRuleFunc(outputs, inputs []string, fn ActionFunc) *GraphBuilder {
	if fn == nil {
		return b.AddRule(outputs, inputs, nil)
	}
	return b.AddRule(outputs, inputs, fn)
}

// Build validates the registered rules and returns the immutable Graph.
//
// It fails with *InvalidRuleError, *DuplicateOutputError or
// *CyclicDependencyError. Build performs no filesystem I/O. The builder is
// consumed: calling Build again returns ErrBuilderConsumed.
func (b *GraphBuilder) Build(ctx context.Context) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true
	rules := b.rules
	b.rules = nil
	logger.Debug("Build: Starting graph construction.", "rule_count", len(rules))

	for _, r := range rules {
		if err := validateRule(r); err != nil {
			return nil, err
		}
	}

	// First pass: index every output to the rule producing it.
	producer := make(map[Path]int)
	for _, r := range rules {
		for _, out := range r.Outputs {
			if prev, exists := producer[out]; exists {
				return nil, &DuplicateOutputError{Path: out, First: rules[prev].Ref(), Second: r.Ref()}
			}
			producer[out] = r.ID
		}
	}
	logger.Debug("Build: Output index complete.", "output_count", len(producer))

	// Second pass: resolve inputs into edges and leaves.
	g := &Graph{
		rules:      rules,
		producer:   producer,
		deps:       make([][]int, len(rules)),
		dependents: make([][]int, len(rules)),
	}
	seenLeaf := make(map[Path]bool)
	for _, r := range rules {
		seenDep := make(map[int]bool)
		for _, in := range r.Inputs {
			p, ok := producer[in]
			if !ok {
				if !seenLeaf[in] {
					seenLeaf[in] = true
					g.leaves = append(g.leaves, leafInput{path: in, reader: r.ID})
				}
				continue
			}
			if seenDep[p] {
				continue
			}
			seenDep[p] = true
			g.deps[r.ID] = append(g.deps[r.ID], p)
			g.dependents[p] = append(g.dependents[p], r.ID)
		}
		sort.Ints(g.deps[r.ID])
	}
	logger.Debug("Build: Rule linking complete.", "leaf_count", len(g.leaves))

	if cycle := detectCycle(g.deps); cycle != nil {
		refs := make([]RuleRef, len(cycle))
		for i, id := range cycle {
			refs[i] = rules[id].Ref()
		}
		return nil, &CyclicDependencyError{Cycle: refs}
	}
	logger.Debug("Build: Cycle detection passed.")

	g.order = topoOrder(g.deps, g.dependents)
	logger.Debug("Build: Graph construction successful.", "order_len", len(g.order))
	return g, nil
}

func validateRule(r Rule) error {
	if len(r.Outputs) == 0 {
		return &InvalidRuleError{Rule: r.Ref(), Reason: "no outputs"}
	}
	if r.Action == nil {
		return &InvalidRuleError{Rule: r.Ref(), Reason: "nil action"}
	}
	for _, p := range r.Outputs {
		if p == "" {
			return &InvalidRuleError{Rule: r.Ref(), Reason: "empty output path"}
		}
	}
	for _, p := range r.Inputs {
		if p == "" {
			return &InvalidRuleError{Rule: r.Ref(), Reason: "empty input path"}
		}
	}
	return nil
}
