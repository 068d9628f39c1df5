package depgraph

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Path identifies a filesystem location. Paths are compared after
// filepath.Clean, so "out/./a.o" and "out/a.o" denote the same file.
type Path string

// NewPath normalizes s into a Path.
func NewPath(s string) Path {
	if s == "" {
		return ""
	}
	return Path(filepath.Clean(s))
}

// String returns the path as a plain string.
func (p Path) String() string { return string(p) }

// Action produces a rule's outputs from its inputs. It receives the rule's
// own output and input lists in registration order. Success is judged by the
// returned error alone.
type Action interface {
	Run(ctx context.Context, outputs, inputs []Path) error
}

// ActionFunc adapts an ordinary function to the Action interface.
type ActionFunc func(ctx context.Context, outputs, inputs []Path) error

// Run calls f(ctx, outputs, inputs).
func (f ActionFunc) Run(ctx context.Context, outputs, inputs []Path) error {
	return f(ctx, outputs, inputs)
}

// Rule is one registered build step. ID is the registration index and is
// stable for the lifetime of the Graph.
type Rule struct {
	ID      int
	Outputs []Path
	Inputs  []Path
	Action  Action
}

// Ref returns the identifying reference used in errors and reports. Its
// Outputs is a copy.
func (r Rule) Ref() RuleRef {
	return RuleRef{ID: r.ID, Outputs: slices.Clone(r.Outputs)}
}

// clone returns r with its own copies of the path lists.
func (r Rule) clone() Rule {
	r.Outputs = slices.Clone(r.Outputs)
	r.Inputs = slices.Clone(r.Inputs)
	return r
}

// RuleRef identifies a rule without exposing its Action.
type RuleRef struct {
	ID      int
	Outputs []Path
}

func (r RuleRef) String() string {
	outs := make([]string, len(r.Outputs))
	for i, o := range r.Outputs {
		outs[i] = string(o)
	}
	return fmt.Sprintf("rule #%d [%s]", r.ID, strings.Join(outs, " "))
}

func toPaths(in []string) []Path {
	out := make([]Path, len(in))
	for i, s := range in {
		out[i] = NewPath(s)
	}
	return out
}

func joinPaths(paths []Path) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
