package depgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Construction-time errors, reported once by Build.
var (
	ErrCyclicDependency = errors.New("cyclic dependency")
	ErrDuplicateOutput  = errors.New("duplicate output")
	ErrInvalidRule      = errors.New("invalid rule")
	ErrBuilderConsumed  = errors.New("builder already built")
)

// Run-time errors, reported once by Make.
var (
	ErrMissingInput  = errors.New("missing input")
	ErrActionFailed  = errors.New("action failed")
	ErrMissingOutput = errors.New("missing output")
	ErrUnknownMode   = errors.New("unknown make mode")
)

// CyclicDependencyError lists the rules forming a dependency cycle. The chain
// starts and ends with the same rule: Cycle[i] depends on Cycle[i+1].
type CyclicDependencyError struct {
	Cycle []RuleRef
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, r := range e.Cycle {
		parts[i] = r.String()
	}
	return fmt.Sprintf("%s: %s", ErrCyclicDependency, strings.Join(parts, " -> "))
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }

// DuplicateOutputError reports a Path claimed by two rules. First and Second
// are the same rule when a single rule lists the path twice.
type DuplicateOutputError struct {
	Path   Path
	First  RuleRef
	Second RuleRef
}

func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf("%s: %q is produced by both %s and %s", ErrDuplicateOutput, e.Path, e.First, e.Second)
}

func (e *DuplicateOutputError) Unwrap() error { return ErrDuplicateOutput }

// InvalidRuleError reports a rule that cannot be part of any graph.
type InvalidRuleError struct {
	Rule   RuleRef
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidRule, e.Rule, e.Reason)
}

func (e *InvalidRuleError) Unwrap() error { return ErrInvalidRule }

// MissingInputError reports an input that neither exists nor was produced by
// a rule during the current Make call.
type MissingInputError struct {
	Path Path
	// Rule is the first rule, in registration order, that reads Path.
	Rule RuleRef
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: %q required by %s does not exist and no rule produces it", ErrMissingInput, e.Path, e.Rule)
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// ActionFailedError carries the failing rule's paths and the Action's own error.
type ActionFailedError struct {
	Rule    RuleRef
	Outputs []Path
	Inputs  []Path
	Err     error
}

func (e *ActionFailedError) Error() string {
	return fmt.Sprintf("%s: %s (outputs: %s; inputs: %s): %v",
		ErrActionFailed, e.Rule, joinPaths(e.Outputs), joinPaths(e.Inputs), e.Err)
}

// Unwrap exposes both the sentinel and the Action's cause to errors.Is/As.
func (e *ActionFailedError) Unwrap() []error { return []error{ErrActionFailed, e.Err} }

// MissingOutputError is returned when MakeParams.VerifyOutputs is set and an
// Action reported success without creating one of its outputs.
type MissingOutputError struct {
	Path Path
	Rule RuleRef
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("%s: %s succeeded but did not create %q", ErrMissingOutput, e.Rule, e.Path)
}

func (e *MissingOutputError) Unwrap() error { return ErrMissingOutput }
