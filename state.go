package depgraph

import "fmt"

// RuleState is the execution state of one rule within one Make call.
type RuleState int32

const (
	// Pending indicates the rule has not been evaluated yet.
	Pending RuleState = iota
	// Skipped indicates the rule was up to date and its Action was not invoked.
	Skipped
	// Running indicates the rule's Action is executing.
	Running
	// Succeeded indicates the rule's Action returned without error.
	Succeeded
	// Failed indicates the rule's Action or its staleness check failed.
	Failed
)

func (s RuleState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Skipped:
		return "skipped"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// IsTerminal reports whether s is final for the rule within the call.
func (s RuleState) IsTerminal() bool {
	return s == Skipped || s == Succeeded || s == Failed
}

// transition moves rule id from one state to another, rejecting anything
// outside Pending -> {Skipped | Running -> {Succeeded | Failed}}. A Pending
// rule may also fail directly when its staleness check errors.
func transition(states []RuleState, id int, to RuleState) error {
	from := states[id]
	if !allowedTransition(from, to) {
		return fmt.Errorf("invalid state transition for rule #%d: %s -> %s", id, from, to)
	}
	states[id] = to
	return nil
}

func allowedTransition(from, to RuleState) bool {
	switch from {
	case Pending:
		return to == Skipped || to == Running || to == Failed
	case Running:
		return to == Succeeded || to == Failed
	default:
		return false
	}
}
