package depgraph

import (
	"fmt"
	"time"
)

// MakeMode selects how staleness is decided. Make rejects any value other
// than Default and ForceAll with ErrUnknownMode.
type MakeMode int

const (
	// Default runs only stale rules.
	Default MakeMode = iota
	// ForceAll treats every rule as stale regardless of timestamps.
	ForceAll
)

func (m MakeMode) String() string {
	switch m {
	case Default:
		return "default"
	case ForceAll:
		return "force-all"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MakeParams configures one Make call. The zero value runs stale rules
// serially against the host filesystem.
type MakeParams struct {
	Mode MakeMode
	// Workers bounds the number of Actions running at once. Values below 2
	// select strictly serial execution.
	Workers int
	// DryRun decides staleness as if every stale rule ran, but invokes no
	// Action. The report lists the rules that would run.
	DryRun bool
	// VerifyOutputs checks after each successful Action that all of the
	// rule's outputs exist, failing with *MissingOutputError otherwise.
	VerifyOutputs bool
	// FS is the metadata source. Nil means the host filesystem.
	FS FileSystem
}

func (p MakeParams) validate() error {
	switch p.Mode {
	case Default, ForceAll:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMode, p.Mode)
	}
}

// MakeReport summarizes one Make call. It is returned even when Make fails
// and then reflects the progress made up to the failure.
type MakeReport struct {
	// RunID correlates the log records of this call.
	RunID string
	// Executed lists the rules whose Action was started, in start order.
	Executed []RuleRef
	// Skipped lists the rules found up to date, in evaluation order.
	Skipped []RuleRef
	// States holds the final state of every rule, indexed by rule ID.
	States   []RuleState
	Duration time.Duration
}

// ExecutedCount returns how many Actions were started.
func (r *MakeReport) ExecutedCount() int { return len(r.Executed) }

// State returns the final state of rule id.
func (r *MakeReport) State(id int) RuleState {
	if id < 0 || id >= len(r.States) {
		return Pending
	}
	return r.States[id]
}
