package depgraph

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Reason explains a staleness decision.
type Reason int

const (
	// UpToDate means every output exists and is at least as new as every input.
	UpToDate Reason = iota
	// Forced means the caller asked for every rule to run.
	Forced
	// MissingOutput means at least one declared output does not exist.
	MissingOutput
	// UpstreamRebuilt means a rule producing one of the inputs ran in this call.
	UpstreamRebuilt
	// OutOfDate means the oldest output is older than the newest input.
	OutOfDate
)

func (r Reason) String() string {
	switch r {
	case UpToDate:
		return "up-to-date"
	case Forced:
		return "forced"
	case MissingOutput:
		return "missing-output"
	case UpstreamRebuilt:
		return "upstream-rebuilt"
	case OutOfDate:
		return "out-of-date"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Staleness is the verdict for a single rule. Path names the output or input
// that triggered it, when there is one.
type Staleness struct {
	Stale  bool
	Reason Reason
	Path   Path
}

// StalenessEvaluator decides whether a rule must run from the current file
// metadata and from what already ran earlier in the same Make call.
type StalenessEvaluator struct {
	fsys FileSystem
}

// NewStalenessEvaluator returns an evaluator reading metadata from fsys. A
// nil fsys means the host filesystem.
func NewStalenessEvaluator(fsys FileSystem) *StalenessEvaluator {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return &StalenessEvaluator{fsys: fsys}
}

// Evaluate applies the staleness policy to r. upstreamRebuilt must be true
// when any rule producing one of r's inputs ran earlier in the same call;
// that alone makes r stale, whatever the timestamps say.
//
// An input that does not exist fails with *MissingInputError. It is only
// inspected when no earlier check already made r stale.
func (e *StalenessEvaluator) Evaluate(r Rule, force, upstreamRebuilt bool) (Staleness, error) {
	if force {
		return Staleness{Stale: true, Reason: Forced}, nil
	}

	var oldestOut time.Time
	for i, out := range r.Outputs {
		info, err := e.fsys.Stat(string(out))
		if errors.Is(err, fs.ErrNotExist) {
			return Staleness{Stale: true, Reason: MissingOutput, Path: out}, nil
		}
		if err != nil {
			return Staleness{}, fmt.Errorf("stat output %q of %s: %w", out, r.Ref(), err)
		}
		if mt := info.ModTime(); i == 0 || mt.Before(oldestOut) {
			oldestOut = mt
		}
	}

	if upstreamRebuilt {
		return Staleness{Stale: true, Reason: UpstreamRebuilt}, nil
	}

	var newestIn time.Time
	var newestPath Path
	for _, in := range r.Inputs {
		info, err := e.fsys.Stat(string(in))
		if errors.Is(err, fs.ErrNotExist) {
			return Staleness{}, &MissingInputError{Path: in, Rule: r.Ref()}
		}
		if err != nil {
			return Staleness{}, fmt.Errorf("stat input %q of %s: %w", in, r.Ref(), err)
		}
		if mt := info.ModTime(); newestPath == "" || mt.After(newestIn) {
			newestIn = mt
			newestPath = in
		}
	}

	if newestPath != "" && oldestOut.Before(newestIn) {
		return Staleness{Stale: true, Reason: OutOfDate, Path: newestPath}, nil
	}
	return Staleness{Stale: false, Reason: UpToDate}, nil
}
