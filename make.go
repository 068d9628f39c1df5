package depgraph

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/depgraph/internal/ctxlog"
)

// Make brings the graph's outputs up to date.
//
// Every source input (one produced by no rule) must exist, otherwise Make
// fails with *MissingInputError before any Action runs. Rules are then
// visited in Order: up-to-date rules are skipped and stale rules have their
// Action invoked. The first failing Action stops the call with
// *ActionFailedError; outputs written by earlier rules stay on disk.
//
// Cancellation of ctx is observed between rules; an Action already running
// receives ctx and decides for itself.
func (g *Graph) Make(ctx context.Context, params MakeParams) (*MakeReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	start := time.Now()
	r := &run{
		graph:  g,
		params: params,
		eval:   NewStalenessEvaluator(params.FS),
		ran:    make([]bool, len(g.rules)),
		report: &MakeReport{
			RunID:  runID,
			States: make([]RuleState, len(g.rules)),
		},
	}
	logger.Debug("Make: Starting.", "rules", len(g.rules), "mode", params.Mode, "workers", params.Workers, "dry_run", params.DryRun)

	err := params.validate()
	if err == nil {
		err = r.checkLeaves()
	}
	if err == nil {
		if params.Workers > 1 {
			err = r.parallel(ctx, params.Workers)
		} else {
			err = r.serial(ctx)
		}
	}
	r.report.Duration = time.Since(start)

	if err != nil {
		logger.Error("Make failed.", "executed", r.report.ExecutedCount(), "error", err)
		return r.report, err
	}
	logger.Info("🏁 Make finished.", "executed", r.report.ExecutedCount(), "skipped", len(r.report.Skipped), "duration", r.report.Duration)
	return r.report, nil
}

// run is the per-call state of Make; it is discarded afterwards.
type run struct {
	graph  *Graph
	params MakeParams
	eval   *StalenessEvaluator
	// ran[id] is true once rule id's Action succeeded (or would have, in a dry run).
	ran    []bool
	report *MakeReport
}

// checkLeaves verifies that every source input exists.
func (r *run) checkLeaves() error {
	for _, leaf := range r.graph.leaves {
		_, err := r.eval.fsys.Stat(string(leaf.path))
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingInputError{Path: leaf.path, Rule: r.graph.rules[leaf.reader].Ref()}
		}
		if err != nil {
			return fmt.Errorf("stat input %q: %w", leaf.path, err)
		}
	}
	return nil
}

func (r *run) serial(ctx context.Context) error {
	for _, id := range r.graph.order {
		rule := r.graph.rules[id]
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("make interrupted before %s: %w", rule.Ref(), err)
		}

		st, err := r.decide(ctx, rule)
		if err != nil {
			return err
		}
		if !st.Stale {
			if err := r.skip(ctx, id); err != nil {
				return err
			}
			continue
		}

		if err := r.begin(ctx, id); err != nil {
			return err
		}
		if err := r.finish(ctx, id, r.invoke(ctx, rule)); err != nil {
			return err
		}
	}
	return nil
}

// decide evaluates staleness for rule, marking it failed on error.
func (r *run) decide(ctx context.Context, rule Rule) (Staleness, error) {
	logger := ctxlog.FromContext(ctx)
	force := r.params.Mode == ForceAll
	st, err := r.eval.Evaluate(rule, force, r.graph.upstreamRan(rule.ID, r.ran))
	if err != nil {
		if terr := transition(r.report.States, rule.ID, Failed); terr != nil {
			return Staleness{}, terr
		}
		return Staleness{}, err
	}
	logger.Debug("Staleness evaluated.", "rule", rule.Ref().String(), "stale", st.Stale, "reason", st.Reason, "path", st.Path)
	return st, nil
}

func (r *run) skip(ctx context.Context, id int) error {
	if err := transition(r.report.States, id, Skipped); err != nil {
		return err
	}
	r.report.Skipped = append(r.report.Skipped, r.graph.rules[id].Ref())
	ctxlog.FromContext(ctx).Debug("Rule is up to date, skipping.", "rule", r.graph.rules[id].Ref().String())
	return nil
}

func (r *run) begin(ctx context.Context, id int) error {
	if err := transition(r.report.States, id, Running); err != nil {
		return err
	}
	ref := r.graph.rules[id].Ref()
	r.report.Executed = append(r.report.Executed, ref)
	ctxlog.FromContext(ctx).Info("▶️ Running rule", "rule", ref.String(), "dry_run", r.params.DryRun)
	return nil
}

// invoke runs rule's Action and, if requested, verifies its outputs. It
// touches no per-call state, so workers may call it concurrently.
func (r *run) invoke(ctx context.Context, rule Rule) error {
	if r.params.DryRun {
		return nil
	}
	if err := rule.Action.Run(ctx, slices.Clone(rule.Outputs), slices.Clone(rule.Inputs)); err != nil {
		return &ActionFailedError{Rule: rule.Ref(), Outputs: slices.Clone(rule.Outputs), Inputs: slices.Clone(rule.Inputs), Err: err}
	}
	if !r.params.VerifyOutputs {
		return nil
	}
	for _, out := range rule.Outputs {
		_, err := r.eval.fsys.Stat(string(out))
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingOutputError{Path: out, Rule: rule.Ref()}
		}
		if err != nil {
			return fmt.Errorf("stat output %q of %s: %w", out, rule.Ref(), err)
		}
	}
	return nil
}

// finish records the outcome of invoke for rule id and returns actionErr.
func (r *run) finish(ctx context.Context, id int, actionErr error) error {
	logger := ctxlog.FromContext(ctx)
	ref := r.graph.rules[id].Ref()
	if actionErr != nil {
		if err := transition(r.report.States, id, Failed); err != nil {
			return err
		}
		logger.Error("Rule failed.", "rule", ref.String(), "error", actionErr)
		return actionErr
	}
	if err := transition(r.report.States, id, Succeeded); err != nil {
		return err
	}
	r.ran[id] = true
	logger.Info("✅ Rule finished", "rule", ref.String())
	return nil
}
