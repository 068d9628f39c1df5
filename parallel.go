package depgraph

import (
	"container/heap"
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/depgraph/internal/ctxlog"
)

type ruleResult struct {
	id  int
	err error
}

// parallel executes the graph with a bounded worker pool.
//
// A single coordinator owns all per-call state: it keeps a ready queue of
// rules whose producers have all resolved (a min-heap on rule ID, fed by
// in-degree countdown), evaluates staleness, and dispatches stale rules to
// the workers. Workers only run Actions.
//
// After the first failure nothing new is dispatched, so no dependent of the
// failing rule ever starts. Rules already in flight are allowed to finish.
// The first failure observed is returned.
func (r *run) parallel(ctx context.Context, workers int) error {
	logger := ctxlog.FromContext(ctx)
	g := r.graph

	indeg := make([]int, len(g.rules))
	ready := &idHeap{}
	for id := range g.rules {
		indeg[id] = len(g.deps[id])
		if indeg[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)
	logger.Debug("Found all root rules.", "count", ready.Len())

	release := func(id int) {
		for _, d := range g.dependents[id] {
			indeg[d]--
			if indeg[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	work := make(chan int, workers)
	done := make(chan ruleResult, workers)
	var wg sync.WaitGroup
	logger.Debug("Starting worker pool.", "workers", workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerLogger := logger.With("workerID", workerID)
			for id := range work {
				workerLogger.Debug("Worker picked up rule for execution.", "rule_id", id)
				done <- ruleResult{id: id, err: r.invoke(ctx, g.rules[id])}
			}
		}(i)
	}
	defer func() {
		close(work)
		wg.Wait()
	}()

	var firstErr error
	inFlight := 0
	for {
		for firstErr == nil && inFlight < workers && ready.Len() > 0 {
			id := heap.Pop(ready).(int)
			rule := g.rules[id]
			if err := ctx.Err(); err != nil {
				firstErr = fmt.Errorf("make interrupted before %s: %w", rule.Ref(), err)
				break
			}

			st, err := r.decide(ctx, rule)
			if err != nil {
				firstErr = err
				break
			}
			if !st.Stale {
				if err := r.skip(ctx, id); err != nil {
					firstErr = err
					break
				}
				release(id)
				continue
			}

			if err := r.begin(ctx, id); err != nil {
				firstErr = err
				break
			}
			inFlight++
			work <- id
		}

		if inFlight == 0 {
			break
		}
		res := <-done
		inFlight--
		if err := r.finish(ctx, res.id, res.err); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		release(res.id)
	}
	return firstErr
}
