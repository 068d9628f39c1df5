package depgraph

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/depgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeParallel_RunsIndependentRulesConcurrently(t *testing.T) {
	dir := t.TempDir()
	const n = 3

	// Every action waits until all n are running at once.
	var barrier sync.WaitGroup
	barrier.Add(n)
	var running atomic.Int32
	action := func(context.Context, []Path, []Path) error {
		running.Add(1)
		barrier.Done()
		waited := make(chan struct{})
		go func() {
			barrier.Wait()
			close(waited)
		}()
		select {
		case <-waited:
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("rules did not run concurrently")
		}
	}

	b := NewBuilder()
	for _, name := range []string{"a", "b", "c"} {
		b.AddRuleFunc([]string{filepath.Join(dir, name)}, nil, action)
	}
	g := mustBuild(t, b)

	report, err := g.Make(context.Background(), MakeParams{Workers: n})
	require.NoError(t, err)
	assert.Equal(t, int32(n), running.Load())
	assert.Equal(t, n, report.ExecutedCount())
}

func TestMakeParallel_RespectsDependencies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	d := filepath.Join(dir, "d")
	testutil.WriteFile(t, src, "src")

	rec := &recorder{}
	g := mustBuild(t, NewBuilder().
		AddRuleFunc([]string{d}, []string{b, c}, rec.writer("d")).
		AddRuleFunc([]string{b}, []string{a}, rec.writer("b")).
		AddRuleFunc([]string{c}, []string{a}, rec.writer("c")).
		AddRuleFunc([]string{a}, []string{src}, rec.writer("a")))

	report, err := g.Make(context.Background(), MakeParams{Workers: 4})
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "a", calls[0])
	assert.ElementsMatch(t, []string{"b", "c"}, calls[1:3])
	assert.Equal(t, "d", calls[3])
	for id := 0; id < 4; id++ {
		assert.Equal(t, Succeeded, report.State(id))
	}
}

func TestMakeParallel_FailureStopsDependents(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	cause := errors.New("boom")

	rec := &recorder{}
	g := mustBuild(t, NewBuilder().
		AddRuleFunc([]string{a}, nil, rec.failing("a", cause)).
		AddRuleFunc([]string{b}, []string{a}, rec.writer("b")))

	report, err := g.Make(context.Background(), MakeParams{Workers: 2})
	require.ErrorIs(t, err, cause)
	var failed *ActionFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, 0, failed.Rule.ID)

	assert.Equal(t, []string{"a"}, rec.Calls())
	assert.Equal(t, []RuleState{Failed, Pending}, report.States)
}

func TestMakeParallel_InFlightRulesFinishAfterFailure(t *testing.T) {
	dir := t.TempDir()
	slowStarted := make(chan struct{})

	rec := &recorder{}
	g := mustBuild(t, NewBuilder().
		AddRuleFunc([]string{filepath.Join(dir, "slow")}, nil, func(ctx context.Context, outputs, inputs []Path) error {
			close(slowStarted)
			time.Sleep(50 * time.Millisecond)
			return rec.writer("slow")(ctx, outputs, inputs)
		}).
		AddRuleFunc([]string{filepath.Join(dir, "bad")}, nil, func(ctx context.Context, outputs, inputs []Path) error {
			<-slowStarted
			return rec.failing("bad", errors.New("bad"))(ctx, outputs, inputs)
		}).
		AddRuleFunc([]string{filepath.Join(dir, "late")}, nil, rec.writer("late")))

	report, err := g.Make(context.Background(), MakeParams{Workers: 2})
	require.ErrorIs(t, err, ErrActionFailed)

	assert.ElementsMatch(t, []string{"slow", "bad"}, rec.Calls())
	assert.Equal(t, []RuleState{Succeeded, Failed, Pending}, report.States)
}

func TestMakeParallel_SecondRunSkipsEverything(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	testutil.WriteFileAt(t, src, "src", time.Now().Add(-time.Hour))

	rec := &recorder{}
	b := NewBuilder()
	var objs []string
	for _, name := range []string{"a.o", "b.o", "c.o"} {
		obj := filepath.Join(dir, name)
		objs = append(objs, obj)
		b.AddRuleFunc([]string{obj}, []string{src}, rec.writer(name))
	}
	b.AddRuleFunc([]string{filepath.Join(dir, "lib.a")}, objs, rec.writer("lib.a"))
	g := mustBuild(t, b)

	report, err := g.Make(context.Background(), MakeParams{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, report.ExecutedCount())
	assert.Equal(t, "lib.a", rec.Calls()[3])

	report, err = g.Make(context.Background(), MakeParams{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, report.ExecutedCount())
	assert.Len(t, report.Skipped, 4)
}

func TestMakeParallel_UpstreamRunPropagates(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	testutil.WriteFileAt(t, a, "a", past(0))
	testutil.WriteFileAt(t, src, "src", past(time.Minute))
	testutil.WriteFileAt(t, b, "b", past(2*time.Minute))

	rec := &recorder{}
	g := mustBuild(t, NewBuilder().
		AddRuleFunc([]string{a}, []string{src}, rec.noop("a")).
		AddRuleFunc([]string{b}, []string{a}, rec.noop("b")))

	_, err := g.Make(context.Background(), MakeParams{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.Calls())
}

func TestMakeParallel_MissingSourceInputRunsNothing(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	g := mustBuild(t, NewBuilder().
		AddRuleFunc([]string{filepath.Join(dir, "a")}, nil, rec.writer("a")).
		AddRuleFunc([]string{filepath.Join(dir, "b")}, []string{filepath.Join(dir, "nope")}, rec.writer("b")))

	_, err := g.Make(context.Background(), MakeParams{Workers: 2})
	require.ErrorIs(t, err, ErrMissingInput)
	assert.Empty(t, rec.Calls())
}

func TestMake_ConcurrentCallsShareOneGraph(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	testutil.WriteFile(t, src, "src")

	// The actions write nothing, so every call finds every rule stale and
	// concurrent calls never touch the same file.
	rec := &recorder{}
	b := NewBuilder()
	var objs []string
	for _, name := range []string{"a.o", "b.o", "c.o"} {
		obj := filepath.Join(dir, name)
		objs = append(objs, obj)
		b.AddRuleFunc([]string{obj}, []string{src}, rec.noop(name))
	}
	b.AddRuleFunc([]string{filepath.Join(dir, "lib.a")}, objs, rec.noop("lib.a"))
	g := mustBuild(t, b)

	const calls = 8
	reports := make([]*MakeReport, calls)
	errs := make([]error, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = g.Make(context.Background(), MakeParams{Workers: 1 + i%3})
		}(i)
	}
	wg.Wait()

	runIDs := make(map[string]bool)
	for i := 0; i < calls; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 4, reports[i].ExecutedCount())
		assert.Equal(t, 3, reports[i].Executed[3].ID)
		runIDs[reports[i].RunID] = true
	}
	assert.Len(t, runIDs, calls)
	assert.Equal(t, 4*calls, len(rec.Calls()))
	assert.Equal(t, calls, rec.count("lib.a"))
}
