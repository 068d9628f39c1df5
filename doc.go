// Package depgraph gives Go build hooks Makefile-style incremental rebuilding
// without shelling out to an external build tool.
//
// A build is described as a set of rules. Each rule declares the files it
// produces, the files it reads, and an Action that turns the latter into the
// former. When an input of one rule is the output of another, the two rules
// are connected by a dependency edge. The resulting graph must be acyclic.
//
//	graph, err := depgraph.NewBuilder().
//		AddRuleFunc([]string{"out/file.o"}, []string{"src/file.asm"}, assemble).
//		AddRuleFunc([]string{"out/libfile.a"}, []string{"out/file.o"}, archive).
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	report, err := graph.Make(ctx, depgraph.MakeParams{})
//
// Make walks the rules in dependency order and runs an Action only when the
// rule is stale: one of its outputs is missing, its oldest output is older
// than its newest input, or a rule producing one of its inputs ran during the
// same call. Ties between independent rules follow registration order.
//
// The Graph is immutable and can be made any number of times; every call
// reads filesystem metadata afresh. Concurrent Make calls are safe for the
// graph itself but will race on output files, so callers must serialize calls
// whose rules write the same paths.
//
// Logging goes through the *slog.Logger attached to the context with the
// internal ctxlog package's conventions; without one, nothing is logged.
package depgraph
