package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/specialistvlad/depgraph"
	"github.com/specialistvlad/depgraph/internal/asmhook"
	"github.com/specialistvlad/depgraph/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	runner asmhook.Runner
}

// NewApp is the constructor for the main application. The summary goes to
// outW and log records to logW. A nil runner executes real tools.
func NewApp(outW, logW io.Writer, cfg *Config, runner asmhook.Runner) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	if runner == nil {
		runner = asmhook.ExecRunner{}
	}
	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		runner: runner,
	}
}

// Run registers the hook's rules, builds the graph and brings the outputs up
// to date. The report is returned whenever Make was reached.
func (a *App) Run(ctx context.Context) (*depgraph.MakeReport, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "src_dir", a.config.SrcDir, "out_dir", a.config.OutDir)

	b := depgraph.NewBuilder()
	plan, err := asmhook.Register(ctx, b, asmhook.Layout{SrcDir: a.config.SrcDir, OutDir: a.config.OutDir}, a.config.Toolchain, a.runner)
	if err != nil {
		return nil, fmt.Errorf("failed to register build rules: %w", err)
	}

	graph, err := b.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "rule_count", graph.Len(), "objects", len(plan.Objects))

	params := depgraph.MakeParams{
		Workers: a.config.Workers,
		DryRun:  a.config.DryRun,
		// External tools report success through their exit status alone.
		VerifyOutputs: true,
	}
	if a.config.Force {
		params.Mode = depgraph.ForceAll
	}

	a.logger.Info("🚀 Starting make...", "rules", graph.Len(), "workers", params.Workers, "mode", params.Mode)
	report, err := graph.Make(ctx, params)
	if err != nil {
		return report, fmt.Errorf("make failed: %w", err)
	}

	verb := "executed"
	if a.config.DryRun {
		verb = "would execute"
	}
	fmt.Fprintf(a.outW, "depmake: %s %d of %d rules (%d up to date) in %s\n",
		verb, report.ExecutedCount(), graph.Len(), len(report.Skipped), report.Duration.Round(time.Millisecond))
	a.logger.Debug("App.Run method finished.")
	return report, nil
}
