package asmhook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/depgraph"
	"github.com/specialistvlad/depgraph/internal/ctxlog"
	"github.com/specialistvlad/depgraph/internal/fsutil"
)

// SourceExt is the extension of discovered sources.
const SourceExt = ".asm"

// ObjectExt is the extension of assembled objects.
const ObjectExt = ".o"

// Layout locates the sources and the build output.
type Layout struct {
	SrcDir string
	OutDir string
}

// Toolchain names the programs used by the generated rules. Leaving
// ArchiveName empty disables the archive rule.
type Toolchain struct {
	Assembler     string
	AssemblerArgs []string
	ArchiveName   string
	Archiver      string
	ArchiverArgs  []string
}

// DefaultToolchain assembles with yasm for ELF64 and archives with ar.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Assembler:     "yasm",
		AssemblerArgs: []string{"-f", "elf64"},
		Archiver:      "ar",
		ArchiverArgs:  []string{"crs"},
	}
}

// ErrNoSources is returned by Register when SrcDir holds no sources.
var ErrNoSources = errors.New("no " + SourceExt + " sources found")

// Plan lists the files the registered rules will produce.
type Plan struct {
	Objects []string
	// Archive is empty when no archive rule was registered.
	Archive string
}

// Register adds the hook's rules to b. Sources are visited in lexical order,
// so rule IDs are stable between runs. The object for SrcDir/x/y.asm is
// OutDir/x/y.o.
func Register(ctx context.Context, b *depgraph.GraphBuilder, layout Layout, tc Toolchain, runner Runner) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	if layout.SrcDir == "" || layout.OutDir == "" {
		return nil, errors.New("both source and output directories are required")
	}
	if tc.Assembler == "" {
		return nil, errors.New("assembler command is required")
	}
	if tc.ArchiveName != "" && tc.Archiver == "" {
		return nil, errors.New("archiver command is required when an archive is requested")
	}

	sources, err := fsutil.FindFilesByExtension(layout.SrcDir, SourceExt)
	if err != nil {
		return nil, fmt.Errorf("failed to discover sources in %s: %w", layout.SrcDir, err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, layout.SrcDir)
	}
	logger.Debug("Discovered sources.", "count", len(sources), "src_dir", layout.SrcDir)

	plan := &Plan{}
	for _, src := range sources {
		rel, err := filepath.Rel(layout.SrcDir, src)
		if err != nil {
			return nil, fmt.Errorf("failed to relate %s to %s: %w", src, layout.SrcDir, err)
		}
		obj := filepath.Join(layout.OutDir, fsutil.ReplaceExt(rel, ObjectExt))
		b.AddRule([]string{obj}, []string{src}, assembleAction(tc, runner))
		plan.Objects = append(plan.Objects, obj)
	}

	if tc.ArchiveName != "" {
		plan.Archive = filepath.Join(layout.OutDir, tc.ArchiveName)
		b.AddRule([]string{plan.Archive}, plan.Objects, archiveAction(tc, runner))
	}
	logger.Debug("Registered hook rules.", "objects", len(plan.Objects), "archive", plan.Archive)
	return plan, nil
}

func assembleAction(tc Toolchain, runner Runner) depgraph.ActionFunc {
	return func(ctx context.Context, outputs, inputs []depgraph.Path) error {
		out := outputs[0].String()
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		args := append(append([]string{}, tc.AssemblerArgs...), "-o", out, inputs[0].String())
		return runner.Run(ctx, tc.Assembler, args...)
	}
}

func archiveAction(tc Toolchain, runner Runner) depgraph.ActionFunc {
	return func(ctx context.Context, outputs, inputs []depgraph.Path) error {
		out := outputs[0].String()
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		// ar appends to an existing archive; start from scratch so removed objects disappear.
		if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		args := append(append([]string{}, tc.ArchiverArgs...), out)
		for _, in := range inputs {
			args = append(args, in.String())
		}
		return runner.Run(ctx, tc.Archiver, args...)
	}
}
