package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/depgraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns the values given on the
// command line (unset flags stay zero so that app.Resolve can fill them),
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("depmake", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
depmake - Incrementally assemble .asm sources into objects and an optional archive.

Usage:
  depmake [options] [SRC_DIR]

Arguments:
  SRC_DIR
    Directory searched recursively for .asm sources.

Options:
`)
		flagSet.PrintDefaults()
	}

	srcFlag := flagSet.String("src", "", "Directory containing .asm sources.")
	outFlag := flagSet.String("out", "", "Output directory. Defaults to $"+app.OutDirEnv+".")
	configFlag := flagSet.String("config", "", "Path to an HCL settings file.")
	archiveFlag := flagSet.String("archive", "", "Name of a static library bundling every object, created in the output directory.")
	forceFlag := flagSet.Bool("force", false, "Rebuild every rule regardless of timestamps.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Report what would be rebuilt without running any tool.")
	workersFlag := flagSet.Int("workers", 0, "Number of tools run concurrently (default 1).")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json' (default 'text').")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error' (default 'info').")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	src := *srcFlag
	extra := flagSet.Args()
	if src == "" && len(extra) > 0 {
		src, extra = extra[0], extra[1:]
	}
	if len(extra) > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(extra, " "))}
	}
	if src == "" && *configFlag == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "" && logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must not be negative"}
	}

	cfg := &app.Config{
		SrcDir:       src,
		OutDir:       *outFlag,
		SettingsPath: *configFlag,
		Force:        *forceFlag,
		DryRun:       *dryRunFlag,
		Workers:      *workersFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	}
	cfg.Toolchain.ArchiveName = *archiveFlag
	return cfg, false, nil
}
