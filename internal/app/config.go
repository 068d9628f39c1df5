package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/depgraph/internal/asmhook"
	"github.com/specialistvlad/depgraph/internal/config"
)

// OutDirEnv is the environment variable consulted when no output directory
// is given on the command line or in the settings file.
const OutDirEnv = "OUT_DIR"

const (
	defaultWorkers   = 1
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SrcDir       string
	OutDir       string
	SettingsPath string

	Force   bool
	DryRun  bool
	Workers int

	LogFormat string
	LogLevel  string

	Toolchain asmhook.Toolchain
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SrcDir == "" {
		return nil, errors.New("source directory is required: pass -src or set src_dir in the settings file")
	}
	if cfg.OutDir == "" {
		return nil, fmt.Errorf("output directory is required: pass -out, set out_dir in the settings file or export %s", OutDirEnv)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if err := validateLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	if cfg.Toolchain.Assembler == "" {
		return nil, errors.New("assembler command must not be empty")
	}
	return &cfg, nil
}

func validateLogging(level, format string) error {
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", level)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", format)
	}
	return nil
}

// Resolve completes the values given on the command line. Precedence is
// flags, then the settings file at flags.SettingsPath (if any), then env,
// then built-in defaults. Boolean switches are on when any source enables
// them. The result is validated with NewConfig.
func Resolve(ctx context.Context, flags Config, env map[string]string) (*Config, error) {
	cfg := flags
	if cfg.SettingsPath != "" {
		s, err := config.Load(ctx, cfg.SettingsPath, env)
		if err != nil {
			return nil, err
		}
		applySettings(&cfg, s)
	}

	if cfg.OutDir == "" {
		cfg.OutDir = env[OutDirEnv]
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}

	defaults := asmhook.DefaultToolchain()
	if cfg.Toolchain.Assembler == "" {
		cfg.Toolchain.Assembler = defaults.Assembler
		cfg.Toolchain.AssemblerArgs = defaults.AssemblerArgs
	}
	if cfg.Toolchain.ArchiveName != "" && cfg.Toolchain.Archiver == "" {
		cfg.Toolchain.Archiver = defaults.Archiver
		cfg.Toolchain.ArchiverArgs = defaults.ArchiverArgs
	}
	return NewConfig(cfg)
}

func applySettings(cfg *Config, s *config.Settings) {
	if cfg.SrcDir == "" {
		cfg.SrcDir = s.SrcDir
	}
	if cfg.OutDir == "" {
		cfg.OutDir = s.OutDir
	}
	if s.Force != nil && *s.Force {
		cfg.Force = true
	}
	if s.DryRun != nil && *s.DryRun {
		cfg.DryRun = true
	}
	if cfg.Workers == 0 && s.Workers != nil {
		cfg.Workers = *s.Workers
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = s.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = s.LogFormat
	}
	if s.Assembler != nil && cfg.Toolchain.Assembler == "" {
		cfg.Toolchain.Assembler = s.Assembler.Command
		cfg.Toolchain.AssemblerArgs = s.Assembler.Args
	}
	if s.Archive != nil && cfg.Toolchain.ArchiveName == "" {
		cfg.Toolchain.ArchiveName = s.Archive.Name
		cfg.Toolchain.Archiver = s.Archive.Command
		cfg.Toolchain.ArchiverArgs = s.Archive.Args
	}
}
