package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/depgraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Load parses and decodes the settings file at path. env backs the env.NAME
// references inside the file; pass Environ() for the process environment.
func Load(ctx context.Context, path string, env map[string]string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Settings loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	evalCtx, err := newEvalContext(env)
	if err != nil {
		return nil, err
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalCtx, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	s := root.settings()
	logger.Debug("Settings loaded.", "out_dir", s.OutDir, "src_dir", s.SrcDir, "has_assembler", s.Assembler != nil, "has_archive", s.Archive != nil)
	return s, nil
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}
	return env
}

func newEvalContext(env map[string]string) (*hcl.EvalContext, error) {
	if env == nil {
		env = map[string]string{}
	}
	envVal, err := gocty.ToCtyValue(env, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("failed to convert environment: %w", err)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envVal},
	}, nil
}

func (r *fileRoot) settings() *Settings {
	s := &Settings{
		Force:   r.Force,
		DryRun:  r.DryRun,
		Workers: r.Workers,
	}
	s.OutDir = deref(r.OutDir)
	s.SrcDir = deref(r.SrcDir)
	s.LogLevel = deref(r.LogLevel)
	s.LogFormat = deref(r.LogFormat)
	if r.Assembler != nil {
		s.Assembler = &Tool{Command: r.Assembler.Command, Args: r.Assembler.Args}
	}
	if r.Archive != nil {
		s.Archive = &Archive{
			Name: r.Archive.Name,
			Tool: Tool{Command: r.Archive.Command, Args: r.Archive.Args},
		}
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
