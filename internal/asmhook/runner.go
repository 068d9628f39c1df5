package asmhook

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/specialistvlad/depgraph/internal/ctxlog"
)

// Runner executes an external tool.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs tools as child processes.
type ExecRunner struct{}

// Run starts name with args and waits for it. On failure the tool's combined
// output is included in the error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executing tool.", "command", name, "args", args)

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", name, err)
		}
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	if out.Len() > 0 {
		logger.Debug("Tool output.", "command", name, "output", strings.TrimSpace(out.String()))
	}
	return nil
}
