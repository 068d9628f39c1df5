package depgraph

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recorder hands out Actions that log their invocations in call order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recorder) count(name string) int {
	n := 0
	for _, c := range r.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

// writer records the call and writes every output, as a real build step would.
func (r *recorder) writer(name string) ActionFunc {
	return func(_ context.Context, outputs, _ []Path) error {
		r.record(name)
		for _, out := range outputs {
			if err := os.MkdirAll(filepath.Dir(string(out)), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(string(out), []byte("built by "+name), 0644); err != nil {
				return err
			}
		}
		return nil
	}
}

// noop records the call and leaves the filesystem untouched.
func (r *recorder) noop(name string) ActionFunc {
	return func(context.Context, []Path, []Path) error {
		r.record(name)
		return nil
	}
}

func (r *recorder) failing(name string, err error) ActionFunc {
	return func(context.Context, []Path, []Path) error {
		r.record(name)
		return err
	}
}

func nopAction(context.Context, []Path, []Path) error { return nil }

func mustBuild(t *testing.T, b *GraphBuilder) *Graph {
	t.Helper()
	g, err := b.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, g)
	return g
}

func refIDs(refs []RuleRef) []int {
	ids := make([]int, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

// fileInfo is a minimal fs.FileInfo for mocked Stat results.
type fileInfo struct {
	name    string
	modTime time.Time
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return 0 }
func (f fileInfo) Mode() fs.FileMode  { return 0644 }
func (f fileInfo) ModTime() time.Time { return f.modTime }
func (f fileInfo) IsDir() bool        { return false }
func (f fileInfo) Sys() any           { return nil }

func infoAt(name string, t time.Time) fs.FileInfo {
	return fileInfo{name: name, modTime: t}
}
