// Package enginetest provides scripted Runner and FileReader implementations
// for testing resolvers and checks without touching the host.
package enginetest

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/ancients-collective/hostaudit/internal/engine"
)

// Runner is a scripted engine.Runner. Responses are keyed by the
// space-joined argument vector; unknown commands report ExitNotFound.
type Runner struct {
	mu        sync.Mutex
	responses map[string]engine.Result
	calls     []string
}

// NewRunner returns an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{responses: make(map[string]engine.Result)}
}

// On scripts the result returned for cmd, e.g. "ip route show default".
func (r *Runner) On(cmd string, res engine.Result) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[cmd] = res
	return r
}

// Run implements engine.Runner.
func (r *Runner) Run(_ context.Context, argv []string) engine.Result {
	key := strings.Join(argv, " ")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, key)

	if res, ok := r.responses[key]; ok {
		return res
	}
	return engine.Result{RC: engine.ExitNotFound, Stderr: fmt.Sprintf("%s: command not found", argv[0])}
}

// Calls returns the commands run so far, in order.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// OK is a successful result with the given output.
func OK(stdout string) engine.Result {
	return engine.Result{RC: 0, Stdout: strings.TrimSpace(stdout)}
}

// Fail is a failed result.
func Fail(rc int, stderr string) engine.Result {
	return engine.Result{RC: rc, Stderr: stderr}
}

// Files is an in-memory engine.FileReader keyed by absolute path.
type Files map[string]string

// ReadFile implements engine.FileReader.
func (f Files) ReadFile(path string) ([]byte, error) {
	if s, ok := f[path]; ok {
		return []byte(s), nil
	}
	return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
}
