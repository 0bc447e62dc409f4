// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"wakeboot/internal/runner"
)

// Call records a single invocation seen by Fake.
type Call struct {
	Command string
	Args    []string
	Opts    runner.RunOptions
}

// Line renders the call as "base arg1 arg2" for easy assertions.
func (c Call) Line() string {
	return strings.TrimSpace(filepath.Base(c.Command) + " " + strings.Join(c.Args, " "))
}

// Handler answers a call. Returning a nil handler result is a zero RunResult.
type Handler func(ctx context.Context, call Call) (runner.RunResult, error)

// Fake dispatches on the base name of the command. Commands without a
// handler fail as if the executable were missing.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

func New() *Fake {
	return &Fake{handlers: map[string]Handler{}}
}

// On registers a handler for a command base name, e.g. "pip" or "ffmpeg".
func (f *Fake) On(name string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
	return f
}

// Stdout registers a handler that succeeds with the given output.
func (f *Fake) Stdout(name, output string) *Fake {
	return f.On(name, func(context.Context, Call) (runner.RunResult, error) {
		return runner.RunResult{Stdout: []byte(output)}, nil
	})
}

// Fail registers a handler that returns err.
func (f *Fake) Fail(name string, err error) *Fake {
	return f.On(name, func(context.Context, Call) (runner.RunResult, error) {
		return runner.RunResult{}, err
	})
}

func (f *Fake) Run(ctx context.Context, command string, args []string, opts runner.RunOptions) (runner.RunResult, error) {
	call := Call{Command: command, Args: append([]string(nil), args...), Opts: opts}
	base := strings.TrimSuffix(filepath.Base(command), ".exe")

	f.mu.Lock()
	f.calls = append(f.calls, call)
	h, ok := f.handlers[base]
	f.mu.Unlock()

	if !ok {
		return runner.RunResult{}, &exec.Error{Name: command, Err: exec.ErrNotFound}
	}
	return h(ctx, call)
}

// Calls returns a copy of every recorded invocation.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Lines returns Call.Line for every recorded invocation.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

// Called reports whether any recorded call line starts with prefix.
func (f *Fake) Called(prefix string) bool {
	for _, line := range f.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// ExitStatusError stands in for *exec.ExitError, which cannot be built
// with a real status outside os/exec. runner.ExitCode recognises both.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

func (e *ExitStatusError) ExitCode() int { return e.Code }

var _ runner.Runner = (*Fake)(nil)
