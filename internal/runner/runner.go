package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// interruptGrace bounds how long a cancelled child may take to exit after it
// has been sent an interrupt before it is killed.
const interruptGrace = 10 * time.Second

type RunOptions struct {
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Passthrough wires Stdout/Stderr directly to the child without
	// buffering. Used for long-lived processes such as the app server.
	Passthrough bool
}

type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes an external command. Every subprocess the bootstrapper
// starts goes through a Runner so stages can be exercised with fakes.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error)
}

type CmdRunner struct{}

func (CmdRunner) Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = interruptGrace
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	if opts.Passthrough {
		cmd.Stdout = opts.Stdout
		cmd.Stderr = opts.Stderr
		return RunResult{}, cmd.Run()
	}

	var stdoutBuf, stderrBuf bytes.Buffer

	stdoutWriter := io.Writer(&stdoutBuf)
	if opts.Stdout != nil {
		stdoutWriter = io.MultiWriter(&stdoutBuf, opts.Stdout)
	}
	stderrWriter := io.Writer(&stderrBuf)
	if opts.Stderr != nil {
		stderrWriter = io.MultiWriter(&stderrBuf, opts.Stderr)
	}

	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter

	err := cmd.Run()
	return RunResult{Stdout: stdoutBuf.Bytes(), Stderr: stderrBuf.Bytes()}, err
}

var _ Runner = CmdRunner{}

// ExitCode extracts the exit status from an error returned by Run. The second
// value is false when err does not describe a process that ran and exited.
func ExitCode(err error) (int, bool) {
	var exitErr exitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

// exitCoder is satisfied by *exec.ExitError.
type exitCoder interface {
	error
	ExitCode() int
}

// IsNotFound reports whether err means the executable could not be located.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}
