// Package venv provisions the project's isolated Python environment.
//
// Provisioning is idempotent by path existence only: an existing directory
// is reused as-is without checking what is inside it. There is no locking,
// so two bootstrap runs racing to create the same directory may both invoke
// the interpreter.
package venv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"runtime"

	"wakeboot/internal/logx"
	"wakeboot/internal/paths"
	"wakeboot/internal/runner"
)

// ErrProvisionFailed is returned when the interpreter could not create the
// environment.
var ErrProvisionFailed = errors.New("create virtual environment")

// Environment is a provisioned virtual environment.
type Environment struct {
	Root string
	// Reused is true when the directory already existed.
	Reused bool
	goos   string
}

// Open describes an environment at root without touching the filesystem.
func Open(root, goos string) Environment {
	if goos == "" {
		goos = runtime.GOOS
	}
	return Environment{Root: root, goos: goos}
}

// BinDir is the directory holding the environment's executables.
func (e Environment) BinDir() string {
	if e.goos == "windows" {
		return filepath.Join(e.Root, "Scripts")
	}
	return filepath.Join(e.Root, "bin")
}

// Python is the environment's interpreter.
func (e Environment) Python() string {
	return filepath.Join(e.BinDir(), e.exe("python"))
}

// Pip is the environment's package manager.
func (e Environment) Pip() string {
	return filepath.Join(e.BinDir(), e.exe("pip"))
}

func (e Environment) exe(name string) string {
	if e.goos == "windows" {
		return name + ".exe"
	}
	return name
}

// Provisioner creates environments with "<Interpreter> -m venv <dir>".
type Provisioner struct {
	Runner      runner.Runner
	Interpreter string
	GOOS        string
	Logger      *log.Logger
}

// Ensure returns the environment at dir, creating it first when nothing
// exists there yet.
func (p Provisioner) Ensure(ctx context.Context, dir string) (Environment, error) {
	logger := p.Logger
	if logger == nil {
		logger = logx.Discard()
	}
	env := Open(dir, p.GOOS)

	exists, err := paths.Exists(dir)
	if err != nil {
		return Environment{}, fmt.Errorf("stat environment %s: %w", dir, err)
	}
	if exists {
		logger.Printf("venv: reusing %s", dir)
		env.Reused = true
		return env, nil
	}

	logger.Printf("venv: creating %s with %s", dir, p.Interpreter)
	res, err := p.Runner.Run(ctx, p.Interpreter, []string{"-m", "venv", dir}, runner.RunOptions{})
	if err != nil {
		logger.Printf("venv: create failed: %v stderr=%s", err, res.Stderr)
		return Environment{}, fmt.Errorf("%w: %w", ErrProvisionFailed, err)
	}
	return env, nil
}
