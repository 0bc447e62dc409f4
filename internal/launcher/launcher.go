// Package launcher runs the bootstrap sequence: interpreter and platform
// checks, the media tool probe, environment provisioning, dependency
// installation and finally the hand-off to the application server.
//
// Stages run strictly one after another. Each stage reports its own result
// and hands a boolean or path back to Run; nothing is retried.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"wakeboot/internal/deps"
	"wakeboot/internal/hostenv"
	"wakeboot/internal/logx"
	"wakeboot/internal/paths"
	"wakeboot/internal/runner"
	"wakeboot/internal/tools"
	"wakeboot/internal/tui"
	"wakeboot/internal/venv"
)

// DefaultTitle is printed in the opening header when Options.Title is empty.
const DefaultTitle = "Snowboy Personal Wake Word Recorder - Launcher"

// signalSettle is how long serve waits, after the server exits with a
// failure status, for an interrupt that reached both processes to arrive.
var signalSettle = 250 * time.Millisecond

// Options describes what to bootstrap and how to serve it.
type Options struct {
	Title       string
	Paths       paths.ProjectPaths
	Interpreter string
	// GOOS and GOARCH override the detected platform; empty means runtime.
	GOOS        string
	GOARCH      string
	Tool        tools.Definition
	Markers     []string
	Fingerprint bool
	Module      string
	Host        string
	Port        int
}

// Launcher composes the bootstrap stages. Confirm decides whether to go on
// without the media tool.
type Launcher struct {
	Options

	Runner   runner.Runner
	Reporter *tui.Reporter
	Confirm  tui.Confirmer
	Logger   *log.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	profile hostenv.HostProfile
}

// Run executes the sequence and blocks until the server exits, the context
// is cancelled during Serve, or a stage fails.
func (l *Launcher) Run(ctx context.Context) Outcome {
	l.Reporter.Header(l.title())

	var env venv.Environment
	state := StateVersionCheck
	for {
		l.logger().Printf("launcher: state=%s", state)
		if err := ctx.Err(); err != nil {
			return l.interrupted(state, err)
		}
		switch state {
		case StateVersionCheck:
			if !l.checkInterpreterVersion(ctx) {
				return l.abort(state, nil)
			}
			state = StatePlatformCheck

		case StatePlatformCheck:
			if !l.checkPlatform() {
				return l.abort(state, nil)
			}
			state = StateToolCheck

		case StateToolCheck:
			if !l.checkExternalTool(ctx) && !l.confirmWithoutTool(ctx) {
				if err := ctx.Err(); err != nil {
					return l.interrupted(state, err)
				}
				return l.abort(state, nil)
			}
			state = StateProvision

		case StateProvision:
			provisioned, ok := l.ensureEnvironment(ctx)
			if !ok {
				return l.abort(state, nil)
			}
			env = provisioned
			state = StateInstall

		case StateInstall:
			if !l.ensureDependencies(ctx, env) {
				return l.abort(state, nil)
			}
			state = StateServe

		case StateServe:
			return l.serve(ctx, env)

		default:
			return l.abort(state, fmt.Errorf("unexpected state %s", state))
		}
	}
}

// Profile returns the host profile gathered during the version check.
func (l *Launcher) Profile() hostenv.HostProfile {
	return l.profile
}

func (l *Launcher) checkInterpreterVersion(ctx context.Context) bool {
	l.Reporter.Infof("Checking Python version...")

	profile, err := hostenv.Inspector{
		Runner:      l.Runner,
		Interpreter: l.Interpreter,
		GOOS:        l.GOOS,
		GOARCH:      l.GOARCH,
	}.Inspect(ctx)
	l.profile = profile
	if err != nil {
		l.logger().Printf("launcher: interpreter: %v", err)
		if runner.IsNotFound(err) {
			l.Reporter.Errorf("Python interpreter %q not found; Python %d.%d+ is required",
				l.Interpreter, hostenv.MinimumInterpreter.Major, hostenv.MinimumInterpreter.Minor)
			return false
		}
		l.Reporter.Errorf("Could not determine Python version: %v", err)
		return false
	}

	if err := hostenv.CheckInterpreter(profile.Interpreter); err != nil {
		l.Reporter.Errorf("Python %d.%d+ required, current version: %s",
			hostenv.MinimumInterpreter.Major, hostenv.MinimumInterpreter.Minor, profile.Interpreter)
		return false
	}
	l.Reporter.Successf("Python version: %s", profile.Interpreter)
	return true
}

func (l *Launcher) checkPlatform() bool {
	p := l.profile
	l.Reporter.Infof("Operating system: %s (%s)", hostenv.DisplayOS(p.OS), p.Machine())

	verdict := hostenv.Classify(p.OS, p.Arch)
	l.logger().Printf("launcher: platform %s/%s kind=%s", p.OS, p.Arch, verdict.Kind)
	if verdict.Supported() {
		l.Reporter.Successf("Supported platform: %s", verdict.Label)
		return true
	}

	if strings.EqualFold(p.OS, "windows") {
		l.Reporter.Warnf("Windows is not supported: %s", verdict.Reason)
		l.Reporter.Warnf("   Use one of the following instead:")
		for i, advice := range verdict.Advice {
			l.Reporter.Warnf("   %d. %s", i+1, advice)
		}
		return false
	}

	l.Reporter.Errorf("%s", capitalize(verdict.Reason))
	for _, advice := range verdict.Advice {
		l.Reporter.Warnf("%s", capitalize(advice))
	}
	return false
}

func (l *Launcher) checkExternalTool(ctx context.Context) bool {
	name := l.Tool.Name
	l.Reporter.Infof("Checking %s...", name)

	status := tools.Probe(ctx, l.Runner, l.Tool, l.profile.OS)
	l.logger().Printf("launcher: tool %s state=%s version=%q error=%q", name, status.State, status.Version, status.Error)
	switch status.State {
	case tools.StatePresent:
		l.Reporter.Successf("%s installed: %s", name, status.Version)
		return true
	case tools.StateProbeError:
		l.Reporter.Errorf("%s could not be run: %s", name, status.Error)
	default:
		l.Reporter.Errorf("%s is not installed", name)
	}
	l.Reporter.Infof("How to install: %s", status.Hint)
	return false
}

// confirmWithoutTool asks exactly once whether to go on without the media
// tool. A failed prompt counts as a refusal.
func (l *Launcher) confirmWithoutTool(ctx context.Context) bool {
	l.Reporter.Warnf("Audio cannot be processed without %s; install it first", l.Tool.Name)
	if l.Confirm == nil {
		return false
	}
	ok, err := l.Confirm.Confirm(ctx, "Continue anyway?")
	if err != nil {
		l.logger().Printf("launcher: confirm: %v", err)
		return false
	}
	l.logger().Printf("launcher: continue without %s: %v", l.Tool.Name, ok)
	return ok
}

func (l *Launcher) ensureEnvironment(ctx context.Context) (venv.Environment, bool) {
	dir := l.Paths.EnvDir
	exists, _ := paths.Exists(dir)
	if !exists {
		l.Reporter.Infof("Creating virtual environment...")
	}

	env, err := venv.Provisioner{
		Runner:      l.Runner,
		Interpreter: l.Interpreter,
		GOOS:        l.profile.OS,
		Logger:      l.logger(),
	}.Ensure(ctx, dir)
	if err != nil {
		l.Reporter.Errorf("Failed to create virtual environment: %v", err)
		return venv.Environment{}, false
	}
	if env.Reused {
		l.Reporter.Successf("Virtual environment already exists")
	} else {
		l.Reporter.Successf("Virtual environment created")
	}
	return env, true
}

func (l *Launcher) ensureDependencies(ctx context.Context, env venv.Environment) bool {
	l.Reporter.Infof("Checking dependencies...")

	state, err := deps.Installer{
		Runner:      l.Runner,
		Markers:     l.Markers,
		Fingerprint: l.Fingerprint,
		Output:      l.Stdout,
		Logger:      l.logger(),
		BeforeInstall: func(string) {
			l.Reporter.Infof("Installing dependencies (this may take a few minutes)...")
		},
	}.Ensure(ctx, env, l.Paths.ManifestFile)

	switch {
	case errors.Is(err, deps.ErrManifestMissing):
		l.Reporter.Errorf("Dependency manifest not found: %s", l.Paths.ManifestFile)
		return false
	case errors.Is(err, deps.ErrPipMissing):
		l.Reporter.Errorf("pip not found: %s", env.Pip())
		return false
	case err != nil:
		l.Reporter.Errorf("Failed to install dependencies: %v", err)
		return false
	}

	if state.Installed {
		l.Reporter.Successf("Dependencies installed")
	} else {
		l.Reporter.Successf("Dependencies already installed")
	}
	return state.Satisfied
}

func (l *Launcher) serve(ctx context.Context, env venv.Environment) Outcome {
	root := l.Paths.Root
	l.Reporter.Header("Starting server")
	l.Reporter.Infof("Address: http://localhost:%d", l.Port)
	l.Reporter.Infof("Press Ctrl+C to stop the server")
	fmt.Fprintln(l.Reporter.Writer())

	args := []string{"-m", l.Module, "--host", l.Host, "--port", strconv.Itoa(l.Port)}
	l.logger().Printf("launcher: serve %s %v cwd=%s", env.Python(), args, root)

	_, err := l.Runner.Run(ctx, env.Python(), args, runner.RunOptions{
		Dir:         root,
		Env:         []string{"PYTHONPATH=" + root},
		Stdin:       l.Stdin,
		Stdout:      l.Stdout,
		Stderr:      l.Stderr,
		Passthrough: true,
	})

	if err != nil && ctx.Err() == nil {
		if code, ok := runner.ExitCode(err); ok && code != 0 {
			select {
			case <-ctx.Done():
			case <-time.After(signalSettle):
			}
		}
	}

	if ctx.Err() != nil {
		l.logger().Printf("launcher: interrupted: %v", err)
		fmt.Fprintln(l.Reporter.Writer())
		l.Reporter.Infof("Server stopped")
		return Outcome{State: StateDone, Stage: StateServe, Interrupted: true}
	}
	if err == nil {
		return Outcome{State: StateDone, Stage: StateServe}
	}
	if code, ok := runner.ExitCode(err); ok {
		l.logger().Printf("launcher: server exited with status %d", code)
		if code < 0 {
			// -1 means the server was killed by a signal.
			code = 1
		}
		l.Reporter.Warnf("Server exited with status %d", code)
		return Outcome{State: StateDone, Stage: StateServe, ExitCode: code}
	}

	l.Reporter.Errorf("Failed to start server: %v", err)
	return Outcome{State: StateAborted, Stage: StateServe, ExitCode: 1, Err: err}
}

func (l *Launcher) abort(stage State, err error) Outcome {
	l.logger().Printf("launcher: aborted at %s", stage)
	return Outcome{State: StateAborted, Stage: stage, ExitCode: 1, Err: err}
}

// interrupted ends a run that was cancelled before the server started.
func (l *Launcher) interrupted(stage State, err error) Outcome {
	l.logger().Printf("launcher: interrupted at %s", stage)
	fmt.Fprintln(l.Reporter.Writer())
	l.Reporter.Warnf("Interrupted")
	return Outcome{State: StateAborted, Stage: stage, ExitCode: 1, Interrupted: true, Err: err}
}

func (l *Launcher) title() string {
	if l.Title != "" {
		return l.Title
	}
	return DefaultTitle
}

func (l *Launcher) logger() *log.Logger {
	if l.Logger == nil {
		l.Logger = logx.Discard()
	}
	return l.Logger
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
