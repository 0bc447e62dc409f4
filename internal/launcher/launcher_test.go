package launcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"wakeboot/internal/paths"
	"wakeboot/internal/runner"
	"wakeboot/internal/runner/runnertest"
	"wakeboot/internal/tools"
	"wakeboot/internal/tui"
)

const coldListing = "Package    Version\n---------- -------\npip        24.0\n"

type harness struct {
	root     string
	pp       paths.ProjectPaths
	fake     *runnertest.Fake
	out      bytes.Buffer
	prompts  int
	answer   bool
	launcher *Launcher
}

type countingConfirmer struct{ h *harness }

func (c countingConfirmer) Confirm(context.Context, string) (bool, error) {
	c.h.prompts++
	return c.h.answer, nil
}

// newHarness wires a launcher against a fresh project root with a manifest,
// a working interpreter, ffmpeg and pip. Individual tests override handlers.
func newHarness(t *testing.T, goos, goarch string) *harness {
	t.Helper()
	root := t.TempDir()
	pp, err := paths.Resolve(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pp.ManifestFile, []byte("quart\nhypercorn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := &harness{root: root, pp: pp, fake: runnertest.New()}
	h.fake.On("python3", func(_ context.Context, call runnertest.Call) (runner.RunResult, error) {
		if call.Args[0] == "--version" {
			return runner.RunResult{Stdout: []byte("Python 3.11.4\n")}, nil
		}
		dir := call.Args[2]
		if err := os.MkdirAll(filepath.Join(dir, "bin"), 0o755); err != nil {
			return runner.RunResult{}, err
		}
		return runner.RunResult{}, os.WriteFile(filepath.Join(dir, "bin", "pip"), nil, 0o755)
	})
	h.fake.Stdout("ffmpeg", "ffmpeg version 6.1.1\n")
	h.fake.On("pip", func(_ context.Context, call runnertest.Call) (runner.RunResult, error) {
		if call.Args[0] == "list" {
			return runner.RunResult{Stdout: []byte(coldListing)}, nil
		}
		return runner.RunResult{}, nil
	})
	h.fake.Stdout("python", "")

	h.launcher = &Launcher{
		Options: Options{
			Paths:       pp,
			Interpreter: "python3",
			GOOS:        goos,
			GOARCH:      goarch,
			Tool:        tools.Definition{Name: "ffmpeg", Executable: "ffmpeg", VersionSwitch: "-version"},
			Module:      "web",
			Host:        "0.0.0.0",
			Port:        8000,
		},
		Runner:   h.fake,
		Reporter: tui.NewReporter(&h.out, tui.PlainStyles()),
		Confirm:  countingConfirmer{h: h},
	}
	return h
}

func (h *harness) serverCalls() []runnertest.Call {
	var calls []runnertest.Call
	for _, c := range h.fake.Calls() {
		if filepath.Base(c.Command) == "python" {
			calls = append(calls, c)
		}
	}
	return calls
}

func TestRunFreshLinuxProject(t *testing.T) {
	h := newHarness(t, "linux", "amd64")

	outcome := h.launcher.Run(context.Background())
	if outcome.State != StateDone || outcome.ExitCode != 0 {
		t.Fatalf("unexpected outcome %+v\n%s", outcome, h.out.String())
	}

	envDir := filepath.Join(h.root, ".venv")
	if ok, _ := paths.DirExists(envDir); !ok {
		t.Fatal("expected environment directory to be created")
	}

	want := []string{
		"python3 --version",
		"ffmpeg -version",
		"python3 -m venv " + envDir,
		"pip list",
		"pip install -r " + h.pp.ManifestFile,
		"python -m web --host 0.0.0.0 --port 8000",
	}
	if got := h.fake.Lines(); !slices.Equal(got, want) {
		t.Fatalf("unexpected call sequence\n got: %v\nwant: %v", got, want)
	}

	server := h.serverCalls()[0]
	if server.Command != filepath.Join(envDir, "bin", "python") {
		t.Fatalf("server should use the environment interpreter, got %s", server.Command)
	}
	if server.Opts.Dir != h.root {
		t.Fatalf("expected cwd %s, got %s", h.root, server.Opts.Dir)
	}
	if !slices.Contains(server.Opts.Env, "PYTHONPATH="+h.root) {
		t.Fatalf("expected PYTHONPATH in child env, got %v", server.Opts.Env)
	}
	if !server.Opts.Passthrough {
		t.Fatal("expected server stdio to be passed through")
	}
	if h.prompts != 0 {
		t.Fatalf("no prompt expected when ffmpeg is present, got %d", h.prompts)
	}

	out := h.out.String()
	for _, line := range []string{
		"✓ Python version: 3.11.4",
		"ℹ Operating system: Linux (x86_64)",
		"✓ Supported platform: Linux x86_64",
		"✓ ffmpeg installed: ffmpeg version 6.1.1",
		"✓ Virtual environment created",
		"ℹ Installing dependencies",
		"ℹ Address: http://localhost:8000",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("expected output to contain %q\n%s", line, out)
		}
	}
}

func TestRunWarmProjectSkipsProvisionAndInstall(t *testing.T) {
	h := newHarness(t, "darwin", "arm64")
	envDir := filepath.Join(h.root, ".venv")
	if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(envDir, "bin", "pip"), nil, 0o755); err != nil {
		t.Fatal(err)
	}
	h.fake.Stdout("pip", "Package   Version\n--------- -------\nquart     0.19.4\nhypercorn 0.16.0\n")

	outcome := h.launcher.Run(context.Background())
	if outcome.State != StateDone {
		t.Fatalf("unexpected outcome %+v\n%s", outcome, h.out.String())
	}
	if h.fake.Called("python3 -m venv") {
		t.Fatal("existing environment must not be recreated")
	}
	if h.fake.Called("pip install") {
		t.Fatal("satisfied dependencies must not be reinstalled")
	}
	if !strings.Contains(h.out.String(), "Virtual environment already exists") {
		t.Fatalf("expected reuse message\n%s", h.out.String())
	}
}

func TestRunWindowsAbortsBeforeProvisioning(t *testing.T) {
	h := newHarness(t, "windows", "amd64")

	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StatePlatformCheck || outcome.ExitCode == 0 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if got := h.fake.Lines(); !slices.Equal(got, []string{"python3 --version"}) {
		t.Fatalf("expected only the version probe, got %v", got)
	}
	if ok, _ := paths.Exists(filepath.Join(h.root, ".venv")); ok {
		t.Fatal("no environment should exist after aborting")
	}
	if !strings.Contains(h.out.String(), "WSL2") {
		t.Fatalf("expected alternatives to be suggested\n%s", h.out.String())
	}
}

func TestRunUnsupportedLinuxArch(t *testing.T) {
	h := newHarness(t, "linux", "arm64")
	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StatePlatformCheck {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if !strings.Contains(h.out.String(), "✗ Unsupported Linux architecture: arm64") {
		t.Fatalf("expected architecture error\n%s", h.out.String())
	}
}

func TestRunOldInterpreterAborts(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.fake.Stdout("python3", "Python 3.6.15\n")

	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StateVersionCheck {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(h.fake.Calls()) != 1 {
		t.Fatalf("expected nothing after the version check, got %v", h.fake.Lines())
	}
	if !strings.Contains(h.out.String(), "current version: 3.6.15") {
		t.Fatalf("expected version error\n%s", h.out.String())
	}
}

func TestRunMissingInterpreterAborts(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.launcher.Interpreter = "python3.99"

	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StateVersionCheck {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestRunMissingToolDeclined(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.fake.Fail("ffmpeg", &osNotFound{})
	h.answer = false

	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StateToolCheck {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if h.prompts != 1 {
		t.Fatalf("expected exactly one prompt, got %d", h.prompts)
	}
	if h.fake.Called("python3 -m venv") {
		t.Fatal("provisioning must not start after declining")
	}
	if !strings.Contains(h.out.String(), "sudo apt-get install ffmpeg") {
		t.Fatalf("expected install hint\n%s", h.out.String())
	}
}

func TestRunMissingToolAccepted(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.fake.Fail("ffmpeg", &osNotFound{})
	h.answer = true

	outcome := h.launcher.Run(context.Background())
	if outcome.State != StateDone {
		t.Fatalf("unexpected outcome %+v\n%s", outcome, h.out.String())
	}
	if h.prompts != 1 {
		t.Fatalf("expected exactly one prompt, got %d", h.prompts)
	}
	if len(h.serverCalls()) != 1 {
		t.Fatal("expected server to be started")
	}
}

func TestRunPromptErrorAborts(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.fake.Fail("ffmpeg", &osNotFound{})
	h.launcher.Confirm = tui.LinePrompter{In: strings.NewReader(""), Out: &h.out}

	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StateToolCheck {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestRunProvisionFailureAborts(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.fake.On("python3", func(_ context.Context, call runnertest.Call) (runner.RunResult, error) {
		if call.Args[0] == "--version" {
			return runner.RunResult{Stdout: []byte("Python 3.11.4\n")}, nil
		}
		return runner.RunResult{}, &runnertest.ExitStatusError{Code: 1}
	})

	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StateProvision {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if h.fake.Called("pip") {
		t.Fatal("installer must not run after a failed provision")
	}
}

func TestRunMissingManifestAborts(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	if err := os.Remove(h.pp.ManifestFile); err != nil {
		t.Fatal(err)
	}

	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StateInstall {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if h.fake.Called("pip") {
		t.Fatal("pip must not run without a manifest")
	}
	if len(h.serverCalls()) != 0 {
		t.Fatal("server must not start without dependencies")
	}
}

func TestRunInstallFailureAborts(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.fake.On("pip", func(_ context.Context, call runnertest.Call) (runner.RunResult, error) {
		if call.Args[0] == "list" {
			return runner.RunResult{Stdout: []byte(coldListing)}, nil
		}
		return runner.RunResult{}, &runnertest.ExitStatusError{Code: 1}
	})

	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StateInstall {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(h.serverCalls()) != 0 {
		t.Fatal("server must not start after a failed install")
	}
}

func TestRunInterruptIsCleanShutdown(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.fake.On("python", func(ctx context.Context, _ runnertest.Call) (runner.RunResult, error) {
		cancel()
		<-ctx.Done()
		return runner.RunResult{}, errors.New("signal: interrupt")
	})

	outcome := h.launcher.Run(ctx)
	if outcome.State != StateDone || !outcome.Interrupted || outcome.ExitCode != 0 || outcome.Err != nil {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	out := h.out.String()
	if !strings.Contains(out, "ℹ Server stopped") {
		t.Fatalf("expected shutdown message\n%s", out)
	}
	if strings.Contains(out, "Failed to start server") {
		t.Fatalf("interrupt must not be reported as a failure\n%s", out)
	}
}

func TestRunSpawnFailureReturnsAborted(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.fake.Fail("python", &osNotFound{})

	outcome := h.launcher.Run(context.Background())
	if !outcome.Aborted() || outcome.Stage != StateServe || outcome.ExitCode != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if !strings.Contains(h.out.String(), "✗ Failed to start server") {
		t.Fatalf("expected spawn failure report\n%s", h.out.String())
	}
}

func TestRunServerExitStatusPropagates(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.fake.Fail("python", &runnertest.ExitStatusError{Code: 3})

	outcome := h.launcher.Run(context.Background())
	if outcome.State != StateDone || outcome.ExitCode != 3 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestRunCustomHostAndPort(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.launcher.Host = "127.0.0.1"
	h.launcher.Port = 9090

	if outcome := h.launcher.Run(context.Background()); outcome.State != StateDone {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if !h.fake.Called("python -m web --host 127.0.0.1 --port 9090") {
		t.Fatalf("unexpected server invocation %v", h.fake.Lines())
	}
}

// osNotFound stands in for a missing executable.
type osNotFound struct{}

func (*osNotFound) Error() string { return "executable file not found in $PATH" }
func (*osNotFound) Unwrap() error { return os.ErrNotExist }

type confirmFunc func(ctx context.Context, question string) (bool, error)

func (f confirmFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

func TestRunInterruptAtPromptStopsBeforeProvision(t *testing.T) {
	tests := []struct {
		name   string
		answer bool
		stage  State
	}{
		{name: "prompt returns cancellation", answer: false, stage: StateToolCheck},
		{name: "prompt answered after cancellation", answer: true, stage: StateProvision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "linux", "amd64")
			h.fake.Fail("ffmpeg", &osNotFound{})
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			h.launcher.Confirm = confirmFunc(func(ctx context.Context, _ string) (bool, error) {
				cancel()
				if !tt.answer {
					return false, ctx.Err()
				}
				return true, nil
			})

			outcome := h.launcher.Run(ctx)
			if !outcome.Aborted() || !outcome.Interrupted || outcome.Stage != tt.stage {
				t.Fatalf("unexpected outcome %+v", outcome)
			}
			if !errors.Is(outcome.Err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", outcome.Err)
			}
			if h.fake.Called("python3 -m venv") || h.fake.Called("pip") {
				t.Fatalf("nothing may run after the interrupt, calls %v", h.fake.Lines())
			}
			if !strings.Contains(h.out.String(), "⚠ Interrupted") {
				t.Fatalf("expected interrupt report\n%s", h.out.String())
			}
		})
	}
}

func TestRunServerExitBeforeInterruptArrives(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.fake.On("python", func(context.Context, runnertest.Call) (runner.RunResult, error) {
		// The child sees Ctrl+C first and exits; the launcher's own signal
		// lands shortly after.
		time.AfterFunc(10*time.Millisecond, cancel)
		return runner.RunResult{}, &runnertest.ExitStatusError{Code: 130}
	})

	outcome := h.launcher.Run(ctx)
	if outcome.State != StateDone || !outcome.Interrupted || outcome.ExitCode != 0 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if strings.Contains(h.out.String(), "Server exited with status") {
		t.Fatalf("interrupt must not be reported as a server failure\n%s", h.out.String())
	}
}

func TestRunServerKilledBySignalExitsNonZero(t *testing.T) {
	h := newHarness(t, "linux", "amd64")
	h.fake.Fail("python", &runnertest.ExitStatusError{Code: -1})

	outcome := h.launcher.Run(context.Background())
	if outcome.State != StateDone || outcome.ExitCode != 1 || outcome.Interrupted {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}
