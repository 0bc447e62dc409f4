// Package hostenv inspects the host the application is about to run on:
// the Python interpreter that will build the virtual environment and the
// operating system / CPU architecture pair.
package hostenv

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"wakeboot/internal/runner"
)

// ErrInterpreterTooOld is returned when the interpreter predates
// MinimumInterpreter.
var ErrInterpreterTooOld = errors.New("interpreter too old")

// HostProfile is computed once at startup and not modified afterwards.
type HostProfile struct {
	Interpreter     Version
	InterpreterPath string
	OS              string
	Arch            string
	Kind            OSKind
}

// Machine returns the architecture the way uname reports it.
func (p HostProfile) Machine() string {
	return Machine(p.Arch)
}

// Inspector gathers a HostProfile. Empty GOOS/GOARCH fall back to the
// running binary's runtime values.
type Inspector struct {
	Runner      runner.Runner
	Interpreter string
	GOOS        string
	GOARCH      string
}

// Inspect builds the host profile. The platform fields are always filled;
// a non-nil error means the interpreter version could not be determined.
func (i Inspector) Inspect(ctx context.Context) (HostProfile, error) {
	profile := HostProfile{
		InterpreterPath: i.Interpreter,
		OS:              i.GOOS,
		Arch:            i.GOARCH,
	}
	if profile.OS == "" {
		profile.OS = runtime.GOOS
	}
	if profile.Arch == "" {
		profile.Arch = runtime.GOARCH
	}
	profile.Kind = Classify(profile.OS, profile.Arch).Kind

	version, err := InterpreterVersion(ctx, i.Runner, i.Interpreter)
	if err != nil {
		return profile, err
	}
	profile.Interpreter = version
	return profile, nil
}

// InterpreterVersion runs "<interpreter> --version" and parses the result.
// Python 2 printed its version on stderr, so both streams are consulted.
func InterpreterVersion(ctx context.Context, run runner.Runner, interpreter string) (Version, error) {
	res, err := run.Run(ctx, interpreter, []string{"--version"}, runner.RunOptions{})
	if err != nil {
		return Version{}, fmt.Errorf("%s --version: %w", interpreter, err)
	}
	text := strings.TrimSpace(string(res.Stdout))
	if text == "" {
		text = strings.TrimSpace(string(res.Stderr))
	}
	return ParseVersion(text)
}

// CheckInterpreter enforces MinimumInterpreter.
func CheckInterpreter(v Version) error {
	if v.Less(MinimumInterpreter) {
		return fmt.Errorf("%w: requires Python %d.%d+, found %s",
			ErrInterpreterTooOld, MinimumInterpreter.Major, MinimumInterpreter.Minor, v)
	}
	return nil
}

// Machine maps a GOARCH value to the uname machine string.
func Machine(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "i386"
	default:
		return goarch
	}
}
