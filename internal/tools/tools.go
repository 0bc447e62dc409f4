// Package tools probes for external executables the application needs at
// runtime but that are not installed into the virtual environment.
package tools

import (
	"context"
	"strings"
	"time"

	"wakeboot/internal/runner"
)

const probeTimeout = 10 * time.Second

// Probe invokes the tool's version switch and classifies the result. It never
// returns an error; failures are folded into the Status.
func Probe(ctx context.Context, run runner.Runner, def Definition, goos string) Status {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := Status{Tool: def.Name}

	res, err := run.Run(ctx, def.Executable, []string{def.VersionSwitch}, runner.RunOptions{})
	switch {
	case err == nil:
		status.State = StatePresent
		status.Version = firstLine(strings.TrimSpace(string(res.Stdout)))
		return status
	case runner.IsNotFound(err):
		status.State = StateAbsent
		status.Error = "not found"
	default:
		status.State = StateProbeError
		status.Error = err.Error()
	}

	status.Hint = Hint(def.Name, goos)
	return status
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}
