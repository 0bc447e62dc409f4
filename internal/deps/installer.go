// Package deps makes sure the application's Python dependencies are present
// in a provisioned environment.
//
// The pre-check is a marker-package heuristic: if every marker name shows up
// in "pip list" the manifest is assumed satisfied. It cannot notice a
// manifest edit that keeps the marker packages. Enable Fingerprint to also
// compare a manifest hash recorded after the last successful install.
package deps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"wakeboot/internal/logx"
	"wakeboot/internal/paths"
	"wakeboot/internal/runner"
	"wakeboot/internal/venv"
)

var (
	ErrManifestMissing = errors.New("dependency manifest not found")
	ErrPipMissing      = errors.New("pip not found in environment")
	ErrInstallFailed   = errors.New("install dependencies")
)

// DefaultMarkers are the packages whose presence stands in for the whole
// manifest.
var DefaultMarkers = []string{"quart", "hypercorn"}

// InstallationState is the outcome of Ensure.
type InstallationState struct {
	Satisfied bool
	// Installed is true when a full install ran during this call.
	Installed bool
	// Reason explains why an install was needed.
	Reason string
}

type Installer struct {
	Runner      runner.Runner
	Markers     []string
	Fingerprint bool
	// Output receives pip install progress. Nil discards it.
	Output io.Writer
	// BeforeInstall, when set, is called with the reason just before a
	// full install starts.
	BeforeInstall func(reason string)
	Logger *log.Logger
	now    func() time.Time
}

// Check runs the pre-check without installing anything. A nil error with
// Satisfied false means an install is needed; Reason says why.
func (in Installer) Check(ctx context.Context, env venv.Environment, manifest string) (InstallationState, error) {
	if err := requireFiles(env, manifest); err != nil {
		return InstallationState{}, err
	}
	reason := in.precheck(ctx, env.Pip(), env, manifest, in.logger())
	return InstallationState{Satisfied: reason == "", Reason: reason}, nil
}

// Ensure installs manifest into env unless the pre-check says it is already
// satisfied.
func (in Installer) Ensure(ctx context.Context, env venv.Environment, manifest string) (InstallationState, error) {
	logger := in.logger()

	state, err := in.Check(ctx, env, manifest)
	if err != nil {
		return InstallationState{}, err
	}
	if state.Satisfied {
		logger.Printf("deps: satisfied, skipping install")
		return state, nil
	}
	reason := state.Reason
	logger.Printf("deps: install needed: %s", reason)

	if in.BeforeInstall != nil {
		in.BeforeInstall(reason)
	}

	var out io.Writer = io.Discard
	if in.Output != nil {
		out = in.Output
	}
	_, err = in.Runner.Run(ctx, env.Pip(), []string{"install", "-r", manifest}, runner.RunOptions{Stdout: out, Stderr: out})
	if err != nil {
		logger.Printf("deps: install failed: %v", err)
		return InstallationState{Reason: reason}, fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	if in.Fingerprint {
		in.saveFingerprint(env, manifest, logger)
	}
	return InstallationState{Satisfied: true, Installed: true, Reason: reason}, nil
}

func requireFiles(env venv.Environment, manifest string) error {
	ok, err := paths.FileExists(manifest)
	if err != nil {
		return fmt.Errorf("stat manifest: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrManifestMissing, manifest)
	}

	pip := env.Pip()
	ok, err = paths.FileExists(pip)
	if err != nil {
		return fmt.Errorf("stat pip: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrPipMissing, pip)
	}
	return nil
}

func (in Installer) logger() *log.Logger {
	if in.Logger == nil {
		return logx.Discard()
	}
	return in.Logger
}

// precheck returns an empty string when no install is needed, otherwise the
// reason one is.
func (in Installer) precheck(ctx context.Context, pip string, env venv.Environment, manifest string, logger *log.Logger) string {
	markers := in.Markers
	if len(markers) == 0 {
		markers = DefaultMarkers
	}

	res, err := in.Runner.Run(ctx, pip, []string{"list"}, runner.RunOptions{})
	if err != nil {
		logger.Printf("deps: pip list failed: %v", err)
		return "could not list installed packages"
	}
	installed, err := installedNames(string(res.Stdout))
	if err != nil {
		return "could not parse installed packages"
	}
	if missing := missingMarkers(installed, markers); len(missing) > 0 {
		return "missing " + strings.Join(missing, ", ")
	}

	if !in.Fingerprint {
		return ""
	}
	current, err := HashManifest(manifest)
	if err != nil {
		return "could not hash manifest"
	}
	stored := LoadFingerprint(env.Root)
	if stored.ManifestHash != current {
		return "manifest changed since last install"
	}
	return ""
}

func (in Installer) saveFingerprint(env venv.Environment, manifest string, logger *log.Logger) {
	hash, err := HashManifest(manifest)
	if err != nil {
		logger.Printf("deps: hash manifest: %v", err)
		return
	}
	now := time.Now
	if in.now != nil {
		now = in.now
	}
	fp := Fingerprint{ManifestHash: hash, InstalledAt: now().UTC()}
	if err := fp.Save(env.Root); err != nil {
		logger.Printf("deps: save fingerprint: %v", err)
	}
}
