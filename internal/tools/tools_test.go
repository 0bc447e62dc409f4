package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wakeboot/internal/runner/runnertest"
)

func TestProbePresent(t *testing.T) {
	fake := runnertest.New().Stdout("ffmpeg", "ffmpeg version 6.1.1 Copyright (c) 2000-2023\nbuilt with gcc\n")

	status := Probe(context.Background(), fake, Define("ffmpeg", "-version"), "linux")
	if !status.Present() {
		t.Fatalf("expected present, got %+v", status)
	}
	if status.Version != "ffmpeg version 6.1.1 Copyright (c) 2000-2023" {
		t.Fatalf("unexpected version line %q", status.Version)
	}
	if status.Hint != "" {
		t.Fatalf("expected no hint for present tool, got %q", status.Hint)
	}
	if got := fake.Lines(); len(got) != 1 || got[0] != "ffmpeg -version" {
		t.Fatalf("unexpected calls %v", got)
	}
}

func TestProbeAbsent(t *testing.T) {
	status := Probe(context.Background(), runnertest.New(), Define("ffmpeg", "-version"), "darwin")
	if status.Present() {
		t.Fatal("expected tool to be absent")
	}
	if status.State != StateAbsent {
		t.Fatalf("got state %s, want %s", status.State, StateAbsent)
	}
	if status.Hint != "Install ffmpeg via Homebrew: brew install ffmpeg" {
		t.Fatalf("unexpected hint %q", status.Hint)
	}
}

func TestProbeNonZeroExit(t *testing.T) {
	fake := runnertest.New().Fail("ffmpeg", &runnertest.ExitStatusError{Code: 1})
	status := Probe(context.Background(), fake, Define("ffmpeg", "-version"), "linux")
	if status.State != StateProbeError {
		t.Fatalf("got state %s, want %s", status.State, StateProbeError)
	}
	if !strings.Contains(status.Hint, "apt-get install ffmpeg") {
		t.Fatalf("unexpected hint %q", status.Hint)
	}
}

func TestProbeOtherFailure(t *testing.T) {
	fake := runnertest.New().Fail("ffmpeg", errors.New("permission denied"))
	status := Probe(context.Background(), fake, Define("ffmpeg", "-version"), "linux")
	if status.State != StateProbeError {
		t.Fatalf("got state %s, want %s", status.State, StateProbeError)
	}
	if status.Error != "permission denied" {
		t.Fatalf("unexpected error %q", status.Error)
	}
}

func TestHints(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "brew install ffmpeg"},
		{"linux", "sudo apt-get install ffmpeg"},
		{"windows", "winget install Gyan.FFmpeg"},
		{"freebsd", "platform's package manager"},
	}
	for _, tt := range tests {
		if got := Hint("ffmpeg", tt.goos); !strings.Contains(got, tt.want) {
			t.Errorf("Hint(ffmpeg, %s) = %q, want substring %q", tt.goos, got, tt.want)
		}
	}
}

func TestExecutableName(t *testing.T) {
	if executableName("ffmpeg", "windows") != "ffmpeg.exe" {
		t.Fatal("expected .exe suffix on windows")
	}
	if executableName("ffmpeg", "linux") != "ffmpeg" {
		t.Fatal("expected bare name on linux")
	}
}

func TestLookup(t *testing.T) {
	if def := Lookup("FFmpeg"); def.Name != "ffmpeg" || def.VersionSwitch != "-version" {
		t.Fatalf("unexpected ffmpeg definition %+v", def)
	}
	if def := Lookup("sox"); def.VersionSwitch != "--version" {
		t.Fatalf("unexpected sox definition %+v", def)
	}
	if def := Lookup("lame"); def.Name != "lame" || def.VersionSwitch != "-version" {
		t.Fatalf("unexpected fallback definition %+v", def)
	}
	if got := KnownTools(); len(got) != 3 || got[0] != "ffmpeg" {
		t.Fatalf("unexpected known tools %v", got)
	}
}
