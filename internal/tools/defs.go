package tools

import (
	"runtime"
	"sort"
	"strings"
)

// Definition describes how to invoke a tool for a capability probe.
type Definition struct {
	Name          string
	Executable    string
	VersionSwitch string
}

var toolDefinitions = map[string]Definition{
	"ffmpeg":  Define("ffmpeg", "-version"),
	"ffprobe": Define("ffprobe", "-version"),
	"sox":     Define("sox", "--version"),
}

// Define builds a Definition for the current platform.
func Define(name, versionSwitch string) Definition {
	return Definition{
		Name:          name,
		Executable:    executableName(name, runtime.GOOS),
		VersionSwitch: versionSwitch,
	}
}

func executableName(base, goos string) string {
	if goos == "windows" {
		return base + ".exe"
	}
	return base
}

// KnownTools returns the names of tools with a built-in definition.
func KnownTools() []string {
	names := make([]string, 0, len(toolDefinitions))
	for name := range toolDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the definition for name. Unknown names get a definition
// probed with "-version".
func Lookup(name string) Definition {
	key := strings.ToLower(strings.TrimSpace(name))
	if def, ok := toolDefinitions[key]; ok {
		return def
	}
	return Define(key, "-version")
}
