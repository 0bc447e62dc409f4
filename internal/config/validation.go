package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"wakeboot/internal/tools"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks values the launcher cannot recover from at runtime.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("server.port %d out of range 1-65535", c.Server.Port),
		})
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		results = append(results, ValidationResult{Level: "error", Message: "server.host is empty"})
	}
	if strings.ContainsAny(c.Server.Module, " /\\") {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("server.module %q is not an importable module name", c.Server.Module),
		})
	}
	if filepath.IsAbs(c.Python.EnvDir) {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("python.env_dir %q is absolute; environments are normally kept inside the project", c.Python.EnvDir),
		})
	}
	if media := strings.ToLower(strings.TrimSpace(c.Tools.Media)); media != "" && !slices.Contains(tools.KnownTools(), media) {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("tools.media %q has no built-in definition; it will be probed with -version", c.Tools.Media),
		})
	}
	for _, marker := range c.Dependencies.Markers {
		if strings.TrimSpace(marker) == "" {
			results = append(results, ValidationResult{Level: "error", Message: "dependencies.markers contains an empty name"})
			break
		}
	}
	return results
}

// Errors returns the messages of error-level results.
func Errors(results []ValidationResult) []string {
	var msgs []string
	for _, r := range results {
		if r.Level == "error" {
			msgs = append(msgs, r.Message)
		}
	}
	return msgs
}
