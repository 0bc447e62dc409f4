package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wakeboot/internal/config"
	"wakeboot/internal/paths"
)

// settings is the effective configuration for one invocation.
type settings struct {
	paths    paths.ProjectPaths
	cfg      config.Config
	warnings []string
}

// loadSettings layers the configuration: defaults, wakeboot.yaml, the process
// environment, the project's .env file and finally explicit flags.
func loadSettings(cmd *cobra.Command) (settings, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return settings{}, err
	}

	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return settings{}, fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return settings{}, fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return settings{}, err
	}

	dotenv, err := config.ReadDotEnv(pp.DotEnvFile)
	if err != nil {
		return settings{}, err
	}
	if err := cfg.ApplyEnv(config.ChainLookup(lookupEnv, dotenv)); err != nil {
		return settings{}, err
	}

	applyFlagOverrides(cmd, &cfg)

	results := cfg.Validate()
	if errs := config.Errors(results); len(errs) > 0 {
		return settings{}, errors.New("config validation failed: " + strings.Join(errs, "; "))
	}

	st := settings{paths: paths.ApplyConfig(pp, cfg), cfg: cfg}
	for _, r := range results {
		if r.Level == "warning" {
			st.warnings = append(st.warnings, r.Message)
		}
	}
	return st, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = strings.TrimSpace(serverHost)
	}
	if flags.Changed("port") {
		cfg.Server.Port = serverPort
	}
	if v := strings.TrimSpace(interpreter); flags.Changed("python") && v != "" {
		cfg.Python.Interpreter = v
	}
	if flags.Changed("fingerprint") {
		cfg.Dependencies.Fingerprint = fingerprint
	}
	if flags.Changed("yes") {
		cfg.Tools.AssumeYes = assumeYes
	}
}
