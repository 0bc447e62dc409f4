package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures how a project is bootstrapped and served.
type Config struct {
	Version      int                `yaml:"version"`
	Python       PythonConfig       `yaml:"python"`
	Dependencies DependenciesConfig `yaml:"dependencies"`
	Tools        ToolsConfig        `yaml:"tools"`
	Server       ServerConfig       `yaml:"server"`
}

// PythonConfig selects the base interpreter and the virtual environment.
type PythonConfig struct {
	Interpreter string `yaml:"interpreter"`
	EnvDir      string `yaml:"env_dir"`
}

// DependenciesConfig describes the dependency manifest and how the installer
// decides whether it is already satisfied.
type DependenciesConfig struct {
	Manifest string   `yaml:"manifest"`
	Markers  []string `yaml:"markers"`
	// Fingerprint additionally compares a manifest hash with the one stored
	// after the last successful install.
	Fingerprint bool `yaml:"fingerprint"`
}

// ToolsConfig names the external media tool and how its absence is handled.
type ToolsConfig struct {
	Media     string `yaml:"media"`
	AssumeYes bool   `yaml:"assume_yes"`
}

// ServerConfig describes the application entry point.
type ServerConfig struct {
	Module string `yaml:"module"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Python: PythonConfig{
			Interpreter: defaultInterpreter(),
			EnvDir:      ".venv",
		},
		Dependencies: DependenciesConfig{
			Manifest: "requirements.txt",
			Markers:  []string{"quart", "hypercorn"},
		},
		Tools: ToolsConfig{
			Media: "ffmpeg",
		},
		Server: ServerConfig{
			Module: "web",
			Host:   "0.0.0.0",
			Port:   8000,
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the YAML
// blanks them out.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Python.Interpreter == "" {
		c.Python.Interpreter = defaults.Python.Interpreter
	}
	if c.Python.EnvDir == "" {
		c.Python.EnvDir = defaults.Python.EnvDir
	}
	if c.Dependencies.Manifest == "" {
		c.Dependencies.Manifest = defaults.Dependencies.Manifest
	}
	if len(c.Dependencies.Markers) == 0 {
		c.Dependencies.Markers = defaults.Dependencies.Markers
	}
	if c.Tools.Media == "" {
		c.Tools.Media = defaults.Tools.Media
	}
	if c.Server.Module == "" {
		c.Server.Module = defaults.Server.Module
	}
	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
