package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the YAML configuration.
const (
	EnvHost        = "WAKEBOOT_HOST"
	EnvPort        = "WAKEBOOT_PORT"
	EnvInterpreter = "WAKEBOOT_PYTHON"
	EnvAssumeYes   = "WAKEBOOT_ASSUME_YES"
)

// LookupFunc resolves a variable name; os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ReadDotEnv parses a dotenv file without touching the process environment.
// A missing file yields an empty map.
func ReadDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

// ChainLookup consults the process environment first, then the dotenv
// values.
func ChainLookup(env LookupFunc, dotenv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if env != nil {
			if v, ok := env(key); ok {
				return v, true
			}
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv overlays WAKEBOOT_* variables onto the configuration.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvHost); ok && strings.TrimSpace(v) != "" {
		c.Server.Host = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPort); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvInterpreter); ok && strings.TrimSpace(v) != "" {
		c.Python.Interpreter = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAssumeYes); ok && strings.TrimSpace(v) != "" {
		yes, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvAssumeYes, v)
		}
		c.Tools.AssumeYes = yes
	}
	return nil
}
