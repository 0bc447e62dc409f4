//go:build !windows

package config

func defaultInterpreter() string {
	return "python3"
}
