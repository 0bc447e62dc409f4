package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"wakeboot/internal/config"
)

// ProjectPaths captures canonical locations for a bootstrapped project.
type ProjectPaths struct {
	Root         string
	ConfigFile   string
	DotEnvFile   string
	ManifestFile string
	EnvDir       string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	return ProjectPaths{
		Root:         root,
		ConfigFile:   filepath.Join(root, "wakeboot.yaml"),
		DotEnvFile:   filepath.Join(root, ".env"),
		ManifestFile: filepath.Join(root, "requirements.txt"),
		EnvDir:       filepath.Join(root, ".venv"),
	}
}

// ApplyConfig resolves configured manifest and environment locations against
// the project root.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	if manifest := strings.TrimSpace(cfg.Dependencies.Manifest); manifest != "" {
		pp.ManifestFile = resolveProjectPath(pp.Root, manifest)
	}
	if envDir := strings.TrimSpace(cfg.Python.EnvDir); envDir != "" {
		pp.EnvDir = resolveProjectPath(pp.Root, envDir)
	}
	return pp
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// GlobalLogsDir returns ~/.wakeboot/logs, creating it when needed.
func GlobalLogsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}
	dir := filepath.Join(home, ".wakeboot", "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create logs dir: %w", err)
	}
	return dir, nil
}

// Exists reports whether anything exists at path.
func Exists(path string) (bool, error) {
	_, ok, err := stat(path)
	return ok, err
}

// FileExists reports whether path is a regular file.
func FileExists(path string) (bool, error) {
	info, ok, err := stat(path)
	return ok && info.Mode().IsRegular(), err
}

// DirExists reports whether path is a directory.
func DirExists(path string) (bool, error) {
	info, ok, err := stat(path)
	return ok && info.IsDir(), err
}

// stat treats a missing path as a non-error.
func stat(path string) (os.FileInfo, bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	default:
		return nil, false, err
	}
}
