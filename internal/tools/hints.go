package tools

import (
	"fmt"
	"strings"
)

// Hint returns the installation advice for tool on goos.
func Hint(tool, goos string) string {
	switch strings.ToLower(goos) {
	case "darwin":
		return fmt.Sprintf("Install %s via Homebrew: brew install %s", tool, tool)
	case "linux":
		return fmt.Sprintf("Install %s with your distro package manager, e.g. sudo apt-get install %s", tool, tool)
	case "windows":
		if tool == "ffmpeg" {
			return "Install ffmpeg via winget: winget install Gyan.FFmpeg"
		}
		return fmt.Sprintf("Install %s via winget or Chocolatey", tool)
	default:
		return fmt.Sprintf("Install %s using your platform's package manager", tool)
	}
}
