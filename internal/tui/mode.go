package tui

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// OutputMode describes how status output should be rendered.
type OutputMode int

const (
	// ModeTUI renders coloured output and interactive prompts.
	ModeTUI OutputMode = iota
	// ModePlain writes unstyled lines.
	ModePlain
	// ModeJSON writes structured JSON output.
	ModeJSON
)

// DetectMode determines the appropriate output mode for the given writer.
func DetectMode(out io.Writer, noColor, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	if noColor || os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	file, ok := out.(*os.File)
	if !ok {
		return ModePlain
	}
	info, err := file.Stat()
	if err != nil {
		return ModePlain
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return ModePlain
	}
	if runtime.GOOS != "windows" {
		termName := os.Getenv("TERM")
		if termName == "" || strings.EqualFold(termName, "dumb") {
			return ModePlain
		}
	}
	return ModeTUI
}

// StylesFor returns the palette matching mode for out.
func StylesFor(mode OutputMode, out io.Writer) Styles {
	if mode != ModeTUI {
		return PlainStyles()
	}
	return NewStyles(lipgloss.NewRenderer(out))
}

// IsInteractive reports whether r is a terminal a user can type into.
func IsInteractive(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
