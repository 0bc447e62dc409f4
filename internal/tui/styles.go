package tui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Category classifies a status line.
type Category int

const (
	CategoryHeader Category = iota
	CategoryInfo
	CategorySuccess
	CategoryWarning
	CategoryError
)

func (c Category) String() string {
	switch c {
	case CategoryHeader:
		return "header"
	case CategoryInfo:
		return "info"
	case CategorySuccess:
		return "success"
	case CategoryWarning:
		return "warning"
	case CategoryError:
		return "error"
	default:
		return "unknown"
	}
}

// HeaderWidth is the column width of section header rules.
const HeaderWidth = 60

var symbols = map[Category]string{
	CategoryInfo:    "ℹ",
	CategorySuccess: "✓",
	CategoryWarning: "⚠",
	CategoryError:   "✗",
}

// Styles holds one lipgloss style per category. The zero value renders
// without styling.
type Styles struct {
	renderer   *lipgloss.Renderer
	byCategory map[Category]lipgloss.Style
}

// NewStyles builds the category palette for a renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{renderer: r, byCategory: map[Category]lipgloss.Style{
		CategoryHeader:  r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		CategoryInfo:    r.NewStyle().Foreground(lipgloss.Color("4")),
		CategorySuccess: r.NewStyle().Foreground(lipgloss.Color("2")),
		CategoryWarning: r.NewStyle().Foreground(lipgloss.Color("3")),
		CategoryError:   r.NewStyle().Foreground(lipgloss.Color("1")),
	}}
}

// PlainStyles renders every category without ANSI escapes.
func PlainStyles() Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return NewStyles(r)
}

// Renderer returns the renderer the palette was built for, so callers can
// derive further styles with the same colour profile.
func (s Styles) Renderer() *lipgloss.Renderer {
	if s.renderer == nil {
		return lipgloss.DefaultRenderer()
	}
	return s.renderer
}

var defaultStyles = NewStyles(lipgloss.DefaultRenderer())

// Format renders msg for category c using the default terminal palette.
func Format(c Category, msg string) string {
	return defaultStyles.Format(c, msg)
}

// Format renders msg for category c.
func (s Styles) Format(c Category, msg string) string {
	style, ok := s.byCategory[c]
	if !ok {
		style = lipgloss.NewStyle()
	}

	if c == CategoryHeader {
		rule := style.Render(strings.Repeat("=", HeaderWidth))
		title := style.Render(lipgloss.PlaceHorizontal(HeaderWidth, lipgloss.Center, msg))
		return "\n" + rule + "\n" + title + "\n" + rule + "\n"
	}

	if sym, ok := symbols[c]; ok {
		msg = sym + " " + msg
	}
	return style.Render(msg)
}
