package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#7A8594")
	colorError   = lipgloss.Color("#E53935")
)

// styles renders terminal output. Built per writer so colors are dropped
// when the writer is not a terminal.
type styles struct {
	Heading lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Heading: r.NewStyle().Bold(true).Foreground(colorPrimary),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Error:   r.NewStyle().Bold(true).Foreground(colorError),
	}
}
