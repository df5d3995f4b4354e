// Package style holds the colors, icons and table styles shared by the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
)

// Plan table styles.
var (
	Header   = lipgloss.NewStyle().Bold(true).Foreground(Iris).Padding(0, 1)
	Cell     = lipgloss.NewStyle().Padding(0, 1)
	Muted    = Cell.Foreground(Slate)
	Border   = lipgloss.NewStyle().Foreground(Slate)
	Priority = Cell.Foreground(Yellow).Align(lipgloss.Right)
)
