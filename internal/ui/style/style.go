// Package style holds the brand colors, icons and text styles shared by the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand colors.
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
	Dot     = "●"
	Circle  = "○"
)

// Text styles for tabular output.
var (
	Heading      = lipgloss.NewStyle().Bold(true).Foreground(Iris)
	Muted        = lipgloss.NewStyle().Foreground(Slate)
	Compatible   = lipgloss.NewStyle().Foreground(Green)
	Incompatible = lipgloss.NewStyle().Foreground(Red)
)
