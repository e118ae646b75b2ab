package style

import "github.com/charmbracelet/lipgloss"

// Fixed colors for boxed messages, independent of the terminal theme.
var (
	Text   = lipgloss.Color("#cdd6f4")
	Accent = lipgloss.Color("#cba6f7")
	Danger = lipgloss.Color("#f38ba8")
)
