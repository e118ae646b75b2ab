// Package color holds the terminal colors used across the CLI and the player view.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps an ANSI code or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI colors follow the terminal theme.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")

	HiBlue   = New("12")
	HiPurple = New("13")
	HiCyan   = New("14")
)

var Orange = New("#ffb703")
