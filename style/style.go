// Package style has small render helpers on top of lipgloss.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lectern-player/lectern/color"
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer that paints its input with c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

// Truncate returns a renderer that wraps its input at width columns.
// A non-positive width leaves the input unchanged.
func Truncate(width int) func(string) string {
	return func(s string) string {
		if width <= 0 {
			return s
		}
		return New().Width(width).Render(s)
	}
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders a padded banner.
var Title = func(s string) string {
	return New().Foreground(color.New("230")).Background(color.New("62")).Padding(0, 1).Render(s)
}

// ErrorTitle renders a padded banner in the error color.
var ErrorTitle = func(s string) string {
	return New().Foreground(color.New("230")).Background(color.Red).Padding(0, 1).Render(s)
}
