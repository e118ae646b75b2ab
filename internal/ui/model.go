// Package ui holds small terminal widgets shared by the player views.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lectern-player/lectern/style"
)

// NotificationLifetime is how long a notice stays on screen.
const NotificationLifetime = 3 * time.Second

// NotificationMsg shows Text next to the last line of the view.
type NotificationMsg struct {
	Text string
}

// clearMsg resets the notice. id guards against clearing a newer one.
type clearMsg struct {
	id int
}

// Notify returns a command that raises a notice.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg{Text: text}
	}
}

// Notifier displays short-lived, non-blocking notices such as "retrying" or "quality: 720p".
type Notifier struct {
	text string
	id   int
}

// Text returns the visible notice, if any.
func (n *Notifier) Text() string {
	return n.text
}

// Update processes notification messages and returns the command that expires them.
func (n *Notifier) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		n.id++
		n.text = msg.Text
		id := n.id
		return tea.Tick(NotificationLifetime, func(time.Time) tea.Msg {
			return clearMsg{id: id}
		})
	case clearMsg:
		if msg.id == n.id {
			n.text = ""
		}
	}
	return nil
}

// View appends the notice to the last line of content.
func (n *Notifier) View(content string) string {
	if n.text == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(n.text)
	return strings.Join(lines, "\n")
}
