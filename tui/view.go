package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lectern-player/lectern/analytics"
	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/history"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/playback"
	"github.com/lectern-player/lectern/style"
	"github.com/muesli/reflow/wordwrap"
)

var (
	paddingStyle = lipgloss.NewStyle().Padding(1, 2)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func (m *model) View() string {
	st := m.player.State()

	lines := []string{
		style.Title(m.title()),
		"",
		m.viewStatus(st),
		"",
		m.viewTimeline(st),
	}

	if st.Status == playback.Errored && st.Err != nil {
		lines = append(lines, "", m.viewError(st))
	}

	return m.notifier.View(m.renderLines(lines))
}

func (m *model) title() string {
	if m.options.Title != "" {
		return m.options.Title
	}
	return "Now Playing"
}

func (m *model) viewStatus(st playback.State) string {
	var status string
	switch st.Status {
	case playback.Idle:
		status = style.Faint("idle")
	case playback.Loading:
		status = m.spinnerC.View() + " loading"
	case playback.Buffering:
		status = m.spinnerC.View() + " " + icon.Get(icon.Buffering) + " buffering"
	case playback.Playing:
		status = style.Fg(color.Green)(icon.Get(icon.Play) + " playing")
	case playback.Ready, playback.Paused:
		status = icon.Get(icon.Pause) + " " + st.Status.String()
	case playback.Ended:
		status = style.Fg(color.Purple)(icon.Get(icon.Success) + " ended")
	case playback.Errored:
		if st.RetryPending {
			status = style.Fg(color.Yellow)(fmt.Sprintf("%s waiting to retry (attempt %d)", icon.Get(icon.Retry), st.Attempt+1))
		} else {
			status = style.Fg(color.Red)(icon.Get(icon.Fail) + " error")
		}
	}

	parts := []string{
		status,
		style.Fg(color.Cyan)(st.Quality),
		m.viewVolume(st),
	}
	if st.PlaybackRate != 1 {
		parts = append(parts, fmt.Sprintf("%gx", st.PlaybackRate))
	}
	if st.Fullscreen {
		parts = append(parts, style.Faint("fullscreen"))
	}

	return style.Truncate(m.width)(strings.Join(parts, style.Faint("  ·  ")))
}

func (m *model) viewVolume(st playback.State) string {
	if st.Muted {
		return style.Faint("muted")
	}
	return fmt.Sprintf("vol %d%%", int(st.Volume*100+0.5))
}

func (m *model) viewTimeline(st playback.State) string {
	played := 0.0
	if st.Duration > 0 {
		played = analytics.Completion(st.CurrentTime, st.Duration) / 100
	}

	timing := history.FormatSeconds(st.CurrentTime)
	if st.Duration > 0 {
		timing += " / " + history.FormatSeconds(st.Duration)
	}

	return m.progressC.ViewAs(played) + " " + timing + "\n" +
		style.Faint(fmt.Sprintf("buffered %d%%", int(st.BufferedFraction*100)))
}

func (m *model) viewError(st playback.State) string {
	body := errorStyle.Render(st.Err.Message)
	hint := "press r to retry, R to reload"
	if st.RetryPending {
		hint = "retrying automatically"
	} else if !st.Err.Retryable {
		hint = "press R to reload"
	}

	width := m.width - 4
	if width <= 0 {
		width = 80
	}

	return strings.Join([]string{
		style.ErrorTitle(strings.ToUpper(string(st.Err.Kind))),
		"",
		wordwrap.String(body, width),
		style.Faint(hint),
	}, "\n")
}

func (m *model) renderLines(lines []string) string {
	h := len(lines) + 2
	l := strings.Join(lines, "\n")
	if m.height > h {
		l += strings.Repeat("\n", m.height-h)
	}
	l += "\n" + m.helpC.View(m.keymap)

	return paddingStyle.Render(l)
}
