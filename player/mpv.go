package player

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lectern-player/lectern/log"
	"github.com/lectern-player/lectern/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV implements Element on top of an mpv process controlled over JSON-IPC.
type MPV struct {
	Emitter

	title      string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the mpv process exits
	events     *EventListener
	mu         sync.Mutex // serializes commands
	requestID  int64

	// touched only by the event read loop
	duration float64
	paused   bool
}

// NewMPV creates an idle backend; the process starts on the first Load.
func NewMPV(title string) *MPV {
	return &MPV{
		title:  sanitizeTitle(title),
		exited: make(chan struct{}),
		paused: true,
	}
}

// Load binds mpv to rawURL, starting the process if needed.
func (m *MPV) Load(rawURL string) error {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if !m.IsRunning() {
		if err := m.start(); err != nil {
			return err
		}
	}

	_, err = m.sendCommand([]interface{}{"loadfile", safeURL, "replace"})
	return err
}

func (m *MPV) start() error {
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", randomBytes))
	}

	// Only the socket, window and title are forced; the user's mpv.conf decides the rest.
	// The engine owns play/pause, so mpv starts paused and keeps the file open at EOF.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--force-media-title=%s", m.title),
		fmt.Sprintf("--title=%s", m.title),
		"--force-window=yes",
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
	}

	m.cmd = exec.Command("mpv", args...)
	m.cmd.SysProcAttr = ownGroup()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = terminate(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.events = NewEventListener(m.socketPath, m.dispatch)
	if err := m.events.Start(); err != nil {
		return fmt.Errorf("mpv events: %w", err)
	}

	return nil
}

// Wait returns a channel closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) Play() error  { return m.set("pause", false) }
func (m *MPV) Pause() error { return m.set("pause", true) }

func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute"})
	return err
}

// SetVolume maps [0, 1] onto mpv's 0-100 volume scale.
func (m *MPV) SetVolume(volume float64) error { return m.set("volume", volume*100) }
func (m *MPV) SetMuted(muted bool) error      { return m.set("mute", muted) }
func (m *MPV) SetRate(rate float64) error     { return m.set("speed", rate) }
func (m *MPV) SetFullscreen(on bool) error    { return m.set("fullscreen", on) }

// SupportsAdaptive is always true: mpv demuxes HLS through ffmpeg.
func (m *MPV) SupportsAdaptive() bool { return true }

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" || m.cmd == nil {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.sendCommand([]interface{}{"get_property", "pid"})
	return err == nil
}

// Close shuts down the mpv process and removes its socket.
func (m *MPV) Close() error {
	if m.events != nil {
		m.events.Stop()
	}

	if m.socketPath == "" || m.cmd == nil {
		return nil
	}

	_, _ = m.sendCommand([]interface{}{"quit"})

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = terminate(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) set(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// dispatch converts raw mpv notifications into native events.
func (m *MPV) dispatch(name string, data interface{}) {
	for _, ev := range m.translate(name, data) {
		m.Emit(ev)
	}
}

func (m *MPV) translate(name string, data interface{}) []Event {
	switch name {
	case "file-loaded":
		return []Event{{Kind: EventCanPlay}}
	case "playback-restart":
		return []Event{{Kind: EventSeeked}}
	case "time-pos":
		if t, ok := data.(float64); ok {
			return []Event{{Kind: EventTimeUpdate, Time: t}}
		}
	case "duration":
		if d, ok := data.(float64); ok {
			m.duration = d
			return []Event{{Kind: EventDurationChange, Duration: d}}
		}
	case "pause":
		if p, ok := data.(bool); ok {
			m.paused = p
			if p {
				return []Event{{Kind: EventPause}}
			}
			return []Event{{Kind: EventPlaying}}
		}
	case "paused-for-cache":
		if stalled, ok := data.(bool); ok {
			if stalled {
				return []Event{{Kind: EventWaiting}}
			}
			if !m.paused {
				return []Event{{Kind: EventPlaying}}
			}
		}
	case "demuxer-cache-time":
		if t, ok := data.(float64); ok && m.duration > 0 {
			return []Event{{Kind: EventProgress, Buffered: clamp01(t / m.duration)}}
		}
	case "eof-reached":
		if eof, ok := data.(bool); ok && eof {
			return []Event{{Kind: EventEnded}}
		}
	case "end-file":
		if ev, ok := endFileError(data); ok {
			return []Event{ev}
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// URLs must not look like flags.
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
