package player

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/lectern-player/lectern/fault"
	"github.com/lectern-player/lectern/log"
)

// EventCallback receives mpv notifications. For property changes name is the
// property and data its value; for other events data is the whole event object.
type EventCallback func(name string, data interface{})

// observed lists the mpv properties the backend turns into native events.
var observed = []string{
	"time-pos",
	"duration",
	"pause",
	"paused-for-cache",
	"demuxer-cache-time",
	"eof-reached",
}

// EventListener streams mpv notifications from a dedicated IPC connection.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		stopCh:     make(chan struct{}),
	}
}

// Start opens the event connection and subscribes to the observed properties on it.
// Observers are tied to the connection that registers them.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcRequest{Command: []interface{}{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.WithFields(log.Fields{
		"socket":   el.socketPath,
		"observed": strings.Join(observed, ","),
	}).Debug("mpv event listener started")
	return nil
}

// Stop terminates the listener. Safe to call more than once.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

func (el *EventListener) stopped() bool {
	select {
	case <-el.stopCh:
		return true
	default:
		return false
	}
}

// readLoop reads newline-delimited JSON until the connection closes.
func (el *EventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		if el.stopped() {
			return
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if !el.stopped() {
				log.Warnf("mpv event listener read error: %v", err)
			}
			return
		}

		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			// the last chunk is incomplete unless data ended on a newline
			if i == len(lines)-1 {
				if line != "" {
					remainder = []byte(line)
				}
				continue
			}

			if line = strings.TrimSpace(line); line != "" {
				el.processEvent(line)
			}
		}
	}
}

func (el *EventListener) processEvent(line string) {
	name, data, ok := parseEvent(line)
	if ok && el.callback != nil {
		el.callback(name, data)
	}
}

// parseEvent decodes one mpv IPC line. Command replies carry no "event" key and are skipped.
func parseEvent(line string) (name string, data interface{}, ok bool) {
	var event map[string]interface{}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return "", nil, false
	}

	eventType, ok := event["event"].(string)
	if !ok {
		return "", nil, false
	}

	if eventType == "property-change" {
		name, _ := event["name"].(string)
		return name, event["data"], name != ""
	}

	return eventType, event, true
}

// endFileError turns an end-file event with reason "error" into an error event.
func endFileError(data interface{}) (Event, bool) {
	event, ok := data.(map[string]interface{})
	if !ok {
		return Event{}, false
	}

	if reason, _ := event["reason"].(string); reason != "error" {
		return Event{}, false
	}

	message, _ := event["file_error"].(string)
	return Event{
		Kind: EventError,
		Fault: fault.Raw{
			Code:    fileErrorCode(message),
			Message: message,
		},
	}, true
}

// fileErrorCode maps mpv's file_error strings onto native media error codes.
func fileErrorCode(message string) fault.Code {
	m := strings.ToLower(message)
	switch {
	case m == "":
		return fault.CodeNone
	case strings.Contains(m, "aborted"):
		return fault.CodeAborted
	case strings.Contains(m, "loading failed"),
		strings.Contains(m, "network"),
		strings.Contains(m, "timeout"),
		strings.Contains(m, "i/o"):
		return fault.CodeNetwork
	case strings.Contains(m, "unrecognized file format"),
		strings.Contains(m, "no audio or video data"),
		strings.Contains(m, "unsupported"):
		return fault.CodeSrcUnsupported
	case strings.Contains(m, "decod"),
		strings.Contains(m, "demux"),
		strings.Contains(m, "corrupt"):
		return fault.CodeDecode
	default:
		return fault.CodeNone
	}
}
