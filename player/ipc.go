package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	ipcAttempts    = 3
	ipcBackoff     = 100 * time.Millisecond
	ipcDialTimeout = time.Second
	ipcReplyWait   = time.Second
)

// ipcRequest is one newline-delimited mpv JSON-IPC command.
type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// ipcMessage is anything mpv writes back: a reply or an asynchronous event.
type ipcMessage struct {
	Event     string      `json:"event"`
	RequestID int64       `json:"request_id"`
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`
}

// sendCommand runs command on a fresh connection, retrying connection
// failures. Commands are serialized per backend.
func (m *MPV) sendCommand(command []interface{}) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < ipcAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(ipcBackoff)
		}

		m.requestID++
		data, err := roundTrip(m.socketPath, ipcRequest{Command: command, RequestID: m.requestID})
		if err == nil {
			return data, nil
		}

		var mpvErr *ipcError
		if errors.As(err, &mpvErr) {
			// mpv answered; repeating the command will not help
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc %v: %w", command[0], lastErr)
}

// ipcError is an error reported by mpv itself, as opposed to a transport failure.
type ipcError struct {
	command interface{}
	reason  string
}

func (e *ipcError) Error() string {
	return fmt.Sprintf("mpv %v: %s", e.command, e.reason)
}

// roundTrip writes req and waits for the reply carrying its request id,
// skipping events that mpv interleaves on the same connection.
func roundTrip(socketPath string, req ipcRequest) (interface{}, error) {
	conn, err := net.DialTimeout("unix", socketPath, ipcDialTimeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(ipcReplyWait)); err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(conn)
	for {
		var msg ipcMessage
		if err := decoder.Decode(&msg); err != nil {
			return nil, fmt.Errorf("read reply: %w", err)
		}

		if msg.Event != "" || msg.RequestID != req.RequestID {
			continue
		}

		if msg.Error != "" && msg.Error != "success" {
			return nil, &ipcError{command: req.Command[0], reason: msg.Error}
		}
		return msg.Data, nil
	}
}
