package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeMPV answers every request on a unix socket after writing an unrelated event.
func fakeMPV(t *testing.T, reply func(req ipcRequest) ipcMessage) string {
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	path := filepath.Join(dir, "ipc.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()

				line, err := bufio.NewReader(conn).ReadBytes('\n')
				if err != nil {
					return
				}
				var req ipcRequest
				if err := json.Unmarshal(line, &req); err != nil {
					return
				}

				_, _ = fmt.Fprintln(conn, `{"event":"property-change","name":"time-pos","data":1.5}`)
				_, _ = fmt.Fprintf(conn, `{"request_id":%d,"data":"stale","error":"success"}`+"\n", req.RequestID+100)

				out, _ := json.Marshal(reply(req))
				_, _ = conn.Write(append(out, '\n'))
			}(conn)
		}
	}()

	return path
}

func TestRoundTrip(t *testing.T) {
	Convey("Given a fake mpv socket", t, func() {
		path := fakeMPV(t, func(req ipcRequest) ipcMessage {
			if req.Command[0] == "get_property" {
				return ipcMessage{RequestID: req.RequestID, Data: 4242.0, Error: "success"}
			}
			return ipcMessage{RequestID: req.RequestID, Error: "property not found"}
		})

		Convey("The reply with the matching request id should be returned", func() {
			data, err := roundTrip(path, ipcRequest{Command: []interface{}{"get_property", "pid"}, RequestID: 7})
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 4242.0)
		})

		Convey("An mpv error should not be retried", func() {
			m := &MPV{socketPath: path}
			_, err := m.sendCommand([]interface{}{"set_property", "nope", 1})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property not found")
			So(m.requestID, ShouldEqual, 1)
		})
	})

	Convey("A missing socket should fail after retries", t, func() {
		m := &MPV{socketPath: filepath.Join(os.TempDir(), "lectern-missing.sock")}
		_, err := m.sendCommand([]interface{}{"get_property", "pid"})
		So(err, ShouldNotBeNil)
		So(m.requestID, ShouldEqual, ipcAttempts)
	})
}

func TestEventListener(t *testing.T) {
	Convey("Given an mpv socket that reports a property change", t, func() {
		dir, err := os.MkdirTemp("", "mpv")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "events.sock")
		ln, err := net.Listen("unix", path)
		if err != nil {
			t.Skipf("unix sockets unavailable: %v", err)
		}
		defer ln.Close()

		commands := make(chan ipcRequest, len(observed))
		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()

			r := bufio.NewReader(conn)
			for range observed {
				line, err := r.ReadBytes('\n')
				if err != nil {
					return
				}
				var req ipcRequest
				if json.Unmarshal(line, &req) == nil {
					commands <- req
				}
			}
			_, _ = fmt.Fprintln(conn, `{"event":"property-change","id":1,"name":"time-pos","data":12.5}`)
			_, _ = r.ReadByte()
		}()

		changes := make(chan float64, 1)
		el := NewEventListener(path, func(name string, data interface{}) {
			if v, ok := data.(float64); ok && name == "time-pos" {
				changes <- v
			}
		})
		So(el.Start(), ShouldBeNil)
		defer el.Stop()

		Convey("It should observe every property and deliver the change", func() {
			var got []interface{}
			for range observed {
				req := <-commands
				So(req.Command[0], ShouldEqual, "observe_property")
				got = append(got, req.Command[2])
			}
			So(got[0], ShouldEqual, "time-pos")
			So(len(got), ShouldEqual, len(observed))
			So(<-changes, ShouldEqual, 12.5)
		})
	})
}
