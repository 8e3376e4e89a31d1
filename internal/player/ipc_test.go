package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMPV answers JSON-IPC commands on a unix socket the way mpv does.
type fakeMPV struct {
	t      *testing.T
	socket string
	ln     net.Listener

	mu        sync.Mutex
	conn      net.Conn
	commands  [][]any
	props     map[string]any
	fileError string
	hang      map[string]bool
	accepted  chan struct{}
}

func startFakeMPV(t *testing.T) *fakeMPV {
	t.Helper()
	// Unix socket paths are length limited; keep them short.
	dir, err := os.MkdirTemp("", "mpv")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "s")
	ln, err := net.Listen("unix", socket)
	require.NoError(t, err)

	f := &fakeMPV{
		t:        t,
		socket:   socket,
		ln:       ln,
		props:    map[string]any{},
		hang:     map[string]bool{},
		accepted: make(chan struct{}),
	}
	go f.serve()
	t.Cleanup(f.close)
	return f
}

func (f *fakeMPV) serve() {
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	close(f.accepted)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil || len(cmd.Command) == 0 {
			continue
		}
		name, _ := cmd.Command[0].(string)

		f.mu.Lock()
		f.commands = append(f.commands, cmd.Command)
		hang := f.hang[name]
		fileError := f.fileError
		var data any
		errText := "success"
		if name == "get_property" {
			prop, _ := cmd.Command[1].(string)
			v, ok := f.props[prop]
			if ok {
				data = v
			} else {
				errText = "property unavailable"
			}
		}
		f.mu.Unlock()

		if hang {
			continue
		}
		f.send(map[string]any{"request_id": cmd.RequestID, "error": errText, "data": data})

		if name == "loadfile" {
			if fileError != "" {
				f.send(map[string]any{"event": "end-file", "reason": "error", "file_error": fileError})
			} else {
				f.send(map[string]any{"event": "file-loaded"})
			}
		}
	}
}

func (f *fakeMPV) send(msg map[string]any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		f.t.Errorf("marshal: %v", err)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		_, _ = f.conn.Write(append(payload, '\n'))
	}
}

func (f *fakeMPV) close() {
	f.ln.Close()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		f.conn.Close()
	}
}

func (f *fakeMPV) setProp(name string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props[name] = v
}

func (f *fakeMPV) hangOn(command string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hang[command] = true
}

func (f *fakeMPV) failLoads(fileError string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileError = fileError
}

func (f *fakeMPV) received() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.commands...)
}

func TestIPC_CallReturnsData(t *testing.T) {
	f := startFakeMPV(t)
	f.setProp("time-pos", 42.5)

	conn, err := dialIPC(f.socket, nil)
	require.NoError(t, err)
	defer conn.close()

	data, err := conn.call(context.Background(), "get_property", "time-pos")
	require.NoError(t, err)
	var secs float64
	require.NoError(t, json.Unmarshal(data, &secs))
	assert.InDelta(t, 42.5, secs, 0.001)
}

func TestIPC_ErrorReply(t *testing.T) {
	f := startFakeMPV(t)
	conn, err := dialIPC(f.socket, nil)
	require.NoError(t, err)
	defer conn.close()

	_, err = conn.call(context.Background(), "get_property", "duration")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "property unavailable")
}

func TestIPC_EventsDispatched(t *testing.T) {
	f := startFakeMPV(t)
	events := make(chan ipcMessage, 1)
	conn, err := dialIPC(f.socket, func(msg ipcMessage) { events <- msg })
	require.NoError(t, err)
	defer conn.close()
	<-f.accepted

	f.send(map[string]any{"event": "property-change", "name": "pause", "data": false})

	select {
	case msg := <-events:
		assert.Equal(t, "property-change", msg.Event)
		assert.Equal(t, "pause", msg.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("event not dispatched")
	}
}

func TestIPC_ContextCancelled(t *testing.T) {
	f := startFakeMPV(t)
	f.hangOn("seek")
	conn, err := dialIPC(f.socket, nil)
	require.NoError(t, err)
	defer conn.close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = conn.call(ctx, "seek", 10.0, "absolute")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIPC_ServerGone(t *testing.T) {
	f := startFakeMPV(t)
	f.hangOn("get_property")
	conn, err := dialIPC(f.socket, nil)
	require.NoError(t, err)
	defer conn.close()
	<-f.accepted

	done := make(chan error, 1)
	go func() {
		_, err := conn.call(context.Background(), "get_property", "time-pos")
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	f.close()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pending call not released")
	}

	_, err = conn.call(context.Background(), "get_property", "time-pos")
	assert.Error(t, err)
}
