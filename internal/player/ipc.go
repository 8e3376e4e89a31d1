package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

const maxIPCLine = 1 << 20

// errIPCClosed is returned to callers waiting on a closed connection.
var errIPCClosed = errors.New("ipc connection closed")

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is either a command reply (RequestID set) or an event.
type ipcMessage struct {
	RequestID *int64          `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
}

// ipcConn multiplexes request/reply commands and events over one
// persistent mpv connection. Replies are matched by request_id.
type ipcConn struct {
	conn    net.Conn
	onEvent func(ipcMessage)

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan ipcMessage
	done    chan struct{}
	err     error
}

func dialIPC(socketPath string, onEvent func(ipcMessage)) (*ipcConn, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	c := &ipcConn{
		conn:    conn,
		onEvent: onEvent,
		pending: make(map[int64]chan ipcMessage),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// call sends a command and waits for its reply.
func (c *ipcConn) call(ctx context.Context, command ...any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return nil, c.err
	}
	c.nextID++
	id := c.nextID
	reply := make(chan ipcMessage, 1)
	c.pending[id] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	c.writeMu.Lock()
	_, err = c.conn.Write(append(payload, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	select {
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv error: %s", msg.Error)
		}
		return msg.Data, nil
	case <-c.done:
		return nil, c.closeErr()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *ipcConn) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 4096), maxIPCLine)

	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue // Skip unparseable lines
		}
		if msg.Event != "" {
			if c.onEvent != nil {
				c.onEvent(msg)
			}
			continue
		}
		if msg.RequestID == nil {
			continue
		}
		c.mu.Lock()
		reply, ok := c.pending[*msg.RequestID]
		c.mu.Unlock()
		if ok {
			reply <- msg
		}
	}

	err := scanner.Err()
	if err == nil {
		err = errIPCClosed
	}
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	close(c.done)
}

func (c *ipcConn) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *ipcConn) close() error {
	return c.conn.Close()
}
