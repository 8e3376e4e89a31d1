package player

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	ipcTimeout        = time.Second
)

// Observed property ids.
const (
	propTimePos = iota + 1
	propDuration
	propPause
	propEOF
)

// MPVConfig configures the mpv process.
type MPVConfig struct {
	Path       string   // mpv executable, "mpv" when empty
	SocketPath string   // IPC socket, random temp path when empty
	ExtraArgs  []string // appended to the command line
}

type loadOutcome struct {
	err error
}

// MPV drives an idle mpv process over its JSON-IPC socket. It handles any
// URI mpv can open, including remote streams, and pushes status updates.
type MPV struct {
	cfg    MPVConfig
	logger zerolog.Logger

	startMu sync.Mutex // serializes process startup

	mu        sync.Mutex
	cmd       *exec.Cmd
	exited    chan struct{}
	ipc       *ipcConn
	listeners map[int]func(StatusUpdate)
	nextID    int
	loadWait  chan loadOutcome
	position  time.Duration
	duration  time.Duration
	paused    bool
}

// NewMPV creates an mpv backend. The process starts on the first Load.
func NewMPV(cfg MPVConfig, logger zerolog.Logger) *MPV {
	if cfg.Path == "" {
		cfg.Path = "mpv"
	}
	return &MPV{
		cfg:       cfg,
		logger:    logger.With().Str("component", "mpv").Logger(),
		listeners: make(map[int]func(StatusUpdate)),
		paused:    true,
	}
}

func (m *MPV) ensureStarted() (*ipcConn, error) {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	conn := m.ipc
	m.mu.Unlock()
	if conn != nil {
		select {
		case <-conn.done:
		default:
			return conn, nil
		}
	}

	if m.cfg.SocketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return nil, fmt.Errorf("generate socket name: %w", err)
		}
		m.cfg.SocketPath = filepath.Join(os.TempDir(), fmt.Sprintf("ripple-%x.sock", randomBytes))
	}

	args := []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--really-quiet",
		"--keep-open=yes",
		"--pause",
		fmt.Sprintf("--input-ipc-server=%s", m.cfg.SocketPath),
	}
	args = append(args, m.cfg.ExtraArgs...)

	cmd := exec.Command(m.cfg.Path, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := waitForSocket(m.cfg.SocketPath, exited); err != nil {
		select {
		case <-exited:
		default:
			m.logger.Warn().Msg("killing mpv: socket never became ready")
			_ = cmd.Process.Kill()
		}
		return nil, fmt.Errorf("mpv socket not ready: %w", err)
	}

	conn, err := dialIPC(m.cfg.SocketPath, m.handleEvent)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}

	m.mu.Lock()
	m.cmd, m.exited, m.ipc = cmd, exited, conn
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), ipcTimeout)
	defer cancel()
	for id, name := range map[int]string{
		propTimePos:  "time-pos",
		propDuration: "duration",
		propPause:    "pause",
		propEOF:      "eof-reached",
	} {
		if _, err := conn.call(ctx, "observe_property", id, name); err != nil {
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	m.logger.Info().Str("socket", m.cfg.SocketPath).Msg("mpv started")
	return conn, nil
}

// waitForSocket polls until the mpv IPC socket accepts connections.
func waitForSocket(socketPath string, exited <-chan struct{}) error {
	for range socketWaitRetries {
		time.Sleep(socketWaitDelay)

		select {
		case <-exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

func (m *MPV) handleEvent(msg ipcMessage) {
	switch msg.Event {
	case "property-change":
		m.handleProperty(msg)
	case "file-loaded":
		m.resolveLoad(nil)
	case "end-file":
		if msg.Reason != "error" {
			return
		}
		err := fmt.Errorf("mpv: %s", msg.FileError)
		if m.resolveLoad(err) {
			return
		}
		m.notify(StatusUpdate{Err: err})
	}
}

func (m *MPV) handleProperty(msg ipcMessage) {
	m.mu.Lock()
	var finished bool
	switch msg.Name {
	case "time-pos":
		var secs float64
		_ = json.Unmarshal(msg.Data, &secs)
		m.position = seconds(secs)
	case "duration":
		var secs float64
		_ = json.Unmarshal(msg.Data, &secs)
		m.duration = seconds(secs)
	case "pause":
		_ = json.Unmarshal(msg.Data, &m.paused)
	case "eof-reached":
		_ = json.Unmarshal(msg.Data, &finished)
	}
	u := StatusUpdate{
		Position: m.position,
		Duration: m.duration,
		Playing:  !m.paused,
		Finished: finished,
	}
	m.mu.Unlock()
	m.notify(u)
}

// resolveLoad completes a pending Load and reports whether one was waiting.
func (m *MPV) resolveLoad(err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadWait == nil {
		return false
	}
	m.loadWait <- loadOutcome{err: err}
	m.loadWait = nil
	return true
}

func (m *MPV) notify(u StatusUpdate) {
	m.mu.Lock()
	fns := make([]func(StatusUpdate), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

func seconds(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

// Load replaces the current file with uri, paused at zero.
func (m *MPV) Load(ctx context.Context, uri string) (LoadResult, error) {
	conn, err := m.ensureStarted()
	if err != nil {
		return LoadResult{}, err
	}

	if _, err := conn.call(ctx, "set_property", "pause", true); err != nil {
		return LoadResult{}, fmt.Errorf("pause: %w", err)
	}

	wait := make(chan loadOutcome, 1)
	m.mu.Lock()
	m.loadWait = wait
	m.position, m.duration = 0, 0
	m.mu.Unlock()

	if _, err := conn.call(ctx, "loadfile", uri, "replace"); err != nil {
		m.clearLoadWait(wait)
		return LoadResult{}, fmt.Errorf("loadfile: %w", err)
	}

	select {
	case out := <-wait:
		if out.err != nil {
			return LoadResult{}, out.err
		}
	case <-ctx.Done():
		m.clearLoadWait(wait)
		_, _ = conn.call(context.WithoutCancel(ctx), "stop")
		return LoadResult{}, ctx.Err()
	}

	// Streams without a container length report no duration yet.
	dur, _ := m.Duration()
	return LoadResult{Duration: dur}, nil
}

func (m *MPV) clearLoadWait(wait chan loadOutcome) {
	m.mu.Lock()
	if m.loadWait == wait {
		m.loadWait = nil
	}
	m.mu.Unlock()
}

func (m *MPV) conn() (*ipcConn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ipc == nil {
		return nil, errors.New("mpv not running")
	}
	return m.ipc, nil
}

func (m *MPV) command(ctx context.Context, command ...any) error {
	conn, err := m.conn()
	if err != nil {
		return err
	}
	_, err = conn.call(ctx, command...)
	return err
}

// Play unpauses playback.
func (m *MPV) Play(ctx context.Context) error {
	return m.command(ctx, "set_property", "pause", false)
}

// Pause pauses playback.
func (m *MPV) Pause(ctx context.Context) error {
	return m.command(ctx, "set_property", "pause", true)
}

// Stop pauses and rewinds, keeping the file loaded.
func (m *MPV) Stop(ctx context.Context) error {
	if err := m.Pause(ctx); err != nil {
		return err
	}
	return m.SeekTo(ctx, 0)
}

// SeekTo jumps to an absolute position.
func (m *MPV) SeekTo(ctx context.Context, position time.Duration) error {
	return m.command(ctx, "seek", position.Seconds(), "absolute")
}

func (m *MPV) floatProperty(name string) (time.Duration, error) {
	conn, err := m.conn()
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), ipcTimeout)
	defer cancel()
	data, err := conn.call(ctx, "get_property", name)
	if err != nil {
		return 0, err
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return 0, fmt.Errorf("decode %s: %w", name, err)
	}
	return seconds(secs), nil
}

// Position returns the current playback position.
func (m *MPV) Position() (time.Duration, error) {
	return m.floatProperty("time-pos")
}

// Duration returns the media length, zero while unknown.
func (m *MPV) Duration() (time.Duration, error) {
	d, err := m.floatProperty("duration")
	if err != nil {
		// "property unavailable" just means mpv does not know yet
		return 0, nil
	}
	return d, nil
}

// Unload stops playback and drops the file, leaving mpv idle.
func (m *MPV) Unload(ctx context.Context) error {
	m.mu.Lock()
	m.position, m.duration = 0, 0
	m.mu.Unlock()
	return m.command(ctx, "stop")
}

// SetMuted toggles mpv's mute property.
func (m *MPV) SetMuted(muted bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), ipcTimeout)
	defer cancel()
	return m.command(ctx, "set_property", "mute", muted)
}

// OnStatusUpdate registers fn for pushed property changes.
func (m *MPV) OnStatusUpdate(fn func(StatusUpdate)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Close terminates the mpv process and removes its socket.
func (m *MPV) Close() error {
	m.mu.Lock()
	conn, cmd, exited := m.ipc, m.cmd, m.exited
	m.ipc, m.cmd = nil, nil
	m.mu.Unlock()

	if conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ipcTimeout)
		_, _ = conn.call(ctx, "quit")
		cancel()
		_ = conn.close()
	}
	if cmd != nil {
		select {
		case <-exited:
		case <-time.After(2 * time.Second):
			m.logger.Warn().Msg("mpv did not quit, killing")
			_ = cmd.Process.Kill()
		}
	}
	if m.cfg.SocketPath != "" {
		_ = os.Remove(m.cfg.SocketPath)
	}
	return nil
}

// Verify MPV implements the backend capabilities at compile time.
var (
	_ Backend  = (*MPV)(nil)
	_ Notifier = (*MPV)(nil)
	_ Muter    = (*MPV)(nil)
)
