package player

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Mock is a test double for Backend. It implements Notifier and Muter;
// use PollOnly to hide the push channel.
type Mock struct {
	mu sync.Mutex

	uri       string
	loaded    bool
	playing   bool
	muted     bool
	position  time.Duration
	revealed  bool // duration visible through Duration()
	durations map[string]time.Duration
	hideDur   bool // Load reports unknown duration until playback starts

	loadErrs map[string]error
	failNext map[string]error

	loadGate chan struct{}
	seekGate chan struct{}

	calls        []string
	overlaps     int
	audiblePlays int

	listeners map[int]func(StatusUpdate)
	nextID    int
}

// NewMock creates a new mock backend for testing.
func NewMock() *Mock {
	return &Mock{
		durations: make(map[string]time.Duration),
		loadErrs:  make(map[string]error),
		failNext:  make(map[string]error),
		listeners: make(map[int]func(StatusUpdate)),
	}
}

// pollOnly exposes only the Backend method set.
type pollOnly struct{ Backend }

// PollOnly returns m without its Notifier and Muter capabilities.
func (m *Mock) PollOnly() Backend { return pollOnly{m} }

func (m *Mock) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *Mock) takeFailure(op string) error {
	err := m.failNext[op]
	delete(m.failNext, op)
	return err
}

func (m *Mock) Load(ctx context.Context, uri string) (LoadResult, error) {
	m.mu.Lock()
	m.record("load:" + uri)
	if m.loaded {
		m.overlaps++
	}
	gate := m.loadGate
	m.mu.Unlock()

	// A gated load ignores ctx, like backends that cannot abort a fetch.
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadErrs[uri]; err != nil {
		return LoadResult{}, err
	}
	if err := ctx.Err(); err != nil && gate == nil {
		return LoadResult{}, err
	}
	m.uri = uri
	m.loaded = true
	m.playing = false
	m.position = 0
	m.revealed = !m.hideDur
	if m.hideDur {
		return LoadResult{}, nil
	}
	return LoadResult{Duration: m.durations[uri]}, nil
}

func (m *Mock) Play(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("play")
	if err := m.takeFailure("play"); err != nil {
		return err
	}
	if !m.loaded {
		return fmt.Errorf("mock: nothing loaded")
	}
	m.playing = true
	m.revealed = true
	if !m.muted {
		m.audiblePlays++
	}
	return nil
}

func (m *Mock) Pause(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("pause")
	if err := m.takeFailure("pause"); err != nil {
		return err
	}
	m.playing = false
	return nil
}

func (m *Mock) Stop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("stop")
	m.playing = false
	m.position = 0
	return nil
}

func (m *Mock) SeekTo(ctx context.Context, position time.Duration) error {
	m.mu.Lock()
	m.record("seek:" + position.String())
	gate := m.seekGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("seek"); err != nil {
		return err
	}
	m.position = position
	return nil
}

func (m *Mock) Position() (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, nil
}

func (m *Mock) Duration() (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded || !m.revealed {
		return 0, nil
	}
	return m.durations[m.uri], nil
}

func (m *Mock) Unload(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("unload")
	m.loaded = false
	m.playing = false
	m.position = 0
	m.uri = ""
	return nil
}

func (m *Mock) SetMuted(muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
	return nil
}

func (m *Mock) OnStatusUpdate(fn func(StatusUpdate)) func() {
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

// Test helpers

func (m *Mock) SetTrackDuration(uri string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[uri] = d
}

// SetDurationHidden makes Load report an unknown duration which only
// becomes readable once playback has started.
func (m *Mock) SetDurationHidden(hidden bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hideDur = hidden
}

func (m *Mock) SetLoadError(uri string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErrs[uri] = err
}

// FailNext makes the next call to op ("play", "pause", "seek") fail.
func (m *Mock) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext[op] = err
}

// HoldLoads blocks every Load until the returned release is called.
func (m *Mock) HoldLoads() (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.loadGate = gate
	return func() {
		m.mu.Lock()
		if m.loadGate == gate {
			m.loadGate = nil
		}
		m.mu.Unlock()
		close(gate)
	}
}

// HoldSeeks blocks every SeekTo until released or its context ends.
func (m *Mock) HoldSeeks() (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.seekGate = gate
	return func() {
		m.mu.Lock()
		if m.seekGate == gate {
			m.seekGate = nil
		}
		m.mu.Unlock()
		close(gate)
	}
}

// Advance simulates d of playback time and pushes a position update.
// Reaching the track duration finishes the track.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return
	}
	m.position += d
	dur := m.durations[m.uri]
	finished := dur > 0 && m.position >= dur
	if finished {
		m.position = dur
		m.playing = false
	}
	u := StatusUpdate{Position: m.position, Playing: m.playing, Finished: finished}
	if m.revealed {
		u.Duration = dur
	}
	m.mu.Unlock()
	m.Emit(u)
}

// Emit delivers u to every registered listener.
func (m *Mock) Emit(u StatusUpdate) {
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

func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount counts recorded calls equal to call.
func (m *Mock) CallCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *Mock) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

func (m *Mock) URI() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uri
}

func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Overlaps counts loads issued while a previous resource was still live.
func (m *Mock) Overlaps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlaps
}

// AudiblePlays counts Play calls made while unmuted.
func (m *Mock) AudiblePlays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audiblePlays
}

func (m *Mock) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// SetPosition moves the simulated playhead without notifying.
func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

// Verify Mock implements the backend capabilities at compile time.
var (
	_ Backend  = (*Mock)(nil)
	_ Notifier = (*Mock)(nil)
	_ Muter    = (*Mock)(nil)
)
