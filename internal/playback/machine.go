package playback

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// stateMachine owns the canonical State. Every mutation is an event applied
// by one serialized transition function:
//
//	Idle ──load──▶ Loading ──loaded──▶ Ready ◀─────────────┐
//	                  │                  │ play             │ settle
//	                  │ load failed      ▼                  │
//	                  ▼               Playing ──ended──▶ Ended
//	                Error   ◀─fail─   │   ▲
//	                                  │   │
//	                            pause ▼   │ play
//	                                 Paused
//
//	Playing/Paused ──scrub start──▶ Seeking ──commit/cancel──▶ prior intent
//	any ──unload──▶ Idle          any ──runtime failure──▶ Error
//
// Events carry the generation of the request that produced them. Load and
// unload take a new generation; every other event must match the current
// one or it is dropped as stale.
type stateMachine struct {
	mu     sync.Mutex
	state  State
	gen    uint64
	intent Status // Playing or Paused, restored when a scrub ends
	rewind bool   // the track ended; the next play starts from zero
	subs   []*Subscription
	closed bool

	onError func(kind ErrorKind, message string)
	rec     Recorder
	logger  zerolog.Logger
}

type eventKind int

const (
	evLoad eventKind = iota
	evLoaded
	evLoadFailed
	evPlay
	evPause
	evScrubStart
	evScrubMove
	evScrubCommit
	evScrubCancel
	evSeek
	evProgress
	evEnded
	evFailed
	evUnload
)

func (k eventKind) String() string {
	switch k {
	case evLoad:
		return "load"
	case evLoaded:
		return "loaded"
	case evLoadFailed:
		return "load failed"
	case evPlay:
		return "play"
	case evPause:
		return "pause"
	case evScrubStart:
		return "scrub start"
	case evScrubMove:
		return "scrub move"
	case evScrubCommit:
		return "scrub commit"
	case evScrubCancel:
		return "scrub cancel"
	case evSeek:
		return "seek"
	case evProgress:
		return "progress"
	case evEnded:
		return "ended"
	case evFailed:
		return "failed"
	case evUnload:
		return "unload"
	default:
		return "unknown"
	}
}

type event struct {
	kind     eventKind
	gen      uint64
	track    *Track
	session  SessionID
	position time.Duration
	duration time.Duration
	err      *Error
}

// errDropped marks an update that was deliberately ignored.
var errDropped = errors.New("update dropped")

func newStateMachine(o options) *stateMachine {
	return &stateMachine{
		state:   State{Status: StatusIdle},
		intent:  StatusPaused,
		onError: o.onError,
		rec:     o.recorder,
		logger:  o.logger.With().Str("component", "state").Logger(),
	}
}

// State returns the current snapshot.
func (m *stateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// snapshot returns the current state with the generation owning it.
func (m *stateMachine) snapshot() (State, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.gen
}

// prepare checks a transport event against the current status before the
// backend is touched. noop is set when the event would change nothing.
func (m *stateMachine) prepare(kind eventKind) (gen uint64, rewind, noop bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state.Status
	switch kind {
	case evPlay:
		switch s {
		case StatusReady, StatusPaused:
			return m.gen, m.rewind, false, nil
		case StatusPlaying:
			return m.gen, false, true, nil
		}
	case evPause:
		switch s {
		case StatusPlaying:
			return m.gen, false, false, nil
		case StatusPaused, StatusReady:
			return m.gen, false, true, nil
		}
	case evSeek:
		if s == StatusReady || s.IsActive() {
			return m.gen, false, false, nil
		}
	}
	return 0, false, false, notReady(kind.String(), s)
}

func (m *stateMachine) stale(ev event) bool {
	if ev.kind == evLoad || ev.kind == evUnload {
		return ev.gen < m.gen
	}
	return ev.gen != m.gen
}

// apply runs ev through the transition function and publishes the result.
func (m *stateMachine) apply(ev event) (State, error) {
	m.mu.Lock()
	if m.stale(ev) {
		m.mu.Unlock()
		m.rec.StaleDropped()
		m.logger.Debug().
			Stringer("event", ev.kind).
			Uint64("gen", ev.gen).
			Msg("dropped stale event")
		return State{}, ErrSuperseded
	}

	prev := m.state
	next, err := m.transition(ev)
	if err != nil {
		m.mu.Unlock()
		return prev, err
	}
	m.commitLocked(prev, next)

	if next.Status == StatusEnded {
		ended := next
		next.Status = StatusReady
		next.Position = 0
		m.rewind = true
		m.intent = StatusPaused
		m.commitLocked(ended, next)
	}

	var failure *Error
	if next.Status == StatusError && prev.Status != StatusError {
		failure = ev.err
		m.rec.Failure(failure.Kind)
		for _, sub := range m.subs {
			sub.sendError(ErrorEvent{Kind: failure.Kind, Op: failure.Op, Err: failure.Err})
		}
		m.logger.Warn().Err(failure).Msg("playback failed")
	}
	onError := m.onError
	m.mu.Unlock()

	if failure != nil && onError != nil {
		onError(failure.Kind, failure.Error())
	}
	return next, nil
}

func (m *stateMachine) commitLocked(prev, next State) {
	m.state = next
	if prev.equal(next) {
		return
	}
	if prev.Status != next.Status {
		m.rec.Transition(prev.Status, next.Status)
		m.logger.Debug().
			Stringer("from", prev.Status).
			Stringer("to", next.Status).
			Msg("transition")
	}
	for _, sub := range m.subs {
		sub.sendState(StateChange{Previous: prev, Current: next})
	}
}

func (m *stateMachine) transition(ev event) (State, error) {
	s := m.state
	switch ev.kind {
	case evLoad:
		m.gen = ev.gen
		m.intent = StatusPaused
		m.rewind = false
		return State{Status: StatusLoading, Track: ev.track}, nil

	case evUnload:
		m.gen = ev.gen
		m.intent = StatusPaused
		m.rewind = false
		return State{Status: StatusIdle}, nil

	case evLoaded:
		if s.Status != StatusLoading {
			return s, notReady(ev.kind.String(), s.Status)
		}
		s.Status = StatusReady
		s.Session = ev.session
		s.Position = 0
		s.Duration = max(ev.duration, 0)
		s.Err = nil

	case evLoadFailed:
		if s.Status != StatusLoading {
			return s, notReady(ev.kind.String(), s.Status)
		}
		s.Status = StatusError
		s.Err = ev.err

	case evPlay:
		switch s.Status {
		case StatusPlaying:
			return s, nil
		case StatusReady, StatusPaused:
		default:
			return s, notReady(ev.kind.String(), s.Status)
		}
		if m.rewind {
			s.Position = 0
			m.rewind = false
		}
		s.Status = StatusPlaying
		m.intent = StatusPlaying

	case evPause:
		switch s.Status {
		case StatusPaused, StatusReady:
			return s, nil
		case StatusPlaying:
		default:
			return s, notReady(ev.kind.String(), s.Status)
		}
		s.Status = StatusPaused
		m.intent = StatusPaused

	case evScrubStart:
		if !s.Status.IsActive() {
			return s, notReady(ev.kind.String(), s.Status)
		}
		m.intent = s.Status
		s.Status = StatusSeeking
		s.Scrubbing = true

	case evScrubMove:
		if s.Status != StatusSeeking {
			return s, notReady(ev.kind.String(), s.Status)
		}
		s.Position = clampPosition(ev.position, s.Duration)

	case evScrubCommit:
		if s.Status != StatusSeeking {
			return s, notReady(ev.kind.String(), s.Status)
		}
		s.Position = ev.position
		s.Scrubbing = false
		s.Status = m.intent

	case evScrubCancel:
		if s.Status != StatusSeeking {
			return s, notReady(ev.kind.String(), s.Status)
		}
		s.Scrubbing = false
		s.Status = m.intent

	case evSeek:
		if s.Status != StatusReady && !s.Status.IsActive() {
			return s, notReady(ev.kind.String(), s.Status)
		}
		s.Position = ev.position
		m.rewind = false

	case evProgress:
		if !s.Status.PositionTrusted() || s.Scrubbing || m.rewind {
			return s, errDropped
		}
		if s.Duration == 0 && ev.duration > 0 {
			s.Duration = ev.duration
		}
		s.Position = max(ev.position, 0)

	case evEnded:
		switch s.Status {
		case StatusPlaying:
		case StatusSeeking:
			// The drag outlived the track; resume paused after the commit.
			m.intent = StatusPaused
			return s, nil
		default:
			return s, errDropped
		}
		s.Status = StatusEnded
		if s.Duration > 0 {
			s.Position = s.Duration
		}

	case evFailed:
		if s.Status == StatusIdle || s.Status == StatusError {
			return s, errDropped
		}
		s.Status = StatusError
		s.Err = ev.err
		s.Scrubbing = false
	}
	return s, nil
}

func clampPosition(pos, duration time.Duration) time.Duration {
	pos = max(pos, 0)
	if duration > 0 {
		pos = min(pos, duration)
	}
	return pos
}

func (m *stateMachine) subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := newSubscription()
	if m.closed {
		sub.close()
		return sub
	}
	m.subs = append(m.subs, sub)
	return sub
}

func (m *stateMachine) unsubscribe(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.Index(m.subs, sub)
	if i < 0 {
		return
	}
	m.subs = slices.Delete(m.subs, i, i+1)
	sub.close()
}

func (m *stateMachine) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, sub := range m.subs {
		sub.close()
	}
	m.subs = nil
}
