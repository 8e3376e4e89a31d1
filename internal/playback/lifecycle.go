// internal/playback/lifecycle.go
package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/ripple/internal/player"
)

// SessionID is the opaque handle of one playback session. The zero value
// means no session.
type SessionID string

func newSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// session binds one Track to the backend resource loaded for it. Mutating
// backend calls go through do, which serializes them and aborts them once
// the session is torn down.
type session struct {
	id      SessionID
	gen     uint64
	track   Track
	backend player.Backend

	sem    chan struct{} // held by the running backend call
	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(gen uint64, track Track, backend player.Backend) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		id:      newSessionID(),
		gen:     gen,
		track:   track,
		backend: backend,
		sem:     make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// do runs fn with exclusive access to the backend. ctx is cancelled when
// either the caller's context ends or the session closes; a waiting call
// gives up as soon as that happens.
func (s *session) do(ctx context.Context, fn func(ctx context.Context, b player.Backend) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		if s.ctx.Err() != nil {
			return ErrSuperseded
		}
		return ctx.Err()
	}
	defer func() { <-s.sem }()

	if s.ctx.Err() != nil {
		return ErrSuperseded
	}
	err := fn(ctx, s.backend)
	if s.ctx.Err() != nil {
		return ErrSuperseded
	}
	return err
}

// close cancels pending operations, waits for the running one, then stops
// and releases the backend resource.
func (s *session) close(ctx context.Context) error {
	s.cancel()
	s.sem <- struct{}{}
	defer func() { <-s.sem }()
	return errors.Join(s.backend.Stop(ctx), s.backend.Unload(ctx))
}

// lifecycle owns the backend resource. Load and unload are serialized by
// sem; each takes a request token first so results of requests that were
// overtaken while waiting or loading are discarded.
type lifecycle struct {
	backend  player.Backend
	machine  *stateMachine
	progress *progressSync
	rec      Recorder
	logger   zerolog.Logger

	probe        bool
	probeTimeout time.Duration

	token atomic.Uint64

	sem     chan struct{}
	current atomic.Pointer[session]

	cancelMu   sync.Mutex
	cancelLoad context.CancelFunc
}

func newLifecycle(backend player.Backend, machine *stateMachine, progress *progressSync, o options) *lifecycle {
	return &lifecycle{
		backend:      backend,
		machine:      machine,
		progress:     progress,
		rec:          o.recorder,
		logger:       o.logger.With().Str("component", "lifecycle").Logger(),
		probe:        o.probe,
		probeTimeout: o.probeTimeout,
		sem:          make(chan struct{}, 1),
	}
}

func (l *lifecycle) lock()   { l.sem <- struct{}{} }
func (l *lifecycle) unlock() { <-l.sem }

// sessionFor returns the live session if it belongs to gen.
func (l *lifecycle) sessionFor(gen uint64) *session {
	s := l.current.Load()
	if s == nil || s.gen != gen {
		return nil
	}
	return s
}

// begin takes the next request token and cancels the load it overtakes.
// Both happen under cancelMu so an older request can never cancel a newer
// one.
func (l *lifecycle) begin(next context.CancelFunc) uint64 {
	l.cancelMu.Lock()
	defer l.cancelMu.Unlock()
	gen := l.token.Add(1)
	if l.cancelLoad != nil {
		l.cancelLoad()
	}
	l.cancelLoad = next
	return gen
}

func (l *lifecycle) load(ctx context.Context, track Track) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	gen := l.begin(cancel)

	t := track
	if _, err := l.machine.apply(event{kind: evLoad, gen: gen, track: &t}); err != nil {
		l.rec.Load("superseded")
		return err
	}

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		if l.token.Load() != gen {
			l.rec.Load("superseded")
			return ErrSuperseded
		}
		// Still the newest request: the old session must go even though
		// nothing replaces it.
		l.lock()
	}
	defer l.unlock()

	if l.token.Load() != gen {
		l.rec.Load("superseded")
		return ErrSuperseded
	}
	l.teardown(ctx)
	if ctx.Err() != nil {
		_, _ = l.machine.apply(event{kind: evUnload, gen: gen})
		return ctx.Err()
	}

	logger := l.logger.With().Str("uri", track.URI).Uint64("gen", gen).Logger()
	logger.Debug().Msg("loading")

	var (
		res player.LoadResult
		err error
	)
	if track.URI == "" {
		err = errEmptyURI
	} else {
		res, err = l.backend.Load(ctx, track.URI)
	}

	if l.token.Load() != gen {
		// A newer request overtook this one while the backend was busy.
		l.release(ctx)
		l.rec.Load("superseded")
		logger.Debug().Msg("discarded superseded load")
		return ErrSuperseded
	}
	if ctx.Err() != nil {
		// The caller gave up; nothing may stay allocated.
		l.release(ctx)
		_, _ = l.machine.apply(event{kind: evUnload, gen: gen})
		l.rec.Load("superseded")
		return ctx.Err()
	}
	if err != nil {
		failure := &Error{Kind: LoadError, Op: "load", Err: err}
		l.rec.Load("error")
		_, _ = l.machine.apply(event{kind: evLoadFailed, gen: gen, err: failure})
		return failure
	}

	s := newSession(gen, track, l.backend)
	l.current.Store(s)

	duration := res.Duration
	if duration <= 0 && l.probe {
		duration = l.progress.probeDuration(ctx, s, l.probeTimeout)
	}

	if _, err := l.machine.apply(event{kind: evLoaded, gen: gen, session: s.id, duration: duration}); err != nil {
		l.teardown(ctx)
		l.rec.Load("superseded")
		return err
	}
	l.progress.start(s)
	l.rec.Load("ok")
	logger.Info().
		Str("session", string(s.id)).
		Dur("duration", duration).
		Msg("track loaded")
	return nil
}

func (l *lifecycle) reload(ctx context.Context) error {
	st := l.machine.State()
	if st.Track == nil {
		return &Error{Kind: NotReady, Op: "reload", Err: errNoTrack}
	}
	return l.load(ctx, *st.Track)
}

func (l *lifecycle) unload(ctx context.Context) error {
	gen := l.begin(nil)

	if _, err := l.machine.apply(event{kind: evUnload, gen: gen}); err != nil {
		return err
	}

	l.lock()
	defer l.unlock()
	l.teardown(ctx)
	return nil
}

// teardown destroys the live session. Callers hold sem.
func (l *lifecycle) teardown(ctx context.Context) {
	s := l.current.Swap(nil)
	if s == nil {
		return
	}
	l.progress.stop()
	if err := s.close(context.WithoutCancel(ctx)); err != nil {
		l.logger.Warn().Err(err).Str("session", string(s.id)).Msg("session teardown failed")
		return
	}
	l.logger.Debug().Str("session", string(s.id)).Msg("session closed")
}

// release frees a resource loaded for a discarded request. Callers hold sem.
func (l *lifecycle) release(ctx context.Context) {
	if err := l.backend.Unload(context.WithoutCancel(ctx)); err != nil {
		l.logger.Warn().Err(err).Msg("release of discarded load failed")
	}
}
