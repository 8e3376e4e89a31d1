// internal/playback/seek.go
package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/ripple/internal/player"
)

// seekCoordinator reconciles a dragged slider with live playback.
// Commits follow last-seek-wins: each takes a token, and a commit whose
// token is no longer current neither reaches the backend nor changes state.
type seekCoordinator struct {
	machine  *stateMachine
	progress *progressSync
	sessions func(gen uint64) *session
	rec      Recorder
	logger   zerolog.Logger

	token atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newSeekCoordinator(machine *stateMachine, progress *progressSync, sessions func(uint64) *session, o options) *seekCoordinator {
	return &seekCoordinator{
		machine:  machine,
		progress: progress,
		sessions: sessions,
		rec:      o.recorder,
		logger:   o.logger.With().Str("component", "seek").Logger(),
	}
}

// supersede invalidates every pending commit and returns a fresh token.
func (c *seekCoordinator) supersede(next context.CancelFunc) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = next
	return c.token.Add(1)
}

func (c *seekCoordinator) current(op string) (State, uint64, *session, error) {
	st, gen := c.machine.snapshot()
	s := c.sessions(gen)
	if s == nil {
		return st, gen, nil, notReady(op, st.Status)
	}
	return st, gen, s, nil
}

func (c *seekCoordinator) scrubStart() error {
	st, gen, s, err := c.current("scrub start")
	if err != nil {
		return err
	}
	if st.Status == StatusSeeking {
		return nil
	}
	if _, err := c.machine.apply(event{kind: evScrubStart, gen: gen}); err != nil {
		return err
	}
	c.progress.suspend(s)
	return nil
}

// scrubMove updates the displayed position only.
func (c *seekCoordinator) scrubMove(pos time.Duration) error {
	_, gen := c.machine.snapshot()
	_, err := c.machine.apply(event{kind: evScrubMove, gen: gen, position: pos})
	return err
}

func (c *seekCoordinator) scrubCommit(ctx context.Context, pos time.Duration) error {
	st, gen, s, err := c.current("scrub commit")
	if err != nil {
		return err
	}
	if st.Status != StatusSeeking {
		return notReady("scrub commit", st.Status)
	}
	if !inRange(pos, st.Duration) {
		c.rec.Seek("rejected")
		return &Error{Kind: SeekError, Op: "scrub commit", Err: errOutOfRange}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	tok := c.supersede(cancel)

	err = s.do(ctx, func(ctx context.Context, b player.Backend) error {
		if c.token.Load() != tok {
			return ErrSuperseded
		}
		return b.SeekTo(ctx, pos)
	})
	if c.token.Load() != tok || errors.Is(err, ErrSuperseded) {
		c.rec.Seek("superseded")
		c.logger.Debug().Dur("position", pos).Msg("commit superseded")
		return ErrSuperseded
	}
	if err != nil {
		c.rec.Seek("error")
		if _, cerr := c.machine.apply(event{kind: evScrubCancel, gen: gen}); cerr == nil {
			c.progress.resume(s)
		}
		return &Error{Kind: SeekError, Op: "scrub commit", Err: err}
	}

	if _, err := c.machine.apply(event{kind: evScrubCommit, gen: gen, position: pos}); err != nil {
		return err
	}
	c.progress.resume(s)
	c.rec.Seek("ok")
	return nil
}

// scrubCancel abandons the gesture and any commit still in flight.
func (c *seekCoordinator) scrubCancel() error {
	c.supersede(nil)
	st, gen, s, err := c.current("scrub cancel")
	if err != nil {
		return err
	}
	if st.Status != StatusSeeking {
		return notReady("scrub cancel", st.Status)
	}
	if _, err := c.machine.apply(event{kind: evScrubCancel, gen: gen}); err != nil {
		return err
	}
	c.progress.resume(s)
	return nil
}

// seek performs a discrete jump outside the drag protocol.
func (c *seekCoordinator) seek(ctx context.Context, pos time.Duration) error {
	st, gen, s, err := c.current("seek")
	if err != nil {
		return err
	}
	if st.Status != StatusReady && !st.Status.IsActive() {
		return notReady("seek", st.Status)
	}
	if !inRange(pos, st.Duration) {
		c.rec.Seek("rejected")
		return &Error{Kind: SeekError, Op: "seek", Err: errOutOfRange}
	}

	err = s.do(ctx, func(ctx context.Context, b player.Backend) error {
		return b.SeekTo(ctx, pos)
	})
	if errors.Is(err, ErrSuperseded) {
		c.rec.Seek("superseded")
		return err
	}
	if err != nil {
		c.rec.Seek("error")
		return &Error{Kind: SeekError, Op: "seek", Err: err}
	}
	if _, err := c.machine.apply(event{kind: evSeek, gen: gen, position: pos}); err != nil {
		return err
	}
	c.rec.Seek("ok")
	return nil
}

// inRange reports whether pos lies in [0, duration]. Any non-negative
// position is accepted while the duration is unknown.
func inRange(pos, duration time.Duration) bool {
	if pos < 0 {
		return false
	}
	return duration <= 0 || pos <= duration
}
