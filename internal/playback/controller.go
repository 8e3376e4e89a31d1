// internal/playback/controller.go
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

// Controller is the playback surface shared by every UI component. It owns
// one state machine and at most one backend session at a time.
//
// All methods are safe for concurrent use. Blocking methods wait for the
// backend round-trip; callers should observe the resulting state through
// State or a Subscription rather than assume it changed on return.
type Controller struct {
	machine *stateMachine
	seeker  *seekCoordinator
	life    *lifecycle
	logger  zerolog.Logger

	busy      atomic.Bool // one in-flight transport call
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New creates a controller driving backend. The controller starts Idle.
func New(backend player.Backend, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	machine := newStateMachine(o)
	progress := newProgressSync(machine, o)
	life := newLifecycle(backend, machine, progress, o)
	return &Controller{
		machine: machine,
		seeker:  newSeekCoordinator(machine, progress, life.sessionFor, o),
		life:    life,
		logger:  o.logger.With().Str("component", "controller").Logger(),
	}
}

func (c *Controller) checkOpen(op string) error {
	if c.closed.Load() {
		return &Error{Kind: NotReady, Op: op, Err: errClosed}
	}
	return nil
}

// Load replaces the current track with track. The previous session is
// torn down before the backend loads the new one.
func (c *Controller) Load(ctx context.Context, track Track) error {
	if err := c.checkOpen("load"); err != nil {
		return err
	}
	return c.life.load(ctx, track)
}

// Reload loads the current track again. It is the retry path out of
// StatusError.
func (c *Controller) Reload(ctx context.Context) error {
	if err := c.checkOpen("reload"); err != nil {
		return err
	}
	return c.life.reload(ctx)
}

// Play starts or resumes playback. After the track ended it restarts
// from zero.
func (c *Controller) Play(ctx context.Context) error {
	return c.transport(ctx, evPlay)
}

// Pause pauses playback.
func (c *Controller) Pause(ctx context.Context) error {
	return c.transport(ctx, evPause)
}

// TogglePlayPause pauses while playing and plays otherwise.
func (c *Controller) TogglePlayPause(ctx context.Context) error {
	if c.machine.State().Status == StatusPlaying {
		return c.Pause(ctx)
	}
	return c.Play(ctx)
}

// Seek jumps to pos, which must lie within [0, Duration].
func (c *Controller) Seek(ctx context.Context, pos time.Duration) error {
	if err := c.acquire("seek"); err != nil {
		return err
	}
	defer c.busy.Store(false)
	return c.seeker.seek(ctx, pos)
}

// ScrubStart begins a slider drag. Audio keeps playing.
func (c *Controller) ScrubStart() error {
	return c.seeker.scrubStart()
}

// ScrubMove moves the displayed position during a drag.
func (c *Controller) ScrubMove(pos time.Duration) error {
	return c.seeker.scrubMove(pos)
}

// ScrubCommit seeks to pos and ends the drag. A newer commit supersedes
// this one.
func (c *Controller) ScrubCommit(ctx context.Context, pos time.Duration) error {
	return c.seeker.scrubCommit(ctx, pos)
}

// ScrubCancel ends the drag without seeking.
func (c *Controller) ScrubCancel() error {
	return c.seeker.scrubCancel()
}

// Unload releases the backend resource and returns to StatusIdle. It is
// safe to call repeatedly.
func (c *Controller) Unload(ctx context.Context) error {
	return c.life.unload(ctx)
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return c.machine.State()
}

// Subscribe returns a subscription for state and error events.
func (c *Controller) Subscribe() *Subscription {
	return c.machine.subscribe()
}

// Unsubscribe stops delivery to sub and closes its Done channel.
func (c *Controller) Unsubscribe(sub *Subscription) {
	c.machine.unsubscribe(sub)
}

// Close unloads the current track and closes every subscription. Further
// loads are rejected.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.life.unload(context.Background())
		c.machine.close()
		c.logger.Debug().Msg("controller closed")
	})
	return c.closeErr
}

func (c *Controller) acquire(op string) error {
	if !c.busy.CompareAndSwap(false, true) {
		return &Error{Kind: NotReady, Op: op, Err: errBusy}
	}
	return nil
}

func (c *Controller) transport(ctx context.Context, kind eventKind) error {
	op := kind.String()
	if err := c.acquire(op); err != nil {
		return err
	}
	defer c.busy.Store(false)

	gen, rewind, noop, err := c.machine.prepare(kind)
	if err != nil || noop {
		return err
	}
	s := c.life.sessionFor(gen)
	if s == nil {
		return ErrSuperseded
	}

	err = s.do(ctx, func(ctx context.Context, b player.Backend) error {
		if kind == evPause {
			return b.Pause(ctx)
		}
		if rewind {
			if err := b.SeekTo(ctx, 0); err != nil {
				return err
			}
		}
		return b.Play(ctx)
	})
	switch {
	case errors.Is(err, ErrSuperseded):
		return err
	case err != nil && ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		failure := &Error{Kind: PlaybackError, Op: op, Err: err}
		_, _ = c.machine.apply(event{kind: evFailed, gen: gen, err: failure})
		return failure
	}

	_, err = c.machine.apply(event{kind: kind, gen: gen})
	return err
}
