// internal/playback/progress.go
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/ripple/internal/player"
)

const (
	// probeStep is how often the duration probe re-reads the backend.
	probeStep = 50 * time.Millisecond

	// maxReadFailures is the number of consecutive failed position reads
	// after which a polled backend is considered broken.
	maxReadFailures = 3
)

// progressSync keeps the position fresh for the current session. It uses
// the backend push channel when there is one and polls otherwise, never
// both.
type progressSync struct {
	machine  *stateMachine
	interval time.Duration
	logger   zerolog.Logger

	mu        sync.Mutex
	sess      *session
	suspended bool
	stopFn    func()
	wg        sync.WaitGroup
}

func newProgressSync(machine *stateMachine, o options) *progressSync {
	return &progressSync{
		machine:  machine,
		interval: o.pollInterval,
		logger:   o.logger.With().Str("component", "progress").Logger(),
	}
}

// start binds the synchronizer to s.
func (p *progressSync) start(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sess = s
	p.suspended = false

	if n, ok := s.backend.(player.Notifier); ok {
		p.stopFn = n.OnStatusUpdate(func(u player.StatusUpdate) {
			p.handle(s, u)
		})
		p.logger.Debug().Str("session", string(s.id)).Str("mode", "push").Msg("progress started")
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	p.stopFn = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.poll(ctx, s)
	}()
	p.logger.Debug().
		Str("session", string(s.id)).
		Str("mode", "poll").
		Dur("interval", p.interval).
		Msg("progress started")
}

// stop detaches from the current session and waits for the poller.
func (p *progressSync) stop() {
	p.mu.Lock()
	fn := p.stopFn
	p.stopFn = nil
	p.sess = nil
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
	p.wg.Wait()
}

func (p *progressSync) suspend(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == s {
		p.suspended = true
	}
}

// resume lifts a suspension and re-reads the backend position once, so the
// first value after a scrub comes from the backend rather than history.
func (p *progressSync) resume(s *session) {
	p.mu.Lock()
	if p.sess != s {
		p.mu.Unlock()
		return
	}
	p.suspended = false
	p.mu.Unlock()

	pos, err := s.backend.Position()
	if err != nil {
		p.logger.Debug().Err(err).Msg("position re-read failed")
		return
	}
	dur, _ := s.backend.Duration()
	_, _ = p.machine.apply(event{kind: evProgress, gen: s.gen, position: pos, duration: dur})
}

func (p *progressSync) active(s *session) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sess == s && !p.suspended
}

// handle merges one pushed update.
func (p *progressSync) handle(s *session, u player.StatusUpdate) {
	switch {
	case u.Err != nil:
		_, _ = p.machine.apply(event{
			kind: evFailed,
			gen:  s.gen,
			err:  &Error{Kind: PlaybackError, Op: "playback", Err: u.Err},
		})
		return
	case u.Finished:
		_, _ = p.machine.apply(event{kind: evEnded, gen: s.gen})
		return
	}
	if !p.active(s) {
		return
	}
	_, _ = p.machine.apply(event{kind: evProgress, gen: s.gen, position: u.Position, duration: u.Duration})
}

func (p *progressSync) poll(ctx context.Context, s *session) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !p.active(s) {
			continue
		}

		pos, err := s.backend.Position()
		if err != nil {
			failures++
			p.logger.Debug().Err(err).Int("failures", failures).Msg("position read failed")
			if failures >= maxReadFailures {
				_, _ = p.machine.apply(event{
					kind: evFailed,
					gen:  s.gen,
					err:  &Error{Kind: PlaybackError, Op: "position", Err: err},
				})
				return
			}
			continue
		}
		failures = 0

		dur, _ := s.backend.Duration()
		st, err := p.machine.apply(event{kind: evProgress, gen: s.gen, position: pos, duration: dur})
		if err != nil {
			continue
		}
		if st.Status == StatusPlaying && st.DurationKnown() && pos >= st.Duration {
			_, _ = p.machine.apply(event{kind: evEnded, gen: s.gen})
		}
	}
}

// probeDuration plays s muted until the backend learns the duration, then
// pauses and rewinds. It returns zero when the backend cannot be muted or
// stays silent about the duration until timeout.
func (p *progressSync) probeDuration(ctx context.Context, s *session, timeout time.Duration) time.Duration {
	muter, ok := s.backend.(player.Muter)
	if !ok {
		p.logger.Debug().Msg("duration probe skipped: backend cannot mute")
		return 0
	}
	if err := muter.SetMuted(true); err != nil {
		p.logger.Debug().Err(err).Msg("duration probe skipped: mute failed")
		return 0
	}
	defer func() {
		if err := muter.SetMuted(false); err != nil {
			p.logger.Warn().Err(err).Msg("unmute after probe failed")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var found time.Duration
	err := s.do(ctx, func(ctx context.Context, b player.Backend) error {
		if err := b.Play(ctx); err != nil {
			return err
		}
		defer func() {
			rewind := context.WithoutCancel(ctx)
			_ = b.Pause(rewind)
			_ = b.SeekTo(rewind, 0)
		}()

		ticker := time.NewTicker(probeStep)
		defer ticker.Stop()
		for {
			if d, err := b.Duration(); err == nil && d > 0 {
				found = d
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})
	if err != nil {
		p.logger.Debug().Err(err).Msg("duration probe gave up")
	}
	return found
}
