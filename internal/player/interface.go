// Package player defines the media backend capability driven by the
// playback controller, along with the backends shipped with ripple.
package player

import (
	"context"
	"time"
)

// LoadResult describes a freshly loaded media resource.
type LoadResult struct {
	// Duration is zero when the backend cannot tell before decoding starts.
	Duration time.Duration
}

// StatusUpdate is a backend-originated progress or lifecycle report.
type StatusUpdate struct {
	Position time.Duration
	Duration time.Duration
	Playing  bool
	Finished bool  // natural end of track
	Err      error // runtime playback failure
}

// Backend defines the media engine contract.
//
// Backends only need to report failures as errors; callers never inspect
// their shape. Play, Pause, Stop and SeekTo are never issued concurrently
// with each other, while Position and Duration may be called at any time.
type Backend interface {
	Load(ctx context.Context, uri string) (LoadResult, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	SeekTo(ctx context.Context, position time.Duration) error
	Position() (time.Duration, error)
	Duration() (time.Duration, error)
	Unload(ctx context.Context) error
}

// Notifier is implemented by backends that push status updates.
type Notifier interface {
	// OnStatusUpdate registers fn and returns a function removing it.
	// fn may run on a backend goroutine and must not call into the backend.
	OnStatusUpdate(fn func(StatusUpdate)) (cancel func())
}

// Muter is implemented by backends able to silence output while playing.
type Muter interface {
	SetMuted(muted bool) error
}
