// internal/playback/state.go
package playback

import "time"

// Status is the canonical playback status of the current track.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusPlaying
	StatusPaused
	StatusSeeking
	StatusEnded
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusLoading:
		return "Loading"
	case StatusReady:
		return "Ready"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	case StatusSeeking:
		return "Seeking"
	case StatusEnded:
		return "Ended"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is playing or paused.
func (s Status) IsActive() bool {
	return s == StatusPlaying || s == StatusPaused
}

// PositionTrusted reports whether positions are meaningful in s. Hosts
// disable transport and scrub controls otherwise.
func (s Status) PositionTrusted() bool {
	return s != StatusIdle && s != StatusLoading && s != StatusError
}

// State is an immutable snapshot of the playback state.
type State struct {
	Status    Status
	Position  time.Duration
	Duration  time.Duration // zero while unknown
	Scrubbing bool
	Err       error
	Track     *Track
	Session   SessionID
}

// DurationKnown reports whether the backend has reported a duration.
func (s State) DurationKnown() bool {
	return s.Duration > 0
}

func (s State) equal(o State) bool {
	return s.Status == o.Status &&
		s.Position == o.Position &&
		s.Duration == o.Duration &&
		s.Scrubbing == o.Scrubbing &&
		s.Err == o.Err &&
		s.Track == o.Track &&
		s.Session == o.Session
}
