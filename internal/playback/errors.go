package playback

import (
	"errors"
	"fmt"
)

// ErrorKind classifies playback failures.
type ErrorKind int

const (
	LoadError ErrorKind = iota + 1
	PlaybackError
	SeekError
	NotReady
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case LoadError:
		return "LoadError"
	case PlaybackError:
		return "PlaybackError"
	case SeekError:
		return "SeekError"
	case NotReady:
		return "NotReady"
	default:
		return "Unknown"
	}
}

// Error is a classified playback failure.
//
// LoadError and PlaybackError move the state to StatusError; SeekError and
// NotReady only reject the call. None of them is retried internally.
type Error struct {
	Kind ErrorKind
	Op   string // e.g., "load", "play", "seek"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		if e.Op == "" {
			return e.Kind.String()
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels, so errors.Is(err, ErrNotReady) holds for
// any NotReady error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrLoad     = &Error{Kind: LoadError}
	ErrPlayback = &Error{Kind: PlaybackError}
	ErrSeek     = &Error{Kind: SeekError}
	ErrNotReady = &Error{Kind: NotReady}
)

// ErrSuperseded is returned for requests whose result was discarded
// because a newer load, unload or seek replaced them.
var ErrSuperseded = errors.New("playback: request superseded")

var (
	errBusy       = errors.New("another operation is in flight")
	errOutOfRange = errors.New("position out of range")
	errEmptyURI   = errors.New("track has no uri")
	errNoTrack    = errors.New("no track to reload")
	errClosed     = errors.New("controller closed")
)

func notReady(op string, s Status) *Error {
	return &Error{Kind: NotReady, Op: op, Err: fmt.Errorf("status %s", s)}
}

// KindOf returns the kind of a playback error, or 0 if err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
