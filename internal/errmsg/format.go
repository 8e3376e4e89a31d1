// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/ripple/internal/playback"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Track lifecycle
	OpTrackLoad   Op = "load track"
	OpTrackReload Op = "reload track"
	OpTrackUnload Op = "unload track"
	OpTrackTags   Op = "read track tags"

	// Transport
	OpPlaybackStart  Op = "start playback"
	OpPlaybackPause  Op = "pause playback"
	OpPlaybackToggle Op = "toggle playback"
	OpPlaybackSeek   Op = "seek"
	OpScrubCommit    Op = "move playhead"

	// Initialization
	OpConfigLoad  Op = "load configuration"
	OpBackendOpen Op = "start audio backend"
	OpMetrics     Op = "serve metrics"
	OpStateOpen   Op = "open state database"
	OpHistoryRead Op = "read play history"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Playback formats a controller error for the status line. Superseded
// requests return "" since a newer request replaced them. Rejections
// that only mean "not now" get a short hint instead of the raw error.
func Playback(op Op, err error) string {
	switch {
	case err == nil, errors.Is(err, playback.ErrSuperseded):
		return ""
	case errors.Is(err, playback.ErrNotReady):
		return fmt.Sprintf("Cannot %s right now", op)
	}

	var pe *playback.Error
	if errors.As(err, &pe) && pe.Err != nil {
		return Format(op, pe.Err)
	}
	return Format(op, err)
}
