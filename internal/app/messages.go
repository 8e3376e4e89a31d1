package app

import (
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/playback"
)

// StateChangedMsg carries a new controller snapshot.
type StateChangedMsg struct {
	State playback.State
}

// PlaybackErrorMsg is sent once per load or playback failure.
type PlaybackErrorMsg playback.ErrorEvent

// SubscriptionClosedMsg is sent when the controller closes.
type SubscriptionClosedMsg struct{}

// OpResultMsg reports the outcome of an asynchronous controller call.
type OpResultMsg struct {
	Op  errmsg.Op
	Err error
}
