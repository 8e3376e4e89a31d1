package app

import (
	"context"
	"time"

	"github.com/llehouerou/ripple/internal/playback"
)

// Controls is the controller surface the UI drives. *playback.Controller
// implements it.
type Controls interface {
	Load(ctx context.Context, track playback.Track) error
	Reload(ctx context.Context) error
	TogglePlayPause(ctx context.Context) error
	Seek(ctx context.Context, pos time.Duration) error
	ScrubStart() error
	ScrubMove(pos time.Duration) error
	ScrubCommit(ctx context.Context, pos time.Duration) error
	ScrubCancel() error
	State() playback.State
	Subscribe() *playback.Subscription
	Unsubscribe(sub *playback.Subscription)
}

var _ Controls = (*playback.Controller)(nil)
