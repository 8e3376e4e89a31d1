package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/playback"
)

// WatchEvents returns a command that waits for the next subscription event.
// It must be re-issued after every event it delivers.
func WatchEvents(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return StateChangedMsg{State: e.Current}
		case e := <-sub.Error:
			return PlaybackErrorMsg(e)
		case <-sub.Done:
			return SubscriptionClosedMsg{}
		}
	}
}

// runOp runs a blocking controller call off the update loop.
func runOp(ctx context.Context, op errmsg.Op, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return OpResultMsg{Op: op, Err: fn(ctx)}
	}
}

func (m Model) loadCmd() tea.Cmd {
	track := m.track
	return runOp(m.ctx, errmsg.OpTrackLoad, func(ctx context.Context) error {
		return m.ctl.Load(ctx, track)
	})
}

func (m Model) reloadCmd() tea.Cmd {
	return runOp(m.ctx, errmsg.OpTrackReload, m.ctl.Reload)
}

func (m Model) toggleCmd() tea.Cmd {
	return runOp(m.ctx, errmsg.OpPlaybackToggle, m.ctl.TogglePlayPause)
}

func (m Model) seekCmd(pos time.Duration) tea.Cmd {
	return runOp(m.ctx, errmsg.OpPlaybackSeek, func(ctx context.Context) error {
		return m.ctl.Seek(ctx, pos)
	})
}

func (m Model) commitCmd(pos time.Duration) tea.Cmd {
	return runOp(m.ctx, errmsg.OpScrubCommit, func(ctx context.Context) error {
		return m.ctl.ScrubCommit(ctx, pos)
	})
}
