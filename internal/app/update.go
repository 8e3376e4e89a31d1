package app

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/keymap"
	"github.com/llehouerou/ripple/internal/playback"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case StateChangedMsg:
		wasLoading := m.state.Status == playback.StatusLoading
		m.state = msg.State
		if m.state.Status == playback.StatusLoading && !wasLoading {
			return m, tea.Batch(WatchEvents(m.sub), m.spin.Tick)
		}
		return m, WatchEvents(m.sub)
	case spinner.TickMsg:
		// Ticking stops once the load settles
		if m.state.Status != playback.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case PlaybackErrorMsg:
		op := errmsg.OpPlaybackStart
		if msg.Kind == playback.LoadError {
			op = errmsg.OpTrackLoad
		}
		m.message = errmsg.Playback(op, msg.Err)
		m.logger.Warn().Str("kind", msg.Kind.String()).Err(msg.Err).Msg("playback failure")
		return m, WatchEvents(m.sub)
	case SubscriptionClosedMsg:
		m.quitting = true
		return m, tea.Quit
	case OpResultMsg:
		return m.handleOpResult(msg)
	}
	return m, nil
}

func (m Model) handleOpResult(msg OpResultMsg) (Model, tea.Cmd) {
	m.state = m.ctl.State()
	if msg.Err == nil {
		m.message = ""
		if msg.Op == errmsg.OpTrackLoad && m.resume > 0 {
			return m.resumeSeek()
		}
		return m, nil
	}
	if text := errmsg.Playback(msg.Op, msg.Err); text != "" {
		m.message = text
		m.logger.Debug().Str("op", string(msg.Op)).Err(msg.Err).Msg("operation failed")
	}
	return m, nil
}

// resumeSeek consumes the saved position. Positions past the end of a
// track whose length changed are dropped.
func (m Model) resumeSeek() (Model, tea.Cmd) {
	pos := m.resume
	m.resume = 0
	if m.state.DurationKnown() && pos >= m.state.Duration {
		return m, nil
	}
	m.logger.Info().Str("position", playback.FormatTime(pos)).Msg("resuming")
	return m, m.seekCmd(pos)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Resolve(msg.String()) {
	case keymap.ActionQuit:
		m.quitting = true
		m.ctl.Unsubscribe(m.sub)
		return m, tea.Quit
	case keymap.ActionHelp:
		m.showHelp = !m.showHelp
	case keymap.ActionPlayPause:
		return m, m.toggleCmd()
	case keymap.ActionSeekBack:
		return m, m.seekCmd(m.seekTarget(-m.seekStep))
	case keymap.ActionSeekForward:
		return m, m.seekCmd(m.seekTarget(m.seekStep))
	case keymap.ActionRestart:
		return m, m.seekCmd(0)
	case keymap.ActionReload:
		m.message = ""
		return m, m.reloadCmd()
	case keymap.ActionScrubBack:
		return m.scrub(-m.seekStep), nil
	case keymap.ActionScrubForward:
		return m.scrub(m.seekStep), nil
	case keymap.ActionScrubCommit:
		if st := m.ctl.State(); st.Scrubbing {
			return m, m.commitCmd(st.Position)
		}
	case keymap.ActionScrubCancel:
		if m.ctl.State().Scrubbing {
			if err := m.ctl.ScrubCancel(); err != nil {
				m.message = errmsg.Playback(errmsg.OpScrubCommit, err)
			}
			m.state = m.ctl.State()
		}
	}
	return m, nil
}

// seekTarget offsets the current position, clamped to the known range.
func (m Model) seekTarget(delta time.Duration) time.Duration {
	st := m.ctl.State()
	pos := max(st.Position+delta, 0)
	if st.DurationKnown() {
		pos = min(pos, st.Duration)
	}
	return pos
}

// scrub moves the optimistic playhead, starting the gesture on first use.
func (m Model) scrub(delta time.Duration) Model {
	st := m.ctl.State()
	if !st.Scrubbing {
		if err := m.ctl.ScrubStart(); err != nil {
			m.message = errmsg.Playback(errmsg.OpPlaybackSeek, err)
			return m
		}
	}
	if err := m.ctl.ScrubMove(max(st.Position+delta, 0)); err != nil {
		m.message = errmsg.Playback(errmsg.OpPlaybackSeek, err)
	}
	m.state = m.ctl.State()
	return m
}
