// Package app is the terminal host for a single playback controller.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/llehouerou/ripple/internal/keymap"
	"github.com/llehouerou/ripple/internal/playback"
)

// Model is the root application model.
type Model struct {
	ctx      context.Context
	ctl      Controls
	sub      *playback.Subscription
	keys     *keymap.Resolver
	logger   zerolog.Logger
	track    playback.Track
	seekStep time.Duration
	resume   time.Duration
	spin     spinner.Model

	state    playback.State
	message  string
	showHelp bool
	quitting bool
	width    int
}

// Config holds the host settings.
type Config struct {
	SeekStep time.Duration
	Resume   time.Duration // seek here once the first load succeeds
	Keys     *keymap.Resolver
	Logger   zerolog.Logger
}

// New creates a model that loads track into ctl on Init. The model owns a
// subscription on ctl until it quits.
func New(ctx context.Context, ctl Controls, track playback.Track, cfg Config) Model {
	if cfg.SeekStep <= 0 {
		cfg.SeekStep = 5 * time.Second
	}
	if cfg.Keys == nil {
		cfg.Keys = keymap.Default()
	}
	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#a78bfa"))),
	)
	return Model{
		ctx:      ctx,
		ctl:      ctl,
		sub:      ctl.Subscribe(),
		keys:     cfg.Keys,
		logger:   cfg.Logger.With().Str("component", "app").Logger(),
		track:    track,
		seekStep: cfg.SeekStep,
		resume:   cfg.Resume,
		spin:     spin,
		state:    ctl.State(),
		width:    80,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(WatchEvents(m.sub), m.loadCmd())
}

// State returns the last snapshot the model rendered.
func (m Model) State() playback.State {
	return m.state
}

// Message returns the status line text.
func (m Model) Message() string {
	return m.message
}
