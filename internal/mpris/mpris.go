//go:build linux

package mpris

import (
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/rs/zerolog"
)

// Adapter publishes a controller on the session bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(ctl Controls, logger zerolog.Logger) (*Adapter, error) {
	logger = logger.With().Str("component", "mpris").Logger()
	player := &playerAdapter{ctl: ctl, logger: logger}

	a := &Adapter{server: server.NewServer("ripple", &rootAdapter{}, player)}

	// Start the server in background
	go func() {
		if err := a.server.Listen(); err != nil {
			logger.Warn().Err(err).Msg("mpris server stopped")
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}
