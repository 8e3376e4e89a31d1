//go:build !linux

package mpris

import "github.com/rs/zerolog"

// Adapter does nothing outside Linux: there is no session bus to publish on.
type Adapter struct{}

func New(Controls, zerolog.Logger) (*Adapter, error) { return &Adapter{}, nil }

func (*Adapter) Close() error { return nil }
