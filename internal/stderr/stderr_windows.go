//go:build windows

package stderr

import (
	"os"

	"github.com/rs/zerolog"
)

// Capture leaves stderr alone on Windows, where the audio stack does not
// write to it.
type Capture struct{}

func Start(zerolog.Logger) (*Capture, error) { return &Capture{}, nil }

// WriteOriginal writes msg to the real stderr.
func (*Capture) WriteOriginal(msg string) { _, _ = os.Stderr.WriteString(msg) }

func (*Capture) Stop() {}
