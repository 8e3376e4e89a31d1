//go:build !windows

// Package stderr captures output that C audio libraries (ALSA, PulseAudio)
// write directly to file descriptor 2 and forwards it to a logger, so it
// cannot corrupt the TUI layout.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
)

// Capture redirects fd 2 into a pipe until Stop is called.
type Capture struct {
	orig  int
	read  *os.File
	write *os.File
	done  chan struct{}
}

// Start begins capturing stderr output. Each non-empty line is logged at
// warn level. Must be called before any C library initialization.
// On error the program can continue without capture.
func Start(logger zerolog.Logger) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, read: r, write: w, done: make(chan struct{})}
	logger = logger.With().Str("component", "stderr").Logger()
	go func() {
		defer close(c.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				logger.Warn().Msg(line)
			}
		}
	}()
	return c, nil
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
// Used for fatal errors that must be visible while the TUI is running.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Stop restores the original stderr and waits for pending lines to be logged.
func (c *Capture) Stop() {
	_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)

	// fd 2 no longer references the pipe, so closing the write end ends the reader
	c.write.Close()
	<-c.done
	c.read.Close()
}
