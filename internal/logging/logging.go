package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects the log sink.
type Options struct {
	Level  string // zerolog level name; empty means info
	Format string // "json" or "console"
	File   string // empty writes to Stderr
}

// Setup configures zerolog for the process. The returned closer releases
// the log file, if any.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	logger, err := New(out, opts)
	if err != nil {
		closer.Close()
		return zerolog.Nop(), nil, err
	}
	log.Logger = logger
	return logger, closer, nil
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
	}

	if opts.Format != "json" {
		// Console writer for human-readable output
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: opts.File != ""}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(level), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
