package playback

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	MinPollInterval     = 500 * time.Millisecond
	MaxPollInterval     = time.Second
	DefaultPollInterval = 750 * time.Millisecond
	DefaultProbeTimeout = 2 * time.Second
)

// Option configures a Controller.
type Option func(*options)

type options struct {
	logger       zerolog.Logger
	pollInterval time.Duration
	probe        bool
	probeTimeout time.Duration
	onError      func(kind ErrorKind, message string)
	recorder     Recorder
}

func defaultOptions() options {
	return options{
		logger:       zerolog.Nop(),
		pollInterval: DefaultPollInterval,
		probeTimeout: DefaultProbeTimeout,
		recorder:     nopRecorder{},
	}
}

// WithLogger sets the logger; components add their own "component" field.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPollInterval sets the polling interval used for backends without a
// push channel. Values are clamped to [MinPollInterval, MaxPollInterval].
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = min(max(d, MinPollInterval), MaxPollInterval)
	}
}

// WithDurationProbe enables the muted play-and-measure probe for backends
// that only learn the duration once decoding starts. The probe is skipped
// for backends that cannot mute.
func WithDurationProbe(timeout time.Duration) Option {
	return func(o *options) {
		o.probe = true
		if timeout > 0 {
			o.probeTimeout = timeout
		}
	}
}

// WithErrorHandler registers the host callback fired once for every
// LoadError or PlaybackError.
func WithErrorHandler(fn func(kind ErrorKind, message string)) Option {
	return func(o *options) { o.onError = fn }
}

// WithRecorder installs a telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}
