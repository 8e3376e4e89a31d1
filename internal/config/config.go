package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/ripple/internal/icons"
)

// Backend kinds.
const (
	BackendMPV  = "mpv"
	BackendBeep = "beep"
)

type Config struct {
	Playback PlaybackConfig `koanf:"playback"`
	Backend  BackendConfig  `koanf:"backend"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	UI       UIConfig       `koanf:"ui"`
	MPRIS    bool           `koanf:"mpris"`   // register on the session bus (default: true)
	Notify   bool           `koanf:"notify"`  // desktop notifications (default: true)
	History  bool           `koanf:"history"` // keep play history and resume positions (default: true)
}

// PlaybackConfig holds controller tuning.
type PlaybackConfig struct {
	PollInterval  time.Duration `koanf:"poll_interval"`  // default: 750ms, clamped to 500ms-1s
	ProbeDuration bool          `koanf:"probe_duration"` // muted duration probe for streams (default: false)
	ProbeTimeout  time.Duration `koanf:"probe_timeout"`  // default: 2s
	SeekStep      time.Duration `koanf:"seek_step"`      // arrow key seek distance (default: 5s)
	Resume        bool          `koanf:"resume"`         // continue from the saved position (default: false)
}

// BackendConfig selects the media backend.
type BackendConfig struct {
	Kind    string   `koanf:"kind"`     // "mpv" or "beep" (default: "mpv")
	MPVPath string   `koanf:"mpv_path"` // default: "mpv"
	MPVArgs []string `koanf:"mpv_args"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // zerolog level name (default: "info")
	Format string `koanf:"format"` // "console" or "json" (default: "console")
	File   string `koanf:"file"`   // empty logs to stderr
}

// UIConfig holds terminal display settings.
type UIConfig struct {
	Icons string              `koanf:"icons"` // "nerd", "unicode" or "none" (default: "unicode")
	Keys  map[string][]string `koanf:"keys"`  // action name -> keys, replacing the defaults
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	Addr string `koanf:"addr"` // e.g., ":9464"; empty disables the endpoint
}

// Load reads the config files in priority order. A non-empty override
// path is read last and must exist.
func Load(override string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}
	if override != "" {
		if err := k.Load(file.Provider(expandPath(override)), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// Keys absent from every file keep these values
	cfg := &Config{MPRIS: true, Notify: true, History: true}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Playback.PollInterval <= 0 {
		c.Playback.PollInterval = 750 * time.Millisecond
	}
	if c.Playback.ProbeTimeout <= 0 {
		c.Playback.ProbeTimeout = 2 * time.Second
	}
	if c.Playback.SeekStep <= 0 {
		c.Playback.SeekStep = 5 * time.Second
	}

	c.Backend.Kind = strings.ToLower(strings.TrimSpace(c.Backend.Kind))
	if c.Backend.Kind != BackendBeep {
		c.Backend.Kind = BackendMPV
	}
	if c.Backend.MPVPath == "" {
		c.Backend.MPVPath = "mpv"
	} else {
		c.Backend.MPVPath = expandPath(c.Backend.MPVPath)
	}

	if !icons.Valid(c.UI.Icons) {
		c.UI.Icons = string(icons.StyleUnicode)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format != "json" {
		c.Log.Format = "console"
	}
	if c.Log.File != "" {
		c.Log.File = expandPath(c.Log.File)
	}
}

// HasMetrics returns true if the metrics endpoint is configured.
func (c *Config) HasMetrics() bool {
	return c.Metrics.Addr != ""
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/ripple/config.toml
		filepath.Join(xdg.ConfigHome, "ripple", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
