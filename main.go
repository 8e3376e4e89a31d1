package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/config"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/icons"
	"github.com/llehouerou/ripple/internal/keymap"
	"github.com/llehouerou/ripple/internal/logging"
	"github.com/llehouerou/ripple/internal/metrics"
	"github.com/llehouerou/ripple/internal/mpris"
	"github.com/llehouerou/ripple/internal/notify"
	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/player"
	"github.com/llehouerou/ripple/internal/state"
	"github.com/llehouerou/ripple/internal/stderr"
)

var (
	configPath  string
	backendKind string
	metricsAddr string
	probe       bool
	noMPRIS     bool
	resume      bool
	historySize int
)

var rootCmd = &cobra.Command{
	Use:          "ripple",
	Short:        "ripple - streaming audio player",
	Long:         "ripple plays a local or remote audio URI with a terminal transport bar.",
	SilenceUsage: true,
}

var playCmd = &cobra.Command{
	Use:   "play <uri>",
	Short: "Play a file path, file:// URI or stream URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently played tracks",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print the tags of a local audio file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (read after the default locations)")
	playCmd.Flags().StringVar(&backendKind, "backend", "", `media backend: "mpv" or "beep" (overrides config)`)
	playCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	playCmd.Flags().BoolVar(&noMPRIS, "no-mpris", false, "do not register on the D-Bus session bus")
	playCmd.Flags().BoolVar(&resume, "resume", false, "continue from the position saved for this uri")
	historyCmd.Flags().IntVarP(&historySize, "limit", "n", 20, "number of entries to list")
	playCmd.Flags().BoolVar(&probe, "probe-duration", false, "probe stream duration with a muted play at load")
	rootCmd.AddCommand(playCmd, historyCmd, infoCmd)
}

func main() {
	if os.Getenv("NO_COLOR") == "" {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend.Kind = backendKind
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if probe {
		cfg.Playback.ProbeDuration = true
	}
	if resume {
		cfg.Playback.Resume = true
	}
	if noMPRIS {
		cfg.MPRIS = false
	}
	// The TUI owns the terminal, so logs always go to a file
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(xdg.StateHome, "ripple", "ripple.log")
	}
	return cfg, nil
}

func openBackend(cfg *config.Config, logger zerolog.Logger) (player.Backend, func(), error) {
	switch cfg.Backend.Kind {
	case config.BackendBeep:
		return player.NewBeep(), func() {}, nil
	case config.BackendMPV, "":
		mpv := player.NewMPV(player.MPVConfig{
			Path:      cfg.Backend.MPVPath,
			ExtraArgs: cfg.Backend.MPVArgs,
		}, logger)
		return mpv, func() { _ = mpv.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend.Kind)
}

// trackFor builds the track for uri, filling tags for local files.
func trackFor(uri string, logger zerolog.Logger) playback.Track {
	track := playback.Track{URI: uri}
	info, err := player.ReadTrackInfo(uri)
	if err != nil {
		if !errors.Is(err, player.ErrUnsupportedURI) {
			logger.Debug().Err(err).Str("uri", uri).Msg(errmsg.Format(errmsg.OpTrackTags, err))
		}
		return track
	}
	track.Title = info.Title
	track.Artist = info.Artist
	track.Album = info.Album
	return track
}

func serveMetrics(addr string, rec *metrics.Recorder, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg(errmsg.Format(errmsg.OpMetrics, err))
		}
	}()
	logger.Info().Str("addr", addr).Msg("metrics endpoint listening")
	return srv
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	// Capture ALSA noise before the speaker is initialized
	if capture, err := stderr.Start(logger); err == nil {
		defer capture.Stop()
	} else {
		logger.Warn().Err(err).Msg("stderr capture unavailable")
	}

	backend, closeBackend, err := openBackend(cfg, logger)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpBackendOpen, err))
	}
	defer closeBackend()

	opts := []playback.Option{
		playback.WithLogger(logger),
		playback.WithPollInterval(cfg.Playback.PollInterval),
		playback.WithErrorHandler(func(kind playback.ErrorKind, message string) {
			logger.Error().Str("kind", kind.String()).Msg(message)
		}),
	}
	if cfg.Playback.ProbeDuration {
		opts = append(opts, playback.WithDurationProbe(cfg.Playback.ProbeTimeout))
	}
	if cfg.HasMetrics() {
		rec := metrics.NewRecorder()
		opts = append(opts, playback.WithRecorder(rec))
		srv := serveMetrics(cfg.Metrics.Addr, rec, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	icons.Init(cfg.UI.Icons)
	overrides, err := keymap.ParseOverrides(cfg.UI.Keys)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	ctl := playback.New(backend, opts...)
	defer ctl.Close()

	if cfg.MPRIS {
		if adapter, err := mpris.New(ctl, logger); err == nil {
			defer adapter.Close()
		} else {
			logger.Warn().Err(err).Msg("mpris unavailable")
		}
	}
	if cfg.Notify {
		if notifier, err := notify.New(); err == nil {
			defer notify.Watch(notifier, ctl, logger).Stop()
		}
	}

	var resumeAt time.Duration
	if cfg.History {
		if store, err := state.Open(); err == nil {
			defer store.Close()
			defer state.Track(store, ctl, logger).Stop()
			if cfg.Playback.Resume {
				resumeAt, _ = store.Position(args[0])
			}
		} else {
			logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpStateOpen, err))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model := app.New(ctx, ctl, trackFor(args[0], logger), app.Config{
		SeekStep: cfg.Playback.SeekStep,
		Resume:   resumeAt,
		Keys:     keymap.NewResolver(keymap.All, overrides),
		Logger:   logger,
	})
	logger.Info().Str("uri", args[0]).Str("backend", cfg.Backend.Kind).Msg("ripple starting")

	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func runHistory(_ *cobra.Command, _ []string) error {
	store, err := state.Open()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpStateOpen, err))
	}
	defer store.Close()

	entries, err := store.Recent(historySize)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpHistoryRead, err))
	}
	for _, e := range entries {
		name := e.Title
		if name == "" {
			name = e.URI
		}
		if e.Artist != "" {
			name = e.Artist + " - " + name
		}
		fmt.Printf("%-16s %s\n", humanize.Time(e.PlayedAt), name)
	}
	return nil
}

func runInfo(_ *cobra.Command, args []string) error {
	info, err := player.ReadTrackInfo(args[0])
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpTrackTags, args[0], err))
	}
	fmt.Printf("Title:  %s\nArtist: %s\nAlbum:  %s\n", info.Title, info.Artist, info.Album)
	if info.Year > 0 {
		fmt.Printf("Year:   %d\n", info.Year)
	}
	if info.Track > 0 {
		fmt.Printf("Track:  %d\n", info.Track)
	}
	return nil
}
