// Package mpris exposes a playback controller as an MPRIS media player on
// the D-Bus session bus, so desktop media keys and widgets can drive it.
package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog"

	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/player"
)

const callTimeout = 5 * time.Second

// Controls is the controller surface driven over D-Bus.
type Controls interface {
	Load(ctx context.Context, track playback.Track) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	TogglePlayPause(ctx context.Context) error
	Seek(ctx context.Context, pos time.Duration) error
	State() playback.State
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Ripple", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/mp3", "audio/ogg", "audio/aac"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	ctl    Controls
	logger zerolog.Logger
}

func (p *playerAdapter) call(op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	err := fn(ctx)
	if err != nil {
		p.logger.Debug().Str("op", op).Err(err).Msg("mpris call failed")
	}
	return err
}

// Next and Previous have no queue to move through.
func (p *playerAdapter) Next() error { return nil }

func (p *playerAdapter) Previous() error { return nil }

func (p *playerAdapter) Pause() error {
	return p.call("pause", p.ctl.Pause)
}

func (p *playerAdapter) PlayPause() error {
	return p.call("play_pause", p.ctl.TogglePlayPause)
}

// Stop pauses and rewinds; the track stays loaded.
func (p *playerAdapter) Stop() error {
	return p.call("stop", func(ctx context.Context) error {
		if p.ctl.State().Status == playback.StatusPlaying {
			if err := p.ctl.Pause(ctx); err != nil {
				return err
			}
		}
		return p.ctl.Seek(ctx, 0)
	})
}

func (p *playerAdapter) Play() error {
	return p.call("play", p.ctl.Play)
}

// Seek moves relative to the current position, clamped to the track.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	st := p.ctl.State()
	pos := max(st.Position+time.Duration(offset)*time.Microsecond, 0)
	if st.DurationKnown() {
		pos = min(pos, st.Duration)
	}
	return p.call("seek", func(ctx context.Context) error {
		return p.ctl.Seek(ctx, pos)
	})
}

// SetPosition is ignored unless trackID names the current track.
func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	if trackID != string(formatTrackID(p.ctl.State())) {
		return nil
	}
	return p.call("set_position", func(ctx context.Context) error {
		return p.ctl.Seek(ctx, time.Duration(position)*time.Microsecond)
	})
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	return p.call("open_uri", func(ctx context.Context) error {
		return p.ctl.Load(ctx, playback.Track{URI: uri})
	})
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.ctl.State().Status {
	case playback.StatusPlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatusReady, playback.StatusPaused, playback.StatusSeeking, playback.StatusLoading:
		return types.PlaybackStatusPaused, nil
	case playback.StatusIdle, playback.StatusEnded, playback.StatusError:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	st := p.ctl.State()
	if st.Track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: formatTrackID(st),
		Length:  types.Microseconds(st.Duration.Microseconds()),
		Title:   st.Track.Title,
		Album:   st.Track.Album,
		ArtUrl:  ArtURL(st.Track),
	}
	if st.Track.Artist != "" {
		meta.Artist = []string{st.Track.Artist}
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil // Volume is owned by the media engine
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.ctl.State().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	s := p.ctl.State().Status
	return s == playback.StatusReady || s.IsActive(), nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.ctl.State().Status == playback.StatusPlaying, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	st := p.ctl.State()
	return st.Status.PositionTrusted() && st.Status != playback.StatusSeeking, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// formatTrackID derives a stable object path for the loaded session.
func formatTrackID(st playback.State) dbus.ObjectPath {
	if st.Track == nil {
		return "/org/mpris/MediaPlayer2/TrackList/NoTrack"
	}
	h := fnv.New64a()
	h.Write([]byte(st.Track.URI))
	h.Write([]byte(st.Session))
	return dbus.ObjectPath(fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64()))
}

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// ArtURL prefers the catalog artwork and falls back to an image next to a
// local file.
func ArtURL(track *playback.Track) string {
	if track.ArtworkURL != "" {
		return track.ArtworkURL
	}
	path, err := player.LocalPath(track.URI)
	if err != nil {
		return ""
	}
	dir := filepath.Dir(path)
	for _, name := range coverNames {
		art := filepath.Join(dir, name)
		if _, err := os.Stat(art); err == nil {
			return "file://" + art
		}
	}
	return ""
}
