package mpris

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/player"
)

const testURI = "https://cdn.example.com/tracks/a.mp3"

func newTestPlayer(t *testing.T) (*playerAdapter, *player.Mock, *playback.Controller) {
	t.Helper()
	backend := player.NewMock()
	backend.SetTrackDuration(testURI, 3*time.Minute)
	ctl := playback.New(backend)
	t.Cleanup(func() { _ = ctl.Close() })
	return &playerAdapter{ctl: ctl, logger: zerolog.Nop()}, backend, ctl
}

func loadedPlayer(t *testing.T) (*playerAdapter, *player.Mock, *playback.Controller) {
	t.Helper()
	p, backend, ctl := newTestPlayer(t)
	require.NoError(t, ctl.Load(context.Background(), playback.Track{
		URI:    testURI,
		Title:  "Track A",
		Artist: "Artist",
		Album:  "Album",
	}))
	return p, backend, ctl
}

func seekCalls(b *player.Mock) int {
	n := 0
	for _, c := range b.Calls() {
		if strings.HasPrefix(c, "seek:") {
			n++
		}
	}
	return n
}

func TestPlayerAdapter_PlaybackStatus(t *testing.T) {
	p, _, ctl := newTestPlayer(t)

	status, err := p.PlaybackStatus()
	require.NoError(t, err)
	assert.Equal(t, types.PlaybackStatusStopped, status)

	require.NoError(t, ctl.Load(context.Background(), playback.Track{URI: testURI}))
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusPaused, status, "ready reports paused")

	require.NoError(t, p.PlayPause())
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusPlaying, status)

	require.NoError(t, p.Pause())
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusPaused, status)
}

func TestPlayerAdapter_TransportBeforeLoad(t *testing.T) {
	p, backend, _ := newTestPlayer(t)

	assert.ErrorIs(t, p.Play(), playback.ErrNotReady)
	assert.ErrorIs(t, p.Seek(types.Microseconds(time.Second.Microseconds())), playback.ErrNotReady)
	assert.Empty(t, backend.Calls())

	canPlay, _ := p.CanPlay()
	canSeek, _ := p.CanSeek()
	assert.False(t, canPlay)
	assert.False(t, canSeek)
}

func TestPlayerAdapter_SeekIsRelativeAndClamped(t *testing.T) {
	p, _, ctl := loadedPlayer(t)

	require.NoError(t, p.Seek(types.Microseconds((30 * time.Second).Microseconds())))
	assert.Equal(t, 30*time.Second, ctl.State().Position)

	require.NoError(t, p.Seek(types.Microseconds((-10 * time.Second).Microseconds())))
	assert.Equal(t, 20*time.Second, ctl.State().Position)

	require.NoError(t, p.Seek(types.Microseconds((-time.Minute).Microseconds())))
	assert.Zero(t, ctl.State().Position)

	require.NoError(t, p.Seek(types.Microseconds((10 * time.Minute).Microseconds())))
	assert.Equal(t, 3*time.Minute, ctl.State().Position)

	pos, err := p.Position()
	require.NoError(t, err)
	assert.Equal(t, (3 * time.Minute).Microseconds(), pos)
}

func TestPlayerAdapter_SetPositionChecksTrackID(t *testing.T) {
	p, backend, ctl := loadedPlayer(t)

	require.NoError(t, p.SetPosition("/org/mpris/MediaPlayer2/Track/other", types.Microseconds(time.Minute.Microseconds())))
	assert.Zero(t, seekCalls(backend))

	id := string(formatTrackID(ctl.State()))
	require.NoError(t, p.SetPosition(id, types.Microseconds(time.Minute.Microseconds())))
	assert.Equal(t, time.Minute, ctl.State().Position)
	assert.Equal(t, 1, seekCalls(backend))
}

func TestPlayerAdapter_StopRewinds(t *testing.T) {
	p, backend, ctl := loadedPlayer(t)
	require.NoError(t, p.Play())
	require.NoError(t, p.Seek(types.Microseconds(time.Minute.Microseconds())))

	require.NoError(t, p.Stop())
	st := ctl.State()
	assert.Equal(t, playback.StatusPaused, st.Status)
	assert.Zero(t, st.Position)
	assert.False(t, backend.Playing())
	assert.NotNil(t, st.Track, "stop keeps the track loaded")
}

func TestPlayerAdapter_OpenUri(t *testing.T) {
	p, backend, ctl := newTestPlayer(t)

	require.NoError(t, p.OpenUri(testURI))
	assert.Equal(t, playback.StatusReady, ctl.State().Status)
	assert.Equal(t, testURI, backend.URI())

	assert.Error(t, p.OpenUri(""))
}

func TestPlayerAdapter_Metadata(t *testing.T) {
	p, _, ctl := newTestPlayer(t)

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Empty(t, meta.Title)

	require.NoError(t, ctl.Load(context.Background(), playback.Track{
		URI:        testURI,
		Title:      "Track A",
		Artist:     "Artist",
		Album:      "Album",
		ArtworkURL: "https://cdn.example.com/art/a.jpg",
	}))
	meta, err = p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Track A", meta.Title)
	assert.Equal(t, []string{"Artist"}, meta.Artist)
	assert.Equal(t, "Album", meta.Album)
	assert.Equal(t, types.Microseconds((3 * time.Minute).Microseconds()), meta.Length)
	assert.Equal(t, "https://cdn.example.com/art/a.jpg", meta.ArtUrl)
	assert.Equal(t, formatTrackID(ctl.State()), meta.TrackId)
}

func TestPlayerAdapter_Capabilities(t *testing.T) {
	p, _, _ := loadedPlayer(t)

	canPlay, _ := p.CanPlay()
	canPause, _ := p.CanPause()
	canSeek, _ := p.CanSeek()
	canNext, _ := p.CanGoNext()
	assert.True(t, canPlay)
	assert.False(t, canPause, "nothing to pause while ready")
	assert.True(t, canSeek)
	assert.False(t, canNext)

	require.NoError(t, p.Play())
	canPause, _ = p.CanPause()
	assert.True(t, canPause)
}

func TestFormatTrackID(t *testing.T) {
	assert.Equal(t, "/org/mpris/MediaPlayer2/TrackList/NoTrack", string(formatTrackID(playback.State{})))

	track := &playback.Track{URI: testURI}
	a := formatTrackID(playback.State{Track: track, Session: "one"})
	b := formatTrackID(playback.State{Track: track, Session: "two"})
	assert.NotEqual(t, a, b, "a reload gets a new track id")
	assert.True(t, strings.HasPrefix(string(a), "/org/mpris/MediaPlayer2/Track/"))
	assert.True(t, a.IsValid())
}

func TestArtURL(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(song, []byte("fake"), 0o600))

	assert.Empty(t, ArtURL(&playback.Track{URI: song}))
	assert.Empty(t, ArtURL(&playback.Track{URI: testURI}), "remote tracks have no sidecar art")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "folder.png"), []byte("fake"), 0o600))
	assert.Equal(t, "file://"+filepath.Join(dir, "folder.png"), ArtURL(&playback.Track{URI: song}))

	// cover.jpg outranks folder.png
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("fake"), 0o600))
	assert.Equal(t, "file://"+filepath.Join(dir, "cover.jpg"), ArtURL(&playback.Track{URI: "file://" + song}))

	assert.Equal(t, "https://x/a.jpg", ArtURL(&playback.Track{URI: song, ArtworkURL: "https://x/a.jpg"}))
}

func TestRootAdapter(t *testing.T) {
	r := &rootAdapter{}
	id, err := r.Identity()
	require.NoError(t, err)
	assert.Equal(t, "Ripple", id)

	schemes, _ := r.SupportedUriSchemes()
	assert.Equal(t, []string{"file", "http", "https"}, schemes)
}
