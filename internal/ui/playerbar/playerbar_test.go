package playerbar

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/ripple/internal/icons"
	"github.com/llehouerou/ripple/internal/playback"
)

// contentLine returns the plain text between the borders.
func contentLine(t *testing.T, rendered string) string {
	t.Helper()
	lines := strings.Split(ansi.Strip(rendered), "\n")
	require.Len(t, lines, Height)
	return lines[1]
}

func TestRender_KnownDuration(t *testing.T) {
	v := View{
		Status:   playback.StatusPlaying,
		Title:    "Blue in Green",
		Artist:   "Miles Davis",
		Position: 83 * time.Second,
		Duration: 3 * time.Minute,
	}

	for _, width := range []int{60, 80, 120} {
		out := Render(v, width)
		line := contentLine(t, out)
		assert.Contains(t, line, icons.Play())
		assert.Contains(t, line, "Blue in Green · Miles Davis")
		assert.Contains(t, line, "1:23 / 3:00")
		assert.Contains(t, line, "━")
		assert.Equal(t, width, lipgloss.Width(out), "width %d", width)
	}
}

func TestRender_UnknownDurationShowsElapsedOnly(t *testing.T) {
	v := View{
		Status:   playback.StatusPlaying,
		Title:    "Live Stream",
		Position: 42 * time.Second,
	}
	line := contentLine(t, Render(v, 80))
	assert.Contains(t, line, "0:42")
	assert.NotContains(t, line, " / ")
	assert.NotContains(t, line, "━")
	assert.NotContains(t, line, "─")
}

func TestRender_Statuses(t *testing.T) {
	tests := []struct {
		name string
		view View
		want []string
	}{
		{
			name: "idle",
			view: View{Status: playback.StatusIdle},
			want: []string{"No track loaded"},
		},
		{
			name: "loading",
			view: View{Status: playback.StatusLoading, Title: "a.mp3"},
			want: []string{"Loading a.mp3"},
		},
		{
			name: "paused",
			view: View{Status: playback.StatusPaused, Title: "a.mp3", Duration: time.Minute},
			want: []string{icons.Pause(), "0:00 / 1:00"},
		},
		{
			name: "ready",
			view: View{Status: playback.StatusReady, Title: "a.mp3", Duration: time.Minute},
			want: []string{icons.Pause()},
		},
		{
			name: "scrubbing",
			view: View{Status: playback.StatusSeeking, Scrubbing: true, Title: "a.mp3", Position: 30 * time.Second, Duration: time.Minute},
			want: []string{icons.Seek(), "0:30 / 1:00"},
		},
		{
			name: "error",
			view: View{Status: playback.StatusError, Title: "a.mp3", Err: errors.New("load: LoadError: 404")},
			want: []string{icons.Error(), "404", "r to reload"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := contentLine(t, Render(tt.view, 100))
			for _, w := range tt.want {
				assert.Contains(t, line, w)
			}
		})
	}
}

func TestRender_LongTitleTruncated(t *testing.T) {
	v := View{
		Status:   playback.StatusPlaying,
		Title:    strings.Repeat("very long title ", 10),
		Artist:   "Someone",
		Duration: time.Minute,
	}
	out := Render(v, 60)
	line := contentLine(t, out)
	assert.Contains(t, line, "…")
	assert.NotContains(t, line, "Someone")
	assert.Equal(t, 60, lipgloss.Width(out))
}

func TestFromState(t *testing.T) {
	st := playback.State{
		Status:    playback.StatusSeeking,
		Position:  10 * time.Second,
		Duration:  time.Minute,
		Scrubbing: true,
		Track:     &playback.Track{URI: "https://cdn.example.com/tracks/a.mp3?sig=abc", Artist: "X"},
	}
	v := FromState(st)
	assert.Equal(t, "a.mp3", v.Title)
	assert.Equal(t, "X", v.Artist)
	assert.True(t, v.Scrubbing)
	assert.Equal(t, 10*time.Second, v.Position)

	assert.Equal(t, View{}, FromState(playback.State{}))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "━━━━━─────", ansi.Strip(progressBar(30*time.Second, time.Minute, 10)))
	assert.Equal(t, "──────────", ansi.Strip(progressBar(0, time.Minute, 10)))
	assert.Equal(t, "━━━━━━━━━━", ansi.Strip(progressBar(2*time.Minute, time.Minute, 10)))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"no truncation needed", "hello", 10, "hello"},
		{"exact fit", "hello", 5, "hello"},
		{"truncation with ellipsis", "hello world", 8, "hello w…"},
		{"wide characters", "日本語の曲", 7, "日本語…"},
		{"zero width", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxWidth)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Title Artist", sanitize("Title\tArtist"))
	assert.Equal(t, "bad", sanitize("b\x1ba\x00d"))
	assert.Equal(t, "a b", sanitize("a b"))
}

func TestRender_IconStyle(t *testing.T) {
	icons.Init("none")
	defer icons.Init("unicode")

	v := View{Status: playback.StatusPlaying, Title: "Song", Duration: time.Minute}
	line := contentLine(t, Render(v, 80))
	assert.True(t, strings.HasPrefix(strings.Trim(line, "│ "), ">"), "got %q", line)
}
