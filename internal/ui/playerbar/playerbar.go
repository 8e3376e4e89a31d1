package playerbar

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/ripple/internal/icons"
	"github.com/llehouerou/ripple/internal/playback"
)

// Height is the rendered height: top border, content, bottom border.
const Height = 3

const (
	minBarWidth = 5
	separator   = "   "
)

// View holds everything needed to render the player bar.
type View struct {
	Status    playback.Status
	Title     string
	Artist    string
	Position  time.Duration
	Duration  time.Duration // zero while unknown
	Scrubbing bool
	Err       error
}

// FromState builds a View from a controller snapshot.
func FromState(st playback.State) View {
	v := View{
		Status:    st.Status,
		Position:  st.Position,
		Duration:  st.Duration,
		Scrubbing: st.Scrubbing,
		Err:       st.Err,
	}
	if st.Track != nil {
		v.Title = st.Track.Title
		v.Artist = st.Track.Artist
		if v.Title == "" {
			v.Title = titleFromURI(st.Track.URI)
		}
	}
	return v
}

func titleFromURI(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		if base := path.Base(u.Path); base != "/" && base != "." {
			return base
		}
	}
	return uri
}

// Render returns the player bar string for the given width.
func Render(v View, width int) string {
	innerWidth := max(width-6, 0) // border and padding
	var content string
	switch v.Status {
	case playback.StatusIdle:
		content = messageStyle().Render(truncate(icons.Idle()+"  No track loaded", innerWidth))
	case playback.StatusLoading:
		content = messageStyle().Render(truncate(icons.Loading()+"  Loading "+sanitize(v.Title), innerWidth))
	case playback.StatusError:
		content = renderError(v, innerWidth)
	default:
		content = renderTransport(v, innerWidth)
	}
	return barStyle().Width(max(width-2, 0)).Render(content)
}

func renderError(v View, width int) string {
	msg := "playback failed"
	if v.Err != nil {
		msg = v.Err.Error()
	}
	line := icons.Error() + "  " + sanitize(v.Title)
	if v.Title != "" {
		line += separator
	}
	line += msg + "  (r to reload)"
	return errorStyle().Render(truncate(line, width))
}

func statusSymbol(v View) string {
	switch {
	case v.Status == playback.StatusSeeking:
		return icons.Seek()
	case v.Status == playback.StatusPlaying:
		return icons.Play()
	default:
		return icons.Pause()
	}
}

// renderTransport builds: ▶  Title · Artist   ━━━━────   1:23 / 3:58
// With an unknown duration only the elapsed time is shown and the bar is
// omitted.
func renderTransport(v View, width int) string {
	status := statusSymbol(v) + "  "

	timeStr := playback.FormatTime(v.Position)
	if v.Duration > 0 {
		timeStr += " / " + playback.FormatTime(v.Duration)
	}
	styledTime := timeStyle().Render(timeStr)
	if v.Scrubbing {
		styledTime = scrubTimeStyle().Render(timeStr)
	}

	title := sanitize(v.Title)
	if title == "" {
		title = "Unknown Track"
	}
	artist := sanitize(v.Artist)

	fixed := lipgloss.Width(status) + lipgloss.Width(separator) + lipgloss.Width(timeStr)
	reserve := 0
	if v.Duration > 0 {
		reserve = minBarWidth + lipgloss.Width(separator)
	}
	available := max(width-fixed-reserve, 0)

	info := title
	if artist != "" && lipgloss.Width(title)+3+lipgloss.Width(artist) <= available {
		info = title + " · " + artist
	}
	info = truncate(info, available)

	var b strings.Builder
	b.WriteString(status)
	b.WriteString(styledInfo(info, title))
	b.WriteString(separator)
	if v.Duration > 0 {
		barWidth := max(width-fixed-lipgloss.Width(info)-lipgloss.Width(separator), minBarWidth)
		b.WriteString(progressBar(v.Position, v.Duration, barWidth))
		b.WriteString(separator)
	}
	b.WriteString(styledTime)
	return b.String()
}

func styledInfo(info, title string) string {
	if rest, ok := strings.CutPrefix(info, title); ok && rest != "" {
		return titleStyle().Render(title) + artistStyle().Render(rest)
	}
	return titleStyle().Render(info)
}

func progressBar(position, duration time.Duration, width int) string {
	ratio := min(max(float64(position)/float64(duration), 0), 1)
	filled := min(int(float64(width)*ratio), width)
	return gradient("━", filled, colorPrimary, colorSecondary) +
		emptyBarStyle().Render(strings.Repeat("─", width-filled))
}
