// Package icons selects the transport glyphs for the terminal's font.
package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Play    string
	Pause   string
	Seek    string
	Loading string
	Error   string
	Idle    string
}

var (
	nerdIcons = Icons{
		Play:    "\uf04b", // nf-fa-play
		Pause:   "\uf04c", // nf-fa-pause
		Seek:    "\uf07e", // nf-fa-arrows_h
		Loading: "\uf110", // nf-fa-spinner
		Error:   "\uf057", // nf-fa-times_circle
		Idle:    "\uf04d", // nf-fa-stop
	}

	unicodeIcons = Icons{
		Play:    "▶",
		Pause:   "⏸",
		Seek:    "⇆",
		Loading: "…",
		Error:   "✗",
		Idle:    "■",
	}

	noneIcons = Icons{
		Play:    ">",
		Pause:   "||",
		Seek:    "<>",
		Loading: "...",
		Error:   "x",
		Idle:    "-",
	}

	// current holds the active icon set
	current = unicodeIcons
)

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleNone:
		current = noneIcons
	case StyleUnicode:
		current = unicodeIcons
	default:
		current = unicodeIcons
	}
}

// Valid reports whether style names a known icon set.
func Valid(style string) bool {
	switch Style(style) {
	case StyleNerd, StyleUnicode, StyleNone:
		return true
	}
	return false
}

func Play() string { return current.Play }

func Pause() string { return current.Pause }

// Seek marks a pending seek or an active scrub.
func Seek() string { return current.Seek }

func Loading() string { return current.Loading }

func Error() string { return current.Error }

// Idle marks the empty player.
func Idle() string { return current.Idle }
