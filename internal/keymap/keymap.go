package keymap

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "scrub"
}

// All contains all key bindings.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionSeekBack, []string{"left"}, "Seek back", "playback"},
	{ActionSeekForward, []string{"right"}, "Seek forward", "playback"},
	{ActionRestart, []string{"0"}, "Restart track", "playback"},
	{ActionReload, []string{"r"}, "Reload track", "playback"},

	// Scrub
	{ActionScrubBack, []string{","}, "Scrub back", "scrub"},
	{ActionScrubForward, []string{"."}, "Scrub forward", "scrub"},
	{ActionScrubCommit, []string{"enter"}, "Commit scrub", "scrub"},
	{ActionScrubCancel, []string{"esc"}, "Cancel scrub", "scrub"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// displayKey renders a key the way users type it.
func displayKey(key string) string {
	if key == " " {
		return "space"
	}
	return key
}
