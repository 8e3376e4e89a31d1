// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Transport actions
	ActionPlayPause   Action = "play_pause"
	ActionRestart     Action = "restart"
	ActionReload      Action = "reload"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"

	// Scrub gesture: the first move starts it
	ActionScrubForward Action = "scrub_forward"
	ActionScrubBack    Action = "scrub_back"
	ActionScrubCommit  Action = "scrub_commit"
	ActionScrubCancel  Action = "scrub_cancel"
)
