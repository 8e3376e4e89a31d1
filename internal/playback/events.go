package playback

// StateChange is emitted whenever the state snapshot changes.
type StateChange struct {
	Previous State
	Current  State
}

// ErrorEvent is emitted when playback enters StatusError.
type ErrorEvent struct {
	Kind ErrorKind // LoadError or PlaybackError
	Op   string
	Err  error
}
