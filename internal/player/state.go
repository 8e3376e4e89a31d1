package player

// State is the transport state of a local backend.
//
//	┌──────────┐      load       ┌──────────┐
//	│  Stopped │ ───────────────▶│  Paused  │◀──┐
//	└──────────┘                 └──────────┘   │
//	     ▲                          │    ▲      │ stop,
//	     │ unload              play │    │ pause│ end of stream
//	     │                          ▼    │      │
//	     │                       ┌──────────┐   │
//	     └───────────────────────│  Playing │───┘
//	                             └──────────┘
//
// Stopped means nothing is loaded. Stop rewinds to zero and keeps the
// track; reaching the end of the stream leaves the playhead at the end.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a resource is loaded (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}
