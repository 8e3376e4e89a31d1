// Package notify sends freedesktop desktop notifications for playback events.
package notify

import "strings"

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Notification is one desktop notification. Timeout is in milliseconds with
// -1 meaning the server default and 0 meaning never. A non-zero ReplacesID
// updates an earlier notification in place.
type Notification struct {
	Title      string
	Body       string
	Icon       string // path, file:// URI or icon name
	Category   string // e.g. "x-ripple.playing"
	Timeout    int32
	ReplacesID uint32
	Urgency    Urgency
}

// Notifier delivers notifications. Implementations that cannot reach a
// notification server return id 0 and a nil error.
type Notifier interface {
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// discard drops everything.
type discard struct{}

func (discard) Notify(Notification) (uint32, error) { return 0, nil }
func (discard) Close(uint32) error                  { return nil }

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeMarkup protects track text from servers that parse body markup.
func escapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}
