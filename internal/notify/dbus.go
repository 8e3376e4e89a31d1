//go:build linux

package notify

import (
	"slices"

	"github.com/godbus/dbus/v5"
)

const (
	busName   = "org.freedesktop.Notifications"
	busPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	appName   = "Ripple"
	desktopID = "ripple"
)

type busNotifier struct {
	obj    dbus.BusObject
	markup bool
}

// New connects to the session bus. Without one it returns a notifier that
// drops everything, so callers never need to special-case headless hosts.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return discard{}, nil //nolint:nilerr // no session bus is not an error for us
	}
	n := &busNotifier{obj: conn.Object(busName, busPath)}

	var caps []string
	if err := n.obj.Call(busName+".GetCapabilities", 0).Store(&caps); err == nil {
		n.markup = slices.Contains(caps, "body-markup")
	}
	return n, nil
}

func (b *busNotifier) Notify(n Notification) (uint32, error) {
	body := n.Body
	if b.markup {
		body = escapeMarkup(body)
	}
	var id uint32
	err := b.obj.Call(busName+".Notify", 0,
		appName, n.ReplacesID, n.Icon, n.Title, body,
		[]string{}, hints(n), n.Timeout,
	).Store(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (b *busNotifier) Close(id uint32) error {
	return b.obj.Call(busName+".CloseNotification", 0, id).Err
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopID),
	}
	if n.Category != "" {
		h["category"] = dbus.MakeVariant(n.Category)
	}
	return h
}
