package notify

import (
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/mpris"
	"github.com/llehouerou/ripple/internal/playback"
)

const (
	nowPlayingTimeout int32 = 5000
	errorTimeout      int32 = -1
)

// Source is the event surface a Watcher listens to.
type Source interface {
	Subscribe() *playback.Subscription
	Unsubscribe(sub *playback.Subscription)
}

// Watcher turns playback events into desktop notifications: one "now
// playing" per session and one per failure. Each replaces the previous.
type Watcher struct {
	notifier Notifier
	src      Source
	sub      *playback.Subscription
	logger   zerolog.Logger

	lastID    uint32
	announced playback.SessionID
	done      chan struct{}
}

// Watch subscribes to src and starts forwarding events to n.
func Watch(n Notifier, src Source, logger zerolog.Logger) *Watcher {
	w := &Watcher{
		notifier: n,
		src:      src,
		sub:      src.Subscribe(),
		logger:   logger.With().Str("component", "notify").Logger(),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Stop unsubscribes and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.src.Unsubscribe(w.sub)
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case change := <-w.sub.StateChanged:
			w.stateChanged(change.Current)
		case ev := <-w.sub.Error:
			w.failed(ev)
		case <-w.sub.Done:
			return
		}
	}
}

func (w *Watcher) stateChanged(st playback.State) {
	if st.Status != playback.StatusPlaying || st.Track == nil || st.Session == w.announced {
		return
	}
	w.announced = st.Session
	w.send(Notification{
		Title:    trackTitle(st.Track),
		Body:     trackBody(st.Track),
		Icon:     mpris.ArtURL(st.Track),
		Category: "x-ripple.playing",
		Timeout:  nowPlayingTimeout,
		Urgency:  UrgencyLow,
	})
}

func (w *Watcher) failed(ev playback.ErrorEvent) {
	op := errmsg.OpPlaybackStart
	if ev.Kind == playback.LoadError {
		op = errmsg.OpTrackLoad
	}
	w.send(Notification{
		Title:    "Playback error",
		Body:     errmsg.Playback(op, ev.Err),
		Category: "x-ripple.error",
		Timeout:  errorTimeout,
		Urgency:  UrgencyCritical,
	})
}

func (w *Watcher) send(n Notification) {
	n.ReplacesID = w.lastID
	id, err := w.notifier.Notify(n)
	if err != nil {
		w.logger.Debug().Err(err).Str("title", n.Title).Msg("notification failed")
		return
	}
	w.lastID = id
}

func trackTitle(t *playback.Track) string {
	if t.Title != "" {
		return t.Title
	}
	return path.Base(t.URI)
}

func trackBody(t *playback.Track) string {
	var parts []string
	for _, s := range []string{t.Artist, t.Album} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " - ")
}
