package state

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/ripple/internal/playback"
)

// Store is the write side the Tracker needs.
type Store interface {
	SavePosition(uri string, pos time.Duration)
	RecordPlay(entry HistoryEntry) error
}

// Verify Manager implements Store at compile time.
var _ Store = (*Manager)(nil)

// Source is the event surface a Tracker listens to.
type Source interface {
	Subscribe() *playback.Subscription
	Unsubscribe(sub *playback.Subscription)
}

// Tracker records each loaded session in the history and keeps the resume
// position of the current track up to date.
type Tracker struct {
	store  Store
	src    Source
	sub    *playback.Subscription
	logger zerolog.Logger

	recorded playback.SessionID
	done     chan struct{}
}

// Track subscribes to src and starts persisting its events to store.
func Track(store Store, src Source, logger zerolog.Logger) *Tracker {
	t := &Tracker{
		store:  store,
		src:    src,
		sub:    src.Subscribe(),
		logger: logger.With().Str("component", "state").Logger(),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// Stop unsubscribes and waits for the event loop to exit.
func (t *Tracker) Stop() {
	t.src.Unsubscribe(t.sub)
	<-t.done
}

func (t *Tracker) run() {
	defer close(t.done)
	for {
		select {
		case change := <-t.sub.StateChanged:
			t.apply(change.Current)
		case <-t.sub.Error:
		case <-t.sub.Done:
			return
		}
	}
}

func (t *Tracker) apply(st playback.State) {
	if st.Track == nil {
		return
	}
	switch st.Status {
	case playback.StatusReady:
		if st.Session == t.recorded {
			return
		}
		t.recorded = st.Session
		err := t.store.RecordPlay(HistoryEntry{
			URI:    st.Track.URI,
			Title:  st.Track.Title,
			Artist: st.Track.Artist,
			Album:  st.Track.Album,
		})
		if err != nil {
			t.logger.Warn().Err(err).Str("uri", st.Track.URI).Msg("record play failed")
		}
	case playback.StatusPlaying, playback.StatusPaused:
		if !st.Scrubbing {
			t.store.SavePosition(st.Track.URI, st.Position)
		}
	case playback.StatusEnded:
		t.store.SavePosition(st.Track.URI, 0)
	}
}
