package playback

const eventBufferSize = 16

// Subscription provides event channels for one UI surface.
type Subscription struct {
	StateChanged <-chan StateChange
	Error        <-chan ErrorEvent
	Done         <-chan struct{}

	// Internal write channels
	stateCh chan StateChange
	errorCh chan ErrorEvent
	doneCh  chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh: make(chan StateChange, eventBufferSize),
		errorCh: make(chan ErrorEvent, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state change (non-blocking). When the buffer is full
// the oldest change is dropped so the newest snapshot always arrives.
// Callers serialize sends.
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
		return
	default:
	}
	select {
	case <-s.stateCh:
	default:
	}
	select {
	case s.stateCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
		// Drop if buffer full
	}
}
