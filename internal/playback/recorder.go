package playback

// Recorder receives controller telemetry. Implementations must be safe for
// concurrent use and must not call back into the controller.
type Recorder interface {
	Transition(from, to Status)
	Load(result string) // "ok", "error", "superseded"
	Seek(result string) // "ok", "error", "rejected", "superseded"
	Failure(kind ErrorKind)
	StaleDropped()
}

type nopRecorder struct{}

func (nopRecorder) Transition(Status, Status) {}
func (nopRecorder) Load(string)               {}
func (nopRecorder) Seek(string)               {}
func (nopRecorder) Failure(ErrorKind)         {}
func (nopRecorder) StaleDropped()             {}
