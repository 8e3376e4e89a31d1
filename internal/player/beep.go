package player

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
)

// seekSettle is how long output stays muted after a seek to let the
// speaker buffer drain.
const seekSettle = 100 * time.Millisecond

// The speaker is a process-wide device; it is initialized once with the
// sample rate of the first track and everything else is resampled to it.
var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// ErrUnsupportedURI is returned by Beep for URIs it cannot open.
var ErrUnsupportedURI = errors.New("unsupported uri")

// Beep plays local MP3 and FLAC files through the system speaker.
type Beep struct {
	mu sync.Mutex

	state    State
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	muted    bool
	queued   bool // sequence handed to the speaker and not yet drained
	seq      int  // bumped on every load, guards stale end callbacks
}

// NewBeep creates a speaker backend with nothing loaded.
func NewBeep() *Beep {
	return &Beep{state: Stopped}
}

// IsMusicFile reports whether path has an extension Beep can decode.
func IsMusicFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == extMP3 || ext == extFLAC
}

// LocalPath resolves a plain path or file:// URI to a filesystem path.
func LocalPath(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedURI, u.Scheme)
	}
	return u.Path, nil
}

// Load opens and decodes uri, leaving playback paused at zero.
func (b *Beep) Load(_ context.Context, uri string) (LoadResult, error) {
	path, err := LocalPath(uri)
	if err != nil {
		return LoadResult{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != extMP3 && ext != extFLAC {
		return LoadResult{}, fmt.Errorf("unsupported format: %s", ext)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()

	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case extMP3:
		streamer, format, err = mp3.Decode(f)
	case extFLAC:
		streamer, format, err = flac.Decode(f)
	}
	if err != nil {
		f.Close()
		return LoadResult{}, err
	}

	if err := initSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		f.Close()
		return LoadResult{}, err
	}

	var out beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		out = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}

	b.file = f
	b.streamer = streamer
	b.format = format
	b.ctrl = &beep.Ctrl{Streamer: out, Paused: true}
	b.volume = &effects.Volume{Streamer: b.ctrl, Base: 2, Silent: b.muted}
	b.state = Paused
	b.queued = false
	b.seq++

	return LoadResult{Duration: format.SampleRate.D(streamer.Len())}, nil
}

func initSpeaker(rate beep.SampleRate) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return err
	}
	speakerSampleRate = rate
	speakerInitialized = true
	return nil
}

// Play starts or resumes playback, re-queueing the stream after it ended.
func (b *Beep) Play(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctrl == nil {
		return errors.New("nothing loaded")
	}
	if !b.queued {
		seq := b.seq
		speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
			// Runs on the speaker goroutine with the speaker locked.
			go b.drained(seq)
		})))
		b.queued = true
	}
	speaker.Lock()
	b.ctrl.Paused = false
	speaker.Unlock()
	b.state = Playing
	return nil
}

func (b *Beep) drained(seq int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		return
	}
	b.queued = false
	if b.state == Playing {
		b.state = Paused
	}
}

// Pause pauses playback.
func (b *Beep) Pause(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Playing || b.ctrl == nil {
		return nil
	}
	speaker.Lock()
	b.ctrl.Paused = true
	speaker.Unlock()
	b.state = Paused
	return nil
}

// Stop halts output and rewinds, keeping the track loaded.
func (b *Beep) Stop(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return nil
	}
	if b.queued {
		speaker.Clear()
		b.queued = false
	}
	b.seq++
	speaker.Lock()
	b.ctrl.Paused = true
	err := b.streamer.Seek(0)
	speaker.Unlock()
	b.state = Paused
	return err
}

// SeekTo moves the playhead to position, muting briefly to avoid artifacts.
func (b *Beep) SeekTo(ctx context.Context, position time.Duration) error {
	b.mu.Lock()
	if b.streamer == nil {
		b.mu.Unlock()
		return errors.New("nothing loaded")
	}
	n := min(max(b.format.SampleRate.N(position), 0), b.streamer.Len())

	speaker.Lock()
	b.volume.Silent = true
	err := b.streamer.Seek(n)
	speaker.Unlock()
	b.mu.Unlock()
	if err != nil {
		b.restoreVolume()
		return err
	}

	select {
	case <-time.After(seekSettle):
	case <-ctx.Done():
	}
	b.restoreVolume()
	return nil
}

func (b *Beep) restoreVolume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.volume == nil {
		return
	}
	speaker.Lock()
	b.volume.Silent = b.muted
	speaker.Unlock()
}

// Position returns the current playback position.
func (b *Beep) Position() (time.Duration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return 0, nil
	}
	speaker.Lock()
	pos := b.format.SampleRate.D(b.streamer.Position())
	speaker.Unlock()
	return pos, nil
}

// Duration returns the decoded length of the current track.
func (b *Beep) Duration() (time.Duration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return 0, nil
	}
	return b.format.SampleRate.D(b.streamer.Len()), nil
}

// SetMuted silences output without pausing it.
func (b *Beep) SetMuted(muted bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.muted = muted
	if b.volume != nil {
		speaker.Lock()
		b.volume.Silent = muted
		speaker.Unlock()
	}
	return nil
}

// Unload stops playback and releases the file and decoder.
func (b *Beep) Unload(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.releaseLocked()
}

func (b *Beep) releaseLocked() error {
	if b.queued {
		speaker.Clear()
		b.queued = false
	}
	b.seq++

	var errs []error
	if b.streamer != nil {
		errs = append(errs, b.streamer.Close())
		b.streamer = nil
	}
	if b.file != nil {
		// Decoders usually close the file themselves.
		if err := b.file.Close(); !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
		b.file = nil
	}
	b.ctrl = nil
	b.volume = nil
	b.state = Stopped
	return errors.Join(errs...)
}

// State returns the transport state.
func (b *Beep) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Verify Beep implements the backend capabilities at compile time.
var (
	_ Backend = (*Beep)(nil)
	_ Muter   = (*Beep)(nil)
)
