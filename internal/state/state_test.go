package state

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/player"
)

const testURI = "https://cdn.example.com/tracks/a.mp3"

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestPosition_Empty(t *testing.T) {
	m := openTestManager(t)

	pos, err := m.Position(testURI)
	require.NoError(t, err)
	assert.Zero(t, pos)
}

func TestSavePosition_PendingThenFlushed(t *testing.T) {
	m := openTestManager(t)

	m.SavePosition(testURI, 42*time.Second)
	pos, err := m.Position(testURI)
	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, pos, "pending positions are visible before the write")

	require.NoError(t, m.Flush())
	stored, err := getPosition(m.db, testURI)
	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, stored)

	// Later saves replace earlier ones
	m.SavePosition(testURI, time.Minute)
	require.NoError(t, m.Flush())
	stored, err = getPosition(m.db, testURI)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, stored)
}

func TestSavePosition_ZeroDeletes(t *testing.T) {
	m := openTestManager(t)

	m.SavePosition(testURI, time.Minute)
	require.NoError(t, m.Flush())
	m.SavePosition(testURI, 0)
	require.NoError(t, m.Flush())

	var n int
	require.NoError(t, m.db.QueryRow(`SELECT COUNT(*) FROM resume_positions`).Scan(&n))
	assert.Zero(t, n)
}

func TestSavePosition_Debounced(t *testing.T) {
	m := openTestManager(t)

	m.SavePosition(testURI, 10*time.Second)
	require.Eventually(t, func() bool {
		pos, err := getPosition(m.db, testURI)
		return err == nil && pos == 10*time.Second
	}, 5*saveDebounce, 10*time.Millisecond)
}

func TestClose_FlushesPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ripple.db")
	m, err := OpenPath(path)
	require.NoError(t, err)
	m.SavePosition(testURI, 90*time.Second)
	require.NoError(t, m.Close())

	m, err = OpenPath(path)
	require.NoError(t, err)
	defer m.Close()
	pos, err := m.Position(testURI)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, pos)
}

func TestRecordPlay_NewestFirst(t *testing.T) {
	m := openTestManager(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, m.RecordPlay(HistoryEntry{URI: "a.mp3", Title: "A", PlayedAt: base}))
	require.NoError(t, m.RecordPlay(HistoryEntry{URI: "b.mp3", Artist: "B", PlayedAt: base.Add(time.Minute)}))

	entries, err := m.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b.mp3", entries[0].URI)
	assert.Equal(t, "B", entries[0].Artist)
	assert.Empty(t, entries[0].Title)
	assert.Equal(t, "a.mp3", entries[1].URI)
	assert.True(t, entries[1].PlayedAt.Equal(base))

	entries, err = m.Recent(1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordPlay_DefaultsTimestamp(t *testing.T) {
	m := openTestManager(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	require.NoError(t, m.RecordPlay(HistoryEntry{URI: testURI}))
	entries, err := m.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].PlayedAt.Equal(fixed))
}

func TestRecordPlay_TrimsHistory(t *testing.T) {
	m := openTestManager(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range historyLimit + 5 {
		require.NoError(t, m.RecordPlay(HistoryEntry{
			URI:      fmt.Sprintf("%d.mp3", i),
			PlayedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	var n int
	require.NoError(t, m.db.QueryRow(`SELECT COUNT(*) FROM play_history`).Scan(&n))
	assert.Equal(t, historyLimit, n)

	entries, err := m.Recent(1)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d.mp3", historyLimit+4), entries[0].URI)
}

type fakeStore struct {
	mu        sync.Mutex
	positions map[string]time.Duration
	plays     []HistoryEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{positions: make(map[string]time.Duration)}
}

func (f *fakeStore) SavePosition(uri string, pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positions[uri] = pos
}

func (f *fakeStore) RecordPlay(e HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, e)
	return nil
}

func (f *fakeStore) position(uri string) (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pos, ok := f.positions[uri]
	return pos, ok
}

func (f *fakeStore) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.plays)
}

func TestTracker(t *testing.T) {
	backend := player.NewMock()
	backend.SetTrackDuration(testURI, 3*time.Minute)
	ctl := playback.New(backend)
	defer ctl.Close()

	store := newFakeStore()
	tracker := Track(store, ctl, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, ctl.Load(ctx, playback.Track{URI: testURI, Title: "Track A"}))
	require.Eventually(t, func() bool { return store.playCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, ctl.Play(ctx))
	require.NoError(t, ctl.Seek(ctx, 75*time.Second))
	require.Eventually(t, func() bool {
		pos, _ := store.position(testURI)
		return pos == 75*time.Second
	}, time.Second, 5*time.Millisecond)

	// Reload starts a new session and a new history entry
	require.NoError(t, ctl.Reload(ctx))
	require.Eventually(t, func() bool { return store.playCount() == 2 }, time.Second, 5*time.Millisecond)

	tracker.Stop()
	store.mu.Lock()
	assert.Equal(t, "Track A", store.plays[0].Title)
	store.mu.Unlock()
}
