// Package state persists resume positions and play history in SQLite.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "ripple"
	dbFileName   = "ripple.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string]time.Duration
	now       func() time.Time
}

// Open opens the database under the XDG data directory.
func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at path, creating it if needed. ":memory:"
// opens a private in-memory database.
func OpenPath(path string) (*Manager, error) {
	if path != ":memory:" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db, pending: make(map[string]time.Duration), now: time.Now}, nil
}

// Close flushes pending positions and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.takePendingLocked()
	m.saveMu.Unlock()

	// Flush pending state
	err := savePositions(m.db, pending, m.now())
	if cerr := m.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// SavePosition records pos for uri. Writes are debounced; Flush or Close
// forces them out.
func (m *Manager) SavePosition(uri string, pos time.Duration) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending[uri] = pos

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		_ = m.Flush()
	})
}

// Flush writes pending positions now.
func (m *Manager) Flush() error {
	m.saveMu.Lock()
	pending := m.takePendingLocked()
	m.saveMu.Unlock()
	return savePositions(m.db, pending, m.now())
}

func (m *Manager) takePendingLocked() map[string]time.Duration {
	if len(m.pending) == 0 {
		return nil
	}
	pending := m.pending
	m.pending = make(map[string]time.Duration)
	return pending
}

// Position returns the saved resume position for uri, or zero.
func (m *Manager) Position(uri string) (time.Duration, error) {
	m.saveMu.Lock()
	pos, ok := m.pending[uri]
	m.saveMu.Unlock()
	if ok {
		return pos, nil
	}
	return getPosition(m.db, uri)
}

// RecordPlay appends track to the play history.
func (m *Manager) RecordPlay(entry HistoryEntry) error {
	if entry.PlayedAt.IsZero() {
		entry.PlayedAt = m.now()
	}
	return addHistory(m.db, entry)
}

// Recent returns up to limit history entries, newest first.
func (m *Manager) Recent(limit int) ([]HistoryEntry, error) {
	return recentHistory(m.db, limit)
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// withTx executes fn within a transaction.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func nullStringValue(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}
