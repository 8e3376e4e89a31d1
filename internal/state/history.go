package state

import (
	"database/sql"
	"time"
)

// HistoryEntry is one completed load of a track.
type HistoryEntry struct {
	URI      string
	Title    string
	Artist   string
	Album    string
	PlayedAt time.Time
}

func addHistory(sqlDB *sql.DB, e HistoryEntry) error {
	return withTx(sqlDB, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO play_history (uri, title, artist, album, played_at)
			VALUES (?, ?, ?, ?, ?)
		`, e.URI, e.Title, e.Artist, e.Album, e.PlayedAt.UnixMilli())
		if err != nil {
			return err
		}

		// Trim to the newest historyLimit rows
		_, err = tx.Exec(`
			DELETE FROM play_history WHERE id NOT IN (
				SELECT id FROM play_history ORDER BY played_at DESC, id DESC LIMIT ?
			)
		`, historyLimit)
		return err
	})
}

func recentHistory(db *sql.DB, limit int) ([]HistoryEntry, error) {
	rows, err := db.Query(`
		SELECT uri, title, artist, album, played_at
		FROM play_history
		ORDER BY played_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var title, artist, album sql.NullString
		var playedAt int64
		if err := rows.Scan(&e.URI, &title, &artist, &album, &playedAt); err != nil {
			return nil, err
		}
		e.Title = nullStringValue(title)
		e.Artist = nullStringValue(artist)
		e.Album = nullStringValue(album)
		e.PlayedAt = time.UnixMilli(playedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
