package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

// historyLimit caps the rows kept in play_history.
const historyLimit = 500

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS resume_positions (
			uri TEXT PRIMARY KEY,
			position_ms INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS play_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uri TEXT NOT NULL,
			title TEXT,
			artist TEXT,
			album TEXT,
			played_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_play_history_played_at ON play_history(played_at DESC);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
