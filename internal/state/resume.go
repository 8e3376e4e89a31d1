package state

import (
	"database/sql"
	"errors"
	"time"
)

// savePositions upserts every pending position. A zero position deletes
// the row, so finished tracks start from the top next time.
func savePositions(sqlDB *sql.DB, pending map[string]time.Duration, now time.Time) error {
	if len(pending) == 0 {
		return nil
	}
	return withTx(sqlDB, func(tx *sql.Tx) error {
		for uri, pos := range pending {
			var err error
			if pos <= 0 {
				_, err = tx.Exec(`DELETE FROM resume_positions WHERE uri = ?`, uri)
			} else {
				_, err = tx.Exec(`
					INSERT INTO resume_positions (uri, position_ms, updated_at)
					VALUES (?, ?, ?)
					ON CONFLICT(uri) DO UPDATE SET
						position_ms = excluded.position_ms,
						updated_at = excluded.updated_at
				`, uri, pos.Milliseconds(), now.Unix())
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func getPosition(db *sql.DB, uri string) (time.Duration, error) {
	var ms int64
	row := db.QueryRow(`SELECT position_ms FROM resume_positions WHERE uri = ?`, uri)
	err := row.Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}
