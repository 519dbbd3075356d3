package db

import (
	"database/sql"
	"fmt"
	"time"
)

// LastImportTimestamp returns the import watermark for a project. The second
// return value is false when the project has never been imported.
func (db *DB) LastImportTimestamp(projectPath string) (time.Time, bool, error) {
	var ts string
	err := db.QueryRow(`
		SELECT last_import_timestamp FROM import_metadata WHERE project_path = ?
	`, projectPath).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read watermark for %s: %w", projectPath, err)
	}
	return parseTime(ts), true, nil
}

// SetLastImportTimestamp upserts the import watermark for a project after a
// successful import pass. The watermark only moves forward.
func (db *DB) SetLastImportTimestamp(projectPath string, ts time.Time) error {
	_, err := db.Exec(`
		INSERT INTO import_metadata (project_path, last_import_timestamp)
		VALUES (?, ?)
		ON CONFLICT(project_path) DO UPDATE SET
			last_import_timestamp = excluded.last_import_timestamp
		WHERE excluded.last_import_timestamp > import_metadata.last_import_timestamp
	`, projectPath, formatTime(ts))
	if err != nil {
		return fmt.Errorf("upsert watermark for %s: %w", projectPath, err)
	}
	return nil
}
