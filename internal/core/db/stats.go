package db

import (
	"database/sql"
	"time"
)

// Stats represents database statistics
type Stats struct {
	TotalSessions          int
	TotalMessages          int
	TotalBlocks            int
	TotalInputTokens       int64
	TotalOutputTokens      int64
	OldestSession          time.Time
	NewestSession          time.Time
	MostActiveProject      string
	MostActiveProjectCount int
	BlocksByType           map[string]int
}

// GetStats returns comprehensive database statistics
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{BlocksByType: make(map[string]int)}

	err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&stats.TotalSessions)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&stats.TotalMessages)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow("SELECT COUNT(*) FROM content_blocks").Scan(&stats.TotalBlocks)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`
		SELECT COALESCE(SUM(total_input_tokens), 0), COALESCE(SUM(total_output_tokens), 0)
		FROM sessions
	`).Scan(&stats.TotalInputTokens, &stats.TotalOutputTokens)
	if err != nil {
		return nil, err
	}

	if stats.TotalSessions > 0 {
		var minCreated, maxUpdated sql.NullString
		err = db.QueryRow("SELECT MIN(created_at), MAX(updated_at) FROM sessions").Scan(&minCreated, &maxUpdated)
		if err != nil {
			return nil, err
		}
		if minCreated.Valid {
			stats.OldestSession = parseTime(minCreated.String)
		}
		if maxUpdated.Valid {
			stats.NewestSession = parseTime(maxUpdated.String)
		}

		err = db.QueryRow(`
			SELECT COALESCE(project_path, ''), COUNT(*) as cnt
			FROM sessions
			GROUP BY project_path
			ORDER BY cnt DESC
			LIMIT 1
		`).Scan(&stats.MostActiveProject, &stats.MostActiveProjectCount)
		if err != nil && err != sql.ErrNoRows {
			return nil, err
		}
	}

	rows, err := db.Query(`SELECT block_type, COUNT(*) FROM content_blocks GROUP BY block_type`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var blockType string
		var count int
		if err := rows.Scan(&blockType, &count); err != nil {
			return nil, err
		}
		stats.BlocksByType[blockType] = count
	}

	return stats, rows.Err()
}
