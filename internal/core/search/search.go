package search

import (
	"database/sql"
	"fmt"
	"strings"

	"cclog/internal/core/db"
)

// Result represents a single search hit: one content block with its
// message and session context
type Result struct {
	BlockID        int64
	BlockType      string
	MessageUUID    string
	MessageType    string
	SessionUUID    string
	SessionSummary string
	Snippet        string
	Timestamp      string
	ProjectPath    string
}

// Most recent messages first
const defaultOrderBy = "m.timestamp DESC"

// Search performs a full-text search using the natural language FTS table
func Search(database *db.DB, query string, limit int) ([]Result, error) {
	return search(database, query, "content_blocks_fts", limit)
}

// SearchCode performs a full-text search using the code-optimized FTS table,
// which skips stemming to preserve identifiers
func SearchCode(database *db.DB, query string, limit int) ([]Result, error) {
	return search(database, query, "content_blocks_fts_code", limit)
}

func search(database *db.DB, query string, ftsTable string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if limit <= 0 {
		limit = 1000
	}

	// FTS5 chokes on these; fall back to LIKE for exact substring matching
	hasSpecialChars := strings.ContainsAny(query, "-_@#$%&")

	var rows *sql.Rows
	var err error

	if hasSpecialChars {
		rows, err = database.Query(fmt.Sprintf(`
			SELECT
				cb.id,
				cb.block_type,
				COALESCE(m.uuid, ''),
				m.type,
				s.session_uuid,
				COALESCE(s.summary, ''),
				cb.text_content,
				COALESCE(m.timestamp, ''),
				COALESCE(s.project_path, '')
			FROM content_blocks cb
			JOIN messages m ON m.id = cb.message_id
			JOIN sessions s ON s.id = m.session_id
			WHERE cb.text_content LIKE '%%' || ? || '%%'
			ORDER BY %s
			LIMIT ?
		`, defaultOrderBy), query, limit)
	} else {
		stmt := fmt.Sprintf(`
			SELECT
				cb.id,
				cb.block_type,
				COALESCE(m.uuid, ''),
				m.type,
				s.session_uuid,
				COALESCE(s.summary, ''),
				snippet(%s, -1, '', '', '...', 64) as snippet,
				COALESCE(m.timestamp, ''),
				COALESCE(s.project_path, '')
			FROM %s
			JOIN content_blocks cb ON %s.rowid = cb.id
			JOIN messages m ON m.id = cb.message_id
			JOIN sessions s ON s.id = m.session_id
			WHERE %s MATCH ?
			ORDER BY %s
			LIMIT ?
		`, ftsTable, ftsTable, ftsTable, ftsTable, defaultOrderBy)

		rows, err = database.Query(stmt, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.BlockID,
			&r.BlockType,
			&r.MessageUUID,
			&r.MessageType,
			&r.SessionUUID,
			&r.SessionSummary,
			&r.Snippet,
			&r.Timestamp,
			&r.ProjectPath,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return results, nil
}

// SearchWithFilters runs a filtered search. Filter syntax is parsed from the
// query by ParseQuery; empty filter fields are ignored.
func SearchWithFilters(database *db.DB, filters Filters, limit int) ([]Result, error) {
	results, err := Search(database, filters.Query, limit)
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		if filters.Project != "" && !strings.Contains(r.ProjectPath, filters.Project) {
			continue
		}
		if filters.HasAfter || filters.HasBefore {
			ts := parseResultTime(r.Timestamp)
			if ts.IsZero() {
				continue
			}
			if filters.HasAfter && ts.Before(filters.AfterDate) {
				continue
			}
			if filters.HasBefore && ts.After(filters.BeforeDate) {
				continue
			}
		}
		filtered = append(filtered, r)
	}

	return filtered, nil
}

// ToolInvocation resolves a tool_use_id to its tool_use block and any
// tool_result blocks carrying the same correlation id. The id is a logical
// join key across messages, so either side may be missing from the log.
func ToolInvocation(database *db.DB, toolUseID string) (use *db.ContentBlock, results []db.ContentBlock, err error) {
	blocks, err := database.GetBlocksByToolUseID(toolUseID)
	if err != nil {
		return nil, nil, err
	}

	for i := range blocks {
		switch blocks[i].BlockType {
		case "tool_use":
			use = &blocks[i]
		case "tool_result":
			results = append(results, blocks[i])
		}
	}

	if use == nil && len(results) == 0 {
		return nil, nil, fmt.Errorf("no blocks found for tool_use_id %s", toolUseID)
	}

	return use, results, nil
}
