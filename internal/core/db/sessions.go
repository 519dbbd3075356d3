package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Session represents one Claude Code conversation
type Session struct {
	ID                int64
	SessionUUID       string
	ProjectPath       string
	Summary           string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	TotalInputTokens  int
	TotalOutputTokens int
	MessageCount      int
}

// GetOrCreateSession returns the internal id for a session UUID, inserting a
// new row on first sight. Runs inside the caller's import transaction.
func GetOrCreateSession(tx *sql.Tx, sessionUUID, projectPath string, createdAt time.Time) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM sessions WHERE session_uuid = ?`, sessionUUID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup session %s: %w", sessionUUID, err)
	}

	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	result, err := tx.Exec(`
		INSERT INTO sessions (session_uuid, project_path, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, sessionUUID, projectPath, formatTime(createdAt), formatTime(createdAt))
	if err != nil {
		return 0, fmt.Errorf("insert session %s: %w", sessionUUID, err)
	}

	return result.LastInsertId()
}

// AddSessionTokens adds a message's usage to the session accumulators and
// bumps updated_at. The store never computes the totals itself; the importer
// writes them as messages arrive.
func AddSessionTokens(tx *sql.Tx, sessionID int64, inputTokens, outputTokens int, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	_, err := tx.Exec(`
		UPDATE sessions
		SET total_input_tokens = total_input_tokens + ?,
		    total_output_tokens = total_output_tokens + ?,
		    updated_at = ?
		WHERE id = ?
	`, inputTokens, outputTokens, formatTime(at), sessionID)
	return err
}

// SetSessionSummary records the summary text for a session.
func SetSessionSummary(tx *sql.Tx, sessionID int64, summary string) error {
	_, err := tx.Exec(`UPDATE sessions SET summary = ? WHERE id = ?`, summary, sessionID)
	return err
}

// GetSession returns a single session by its external UUID.
func (db *DB) GetSession(sessionUUID string) (*Session, error) {
	var s Session
	var summary sql.NullString
	var projectPath sql.NullString
	var createdAt, updatedAt string
	err := db.QueryRow(`
		SELECT id, session_uuid, COALESCE(project_path, ''), summary,
		       created_at, updated_at, total_input_tokens, total_output_tokens,
		       (SELECT COUNT(*) FROM messages WHERE session_id = sessions.id)
		FROM sessions
		WHERE session_uuid = ?
	`, sessionUUID).Scan(
		&s.ID,
		&s.SessionUUID,
		&projectPath,
		&summary,
		&createdAt,
		&updatedAt,
		&s.TotalInputTokens,
		&s.TotalOutputTokens,
		&s.MessageCount,
	)
	if err != nil {
		return nil, err
	}
	s.ProjectPath = projectPath.String
	s.Summary = summary.String
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

// ListSessions returns sessions ordered by last update, newest first,
// optionally filtered by project path substring.
func (db *DB) ListSessions(projectPath string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT id, session_uuid, COALESCE(project_path, ''), COALESCE(summary, ''),
		       created_at, updated_at, total_input_tokens, total_output_tokens,
		       (SELECT COUNT(*) FROM messages WHERE session_id = s.id)
		FROM sessions s
	`
	args := []interface{}{}
	if projectPath != "" {
		query += ` WHERE s.project_path LIKE ?`
		args = append(args, "%"+projectPath+"%")
	}
	query += ` ORDER BY s.updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []Session
	for rows.Next() {
		var s Session
		var createdAt, updatedAt string
		err := rows.Scan(
			&s.ID,
			&s.SessionUUID,
			&s.ProjectPath,
			&s.Summary,
			&createdAt,
			&updatedAt,
			&s.TotalInputTokens,
			&s.TotalOutputTokens,
			&s.MessageCount,
		)
		if err != nil {
			return nil, err
		}
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// DeleteSession removes a session by UUID. Messages and content blocks go
// with it via the cascading foreign keys.
func (db *DB) DeleteSession(sessionUUID string) error {
	result, err := db.Exec(`DELETE FROM sessions WHERE session_uuid = ?`, sessionUUID)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionUUID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sessionUUID, sql.ErrNoRows)
	}
	return nil
}

// SessionDetail is a session with its full message and block tree
type SessionDetail struct {
	Session
	Messages []MessageDetail
}

// MessageDetail is a message envelope with its ordered content blocks
type MessageDetail struct {
	Message
	Blocks []ContentBlock
}

// GetSessionDetail returns a session with messages ordered by timestamp and
// each message's blocks ordered by block_index.
func (db *DB) GetSessionDetail(sessionUUID string) (*SessionDetail, error) {
	session, err := db.GetSession(sessionUUID)
	if err != nil {
		return nil, err
	}

	detail := &SessionDetail{Session: *session}

	messages, err := db.GetSessionMessages(session.ID)
	if err != nil {
		return nil, err
	}

	for _, msg := range messages {
		blocks, err := db.GetContentBlocks(msg.ID)
		if err != nil {
			return nil, fmt.Errorf("blocks for message %d: %w", msg.ID, err)
		}
		detail.Messages = append(detail.Messages, MessageDetail{Message: msg, Blocks: blocks})
	}

	return detail, nil
}
