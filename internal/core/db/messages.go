package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateMessage is returned when inserting a message whose UUID is
// already in the store. Importers treat it as already-imported and move on.
var ErrDuplicateMessage = errors.New("message uuid already exists")

// Message represents one log entry envelope. Content lives in content_blocks.
type Message struct {
	ID           int64
	SessionID    int64
	UUID         string // empty for synthetic entries without a UUID
	Type         string
	Role         string
	Timestamp    time.Time
	CWD          string
	InputTokens  int
	OutputTokens int
	Version      string
}

// InsertMessage inserts a message envelope inside the caller's transaction
// and returns its internal id. A duplicate non-null UUID fails with
// ErrDuplicateMessage; the unique index, not a prior lookup, is the guard,
// so concurrent imports of the same file race safely.
func InsertMessage(tx *sql.Tx, m *Message) (int64, error) {
	if m.Type == "" {
		return 0, fmt.Errorf("message %q: type is required", m.UUID)
	}

	result, err := tx.Exec(`
		INSERT INTO messages (
			session_id, uuid, type, role, timestamp,
			cwd, input_tokens, output_tokens, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.SessionID,
		nullString(m.UUID),
		m.Type,
		nullString(m.Role),
		nullTime(m.Timestamp),
		nullString(m.CWD),
		nullInt(m.InputTokens),
		nullInt(m.OutputTokens),
		nullString(m.Version),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("message %q: %w", m.UUID, ErrDuplicateMessage)
		}
		return 0, fmt.Errorf("insert message %q: %w", m.UUID, err)
	}

	return result.LastInsertId()
}

// GetSessionMessages returns the envelopes for a session ordered by
// timestamp, oldest first. Entries without a timestamp sort first.
func (db *DB) GetSessionMessages(sessionID int64) ([]Message, error) {
	rows, err := db.Query(`
		SELECT id, session_id, COALESCE(uuid, ''), type, COALESCE(role, ''),
		       COALESCE(timestamp, ''), COALESCE(cwd, ''),
		       COALESCE(input_tokens, 0), COALESCE(output_tokens, 0),
		       COALESCE(version, '')
		FROM messages
		WHERE session_id = ?
		ORDER BY timestamp ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var messages []Message
	for rows.Next() {
		var m Message
		var ts string
		err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&m.UUID,
			&m.Type,
			&m.Role,
			&ts,
			&m.CWD,
			&m.InputTokens,
			&m.OutputTokens,
			&m.Version,
		)
		if err != nil {
			return nil, err
		}
		if ts != "" {
			m.Timestamp = parseTime(ts)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}
