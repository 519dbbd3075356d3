package db

import (
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	_ = tmpfile.Close()

	database, err := New(tmpfile.Name())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return database
}

// insertSession creates a session and returns its internal id
func insertSession(t *testing.T, database *DB, sessionUUID, projectPath string) int64 {
	t.Helper()

	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := GetOrCreateSession(tx, sessionUUID, projectPath, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	return id
}

func insertMessage(t *testing.T, database *DB, m *Message) int64 {
	t.Helper()

	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := InsertMessage(tx, m)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	return id
}

func insertBlocks(t *testing.T, database *DB, messageID int64, blocks []ContentBlock) {
	t.Helper()

	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := InsertContentBlocks(tx, messageID, blocks); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	database := setupTestDB(t)

	var count int
	err := database.conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}

	// sessions, messages, content_blocks, import_metadata plus the FTS tables
	if count < 4 {
		t.Errorf("Expected at least 4 tables, got %d", count)
	}
}

func TestNew_WALMode(t *testing.T) {
	database := setupTestDB(t)

	var journalMode string
	err := database.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}

	if journalMode != "wal" {
		t.Errorf("Expected WAL mode, got %s", journalMode)
	}
}

func TestNew_ForeignKeys(t *testing.T) {
	database := setupTestDB(t)

	var fkEnabled int
	err := database.conn.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	if err != nil {
		t.Fatalf("Failed to query foreign keys: %v", err)
	}

	if fkEnabled != 1 {
		t.Errorf("Expected foreign keys enabled (1), got %d", fkEnabled)
	}
}

func TestIndexes(t *testing.T) {
	database := setupTestDB(t)

	var indexCount int
	err := database.conn.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND tbl_name='messages'
	`).Scan(&indexCount)
	if err != nil {
		t.Fatalf("Failed to count message indexes: %v", err)
	}

	// session_id, type, timestamp, (session_id, timestamp), partial unique uuid
	if indexCount < 5 {
		t.Errorf("Expected at least 5 indexes on messages, got %d", indexCount)
	}

	err = database.conn.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND tbl_name='content_blocks'
	`).Scan(&indexCount)
	if err != nil {
		t.Fatalf("Failed to count block indexes: %v", err)
	}

	// message_id, block_type, tool_use_id, tool_name
	if indexCount < 4 {
		t.Errorf("Expected at least 4 indexes on content_blocks, got %d", indexCount)
	}
}

func TestMessageUUID_PartialUnique(t *testing.T) {
	database := setupTestDB(t)
	sessionID := insertSession(t, database, "11111111-1111-1111-1111-111111111111", "/repo/a")

	insertMessage(t, database, &Message{SessionID: sessionID, UUID: "m1", Type: "user", Role: "user"})

	// Second insert with the same UUID must fail with the sentinel
	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = InsertMessage(tx, &Message{SessionID: sessionID, UUID: "m1", Type: "user", Role: "user"})
	if !errors.Is(err, ErrDuplicateMessage) {
		t.Errorf("Expected ErrDuplicateMessage, got %v", err)
	}
	_ = tx.Rollback()

	// Two messages with no UUID both succeed
	insertMessage(t, database, &Message{SessionID: sessionID, Type: "summary"})
	insertMessage(t, database, &Message{SessionID: sessionID, Type: "summary"})

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM messages WHERE uuid IS NULL").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected 2 NULL-UUID messages, got %d", count)
	}
}

func TestInsertMessage_TypeRequired(t *testing.T) {
	database := setupTestDB(t)
	sessionID := insertSession(t, database, "11111111-1111-1111-1111-111111111111", "/repo/a")

	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = InsertMessage(tx, &Message{SessionID: sessionID, UUID: "m1"})
	if err == nil {
		t.Error("Expected error for message without type")
	}
	if errors.Is(err, ErrDuplicateMessage) {
		t.Error("Missing type must not be reported as a duplicate")
	}
}

func TestForeignKeyConstraint(t *testing.T) {
	database := setupTestDB(t)

	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = InsertMessage(tx, &Message{SessionID: 99999, UUID: "m1", Type: "user"})
	if err == nil {
		t.Error("Expected foreign key constraint error, got nil")
	}
	if errors.Is(err, ErrDuplicateMessage) {
		t.Error("FK violation must not be reported as a duplicate")
	}
}

func TestCascadeDelete(t *testing.T) {
	database := setupTestDB(t)
	sessionID := insertSession(t, database, "11111111-1111-1111-1111-111111111111", "/repo/a")

	msgID := insertMessage(t, database, &Message{
		SessionID: sessionID, UUID: "m1", Type: "user", Role: "user", Timestamp: time.Now(),
	})
	insertBlocks(t, database, msgID, []ContentBlock{
		{BlockIndex: 0, BlockType: "text", TextContent: "hello world"},
	})

	if err := database.DeleteSession("11111111-1111-1111-1111-111111111111"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	var msgCount, blockCount, ftsCount int
	if err := database.QueryRow("SELECT COUNT(*) FROM messages").Scan(&msgCount); err != nil {
		t.Fatal(err)
	}
	if err := database.QueryRow("SELECT COUNT(*) FROM content_blocks").Scan(&blockCount); err != nil {
		t.Fatal(err)
	}
	if err := database.QueryRow("SELECT COUNT(*) FROM content_blocks_fts").Scan(&ftsCount); err != nil {
		t.Fatal(err)
	}

	if msgCount != 0 || blockCount != 0 || ftsCount != 0 {
		t.Errorf("Cascade left rows behind: messages=%d blocks=%d fts=%d", msgCount, blockCount, ftsCount)
	}
}

func TestDeleteSession_NotFound(t *testing.T) {
	database := setupTestDB(t)

	err := database.DeleteSession("does-not-exist")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Expected sql.ErrNoRows, got %v", err)
	}
}

func TestSessionAccumulators(t *testing.T) {
	database := setupTestDB(t)
	sessionID := insertSession(t, database, "11111111-1111-1111-1111-111111111111", "/repo/a")

	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := AddSessionTokens(tx, sessionID, 100, 40, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := AddSessionTokens(tx, sessionID, 50, 10, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	s, err := database.GetSession("11111111-1111-1111-1111-111111111111")
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalInputTokens != 150 || s.TotalOutputTokens != 50 {
		t.Errorf("Totals = %d/%d, want 150/50", s.TotalInputTokens, s.TotalOutputTokens)
	}
}

func TestSessionTokensDefaultZero(t *testing.T) {
	database := setupTestDB(t)
	insertSession(t, database, "11111111-1111-1111-1111-111111111111", "/repo/a")

	// Aggregation over fresh sessions must not hit NULL arithmetic
	var sum int
	err := database.QueryRow("SELECT SUM(total_input_tokens + total_output_tokens) FROM sessions").Scan(&sum)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 0 {
		t.Errorf("Expected 0 token sum, got %d", sum)
	}
}

func TestGetOrCreateSession_Idempotent(t *testing.T) {
	database := setupTestDB(t)

	first := insertSession(t, database, "11111111-1111-1111-1111-111111111111", "/repo/a")
	second := insertSession(t, database, "11111111-1111-1111-1111-111111111111", "/repo/a")

	if first != second {
		t.Errorf("Same UUID returned different ids: %d vs %d", first, second)
	}

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 session, got %d", count)
	}
}

func TestGetSessionMessages_OrderedByTimestamp(t *testing.T) {
	database := setupTestDB(t)
	sessionID := insertSession(t, database, "11111111-1111-1111-1111-111111111111", "/repo/a")

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// Insert out of chronological order
	insertMessage(t, database, &Message{SessionID: sessionID, UUID: "m2", Type: "assistant", Role: "assistant", Timestamp: base.Add(time.Minute)})
	insertMessage(t, database, &Message{SessionID: sessionID, UUID: "m1", Type: "user", Role: "user", Timestamp: base})

	messages, err := database.GetSessionMessages(sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].UUID != "m1" || messages[1].UUID != "m2" {
		t.Errorf("Messages not in timestamp order: %s, %s", messages[0].UUID, messages[1].UUID)
	}
}

func TestGetSessionMessages_SubsecondOrdering(t *testing.T) {
	database := setupTestDB(t)
	sessionID := insertSession(t, database, "11111111-1111-1111-1111-111111111111", "/repo/a")

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// 120ms has a trailing fractional zero; a trimmed rendering (".12Z")
	// would sort after ".125Z" lexicographically
	insertMessage(t, database, &Message{SessionID: sessionID, UUID: "m1", Type: "user", Role: "user", Timestamp: base.Add(120 * time.Millisecond)})
	insertMessage(t, database, &Message{SessionID: sessionID, UUID: "m2", Type: "assistant", Role: "assistant", Timestamp: base.Add(125 * time.Millisecond)})

	messages, err := database.GetSessionMessages(sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].UUID != "m1" || messages[1].UUID != "m2" {
		t.Errorf("Messages not in timestamp order: %s, %s", messages[0].UUID, messages[1].UUID)
	}
}

func TestFormatTime_FixedWidthFraction(t *testing.T) {
	earlier := time.Date(2025, 6, 1, 10, 0, 0, 120_000_000, time.UTC)
	later := time.Date(2025, 6, 1, 10, 0, 0, 125_000_000, time.UTC)

	if formatTime(earlier) >= formatTime(later) {
		t.Errorf("Stored strings not in chronological order: %q >= %q", formatTime(earlier), formatTime(later))
	}
	if got := parseTime(formatTime(earlier)); !got.Equal(earlier) {
		t.Errorf("Round trip = %v, want %v", got, earlier)
	}
}
