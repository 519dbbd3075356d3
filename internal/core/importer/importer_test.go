package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cclog/internal/core/db"
	"cclog/pkg/cclogs"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	_ = tmpfile.Close()

	database, err := db.New(tmpfile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return database
}

// setupProjectDir copies the sample log into a Claude-style encoded project
// directory so ImportDirectory decodes the project path from it.
func setupProjectDir(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	projectDir := filepath.Join(root, "-repo-a")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile("../../../pkg/cclogs/testdata/sample.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(projectDir, "11111111-1111-1111-1111-111111111111.jsonl")
	if err := os.WriteFile(target, data, 0644); err != nil {
		t.Fatal(err)
	}

	return root
}

func TestImportSession(t *testing.T) {
	database := setupTestDB(t)
	imp := New(database)

	session, err := cclogs.ParseFile("../../../pkg/cclogs/testdata/sample.jsonl")
	if err != nil {
		t.Fatal(err)
	}

	res, err := imp.ImportSession(session, "/repo/a", time.Time{})
	if err != nil {
		t.Fatalf("ImportSession() error = %v", err)
	}

	if res.MessagesImported != 5 {
		t.Errorf("MessagesImported = %d, want 5", res.MessagesImported)
	}
	if res.BlocksImported != 6 {
		t.Errorf("BlocksImported = %d, want 6", res.BlocksImported)
	}

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 session, got %d", count)
	}

	// Token accumulators written by the importer
	s, err := database.GetSession("11111111-1111-1111-1111-111111111111")
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalInputTokens != 120 || s.TotalOutputTokens != 45 {
		t.Errorf("Session totals = %d/%d, want 120/45", s.TotalInputTokens, s.TotalOutputTokens)
	}
	if s.Summary != "Fix flaky watcher test" {
		t.Errorf("Summary = %q", s.Summary)
	}
}

func TestImportSession_DuplicateUUIDsSkipped(t *testing.T) {
	database := setupTestDB(t)
	imp := New(database)

	session, err := cclogs.ParseFile("../../../pkg/cclogs/testdata/sample.jsonl")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := imp.ImportSession(session, "/repo/a", time.Time{}); err != nil {
		t.Fatal(err)
	}

	// Second direct pass: every entry with a UUID must hit the unique index
	// and be skipped, not fail the import
	res, err := imp.ImportSession(session, "/repo/a", time.Time{})
	if err != nil {
		t.Fatalf("Second ImportSession() error = %v", err)
	}
	if res.MessagesSkipped < 3 {
		t.Errorf("MessagesSkipped = %d, want at least the 3 UUID entries", res.MessagesSkipped)
	}

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM messages WHERE uuid IS NOT NULL").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Expected 3 UUID messages after re-import, got %d", count)
	}
}

func TestImportDirectory_Idempotent(t *testing.T) {
	database := setupTestDB(t)
	imp := New(database)
	root := setupProjectDir(t)

	first, err := imp.ImportDirectory(root, nil)
	if err != nil {
		t.Fatalf("ImportDirectory() error = %v", err)
	}
	if first.MessagesImported != 5 {
		t.Errorf("First pass imported %d messages, want 5", first.MessagesImported)
	}

	var countAfterFirst int
	if err := database.QueryRow("SELECT COUNT(*) FROM messages").Scan(&countAfterFirst); err != nil {
		t.Fatal(err)
	}

	second, err := imp.ImportDirectory(root, nil)
	if err != nil {
		t.Fatalf("Second ImportDirectory() error = %v", err)
	}
	if second.MessagesImported != 0 {
		t.Errorf("Second pass imported %d messages, want 0", second.MessagesImported)
	}

	var countAfterSecond int
	if err := database.QueryRow("SELECT COUNT(*) FROM messages").Scan(&countAfterSecond); err != nil {
		t.Fatal(err)
	}
	if countAfterSecond != countAfterFirst {
		t.Errorf("Row count changed across re-import: %d -> %d", countAfterFirst, countAfterSecond)
	}
}

func TestImportDirectory_Watermark(t *testing.T) {
	database := setupTestDB(t)
	imp := New(database)
	root := setupProjectDir(t)

	if _, err := imp.ImportDirectory(root, nil); err != nil {
		t.Fatal(err)
	}

	ts, ok, err := database.LastImportTimestamp("/repo/a")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Expected a watermark row for /repo/a")
	}

	// Newest entry in the sample file is the system entry
	want := time.Date(2025, 6, 1, 10, 0, 8, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("Watermark = %v, want %v", ts, want)
	}
}

func TestExtractProjectPath(t *testing.T) {
	got := extractProjectPath("/home/u/.claude/projects/-Users-neil-xuku-invoice/session.jsonl")
	if got != "/Users/neil/xuku/invoice" {
		t.Errorf("extractProjectPath = %q", got)
	}
}

func TestImportDirectory_SummaryOnlyIdempotent(t *testing.T) {
	database := setupTestDB(t)
	imp := New(database)

	// A file with no timestamped entries has nothing to advance the
	// watermark with; the file mtime must stand in or re-imports duplicate
	// its null-UUID rows
	root := t.TempDir()
	projectDir := filepath.Join(root, "-repo-b")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}
	line := `{"type":"summary","summary":"Renaming the config loader"}` + "\n"
	target := filepath.Join(projectDir, "22222222-2222-2222-2222-222222222222.jsonl")
	if err := os.WriteFile(target, []byte(line), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := imp.ImportDirectory(root, nil); err != nil {
		t.Fatalf("ImportDirectory() error = %v", err)
	}

	var countAfterFirst int
	if err := database.QueryRow("SELECT COUNT(*) FROM messages").Scan(&countAfterFirst); err != nil {
		t.Fatal(err)
	}
	if countAfterFirst != 1 {
		t.Fatalf("Expected 1 message after first pass, got %d", countAfterFirst)
	}

	_, ok, err := database.LastImportTimestamp("/repo/b")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("Expected a watermark row for /repo/b after a summary-only import")
	}

	second, err := imp.ImportDirectory(root, nil)
	if err != nil {
		t.Fatalf("Second ImportDirectory() error = %v", err)
	}
	if second.MessagesImported != 0 {
		t.Errorf("Second pass imported %d messages, want 0", second.MessagesImported)
	}

	var countAfterSecond int
	if err := database.QueryRow("SELECT COUNT(*) FROM messages").Scan(&countAfterSecond); err != nil {
		t.Fatal(err)
	}
	if countAfterSecond != countAfterFirst {
		t.Errorf("Row count changed across re-import: %d -> %d", countAfterFirst, countAfterSecond)
	}
}
