package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cclog/internal/core/db"
	"cclog/pkg/cclogs"
)

// Importer ingests parsed session logs into the store
type Importer struct {
	db *db.DB
}

// New creates a new importer
func New(database *db.DB) *Importer {
	return &Importer{db: database}
}

// Result aggregates an import pass
type Result struct {
	FilesImported    int
	MessagesImported int
	MessagesSkipped  int
	BlocksImported   int
}

// ImportSession imports a single parsed session file in one transaction.
// Entries already in the store are skipped, not errors: entries at or before
// the project watermark are not attempted, and a duplicate message UUID from
// the unique index means another pass (or a racing importer) got there
// first. Anything else is a real failure and rolls the file back.
func (i *Importer) ImportSession(session *cclogs.ParsedSession, projectPath string, since time.Time) (*Result, error) {
	res := &Result{}

	tx, err := i.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	createdAt := session.FileMtime
	for _, entry := range session.Entries {
		if !entry.Timestamp.IsZero() {
			createdAt = entry.Timestamp
			break
		}
	}

	sessionID, err := db.GetOrCreateSession(tx, session.SessionUUID, projectPath, createdAt)
	if err != nil {
		return nil, err
	}

	if session.Summary != "" {
		if err := db.SetSessionSummary(tx, sessionID, session.Summary); err != nil {
			return nil, fmt.Errorf("set summary: %w", err)
		}
	}

	for _, entry := range session.Entries {
		// Entries without timestamps cannot be positioned against the
		// watermark; they only land on a project's first pass
		if !since.IsZero() && (entry.Timestamp.IsZero() || !entry.Timestamp.After(since)) {
			res.MessagesSkipped++
			continue
		}

		msg := db.Message{
			SessionID:    sessionID,
			UUID:         entry.UUID,
			Type:         entry.Type,
			Role:         entry.Role,
			Timestamp:    entry.Timestamp,
			CWD:          entry.CWD,
			InputTokens:  entry.InputTokens,
			OutputTokens: entry.OutputTokens,
			Version:      entry.Version,
		}

		messageID, err := db.InsertMessage(tx, &msg)
		if errors.Is(err, db.ErrDuplicateMessage) {
			res.MessagesSkipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		res.MessagesImported++

		if len(entry.Blocks) > 0 {
			blocks := make([]db.ContentBlock, 0, len(entry.Blocks))
			for _, b := range entry.Blocks {
				blocks = append(blocks, db.ContentBlock{
					BlockIndex:  b.Index,
					BlockType:   b.Type,
					TextContent: b.Text,
					ToolName:    b.ToolName,
					ToolInput:   b.ToolInput,
					ToolUseID:   b.ToolUseID,
				})
			}
			if err := db.InsertContentBlocks(tx, messageID, blocks); err != nil {
				return nil, err
			}
			res.BlocksImported += len(blocks)
		}

		if err := db.AddSessionTokens(tx, sessionID, entry.InputTokens, entry.OutputTokens, entry.Timestamp); err != nil {
			return nil, fmt.Errorf("update session totals: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	res.FilesImported = 1
	return res, nil
}

// ImportDirectory imports all session files under a directory tree,
// advancing each project's watermark after its files are done.
func (i *Importer) ImportDirectory(dirPath string, progress ProgressCallback) (*Result, error) {
	var files []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".jsonl" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	total := &Result{}
	watermarks := make(map[string]time.Time) // watermark read per project
	highWater := make(map[string]time.Time)  // newest entry or file mtime seen per project

	for _, file := range files {
		projectPath := extractProjectPath(file)

		since, ok := watermarks[projectPath]
		if !ok {
			ts, _, err := i.db.LastImportTimestamp(projectPath)
			if err != nil {
				return total, err
			}
			since = ts
			watermarks[projectPath] = ts
		}

		session, err := cclogs.ParseFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to parse %s: %v\n", file, err)
			continue
		}

		res, err := i.ImportSession(session, projectPath, since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to import %s: %v\n", file, err)
			continue
		}

		total.FilesImported += res.FilesImported
		total.MessagesImported += res.MessagesImported
		total.MessagesSkipped += res.MessagesSkipped
		total.BlocksImported += res.BlocksImported

		fileHigh := time.Time{}
		for _, entry := range session.Entries {
			if entry.Timestamp.After(fileHigh) {
				fileHigh = entry.Timestamp
			}
		}
		if fileHigh.IsZero() {
			// A file whose entries all lack timestamps (summary-only) must
			// still advance the watermark, or every sync re-inserts its
			// null-UUID rows. The file mtime stands in for them.
			fileHigh = session.FileMtime
		}
		if fileHigh.After(highWater[projectPath]) {
			highWater[projectPath] = fileHigh
		}

		if progress != nil {
			progress.Update(session.Summary, projectPath)
		}
	}

	for projectPath, ts := range highWater {
		if ts.IsZero() {
			continue
		}
		if err := i.db.SetLastImportTimestamp(projectPath, ts); err != nil {
			return total, err
		}
	}

	return total, nil
}

// extractProjectPath decodes a project directory name of the form
// -Users-neil-xuku-invoice back into /Users/neil/xuku/invoice.
func extractProjectPath(filePath string) string {
	dir := filepath.Dir(filePath)
	base := filepath.Base(dir)

	if len(base) > 0 && base[0] == '-' {
		return "/" + strings.ReplaceAll(base[1:], "-", "/")
	}

	return dir
}
