// Package cclogs parses Claude Code session log files (JSONL) into
// structured entries: one envelope per line, with the message content split
// into ordered blocks.
package cclogs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParsedSession represents a fully parsed session file
type ParsedSession struct {
	SessionUUID string
	Summary     string
	Entries     []ParsedEntry
	FilePath    string
	FileMtime   time.Time
}

// ParsedEntry represents one JSONL log entry
type ParsedEntry struct {
	UUID         string // empty for summary and other synthetic entries
	Type         string // user, assistant, system, summary, ...
	Role         string // user or assistant, empty otherwise
	Timestamp    time.Time
	CWD          string
	Version      string
	InputTokens  int
	OutputTokens int
	Blocks       []ParsedBlock
}

// ParsedBlock is one content block within an entry
type ParsedBlock struct {
	Index     int
	Type      string // text, tool_use, tool_result, thinking
	Text      string
	ToolName  string
	ToolInput json.RawMessage
	ToolUseID string
}

// rawEntry represents a raw JSONL line
type rawEntry struct {
	Type      string          `json:"type"`
	Summary   string          `json:"summary,omitempty"`
	UUID      string          `json:"uuid,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Message   json.RawMessage `json:"message,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	CWD       string          `json:"cwd,omitempty"`
	Version   string          `json:"version,omitempty"`
}

// rawMessage is the inner message payload of user/assistant entries
type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// rawBlock is one element of an array-form content field
type rawBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

// ParseFile parses a Claude Code session JSONL file
func ParseFile(path string) (session *ParsedSession, err error) {
	file, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("failed to open file: %w", ferr)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	// Session UUID defaults to the filename stem; a sessionId field inside
	// the file wins when it is a valid UUID
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	session = &ParsedSession{
		SessionUUID: stem,
		FilePath:    path,
		FileMtime:   info.ModTime(),
		Entries:     make([]ParsedEntry, 0),
	}

	// Larger buffer for long lines (10MB max)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw rawEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse JSON: %w", lineNum, err)
		}

		if raw.SessionID != "" && session.SessionUUID == stem {
			if _, err := uuid.Parse(raw.SessionID); err == nil {
				session.SessionUUID = raw.SessionID
			}
		}

		entry, err := parseEntry(&raw)
		if err != nil {
			// Some entry kinds we may not support yet
			fmt.Fprintf(os.Stderr, "Warning: %s line %d: %v\n", path, lineNum, err)
			continue
		}

		if entry.Type == "summary" {
			session.Summary = raw.Summary
		}

		session.Entries = append(session.Entries, *entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return session, nil
}

func parseEntry(raw *rawEntry) (*ParsedEntry, error) {
	if raw.Type == "" {
		return nil, fmt.Errorf("entry has no type")
	}

	entry := &ParsedEntry{
		UUID:    raw.UUID,
		Type:    raw.Type,
		CWD:     raw.CWD,
		Version: raw.Version,
	}

	if raw.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, raw.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp: %w", err)
		}
		entry.Timestamp = t
	}

	switch raw.Type {
	case "summary":
		if raw.Summary != "" {
			entry.Blocks = []ParsedBlock{{Index: 0, Type: "text", Text: raw.Summary}}
		}
	case "user", "assistant":
		if len(raw.Message) > 0 {
			var msg rawMessage
			if err := json.Unmarshal(raw.Message, &msg); err != nil {
				return nil, fmt.Errorf("invalid message payload: %w", err)
			}
			entry.Role = msg.Role
			entry.InputTokens = msg.Usage.InputTokens
			entry.OutputTokens = msg.Usage.OutputTokens
			blocks, err := parseContent(msg.Content)
			if err != nil {
				return nil, err
			}
			entry.Blocks = blocks
		}
	default:
		// system, file-history-snapshot, queue-operation and friends carry
		// no extractable content; store the envelope only
	}

	return entry, nil
}

// parseContent handles both content forms: a plain string (older logs) and
// an array of typed blocks.
func parseContent(content json.RawMessage) ([]ParsedBlock, error) {
	if len(content) == 0 {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(content, &asString); err == nil {
		if asString == "" {
			return nil, nil
		}
		return []ParsedBlock{{Index: 0, Type: "text", Text: asString}}, nil
	}

	var asArray []rawBlock
	if err := json.Unmarshal(content, &asArray); err != nil {
		return nil, fmt.Errorf("unrecognized content shape: %w", err)
	}

	blocks := make([]ParsedBlock, 0, len(asArray))
	for i, rb := range asArray {
		block := ParsedBlock{Index: i, Type: rb.Type}
		switch rb.Type {
		case "text":
			block.Text = rb.Text
		case "thinking":
			block.Text = rb.Thinking
		case "tool_use":
			block.ToolName = rb.Name
			block.ToolInput = rb.Input
			block.ToolUseID = rb.ID
		case "tool_result":
			block.ToolUseID = rb.ToolUseID
			block.Text = flattenResultContent(rb.Content)
		default:
			// Unknown block kind: keep any text so search still sees it
			block.Text = rb.Text
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// flattenResultContent extracts text from a tool_result content field, which
// may be a string or an array of text blocks.
func flattenResultContent(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(content, &asString); err == nil {
		return asString
	}

	var asArray []rawBlock
	if err := json.Unmarshal(content, &asArray); err != nil {
		return ""
	}

	var parts []string
	for _, rb := range asArray {
		if rb.Type == "text" && rb.Text != "" {
			parts = append(parts, rb.Text)
		}
	}
	return strings.Join(parts, "\n")
}
