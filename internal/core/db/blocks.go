package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// ContentBlock represents one ordered fragment of a message's content.
// Fields are nullable by design: a text block has no tool fields, a bare
// tool_result may carry nothing but its tool_use_id.
type ContentBlock struct {
	ID          int64
	MessageID   int64
	BlockIndex  int
	BlockType   string // text, tool_use, tool_result, thinking
	TextContent string
	ToolName    string
	ToolInput   json.RawMessage
	ToolUseID   string
}

// InsertContentBlocks inserts a message's blocks inside the caller's
// transaction. The FTS index is maintained by triggers; callers never touch
// it. Blocks are immutable once written.
func InsertContentBlocks(tx *sql.Tx, messageID int64, blocks []ContentBlock) error {
	for _, b := range blocks {
		if b.BlockType == "" {
			return fmt.Errorf("block %d of message %d: block_type is required", b.BlockIndex, messageID)
		}
		var toolInput interface{}
		if len(b.ToolInput) > 0 {
			toolInput = string(b.ToolInput)
		}
		_, err := tx.Exec(`
			INSERT INTO content_blocks (
				message_id, block_index, block_type,
				text_content, tool_name, tool_input, tool_use_id
			) VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			messageID,
			b.BlockIndex,
			b.BlockType,
			nullString(b.TextContent),
			nullString(b.ToolName),
			toolInput,
			nullString(b.ToolUseID),
		)
		if err != nil {
			return fmt.Errorf("insert block %d of message %d: %w", b.BlockIndex, messageID, err)
		}
	}
	return nil
}

// GetContentBlocks returns a message's blocks ordered by block_index
// ascending, reconstructing the original message structure.
func (db *DB) GetContentBlocks(messageID int64) ([]ContentBlock, error) {
	rows, err := db.Query(`
		SELECT id, message_id, block_index, block_type,
		       COALESCE(text_content, ''), COALESCE(tool_name, ''),
		       COALESCE(tool_input, ''), COALESCE(tool_use_id, '')
		FROM content_blocks
		WHERE message_id = ?
		ORDER BY block_index ASC
	`, messageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanBlocks(rows)
}

// GetBlocksByToolUseID returns the tool_use block and any tool_result blocks
// sharing a correlation id. It is a logical join key, not a foreign key.
func (db *DB) GetBlocksByToolUseID(toolUseID string) ([]ContentBlock, error) {
	rows, err := db.Query(`
		SELECT id, message_id, block_index, block_type,
		       COALESCE(text_content, ''), COALESCE(tool_name, ''),
		       COALESCE(tool_input, ''), COALESCE(tool_use_id, '')
		FROM content_blocks
		WHERE tool_use_id = ?
		ORDER BY id ASC
	`, toolUseID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanBlocks(rows)
}

func scanBlocks(rows *sql.Rows) ([]ContentBlock, error) {
	var blocks []ContentBlock
	for rows.Next() {
		var b ContentBlock
		var toolInput string
		err := rows.Scan(
			&b.ID,
			&b.MessageID,
			&b.BlockIndex,
			&b.BlockType,
			&b.TextContent,
			&b.ToolName,
			&toolInput,
			&b.ToolUseID,
		)
		if err != nil {
			return nil, err
		}
		if toolInput != "" {
			b.ToolInput = json.RawMessage(toolInput)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
