package db

func (db *DB) initSchema() error {
	schema := `
	-- Sessions table: one row per Claude Code conversation
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_uuid TEXT UNIQUE NOT NULL,
		project_path TEXT,
		summary TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_input_tokens INTEGER DEFAULT 0,
		total_output_tokens INTEGER DEFAULT 0
	);

	-- Messages table: one row per log entry (envelope only, content in content_blocks)
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL,
		uuid TEXT,
		type TEXT NOT NULL,
		role TEXT,
		timestamp DATETIME,
		cwd TEXT,
		input_tokens INTEGER,
		output_tokens INTEGER,
		version TEXT,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
	CREATE INDEX IF NOT EXISTS idx_messages_type ON messages(type);
	CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_messages_session_timestamp ON messages(session_id, timestamp DESC);

	-- Unique among non-null UUIDs only: synthetic entries without a UUID may
	-- repeat, everything else is the idempotency guard for re-imports
	CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_uuid_unique
		ON messages(uuid) WHERE uuid IS NOT NULL;

	-- Content blocks table: one row per ordered fragment within a message
	CREATE TABLE IF NOT EXISTS content_blocks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id INTEGER NOT NULL,
		block_index INTEGER NOT NULL,
		block_type TEXT NOT NULL,
		text_content TEXT,
		tool_name TEXT,
		tool_input TEXT,
		tool_use_id TEXT,
		FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE,
		UNIQUE (message_id, block_index)
	);

	CREATE INDEX IF NOT EXISTS idx_content_blocks_message_id ON content_blocks(message_id);
	CREATE INDEX IF NOT EXISTS idx_content_blocks_type ON content_blocks(block_type);
	CREATE INDEX IF NOT EXISTS idx_content_blocks_tool_use_id ON content_blocks(tool_use_id);
	CREATE INDEX IF NOT EXISTS idx_content_blocks_tool_name ON content_blocks(tool_name);

	-- Import metadata: last import watermark per project for incremental re-imports
	CREATE TABLE IF NOT EXISTS import_metadata (
		project_path TEXT PRIMARY KEY,
		last_import_timestamp DATETIME NOT NULL
	);

	-- FTS5 tables for full-text search over block text
	-- Natural language search with porter stemming
	CREATE VIRTUAL TABLE IF NOT EXISTS content_blocks_fts USING fts5(
		text_content,
		content=content_blocks,
		content_rowid=id,
		tokenize='porter unicode61'
	);

	-- Code search without stemming (preserves symbols, camelCase)
	CREATE VIRTUAL TABLE IF NOT EXISTS content_blocks_fts_code USING fts5(
		text_content,
		content=content_blocks,
		content_rowid=id,
		tokenize='unicode61'
	);

	-- Triggers keep the search index a pure function of text_content.
	-- Callers never write the FTS tables directly.
	CREATE TRIGGER IF NOT EXISTS content_blocks_ai AFTER INSERT ON content_blocks BEGIN
		INSERT INTO content_blocks_fts(rowid, text_content) VALUES (new.id, COALESCE(new.text_content, ''));
		INSERT INTO content_blocks_fts_code(rowid, text_content) VALUES (new.id, COALESCE(new.text_content, ''));
	END;

	CREATE TRIGGER IF NOT EXISTS content_blocks_ad AFTER DELETE ON content_blocks BEGIN
		INSERT INTO content_blocks_fts(content_blocks_fts, rowid, text_content)
			VALUES ('delete', old.id, COALESCE(old.text_content, ''));
		INSERT INTO content_blocks_fts_code(content_blocks_fts_code, rowid, text_content)
			VALUES ('delete', old.id, COALESCE(old.text_content, ''));
	END;

	CREATE TRIGGER IF NOT EXISTS content_blocks_au AFTER UPDATE OF text_content ON content_blocks BEGIN
		INSERT INTO content_blocks_fts(content_blocks_fts, rowid, text_content)
			VALUES ('delete', old.id, COALESCE(old.text_content, ''));
		INSERT INTO content_blocks_fts(rowid, text_content)
			VALUES (new.id, COALESCE(new.text_content, ''));
		INSERT INTO content_blocks_fts_code(content_blocks_fts_code, rowid, text_content)
			VALUES ('delete', old.id, COALESCE(old.text_content, ''));
		INSERT INTO content_blocks_fts_code(rowid, text_content)
			VALUES (new.id, COALESCE(new.text_content, ''));
	END;
	`

	_, err := db.conn.Exec(schema)
	return err
}
