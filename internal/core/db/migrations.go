package db

import (
	"database/sql"
	"fmt"
)

// migrate applies schema changes needed by databases created before the
// current layout. Fresh databases get everything from initSchema.
func (db *DB) migrate() error {
	if err := db.migration001SessionTokenTotals(); err != nil {
		return fmt.Errorf("migration 001: %w", err)
	}
	if err := db.migration002MessageTokenColumns(); err != nil {
		return fmt.Errorf("migration 002: %w", err)
	}
	return nil
}

func (db *DB) hasColumn(table, column string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info(?)
		WHERE name = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// migration001SessionTokenTotals adds the token accumulator columns to
// sessions for databases created before usage tracking existed.
func (db *DB) migration001SessionTokenTotals() error {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='sessions'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	for _, col := range []string{"total_input_tokens", "total_output_tokens"} {
		has, err := db.hasColumn("sessions", col)
		if err != nil {
			return err
		}
		if !has {
			_, err = db.conn.Exec(fmt.Sprintf(`ALTER TABLE sessions ADD COLUMN %s INTEGER DEFAULT 0`, col))
			if err != nil {
				return fmt.Errorf("add %s column: %w", col, err)
			}
		}
	}

	return nil
}

// migration002MessageTokenColumns adds per-message usage columns.
func (db *DB) migration002MessageTokenColumns() error {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='messages'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	for _, col := range []string{"input_tokens", "output_tokens"} {
		has, err := db.hasColumn("messages", col)
		if err != nil {
			return err
		}
		if !has {
			_, err = db.conn.Exec(fmt.Sprintf(`ALTER TABLE messages ADD COLUMN %s INTEGER`, col))
			if err != nil {
				return fmt.Errorf("add %s column: %w", col, err)
			}
		}
	}

	return nil
}
