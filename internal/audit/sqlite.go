package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore appends records to a SQLite database using the same column
// layout as the CSV log. SQLite serializes the inserts; each append is one
// transaction-free INSERT, all-or-nothing.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// decision_log table exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", "file:"+path+"?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying handle for tests.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Append inserts one record.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decision_log(generated_at_iso,date,time,day_of_week_name,day_of_week_num,minutes,rule_input_json,rule_output_message)
		 VALUES (?,?,?,?,?,?,?,?)`,
		rec.GeneratedAt, rec.Date, rec.Time, rec.DayOfWeekName, rec.DayOfWeekNum, rec.Minutes, rec.RuleInputJSON, rec.RuleOutputMessage)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}
