// ABOUTME: SQLiteSink persists AMS directory mutations to an on-disk append-only log,
// ABOUTME: grounded on the teacher's store package but reduced to a single audit table.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/DRoMarin/caravela/core"
)

// SQLiteSink writes one row per accepted mutation to a SQLite database.
// The schema is a flat, append-only log: there is no update or delete path,
// matching the "audit trail" use case rather than a queryable index.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens or creates the audit database at path and ensures the
// schema exists.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS directory_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT NOT NULL,
			request_type TEXT NOT NULL,
			nickname TEXT NOT NULL,
			hap TEXT NOT NULL,
			task_id TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate audit schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Record inserts one row describing the mutation.
func (s *SQLiteSink) Record(evt Event) error {
	_, err := s.db.Exec(
		`INSERT INTO directory_events (recorded_at, request_type, nickname, hap, task_id)
		 VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		evt.Request.RequestTypeName(),
		evt.AID.Name,
		evt.AID.Hap,
		evt.AID.TaskID.String(),
	)
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

var _ Sink = (*SQLiteSink)(nil)
