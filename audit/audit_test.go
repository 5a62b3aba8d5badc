package audit

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/DRoMarin/caravela/core"
)

func TestNoopSinkDiscards(t *testing.T) {
	var s NoopSink
	if err := s.Record(Event{Request: core.RegisterRequest{}, AID: core.Description{}}); err != nil {
		t.Fatalf("NoopSink.Record: %v", err)
	}
}

func TestSQLiteSinkRecordsRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.db")

	sink, err := OpenSQLiteSink(path)
	if err != nil {
		t.Fatalf("OpenSQLiteSink: %v", err)
	}
	defer sink.Close()

	aid := core.NewDescription("Worker", "hap1", core.NewULID(), nil)
	evt := Event{Request: core.RegisterRequest{AID: aid}, AID: aid}

	if err := sink.Record(evt); err != nil {
		t.Fatalf("Record: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM directory_events WHERE nickname = ?", "Worker").Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}

	_ = os.Remove(path)
}
