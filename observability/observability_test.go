package observability

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "obs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Init(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func TestLogRequest(t *testing.T) {
	db := openTestDB(t)
	l := NewEventLogger(db)

	l.LogRequest(context.Background(), RequestEvent{
		ServiceName:   "docgrid",
		Source:        "tarifs.pdf",
		ContentType:   "application/pdf",
		InputBytes:    1234,
		DocumentCount: 7,
		TableRoute:    true,
		Duration:      250 * time.Millisecond,
	})
	l.LogRequest(context.Background(), RequestEvent{
		ServiceName: "docgrid",
		Source:      "broken.bin",
		Err:         errors.New("stage pdf: boom"),
	})

	var count, success int
	if err := db.QueryRow(`SELECT COUNT(*), SUM(success) FROM request_logs`).Scan(&count, &success); err != nil {
		t.Fatal(err)
	}
	if count != 2 || success != 1 {
		t.Fatalf("count=%d success=%d", count, success)
	}

	var durationMS int
	if err := db.QueryRow(`SELECT duration_ms FROM request_logs WHERE source = 'tarifs.pdf'`).Scan(&durationMS); err != nil {
		t.Fatal(err)
	}
	if durationMS != 250 {
		t.Fatalf("duration_ms = %d", durationMS)
	}
}

func TestLogAsync(t *testing.T) {
	db := openTestDB(t)
	l := NewEventLogger(db)

	l.LogAsync(RequestEvent{ServiceName: "docgrid", Source: "async.pdf"})

	// The write happens off the caller's path; poll briefly for it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM request_logs`).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("async event never landed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *EventLogger
	l.LogRequest(context.Background(), RequestEvent{Source: "x"})
	l.LogAsync(RequestEvent{Source: "x"})
}
