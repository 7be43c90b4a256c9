package observability

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// RequestEvent captures one processing request for the audit trail.
type RequestEvent struct {
	ServiceName   string
	Source        string
	ContentType   string
	InputBytes    int64
	DocumentCount int
	TableRoute    bool // true when the table pipeline ran, false for text paths
	Duration      time.Duration
	Err           error
}

// EventLogger writes request events to the observability database.
type EventLogger struct {
	db *sql.DB
}

// NewEventLogger creates a logger backed by the given observability database.
func NewEventLogger(db *sql.DB) *EventLogger {
	return &EventLogger{db: db}
}

// LogRequest records a request event. Errors are logged via slog but do not
// propagate, so a failing observability store never blocks the request path.
func (l *EventLogger) LogRequest(ctx context.Context, ev RequestEvent) {
	if l == nil || l.db == nil {
		return
	}
	errMsg := ""
	success := 1
	if ev.Err != nil {
		errMsg = ev.Err.Error()
		success = 0
	}
	tableRoute := 0
	if ev.TableRoute {
		tableRoute = 1
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO request_logs (
			service_name, source, content_type, input_bytes,
			document_count, table_route, duration_ms, success, error
		) VALUES (?,?,?,?,?,?,?,?,?)`,
		ev.ServiceName, ev.Source, ev.ContentType, ev.InputBytes,
		ev.DocumentCount, tableRoute, ev.Duration.Milliseconds(), success, errMsg)
	if err != nil {
		slog.Error("observability request log failed", "error", err, "source", ev.Source)
	}
}

// LogAsync records a request event off the request path. The insert runs on
// its own goroutine with a detached context so the response is never held up
// and a client disconnect cannot cancel the write.
func (l *EventLogger) LogAsync(ev RequestEvent) {
	if l == nil || l.db == nil {
		return
	}
	go l.LogRequest(context.Background(), ev)
}
