package observability

import "database/sql"

// Schema contains the DDL for the request audit tables.
// Call Init(db) to apply it, or embed the constant in your own schema
// management.
const Schema = `
-- Processing request log
CREATE TABLE IF NOT EXISTS request_logs (
    request_id TEXT PRIMARY KEY DEFAULT ('req_' || hex(randomblob(16))),
    service_name TEXT NOT NULL,
    source TEXT NOT NULL,
    content_type TEXT,
    input_bytes INTEGER NOT NULL,
    document_count INTEGER NOT NULL,
    table_route INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    success INTEGER NOT NULL,
    error TEXT,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_request_logs_time
    ON request_logs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_request_logs_source
    ON request_logs(source, created_at DESC);
`

// Init applies the observability schema to the given database.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
