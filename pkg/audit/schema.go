package audit

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    operation_id TEXT NOT NULL,

    operation TEXT NOT NULL,
    tier TEXT NOT NULL,
    lock_used BOOLEAN NOT NULL,
    emergency_mode BOOLEAN NOT NULL,
    engines TEXT,

    file_count INTEGER NOT NULL,
    succeeded_files INTEGER NOT NULL,
    failed_files INTEGER NOT NULL,
    entity_count INTEGER NOT NULL,

    duration_ms INTEGER NOT NULL,
    error TEXT,

    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_records(created_at);
CREATE INDEX IF NOT EXISTS idx_audit_operation_id ON audit_records(operation_id);
CREATE INDEX IF NOT EXISTS idx_audit_operation ON audit_records(operation);
CREATE INDEX IF NOT EXISTS idx_audit_tier ON audit_records(tier);
`

// InsertSchemaVersion records the schema version if not already present.
const InsertSchemaVersion = `
INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, CURRENT_TIMESTAMP);
`

// GetSchemaVersion reads the highest applied schema version.
const GetSchemaVersion = `
SELECT MAX(version) FROM schema_version;
`
