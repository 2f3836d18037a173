package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite audit store. It initializes the
// schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, newStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return newStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return newStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return newStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return newStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return newStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a record to the database.
func (s *SQLiteStore) Store(ctx context.Context, record *Record) error {
	engines, _ := json.Marshal(record.Engines)

	query := `
		INSERT INTO audit_records (
			id, operation_id,
			operation, tier, lock_used, emergency_mode, engines,
			file_count, succeeded_files, failed_files, entity_count,
			duration_ms, error,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorVal interface{}
	if record.Error != "" {
		errorVal = record.Error
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.OperationID,
		record.Operation, record.Tier, record.LockUsed, record.EmergencyMode, string(engines),
		record.FileCount, record.SucceededFiles, record.FailedFiles, record.EntityCount,
		record.DurationMS, errorVal,
		record.CreatedAt,
	)
	if err != nil {
		return newStorageError("sqlite", "store", err)
	}

	return nil
}

// Query returns records matching the query, newest first.
func (s *SQLiteStore) Query(ctx context.Context, query Query) ([]*Record, error) {
	where, args := buildWhereClause(query)

	sqlQuery := `SELECT id, operation_id, operation, tier, lock_used, emergency_mode,
		engines, file_count, succeeded_files, failed_files, entity_count,
		duration_ms, error, created_at FROM audit_records`
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY created_at DESC"

	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, newStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, newStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, newStorageError("sqlite", "query", err)
	}

	return records, nil
}

// DeleteOlderThan removes records created before the cutoff.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_records WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, newStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, newStorageError("sqlite", "rows_affected", err)
	}

	return deleted, nil
}

// Count returns the total number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_records").Scan(&count)
	if err != nil {
		return 0, newStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// buildWhereClause assembles the WHERE clause and args for a query.
func buildWhereClause(query Query) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if query.OperationID != "" {
		clauses = append(clauses, "operation_id = ?")
		args = append(args, query.OperationID)
	}
	if query.Operation != "" {
		clauses = append(clauses, "operation = ?")
		args = append(args, query.Operation)
	}
	if query.Tier != "" {
		clauses = append(clauses, "tier = ?")
		args = append(args, query.Tier)
	}
	if !query.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, query.Since)
	}
	if !query.Until.IsZero() {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, query.Until)
	}

	where := ""
	for i, clause := range clauses {
		if i > 0 {
			where += " AND "
		}
		where += clause
	}

	return where, args
}

// scanRecord scans one row into a Record.
func scanRecord(rows *sql.Rows) (*Record, error) {
	var record Record
	var engines sql.NullString
	var errField sql.NullString

	err := rows.Scan(
		&record.ID, &record.OperationID,
		&record.Operation, &record.Tier, &record.LockUsed, &record.EmergencyMode,
		&engines, &record.FileCount, &record.SucceededFiles, &record.FailedFiles,
		&record.EntityCount, &record.DurationMS, &errField, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if engines.Valid && engines.String != "" && engines.String != "null" {
		if err := json.Unmarshal([]byte(engines.String), &record.Engines); err != nil {
			return nil, err
		}
	}
	if errField.Valid {
		record.Error = errField.String
	}

	return &record, nil
}
