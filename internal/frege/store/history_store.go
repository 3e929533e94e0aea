package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/frege/foundation/core/error"
)

// Operation names what produced a history entry
type Operation string

const (
	OperationParse    Operation = "parse"
	OperationEvaluate Operation = "evaluate"
)

// Entry represents one recorded parse or evaluation
type Entry struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	RequestID string    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Operation Operation `json:"operation" yaml:"operation"`
	Source    string    `json:"source" yaml:"source"`
	Assoc     string    `json:"assoc" yaml:"assoc"`
	Success   bool      `json:"success" yaml:"success"`
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
	AST       string    `json:"ast,omitempty" yaml:"ast,omitempty"`
	Value     *int64    `json:"value,omitempty" yaml:"value,omitempty"`
	Remaining int       `json:"remaining" yaml:"remaining"`
	Duration  float64   `json:"duration_ms" yaml:"duration_ms"`
}

// HistoryStore defines the interface for history persistence
type HistoryStore interface {
	Record(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
	Count(ctx context.Context) (int64, error)

	// Maintenance
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteHistoryStore implements HistoryStore using SQLite
type SQLiteHistoryStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteHistoryStore opens (and creates if needed) the history database
func NewSQLiteHistoryStore(cfg SQLiteConfig) (*SQLiteHistoryStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dbError(err, "failed to create directory", "store.Open").WithDetail("path", dir)
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, dbError(err, "failed to open database", "store.Open").WithDetail("path", cfg.Path)
	}

	store := &SQLiteHistoryStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema", "store.Open")
	}

	return store, nil
}

func (s *SQLiteHistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		request_id TEXT,
		operation TEXT NOT NULL,
		source TEXT NOT NULL,
		assoc TEXT NOT NULL,
		success INTEGER NOT NULL,
		message TEXT,
		ast TEXT,
		value INTEGER,
		remaining INTEGER NOT NULL DEFAULT 0,
		duration_ms REAL NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_history_request_id ON history(request_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a new history entry, filling ID and Timestamp when unset
func (s *SQLiteHistoryStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(entry)

	var value sql.NullInt64
	if entry.Value != nil {
		value = sql.NullInt64{Int64: *entry.Value, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, timestamp, request_id, operation, source, assoc, success, message, ast, value, remaining, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Timestamp, entry.RequestID, entry.Operation, entry.Source, entry.Assoc,
		entry.Success, entry.Message, entry.AST, value, entry.Remaining, entry.Duration)
	if err != nil {
		return dbError(err, "failed to insert history entry", "store.Record")
	}

	return nil
}

// Recent returns the newest entries first, at most limit (all when limit <= 0)
func (s *SQLiteHistoryStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, timestamp, request_id, operation, source, assoc, success, message, ast, value, remaining, duration_ms
		FROM history ORDER BY timestamp DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query history", "store.Recent")
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var entry Entry
		var requestID, message, ast sql.NullString
		var value sql.NullInt64

		if err := rows.Scan(&entry.ID, &entry.Timestamp, &requestID, &entry.Operation, &entry.Source,
			&entry.Assoc, &entry.Success, &message, &ast, &value, &entry.Remaining, &entry.Duration); err != nil {
			return nil, dbError(err, "failed to scan history entry", "store.Recent")
		}

		entry.RequestID = requestID.String
		entry.Message = message.String
		entry.AST = ast.String
		if value.Valid {
			v := value.Int64
			entry.Value = &v
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to read history", "store.Recent")
	}
	return entries, nil
}

// Count returns the number of stored entries
func (s *SQLiteHistoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, dbError(err, "failed to count history", "store.Count")
	}
	return n, nil
}

// Prune removes entries older than the specified duration
func (s *SQLiteHistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune history", "store.Prune")
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Close closes the database connection
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

// MemoryHistoryStore is an in-memory implementation for tests and disabled persistence
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryHistoryStore creates a new in-memory history store
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		entries: make([]*Entry, 0),
	}
}

// Record stores a new history entry
func (s *MemoryHistoryStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(entry)
	s.entries = append(s.entries, entry)
	return nil
}

// Recent returns the newest entries first
func (s *MemoryHistoryStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*Entry, len(s.entries))
	copy(results, s.entries)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of stored entries
func (s *MemoryHistoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}

// Prune removes old entries
func (s *MemoryHistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	kept := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.Timestamp.After(cutoff) {
			kept = append(kept, entry)
		} else {
			deleted++
		}
	}
	s.entries = kept

	return deleted, nil
}

// Close is a no-op for memory store
func (s *MemoryHistoryStore) Close() error {
	return nil
}

func prepare(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
}

func dbError(err error, msg, op string) *mdwerror.Error {
	return mdwerror.Wrap(err, msg).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(op)
}
