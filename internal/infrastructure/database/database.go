package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/taskmaster/tasks/internal/domain/entities"
	"github.com/taskmaster/tasks/internal/infrastructure/config"
	"github.com/taskmaster/tasks/internal/infrastructure/logger"
)

// DB is a flat-file record store: named tables of records mirrored in memory
// and rewritten as one JSON document after every mutation.
type DB struct {
	config config.DatabaseConfig
	logger *logger.Logger

	mu     sync.RWMutex
	tables map[string][]entities.Record

	writer *writer
}

// Stats describes the store contents and writer activity.
type Stats struct {
	Tables        int       `json:"tables"`
	Records       int       `json:"records"`
	Writes        uint64    `json:"writes"`
	WriteFailures uint64    `json:"write_failures"`
	LastWrite     time.Time `json:"last_write"`
}

// New opens the store at cfg.Path. A missing or unparseable file is treated
// as an empty store and rewritten right away.
func New(cfg config.DatabaseConfig, appLogger *logger.Logger) (*DB, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", cfg.Path, err)
		}
	}

	log := appLogger.WithComponent("database")
	db := &DB{
		config: cfg,
		logger: log,
		tables: map[string][]entities.Record{},
		writer: newWriter(cfg.Path, log),
	}

	loaded, err := load(cfg.Path)
	if err != nil {
		log.Warnw("Starting with an empty store", "path", cfg.Path, "error", err)
		db.mu.Lock()
		db.persist()
		db.mu.Unlock()
		return db, nil
	}
	db.tables = loaded
	return db, nil
}

func load(path string) (map[string][]entities.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	tables := map[string][]entities.Record{}
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tables == nil {
		// The document was a literal null.
		tables = map[string][]entities.Record{}
	}
	return tables, nil
}

// Select returns every record of table, or an empty slice if the table does
// not exist.
func (db *DB) Select(table string) []entities.Record {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows := db.tables[table]
	out := make([]entities.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Clone())
	}
	return out
}

// FindByID returns the first record of table whose id matches.
func (db *DB) FindByID(table, id string) (entities.Record, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	i := db.indexOf(table, id)
	if i < 0 {
		return nil, false
	}
	return db.tables[table][i].Clone(), true
}

// Insert appends record to table, creating the table when needed. Ids are not
// checked for collisions. The record is returned unchanged whatever the
// outcome of persistence.
func (db *DB) Insert(table string, record entities.Record) entities.Record {
	db.mu.Lock()
	db.tables[table] = append(db.tables[table], record.Clone())
	db.persist()
	db.mu.Unlock()

	db.awaitWrite()
	return record
}

// Update replaces the record with the given id by {id} merged with fields.
// Fields absent from fields are dropped, and an id inside fields never wins
// over the lookup key.
func (db *DB) Update(table, id string, fields entities.Record) (entities.Record, bool) {
	db.mu.Lock()
	i := db.indexOf(table, id)
	if i < 0 {
		db.mu.Unlock()
		return nil, false
	}

	replaced := make(entities.Record, len(fields)+1)
	for k, v := range fields {
		replaced[k] = v
	}
	replaced["id"] = id
	db.tables[table][i] = replaced
	db.persist()
	db.mu.Unlock()

	db.awaitWrite()
	return replaced.Clone(), true
}

// Delete removes the first record with the given id and returns it.
func (db *DB) Delete(table, id string) (entities.Record, bool) {
	db.mu.Lock()
	i := db.indexOf(table, id)
	if i < 0 {
		db.mu.Unlock()
		return nil, false
	}

	rows := db.tables[table]
	removed := rows[i]
	db.tables[table] = append(rows[:i:i], rows[i+1:]...)
	db.persist()
	db.mu.Unlock()

	db.awaitWrite()
	return removed, true
}

// indexOf must be called with db.mu held.
func (db *DB) indexOf(table, id string) int {
	for i, r := range db.tables[table] {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// persist snapshots the whole store and hands it to the writer. Must be
// called with db.mu held so snapshots are queued in mutation order.
func (db *DB) persist() {
	data, err := json.MarshalIndent(db.tables, "", "  ")
	if err != nil {
		db.logger.Errorw("Failed to encode store", "error", err)
		return
	}
	db.writer.enqueue(append(data, '\n'))
}

func (db *DB) awaitWrite() {
	if !db.config.SyncWrites {
		return
	}
	if err := db.writer.flush(); err != nil {
		db.logger.Errorw("Synchronous write failed", "path", db.config.Path, "error", err)
	}
}

// Flush blocks until every mutation so far has been written and returns the
// error of the most recent write.
func (db *DB) Flush() error {
	return db.writer.flush()
}

// Close flushes pending writes and stops the writer.
func (db *DB) Close() error {
	return db.writer.close()
}

// Ping reports whether the store is usable.
func (db *DB) Ping() error {
	if db.writer.closed() {
		return errors.New("database is closed")
	}
	return nil
}

// HealthCheck checks database health
func (db *DB) HealthCheck() error {
	if err := db.Ping(); err != nil {
		return err
	}
	if err := db.writer.lastError(); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats returns table and writer statistics.
func (db *DB) Stats() Stats {
	db.mu.RLock()
	s := Stats{Tables: len(db.tables)}
	for _, rows := range db.tables {
		s.Records += len(rows)
	}
	db.mu.RUnlock()

	s.Writes, s.WriteFailures, s.LastWrite = db.writer.stats()
	return s
}

// GetConnectionInfo returns store statistics for health reports.
func (db *DB) GetConnectionInfo() map[string]interface{} {
	stats := db.Stats()
	info := map[string]interface{}{
		"path":           db.config.Path,
		"sync_writes":    db.config.SyncWrites,
		"tables":         stats.Tables,
		"records":        stats.Records,
		"writes":         stats.Writes,
		"write_failures": stats.WriteFailures,
	}
	if !stats.LastWrite.IsZero() {
		info["last_write"] = stats.LastWrite.UTC().Format(time.RFC3339)
	}
	return info
}
