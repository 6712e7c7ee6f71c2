package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// SQLStore is the durable Store backend over a single kv_entries table.
// It runs against local sqlite3 or hosted libsql, whichever driver the
// connection was opened with.
type SQLStore struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLStore creates a new SQL-backed store.
func NewSQLStore(db *database.DB, logger *logging.ChanneledLogger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the kv_entries table if it does not exist yet.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS kv_entries (
			k          TEXT PRIMARY KEY,
			v          TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		s.logger.Database().Error("Failed to ensure kv schema", "error", err.Error())
		return fmt.Errorf("failed to ensure kv schema: %w", err)
	}
	return nil
}

// Get returns the value for key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT v FROM kv_entries WHERE k = ?`

	start := time.Now()
	s.logger.Database().Debug("Loading kv entry", "key", key)

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Database().Debug("KV entry not found", "key", key, "duration", time.Since(start))
			return "", false, nil
		}
		s.logger.Database().Error("Failed to load kv entry", "error", err.Error(), "key", key)
		return "", false, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		s.logger.LogSlowQuery(query, duration)
	}
	return value, true, nil
}

// Set writes the value for key, creating or overwriting.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO kv_entries (k, v, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`

	start := time.Now()
	s.logger.Database().Debug("Writing kv entry", "key", key)

	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isCapacityError(err) {
			s.logger.Database().Error("KV write rejected, storage full", "key", key)
			return fmt.Errorf("kv write for %q: %w", key, ErrQuotaExceeded)
		}
		s.logger.Database().Error("KV write failed", "error", err.Error(), "key", key)
		return err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		s.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_entries WHERE k = ?`

	s.logger.Database().Debug("Deleting kv entry", "key", key)

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		s.logger.Database().Error("KV delete failed", "error", err.Error(), "key", key)
		return err
	}
	return nil
}

// Keys returns all stored keys with the given prefix.
func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	const query = `SELECT k FROM kv_entries WHERE k LIKE ? ORDER BY k`

	rows, err := s.db.QueryContext(ctx, query, prefix+"%")
	if err != nil {
		s.logger.Database().Error("KV key scan failed", "error", err.Error(), "prefix", prefix)
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// isCapacityError recognizes the storage-full conditions sqlite and libsql
// report so they can surface as the quota sentinel.
func isCapacityError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "disk i/o error") && strings.Contains(msg, "full") ||
		strings.Contains(msg, "quota")
}
