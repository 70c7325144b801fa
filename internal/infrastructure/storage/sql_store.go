package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"SavePublish/internal/domain"
	"SavePublish/internal/ports"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	sessionsTable = "publish_sessions"
	auditTable    = "publish_audit"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS publish_sessions (
		session_id TEXT PRIMARY KEY,
		item_id    TEXT NOT NULL,
		language   TEXT NOT NULL,
		version    INTEGER NOT NULL,
		workflow   TEXT NOT NULL,
		modified   TEXT NOT NULL,
		phase      TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS publish_audit (
		session_id TEXT NOT NULL,
		item_id    TEXT NOT NULL,
		language   TEXT NOT NULL,
		version    INTEGER NOT NULL,
		actor      TEXT NOT NULL,
		message    TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS publish_audit_created_at ON publish_audit (created_at)`,
}

var sessionColumns = []string{
	"session_id", "item_id", "language", "version", "workflow", "modified", "phase", "created_at", "updated_at",
}

// SQLStore persists round-trip sessions and the publish audit trail in
// SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var (
	_ ports.SessionStore   = (*SQLStore)(nil)
	_ ports.SessionExpirer = (*SQLStore)(nil)
	_ ports.AuditLog       = (*SQLStore)(nil)
	_ ports.AuditReader    = (*SQLStore)(nil)
)

// Open connects to the database and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection keeps :memory: databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}

	store := NewSQLStore(db, driver)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wires an existing sql.DB.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	var format sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		format = sq.Dollar
	}
	return &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}
}

// Migrate creates missing tables.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts the session snapshot.
func (s *SQLStore) Save(ctx context.Context, state *domain.RoundTripState) error {
	if state == nil {
		return nil
	}

	query, args, err := s.builder.
		Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(
			state.SessionID,
			state.Request.ItemID,
			state.Request.Language,
			state.Request.Version,
			string(state.Workflow),
			string(state.Modified),
			string(state.Phase),
			toMillis(state.CreatedAt),
			toMillis(state.UpdatedAt),
		).
		Suffix(`ON CONFLICT (session_id) DO UPDATE
              SET workflow = excluded.workflow,
                  modified = excluded.modified,
                  phase = excluded.phase,
                  updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Load returns domain.ErrSessionNotFound for unknown sessions.
func (s *SQLStore) Load(ctx context.Context, sessionID string) (*domain.RoundTripState, error) {
	query, args, err := s.builder.
		Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		state              domain.RoundTripState
		workflow, modified string
		phase              string
		createdAt          int64
		updatedAt          int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&state.SessionID,
		&state.Request.ItemID,
		&state.Request.Language,
		&state.Request.Version,
		&workflow,
		&modified,
		&phase,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	state.Workflow = domain.WorkflowCheck(workflow)
	state.Modified = domain.ModifiedFlag(modified)
	state.Phase = domain.Phase(phase)
	state.CreatedAt = fromMillis(createdAt)
	state.UpdatedAt = fromMillis(updatedAt)
	return &state, nil
}

// Delete removes the session; unknown ids are ignored.
func (s *SQLStore) Delete(ctx context.Context, sessionID string) error {
	query, args, err := s.builder.
		Delete(sessionsTable).
		Where(sq.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Claim flips the session to executing only while it is still in phase from.
func (s *SQLStore) Claim(ctx context.Context, sessionID string, from domain.Phase) (bool, error) {
	query, args, err := s.claimQuery(sessionID, from)
	if err != nil {
		return false, fmt.Errorf("build claim: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("claim session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim session: %w", err)
	}
	return n == 1, nil
}

func (s *SQLStore) claimQuery(sessionID string, from domain.Phase) (string, []interface{}, error) {
	return s.builder.
		Update(sessionsTable).
		Set("phase", string(domain.PhaseExecuting)).
		Where(sq.Eq{"session_id": sessionID}).
		Where(sq.Eq{"phase": string(from)}).
		ToSql()
}

// ExpireSessions deletes sessions not updated since before.
func (s *SQLStore) ExpireSessions(ctx context.Context, before time.Time) (int, error) {
	query, args, err := s.builder.
		Delete(sessionsTable).
		Where(sq.Lt{"updated_at": toMillis(before)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build expire: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("expire sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire sessions: %w", err)
	}
	return int(n), nil
}

// Record appends an audit entry.
func (s *SQLStore) Record(ctx context.Context, entry domain.AuditEntry) error {
	query, args, err := s.builder.
		Insert(auditTable).
		Columns("session_id", "item_id", "language", "version", "actor", "message", "created_at").
		Values(
			entry.SessionID,
			entry.Item.ID,
			entry.Item.Language,
			entry.Item.Version,
			entry.Actor,
			entry.Message,
			toMillis(entry.CreatedAt),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// ListAudit returns up to limit entries, newest first. A limit of zero or
// less returns every entry.
func (s *SQLStore) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	builder := s.builder.
		Select("session_id", "item_id", "language", "version", "actor", "message", "created_at").
		From(auditTable).
		OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			entry     domain.AuditEntry
			createdAt int64
		)
		if err := rows.Scan(
			&entry.SessionID,
			&entry.Item.ID,
			&entry.Item.Language,
			&entry.Item.Version,
			&entry.Actor,
			&entry.Message,
			&createdAt,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		entry.CreatedAt = fromMillis(createdAt)
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return entries, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
