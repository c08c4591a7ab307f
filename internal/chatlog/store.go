// Package chatlog persists conversation turns for parental review and
// usage reporting. Writers exist for SQLite (local/dev) and Postgres
// (hosted, e.g. Neon); the noop writer disables persistence entirely.
package chatlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Entry is one recorded conversation turn.
type Entry struct {
	TraceID          string
	Personality      string
	Message          string
	Reply            string
	Provider         string
	Cached           bool
	PromptTokens     int
	CompletionTokens int
	CreatedAt        time.Time
}

// Query filters and pages a List call.
type Query struct {
	Limit       int
	Offset      int
	Personality string
}

// Result is a page of entries plus the unpaged total.
type Result struct {
	Data  []Entry
	Total int
}

// Writer persists conversation turns.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

// NoopWriter ignores all writes.
type NoopWriter struct{}

func (NoopWriter) Write(_ context.Context, _ Entry) error { return nil }

// SQLWriter persists turns to SQLite or Postgres.
type SQLWriter struct {
	db      *sql.DB
	dialect string
}

// NewSQLiteWriter opens (and initialises) a SQLite-backed writer at dsn.
func NewSQLiteWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "robot-conversations.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite chat log writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "sqlite"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// NewPostgresWriter opens (and initialises) a Postgres-backed writer.
func NewPostgresWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres chat log writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "postgres"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLWriter) init() error {
	if err := w.db.Ping(); err != nil {
		return fmt.Errorf("ping %s chat log writer: %w", w.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS conversation_turns (
	id INTEGER PRIMARY KEY,
	trace_id TEXT,
	personality TEXT NOT NULL,
	message TEXT NOT NULL,
	reply TEXT NOT NULL,
	provider TEXT,
	cached INTEGER NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);`

	if w.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS conversation_turns (
	id BIGSERIAL PRIMARY KEY,
	trace_id TEXT,
	personality TEXT NOT NULL,
	message TEXT NOT NULL,
	reply TEXT NOT NULL,
	provider TEXT,
	cached BOOLEAN NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize chat log schema: %w", err)
	}
	return nil
}

// Write records a single conversation turn.
func (w *SQLWriter) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO conversation_turns(trace_id, personality, message, reply, provider, cached, prompt_tokens, completion_tokens, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if w.dialect == "postgres" {
		query = `INSERT INTO conversation_turns(trace_id, personality, message, reply, provider, cached, prompt_tokens, completion_tokens, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	}

	_, err := w.db.ExecContext(ctx, query,
		entry.TraceID,
		entry.Personality,
		entry.Message,
		entry.Reply,
		entry.Provider,
		entry.Cached,
		entry.PromptTokens,
		entry.CompletionTokens,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write conversation turn: %w", err)
	}
	return nil
}

// List returns a page of turns, newest first, optionally filtered by
// personality.
func (w *SQLWriter) List(ctx context.Context, q Query) (*Result, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	var (
		where string
		args  []any
	)
	if q.Personality != "" {
		if w.dialect == "postgres" {
			where = " WHERE personality = $1"
		} else {
			where = " WHERE personality = ?"
		}
		args = append(args, q.Personality)
	}

	var total int
	if err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversation_turns"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count conversation turns: %w", err)
	}

	pageArgs := append([]any{}, args...)
	var page string
	if w.dialect == "postgres" {
		page = fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	} else {
		page = " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	}
	pageArgs = append(pageArgs, q.Limit, q.Offset)

	rows, err := w.db.QueryContext(ctx,
		"SELECT trace_id, personality, message, reply, provider, cached, prompt_tokens, completion_tokens, created_at FROM conversation_turns"+where+page,
		pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("list conversation turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := &Result{Total: total}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TraceID, &e.Personality, &e.Message, &e.Reply, &e.Provider, &e.Cached,
			&e.PromptTokens, &e.CompletionTokens, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation turn: %w", err)
		}
		result.Data = append(result.Data, e)
	}
	return result, rows.Err()
}

// Close releases the underlying database handle.
func (w *SQLWriter) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}
