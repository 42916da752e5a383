package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/amishk599/leadradar/internal/model"
)

// DefaultRecentLimit is the dashboard's page size for recent signals.
const DefaultRecentLimit = 50

// Ensure SQLStore implements model.SignalStore.
var _ model.SignalStore = (*SQLStore)(nil)

type dialect struct {
	driver string
	schema string
	ph     sq.PlaceholderFormat
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		ph:     sq.Question,
		schema: `CREATE TABLE IF NOT EXISTS signals (
		id           TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		signal_type  TEXT NOT NULL,
		details      TEXT NOT NULL,
		strength     INTEGER NOT NULL,
		metadata     TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_created_at ON signals (created_at DESC);`,
	}

	postgresDialect = dialect{
		driver: "postgres",
		ph:     sq.Dollar,
		schema: `CREATE TABLE IF NOT EXISTS signals (
		id           UUID PRIMARY KEY,
		company_name TEXT NOT NULL,
		signal_type  TEXT NOT NULL,
		details      TEXT NOT NULL,
		strength     INTEGER NOT NULL CHECK (strength BETWEEN 0 AND 100),
		metadata     JSONB NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_created_at ON signals (created_at DESC);`,
	}
)

// SQLStore persists signals in SQLite or Postgres through database/sql.
type SQLStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// signals table exists.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	return newSQLStore(db, sqliteDialect)
}

// NewPostgresStore connects to Postgres with dsn and ensures the signals table exists.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres db: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	return newSQLStore(db, postgresDialect)
}

// Open returns the store for driver ("sqlite" or "postgres").
func Open(driver, path, dsn string) (*SQLStore, error) {
	switch driver {
	case "sqlite":
		return NewSQLiteStore(path)
	case "postgres":
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s db: %w", d.driver, err)
	}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating signals table: %w", err)
	}

	return &SQLStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(d.ph),
	}, nil
}

// saveChunkSize bounds rows per INSERT; sqlite caps a statement at 32766 bind
// parameters and each row binds seven.
const saveChunkSize = 500

// Save inserts signals in one transaction. A signal whose ID is already stored
// is left untouched.
func (s *SQLStore) Save(ctx context.Context, signals []model.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(signals); start += saveChunkSize {
		end := min(start+saveChunkSize, len(signals))
		query, args, err := s.insertQuery(signals[start:end])
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("saving %d signals: %w", len(signals), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %d signals: %w", len(signals), err)
	}
	return nil
}

func (s *SQLStore) insertQuery(signals []model.Signal) (string, []any, error) {
	ins := s.sb.Insert("signals").
		Columns("id", "company_name", "signal_type", "details", "strength", "metadata", "created_at").
		Suffix("ON CONFLICT (id) DO NOTHING")

	for _, sig := range signals {
		meta, err := json.Marshal(sig.Metadata)
		if err != nil {
			return "", nil, fmt.Errorf("encoding metadata for %s: %w", sig.CompanyName, err)
		}
		ins = ins.Values(
			sig.ID.String(),
			sig.CompanyName,
			string(sig.SignalType),
			sig.Details,
			sig.Strength,
			string(meta),
			sig.CreatedAt.UTC(),
		)
	}

	query, args, err := ins.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("building insert: %w", err)
	}
	return query, args, nil
}

// Recent returns up to limit signals, newest first. A non-positive limit or
// one above DefaultRecentLimit is clamped to DefaultRecentLimit.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]model.Signal, error) {
	if limit <= 0 || limit > DefaultRecentLimit {
		limit = DefaultRecentLimit
	}

	query, args, err := s.sb.
		Select("id", "company_name", "signal_type", "details", "strength", "metadata", "created_at").
		From("signals").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recent signals: %w", err)
	}
	defer rows.Close()

	out := make([]model.Signal, 0, limit)
	for rows.Next() {
		var (
			id, sigType, meta string
			sig               model.Signal
		)
		if err := rows.Scan(&id, &sig.CompanyName, &sigType, &sig.Details, &sig.Strength, &meta, &sig.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning signal: %w", err)
		}
		if sig.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing signal id %q: %w", id, err)
		}
		sig.SignalType = model.SignalType(sigType)
		if err := json.Unmarshal([]byte(meta), &sig.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for %s: %w", id, err)
		}
		sig.CreatedAt = sig.CreatedAt.UTC()
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating signals: %w", err)
	}
	return out, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
