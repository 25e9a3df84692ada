// Package history is an audit log of extraction jobs, backed by SQLite.
// The extraction core owns no persistent state; this store only records what
// already happened (provider used, attempt counts, row counts) for the
// /api/history endpoint and operator debugging.
package history

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/doculens/doculens/constants"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Job is one recorded extraction run.
type Job struct {
	ID           string    `db:"id" json:"id"`
	Filename     string    `db:"filename" json:"filename"`
	PageCount    int       `db:"page_count" json:"page_count"`
	Provider     string    `db:"provider" json:"provider"`
	Model        string    `db:"model" json:"model"`
	AttemptCount int       `db:"attempt_count" json:"attempt_count"`
	RowCount     int       `db:"row_count" json:"row_count"`
	Status       string    `db:"status" json:"status"`
	Error        string    `db:"error" json:"error,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Store persists jobs to SQLite via sqlx.
type Store struct {
	db  *sqlx.DB
	log *slog.Logger
}

// Open connects to the SQLite database at dsn (a file path, or ":memory:")
// and applies pending migrations.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite writes are serialized; a single connection avoids table locks.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("history.open", "dsn", dsn)
	return &Store{db: db, log: logger}, nil
}

func runMigrations(db *sqlx.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record inserts a finished job row.
func (s *Store) Record(ctx context.Context, job Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = string(constants.JobStatusOK)
	}
	const q = `INSERT INTO extraction_jobs
		(id, filename, page_count, provider, model, attempt_count, row_count, status, error, created_at)
		VALUES (:id, :filename, :page_count, :provider, :model, :attempt_count, :row_count, :status, :error, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, q, job); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// List returns the most recent jobs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	jobs := []Job{}
	const q = `SELECT id, filename, page_count, provider, model, attempt_count, row_count, status, error, created_at
		FROM extraction_jobs ORDER BY created_at DESC, id DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &jobs, q, limit); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}
