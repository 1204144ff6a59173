// Package postgres provides the PostgreSQL-backed implementation of the
// store interfaces.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/tranvd/attendance-kiosk/internal/config"
)

// EmbeddingDim is the fixed dimension for face embeddings (512 for
// buffalo_l/ResNet100).
const EmbeddingDim = 512

// Pool manages a PostgreSQL connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new PostgreSQL connection pool.
func NewPool(cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool.
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Verify connection.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{db: db}, nil
}

// DB returns the underlying sql.DB for direct access.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// QueryRow executes a query that returns a single row.
func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

// Query executes a query that returns rows.
func (p *Pool) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return rows, nil
}

// Exec executes a query that doesn't return rows.
func (p *Pool) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing statement: %w", err)
	}
	return result, nil
}

// BeginTx starts a transaction.
func (p *Pool) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := p.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return tx, nil
}

// Migrate creates the schema. Safe to run repeatedly.
func (p *Pool) Migrate(ctx context.Context) error {
	if _, err := p.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}
	if _, err := p.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS unaccent"); err != nil {
		return fmt.Errorf("failed to create unaccent extension: %w", err)
	}

	createEmployees := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS employees (
			id               VARCHAR(64) PRIMARY KEY,
			name             VARCHAR(255) NOT NULL,
			major            VARCHAR(255) NOT NULL DEFAULT '',
			age              INTEGER NOT NULL DEFAULT 0,
			email            VARCHAR(255) NOT NULL DEFAULT '',
			phone_number     VARCHAR(64) NOT NULL DEFAULT '',
			role             VARCHAR(64) NOT NULL DEFAULT '',
			photo_url        TEXT NOT NULL DEFAULT '',
			embedding        vector(%d),
			check_in_time    TIMESTAMP WITH TIME ZONE,
			check_out_time   TIMESTAMP WITH TIME ZONE,
			attendance_count INTEGER NOT NULL DEFAULT 0,
			late_count       INTEGER NOT NULL DEFAULT 0,
			created_at       TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, EmbeddingDim)

	if _, err := p.Exec(ctx, createEmployees); err != nil {
		return fmt.Errorf("failed to create employees table: %w", err)
	}

	createAccessLogs := `
		CREATE TABLE IF NOT EXISTS access_logs (
			id          BIGSERIAL PRIMARY KEY,
			employee_id VARCHAR(64) NOT NULL REFERENCES employees(id),
			status      VARCHAR(64) NOT NULL,
			ts          TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`
	if _, err := p.Exec(ctx, createAccessLogs); err != nil {
		return fmt.Errorf("failed to create access_logs table: %w", err)
	}

	if _, err := p.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS access_logs_employee_ts_idx
		ON access_logs(employee_id, ts DESC)
	`); err != nil {
		return fmt.Errorf("failed to create access_logs index: %w", err)
	}

	createAlerts := `
		CREATE TABLE IF NOT EXISTS alerts (
			id        VARCHAR(64) PRIMARY KEY,
			image_url TEXT NOT NULL,
			message   TEXT NOT NULL,
			ts        TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`
	if _, err := p.Exec(ctx, createAlerts); err != nil {
		return fmt.Errorf("failed to create alerts table: %w", err)
	}

	return nil
}

// Initialize creates a pool, runs migrations, and returns the pool.
func Initialize(cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	pool, err := NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return pool, nil
}
