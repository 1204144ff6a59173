package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tranvd/attendance-kiosk/internal/store"
)

// LogRepository provides PostgreSQL-backed access log and alert storage.
type LogRepository struct {
	pool *Pool
}

// NewLogRepository creates a new PostgreSQL log repository.
func NewLogRepository(pool *Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

// AppendAccess adds an access log entry.
func (r *LogRepository) AppendAccess(ctx context.Context, entry store.AccessLogEntry) error {
	query := `
		INSERT INTO access_logs (employee_id, status, ts)
		VALUES ($1, $2, $3)
	`

	if _, err := r.pool.Exec(ctx, query, entry.EmployeeID, entry.Status, entry.Timestamp); err != nil {
		return fmt.Errorf("insert access log: %w", err)
	}
	return nil
}

// LatestAccess returns the most recent access log entry for an employee, or
// nil when the employee has no entries.
func (r *LogRepository) LatestAccess(ctx context.Context, employeeID string) (*store.AccessLogEntry, error) {
	query := `
		SELECT employee_id, status, ts
		FROM access_logs
		WHERE employee_id = $1
		ORDER BY ts DESC
		LIMIT 1
	`

	var entry store.AccessLogEntry
	err := r.pool.QueryRow(ctx, query, employeeID).Scan(&entry.EmployeeID, &entry.Status, &entry.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest access log: %w", err)
	}
	return &entry, nil
}

// ListAccess returns all access log entries for an employee in timestamp order.
func (r *LogRepository) ListAccess(ctx context.Context, employeeID string) ([]store.AccessLogEntry, error) {
	query := `
		SELECT employee_id, status, ts
		FROM access_logs
		WHERE employee_id = $1
		ORDER BY ts
	`

	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("query access logs: %w", err)
	}
	defer rows.Close()

	var entries []store.AccessLogEntry
	for rows.Next() {
		var entry store.AccessLogEntry
		if err := rows.Scan(&entry.EmployeeID, &entry.Status, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan access log: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access logs: %w", err)
	}
	return entries, nil
}

// AppendAlert adds an anomaly alert entry.
func (r *LogRepository) AppendAlert(ctx context.Context, entry store.AlertEntry) error {
	query := `
		INSERT INTO alerts (id, image_url, message, ts)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.pool.Exec(ctx, query, entry.ID, entry.ImageURL, entry.Message, entry.Timestamp); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// ListAlerts returns up to limit most recent alerts, newest first.
func (r *LogRepository) ListAlerts(ctx context.Context, limit int) ([]store.AlertEntry, error) {
	query := `
		SELECT id, image_url, message, ts
		FROM alerts
		ORDER BY ts DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []store.AlertEntry
	for rows.Next() {
		var entry store.AlertEntry
		if err := rows.Scan(&entry.ID, &entry.ImageURL, &entry.Message, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

// Verify interface compliance.
var _ store.AccessLogStore = (*LogRepository)(nil)
var _ store.AlertStore = (*LogRepository)(nil)
