// Package store defines the persistence interfaces for employees, attendance
// records, access logs, and anomaly alerts, plus the typed filter
// specification used to query employees.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tranvd/attendance-kiosk/internal/recognition"
)

// ErrNotFound is returned when a referenced employee does not exist.
var ErrNotFound = errors.New("employee not found")

// Employee is one enrolled person. The attendance fields are mutated only by
// the single ledger worker; counters are monotonically incremented.
type Employee struct {
	ID          string
	Name        string
	Major       string
	Age         int
	Email       string
	PhoneNumber string
	Role        string
	PhotoURL    string
	Embedding   recognition.Embedding // gallery embedding, set at enrollment

	CheckInTime     *time.Time
	CheckOutTime    *time.Time
	AttendanceCount int
	LateCount       int
}

// AttendanceUpdate carries the fields the ledger writes back after a
// transition.
type AttendanceUpdate struct {
	CheckInTime     *time.Time
	CheckOutTime    *time.Time
	AttendanceCount int
	LateCount       int
}

// AccessLogEntry is one append-only access event for an employee.
type AccessLogEntry struct {
	EmployeeID string
	Status     string
	Timestamp  time.Time
}

// AlertEntry is one anomaly alert with its uploaded evidence image.
type AlertEntry struct {
	ID        string
	ImageURL  string
	Message   string
	Timestamp time.Time
}

// EmployeeStore persists enrolled employees and their attendance records.
type EmployeeStore interface {
	// Get returns ErrNotFound when no employee has the given id.
	Get(ctx context.Context, id string) (*Employee, error)
	Add(ctx context.Context, e *Employee) error
	// UpdateAttendance overwrites the attendance fields of an employee.
	UpdateAttendance(ctx context.Context, id string, upd AttendanceUpdate) error
	// List returns employees matching all given filters, ordered by id.
	List(ctx context.Context, filters ...Filter) ([]Employee, error)
	// GalleryIdentities exports all employees with embeddings as gallery
	// identities, ordered by id.
	GalleryIdentities(ctx context.Context) ([]recognition.Identity, error)
}

// AccessLogStore is the append-only access log, ordered by timestamp.
type AccessLogStore interface {
	AppendAccess(ctx context.Context, entry AccessLogEntry) error
	// LatestAccess returns the most recent entry for an employee, or nil
	// when the employee has no entries.
	LatestAccess(ctx context.Context, employeeID string) (*AccessLogEntry, error)
	ListAccess(ctx context.Context, employeeID string) ([]AccessLogEntry, error)
}

// AlertStore is the append-only anomaly alert log.
type AlertStore interface {
	AppendAlert(ctx context.Context, entry AlertEntry) error
	ListAlerts(ctx context.Context, limit int) ([]AlertEntry, error)
}
