// Package attendance implements the daily check-in/check-out state machine
// for recognized employees.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tranvd/attendance-kiosk/internal/config"
	"github.com/tranvd/attendance-kiosk/internal/store"
)

// logDebounce suppresses access log entries when the previous entry for the
// same employee is younger than this.
const logDebounce = time.Minute

// Outcome is the result of applying one recognition to the ledger.
type Outcome int

const (
	// OutcomeCheckInSuccess is an on-time check-in.
	OutcomeCheckInSuccess Outcome = iota
	// OutcomeCheckInLate is a check-in after the late cutoff.
	OutcomeCheckInLate
	// OutcomeCheckOut is a check-out after the check-out cutoff.
	OutcomeCheckOut
	// OutcomeAlreadyHandled means both transitions are exhausted for today
	// or the check-out cutoff has not passed yet.
	OutcomeAlreadyHandled
	// OutcomeNotFound means the recognized id has no employee record.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCheckInSuccess:
		return "check_in"
	case OutcomeCheckInLate:
		return "check_in_late"
	case OutcomeCheckOut:
		return "check_out"
	case OutcomeAlreadyHandled:
		return "already_handled"
	case OutcomeNotFound:
		return "not_found"
	}
	return "unknown"
}

// Ledger applies recognition events to employee attendance records. A single
// worker drives it, so transitions are never concurrent for the same
// employee.
type Ledger struct {
	employees store.EmployeeStore
	logs      store.AccessLogStore
	cfg       config.AttendanceConfig
}

// NewLedger creates a ledger over the given stores.
func NewLedger(employees store.EmployeeStore, logs store.AccessLogStore, cfg config.AttendanceConfig) *Ledger {
	return &Ledger{
		employees: employees,
		logs:      logs,
		cfg:       cfg,
	}
}

// Result describes one ledger transition.
type Result struct {
	Outcome  Outcome
	Employee *store.Employee // nil for OutcomeNotFound
}

// Record applies one recognition of employeeID at the given time. Check-in
// has priority over check-out: when both transitions are possible the
// recognition counts as a check-in. Errors are infrastructure failures,
// never business outcomes.
func (l *Ledger) Record(ctx context.Context, employeeID string, now time.Time) (Result, error) {
	e, err := l.employees.Get(ctx, employeeID)
	if errors.Is(err, store.ErrNotFound) {
		return Result{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("fetching employee %s: %w", employeeID, err)
	}

	switch {
	case eligibleCheckIn(e, now):
		return l.checkIn(ctx, e, now)
	case l.eligibleCheckOut(e, now):
		return l.checkOut(ctx, e, now)
	default:
		// Already-handled recognitions still leave an access log trail;
		// the debounce keeps repeated frames from flooding it.
		if err := l.appendLog(ctx, e.ID, OutcomeAlreadyHandled, now); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeAlreadyHandled, Employee: e}, nil
	}
}

// eligibleCheckIn reports whether the employee has not checked in today.
func eligibleCheckIn(e *store.Employee, now time.Time) bool {
	return e.CheckInTime == nil || !sameDay(*e.CheckInTime, now)
}

// eligibleCheckOut reports whether the employee has not checked out today
// and the check-out cutoff has passed.
func (l *Ledger) eligibleCheckOut(e *store.Employee, now time.Time) bool {
	if !l.cfg.CheckOutCutoff.Before(now) {
		return false
	}
	return e.CheckOutTime == nil || !sameDay(*e.CheckOutTime, now)
}

func (l *Ledger) checkIn(ctx context.Context, e *store.Employee, now time.Time) (Result, error) {
	outcome := OutcomeCheckInSuccess
	late := l.cfg.LateCutoff.Before(now)
	if late {
		outcome = OutcomeCheckInLate
	}

	upd := store.AttendanceUpdate{
		CheckInTime:     &now,
		CheckOutTime:    e.CheckOutTime,
		AttendanceCount: e.AttendanceCount + 1,
		LateCount:       e.LateCount,
	}
	if late {
		upd.LateCount++
	}

	if err := l.employees.UpdateAttendance(ctx, e.ID, upd); err != nil {
		return Result{}, fmt.Errorf("recording check-in for %s: %w", e.ID, err)
	}

	e.CheckInTime = upd.CheckInTime
	e.AttendanceCount = upd.AttendanceCount
	e.LateCount = upd.LateCount

	if err := l.appendLog(ctx, e.ID, outcome, now); err != nil {
		return Result{}, err
	}
	return Result{Outcome: outcome, Employee: e}, nil
}

func (l *Ledger) checkOut(ctx context.Context, e *store.Employee, now time.Time) (Result, error) {
	upd := store.AttendanceUpdate{
		CheckInTime:     e.CheckInTime,
		CheckOutTime:    &now,
		AttendanceCount: e.AttendanceCount,
		LateCount:       e.LateCount,
	}

	if err := l.employees.UpdateAttendance(ctx, e.ID, upd); err != nil {
		return Result{}, fmt.Errorf("recording check-out for %s: %w", e.ID, err)
	}

	e.CheckOutTime = upd.CheckOutTime

	if err := l.appendLog(ctx, e.ID, OutcomeCheckOut, now); err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeCheckOut, Employee: e}, nil
}

// appendLog writes an access log entry unless the previous entry for the
// employee is under the debounce window.
func (l *Ledger) appendLog(ctx context.Context, employeeID string, outcome Outcome, now time.Time) error {
	latest, err := l.logs.LatestAccess(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("fetching latest access log for %s: %w", employeeID, err)
	}
	if latest != nil && now.Sub(latest.Timestamp) < logDebounce {
		return nil
	}

	entry := store.AccessLogEntry{
		EmployeeID: employeeID,
		Status:     outcome.String(),
		Timestamp:  now,
	}
	if err := l.logs.AppendAccess(ctx, entry); err != nil {
		return fmt.Errorf("appending access log for %s: %w", employeeID, err)
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
