// Package mock provides in-memory implementations of the store interfaces
// for testing.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/tranvd/attendance-kiosk/internal/recognition"
	"github.com/tranvd/attendance-kiosk/internal/store"
)

// Store is an in-memory implementation of store.EmployeeStore,
// store.AccessLogStore, and store.AlertStore.
type Store struct {
	mu        sync.RWMutex
	employees map[string]*store.Employee
	logs      map[string][]store.AccessLogEntry
	alerts    []store.AlertEntry

	// Error injection
	GetError               error
	AddError               error
	UpdateError            error
	ListError              error
	AppendLogError         error
	LatestLogError         error
	AppendAlertError       error
	GalleryIdentitiesError error
}

// New creates an empty mock store.
func New() *Store {
	return &Store{
		employees: make(map[string]*store.Employee),
		logs:      make(map[string][]store.AccessLogEntry),
	}
}

// AddEmployee seeds an employee without going through the Add error path.
func (s *Store) AddEmployee(e store.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = &e
}

// Get retrieves an employee by id.
func (s *Store) Get(ctx context.Context, id string) (*store.Employee, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

// Add inserts a new employee.
func (s *Store) Add(ctx context.Context, e *store.Employee) error {
	if s.AddError != nil {
		return s.AddError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *e
	s.employees[e.ID] = &copied
	return nil
}

// UpdateAttendance overwrites the attendance fields of an employee.
func (s *Store) UpdateAttendance(ctx context.Context, id string, upd store.AttendanceUpdate) error {
	if s.UpdateError != nil {
		return s.UpdateError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return store.ErrNotFound
	}
	e.CheckInTime = upd.CheckInTime
	e.CheckOutTime = upd.CheckOutTime
	e.AttendanceCount = upd.AttendanceCount
	e.LateCount = upd.LateCount
	return nil
}

// List returns employees matching all filters, ordered by id.
func (s *Store) List(ctx context.Context, filters ...store.Filter) ([]store.Employee, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []store.Employee
	for _, e := range s.employees {
		match := true
		for _, f := range filters {
			if !f.Matches(e) {
				match = false
				break
			}
		}
		if match {
			result = append(result, *e)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GalleryIdentities exports employees with embeddings, ordered by id.
func (s *Store) GalleryIdentities(ctx context.Context) ([]recognition.Identity, error) {
	if s.GalleryIdentitiesError != nil {
		return nil, s.GalleryIdentitiesError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var identities []recognition.Identity
	for _, e := range s.employees {
		if len(e.Embedding) == 0 {
			continue
		}
		identities = append(identities, recognition.Identity{
			UserID:    e.ID,
			Name:      e.Name,
			Embedding: e.Embedding,
		})
	}

	sort.Slice(identities, func(i, j int) bool { return identities[i].UserID < identities[j].UserID })
	return identities, nil
}

// AppendAccess adds an access log entry.
func (s *Store) AppendAccess(ctx context.Context, entry store.AccessLogEntry) error {
	if s.AppendLogError != nil {
		return s.AppendLogError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[entry.EmployeeID] = append(s.logs[entry.EmployeeID], entry)
	return nil
}

// LatestAccess returns the most recent access log entry for an employee.
func (s *Store) LatestAccess(ctx context.Context, employeeID string) (*store.AccessLogEntry, error) {
	if s.LatestLogError != nil {
		return nil, s.LatestLogError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.logs[employeeID]
	if len(entries) == 0 {
		return nil, nil
	}
	last := entries[len(entries)-1]
	return &last, nil
}

// ListAccess returns all access log entries for an employee in order.
func (s *Store) ListAccess(ctx context.Context, employeeID string) ([]store.AccessLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.logs[employeeID]
	out := make([]store.AccessLogEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// AppendAlert adds an anomaly alert entry.
func (s *Store) AppendAlert(ctx context.Context, entry store.AlertEntry) error {
	if s.AppendAlertError != nil {
		return s.AppendAlertError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, entry)
	return nil
}

// ListAlerts returns up to limit most recent alerts, newest first.
func (s *Store) ListAlerts(ctx context.Context, limit int) ([]store.AlertEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.alerts)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]store.AlertEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.alerts[i])
	}
	return out, nil
}
