package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/tranvd/attendance-kiosk/internal/recognition"
	"github.com/tranvd/attendance-kiosk/internal/store"
)

// EmployeeRepository provides PostgreSQL-backed employee storage.
type EmployeeRepository struct {
	pool *Pool
}

// NewEmployeeRepository creates a new PostgreSQL employee repository.
func NewEmployeeRepository(pool *Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

const employeeColumns = `id, name, major, age, email, phone_number, role, photo_url,
       embedding, check_in_time, check_out_time, attendance_count, late_count`

// Get retrieves an employee by id.
func (r *EmployeeRepository) Get(ctx context.Context, id string) (*store.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns)

	e, err := scanEmployeeRow(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query employee: %w", err)
	}
	return e, nil
}

// Add inserts a new employee (upsert on id).
func (r *EmployeeRepository) Add(ctx context.Context, e *store.Employee) error {
	query := `
		INSERT INTO employees (id, name, major, age, email, phone_number, role, photo_url, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::vector)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			major = EXCLUDED.major,
			age = EXCLUDED.age,
			email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			role = EXCLUDED.role,
			photo_url = EXCLUDED.photo_url,
			embedding = EXCLUDED.embedding
	`

	var vec any
	if len(e.Embedding) > 0 {
		vec = pgvector.NewVector(e.Embedding)
	}

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Name, e.Major, e.Age, e.Email, e.PhoneNumber, e.Role, e.PhotoURL, vec)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// UpdateAttendance overwrites the attendance fields of an employee.
func (r *EmployeeRepository) UpdateAttendance(ctx context.Context, id string, upd store.AttendanceUpdate) error {
	query := `
		UPDATE employees SET
			check_in_time = $1,
			check_out_time = $2,
			attendance_count = $3,
			late_count = $4
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		upd.CheckInTime, upd.CheckOutTime, upd.AttendanceCount, upd.LateCount, id)
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attendance rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// List returns employees matching all given filters, ordered by id.
func (r *EmployeeRepository) List(ctx context.Context, filters ...store.Filter) ([]store.Employee, error) {
	where, args, err := buildFilterClause(filters)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM employees%s ORDER BY id", employeeColumns, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var employees []store.Employee
	for rows.Next() {
		e, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}

// GalleryIdentities exports all employees with embeddings, ordered by id.
func (r *EmployeeRepository) GalleryIdentities(ctx context.Context) ([]recognition.Identity, error) {
	query := `
		SELECT id, name, embedding
		FROM employees
		WHERE embedding IS NOT NULL
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query gallery identities: %w", err)
	}
	defer rows.Close()

	var identities []recognition.Identity
	for rows.Next() {
		var ident recognition.Identity
		var vec pgvector.Vector

		if err := rows.Scan(&ident.UserID, &ident.Name, &vec); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}

		ident.Embedding = recognition.Embedding(vec.Slice())
		identities = append(identities, ident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// filterColumns maps filter fields to SQL column expressions. String fields
// go through unaccent + LOWER + REPLACE so "nguyen-van-a" matches
// "Nguyễn Văn A", matching the normalization done in Go.
var filterColumns = map[store.Field]struct {
	column  string
	numeric bool
}{
	store.FieldName:       {"LOWER(REPLACE(unaccent(name), '-', ' '))", false},
	store.FieldMajor:      {"LOWER(REPLACE(unaccent(major), '-', ' '))", false},
	store.FieldRole:       {"LOWER(REPLACE(unaccent(role), '-', ' '))", false},
	store.FieldAge:        {"age", true},
	store.FieldAttendance: {"attendance_count", true},
	store.FieldLate:       {"late_count", true},
}

var sqlOps = map[store.Op]string{
	store.OpEq:  "=",
	store.OpNe:  "<>",
	store.OpGt:  ">",
	store.OpGte: ">=",
	store.OpLt:  "<",
	store.OpLte: "<=",
}

// buildFilterClause translates typed filters into a WHERE clause with
// positional arguments.
func buildFilterClause(filters []store.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	conditions := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))

	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return "", nil, err
		}

		col, ok := filterColumns[f.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field %q", f.Field)
		}

		op := sqlOps[f.Op]
		placeholder := len(args) + 1

		if col.numeric {
			n, err := strconv.Atoi(f.Value)
			if err != nil {
				return "", nil, fmt.Errorf("filter on %s needs an integer value, got %q", f.Field, f.Value)
			}
			args = append(args, n)
		} else {
			args = append(args, store.NormalizeName(f.Value))
		}

		conditions = append(conditions, fmt.Sprintf("%s %s $%d", col.column, op, placeholder))
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

// scanEmployeeRow scans a single row into an Employee.
func scanEmployeeRow(scanner interface{ Scan(...any) error }) (*store.Employee, error) {
	var e store.Employee
	var vec *pgvector.Vector
	var checkIn, checkOut sql.NullTime

	if err := scanner.Scan(
		&e.ID,
		&e.Name,
		&e.Major,
		&e.Age,
		&e.Email,
		&e.PhoneNumber,
		&e.Role,
		&e.PhotoURL,
		&vec,
		&checkIn,
		&checkOut,
		&e.AttendanceCount,
		&e.LateCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan employee: %w", err)
	}

	if vec != nil {
		e.Embedding = recognition.Embedding(vec.Slice())
	}
	if checkIn.Valid {
		t := checkIn.Time
		e.CheckInTime = &t
	}
	if checkOut.Valid {
		t := checkOut.Time
		e.CheckOutTime = &t
	}

	return &e, nil
}

// Verify interface compliance.
var _ store.EmployeeStore = (*EmployeeRepository)(nil)
