package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Field enumerates the employee fields that can be filtered on. Filters are
// a typed query specification: enumerated field + comparator, evaluated by
// the store, instead of opaque predicate callables.
type Field string

const (
	FieldName       Field = "name"
	FieldMajor      Field = "major"
	FieldRole       Field = "role"
	FieldAge        Field = "age"
	FieldAttendance Field = "attendance"
	FieldLate       Field = "late"
)

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// Filter is one field comparison. Value is a string; numeric fields parse it
// as an integer.
type Filter struct {
	Field Field
	Op    Op
	Value string
}

// numericFields are compared as integers; the rest as normalized strings.
var numericFields = map[Field]bool{
	FieldAge:        true,
	FieldAttendance: true,
	FieldLate:       true,
}

// ParseFilter parses a "field:op:value" CLI/query expression.
func ParseFilter(expr string) (Filter, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) != 3 {
		return Filter{}, fmt.Errorf("invalid filter %q: want field:op:value", expr)
	}

	f := Filter{Field: Field(parts[0]), Op: Op(parts[1]), Value: parts[2]}
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Validate checks field, operator, and value type.
func (f Filter) Validate() error {
	switch f.Field {
	case FieldName, FieldMajor, FieldRole, FieldAge, FieldAttendance, FieldLate:
	default:
		return fmt.Errorf("unknown filter field %q", f.Field)
	}

	switch f.Op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
	default:
		return fmt.Errorf("unknown filter operator %q", f.Op)
	}

	if numericFields[f.Field] {
		if _, err := strconv.Atoi(f.Value); err != nil {
			return fmt.Errorf("filter on %s needs an integer value, got %q", f.Field, f.Value)
		}
	} else if f.Op != OpEq && f.Op != OpNe {
		return fmt.Errorf("operator %s not supported for string field %s", f.Op, f.Field)
	}

	return nil
}

// Matches evaluates the filter against an employee. String comparisons are
// normalization-insensitive so "Nguyen Van A" matches "nguyen-van-a".
func (f Filter) Matches(e *Employee) bool {
	if numericFields[f.Field] {
		want, err := strconv.Atoi(f.Value)
		if err != nil {
			return false
		}
		var got int
		switch f.Field {
		case FieldAge:
			got = e.Age
		case FieldAttendance:
			got = e.AttendanceCount
		case FieldLate:
			got = e.LateCount
		}
		return compareInts(got, want, f.Op)
	}

	var got string
	switch f.Field {
	case FieldName:
		got = e.Name
	case FieldMajor:
		got = e.Major
	case FieldRole:
		got = e.Role
	}

	equal := NormalizeName(got) == NormalizeName(f.Value)
	if f.Op == OpNe {
		return !equal
	}
	return equal
}

func compareInts(got, want int, op Op) bool {
	switch op {
	case OpEq:
		return got == want
	case OpNe:
		return got != want
	case OpGt:
		return got > want
	case OpGte:
		return got >= want
	case OpLt:
		return got < want
	case OpLte:
		return got <= want
	}
	return false
}
