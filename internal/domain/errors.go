package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MissingInputError reports a required sheet or column that is absent.
// It aborts the whole build.
type MissingInputError struct {
	Table  string
	Sheet  string
	Column string
}

func (e *MissingInputError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("%s: missing required column %q", e.Table, e.Column)
	case e.Sheet != "":
		return fmt.Sprintf("%s: missing required sheet %q", e.Table, e.Sheet)
	default:
		return fmt.Sprintf("%s: missing required input", e.Table)
	}
}

// InvalidValueError reports a cell that cannot be interpreted at all, such
// as a non-numeric employee id.
type InvalidValueError struct {
	Table  string
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s row %d: invalid %s %q", e.Table, e.Row, e.Column, e.Value)
}

// DateIssue records a date cell that could not be parsed. The interval it
// belongs to is kept but never matches any month.
type DateIssue struct {
	Table  string
	Row    int
	Column string
	Value  string
}

func (d DateIssue) String() string {
	return fmt.Sprintf("%s row %d: unparseable %s %q", d.Table, d.Row, d.Column, d.Value)
}

// NoDataForEmployeeError is returned when the monthly summary has no rows
// for the requested employee.
type NoDataForEmployeeError struct {
	EmployeeID int64
}

func (e *NoDataForEmployeeError) Error() string {
	return fmt.Sprintf("no monthly rows found for employee %d", e.EmployeeID)
}

// ErrFieldNotFound is returned by form documents for unknown field names.
var ErrFieldNotFound = errors.New("form field not found")

// FieldWarning is a field write that was skipped. Generation continues.
type FieldWarning struct {
	Field string
	Err   error
}

func (w FieldWarning) String() string {
	return fmt.Sprintf("field %q: %v", w.Field, w.Err)
}

// ItemFailure is one employee that failed during bulk generation.
type ItemFailure struct {
	EmployeeID int64
	Err        error
}

func (f ItemFailure) String() string {
	return fmt.Sprintf("Employee %d: %v", f.EmployeeID, f.Err)
}

// FieldMapError reports an invalid field-map configuration.
type FieldMapError struct {
	Section string
	Key     string
	Reason  string
}

func (e *FieldMapError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("field map: section %q: %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("field map: %s.%s: %s", e.Section, e.Key, e.Reason)
}

// ParseEmployeeID accepts integer ids as exported by spreadsheets, including
// the float form ("1001.0") numeric cells sometimes take.
func ParseEmployeeID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("employee id %q is not an integer", s)
	}
	return int64(f), nil
}

// ErrRunNotFound is returned by repositories for unknown run ids.
var ErrRunNotFound = errors.New("run not found")
