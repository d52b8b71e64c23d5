// Package interim derives the per-employee, per-month eligibility and
// enrollment table that feeds Form 1095-C Part II.
package interim

import (
	"time"

	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// Dated is a record tied to one employee over a date interval.
type Dated interface {
	Employee() int64
	Period() domain.Interval
}

// MonthBounds returns the first and last calendar day of a month.
func MonthBounds(year int, m time.Month) (start, end time.Time) {
	start = time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

// Overlapping returns the records of employeeID whose interval contains the
// whole month. Input order is preserved.
func Overlapping[T Dated](records []T, employeeID int64, monthStart, monthEnd time.Time) []T {
	var out []T
	for _, r := range records {
		if r.Employee() == employeeID && r.Period().Covers(monthStart, monthEnd) {
			out = append(out, r)
		}
	}
	return out
}
