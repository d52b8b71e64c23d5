package domain

import (
	"strings"
	"time"
)

const DefaultReportYear = 2025

// FarFuture stands in for an interval end that was left blank in the source
// data. It is the latest date the upstream HR exports can represent.
var FarFuture = time.Date(2262, time.April, 11, 0, 0, 0, 0, time.UTC)

// Employment roles recognized by the builder. Any other value is neither.
const (
	RoleFullTime = "FT"
	RolePartTime = "PT"
)

// Interval is a closed date range [Start, End]. Valid is false when either
// bound could not be parsed; an invalid interval never covers a month.
type Interval struct {
	Start time.Time
	End   time.Time
	Valid bool
}

// Covers reports whether the interval fully contains [monthStart, monthEnd].
// Partial months get no credit.
func (iv Interval) Covers(monthStart, monthEnd time.Time) bool {
	if !iv.Valid {
		return false
	}
	return !iv.Start.After(monthStart) && !iv.End.Before(monthEnd)
}

// Employee is one row of the demographics table.
type Employee struct {
	ID            int64
	FirstName     string
	MiddleInitial string
	LastName      string
	Role          string
	Status        Interval
}

// DisplayName joins first, middle initial and last name with single spaces.
// Doubled spaces left by blank parts are collapsed once, then the ends trimmed.
func (e Employee) DisplayName() string {
	n := e.FirstName + " " + e.MiddleInitial + " " + e.LastName
	return strings.TrimSpace(strings.ReplaceAll(n, "  ", " "))
}

// EligibilityInterval is one row of the eligibility table.
type EligibilityInterval struct {
	EmployeeID int64
	Plan       string
	Tier       string
	Interval   Interval
}

func (r EligibilityInterval) Employee() int64  { return r.EmployeeID }
func (r EligibilityInterval) Period() Interval { return r.Interval }
func (r EligibilityInterval) PlanCode() string { return r.Plan }

// EnrollmentInterval is one row of the enrollment table. Plan is empty when
// the source table has no PlanCode column.
type EnrollmentInterval struct {
	EmployeeID int64
	Plan       string
	Tier       string
	Interval   Interval
}

func (r EnrollmentInterval) Employee() int64  { return r.EmployeeID }
func (r EnrollmentInterval) Period() Interval { return r.Interval }
func (r EnrollmentInterval) PlanCode() string { return r.Plan }

// InterimRow is the derived status of one employee for one calendar month.
type InterimRow struct {
	EmployeeID int64
	Name       string
	Month      time.Month

	EmployedFullMonth bool
	FullTimeFullMonth bool
	PartTimeFullMonth bool

	EligibleMinimumValue bool
	EmployeeEligible     bool
	SpouseEligible       bool
	ChildEligible        bool

	EmployeeEnrolled bool
	SpouseEnrolled   bool
	ChildEnrolled    bool

	// Line14 and Line16 are filled from an external monthly summary.
	Line14 string
	Line16 string
}

// MonthLabel returns the three-letter abbreviation ("Jan", "Jun", "Sep").
func (r InterimRow) MonthLabel() string {
	return r.Month.String()[:3]
}

// SummaryRow is one row of the monthly line-code summary.
type SummaryRow struct {
	EmployeeID int64
	Month      string
	Line14     string
	Line16     string
}

// SummaryFromInterim turns interim rows into summary rows so that line codes
// merged into the interim table can drive Part II directly.
func SummaryFromInterim(rows []InterimRow) []SummaryRow {
	out := make([]SummaryRow, len(rows))
	for i, r := range rows {
		out[i] = SummaryRow{
			EmployeeID: r.EmployeeID,
			Month:      r.MonthLabel(),
			Line14:     r.Line14,
			Line16:     r.Line16,
		}
	}
	return out
}

// Run is one interim build persisted so later PDF requests can reuse it.
type Run struct {
	ID            string
	Year          int
	ExcludeWaived bool
	SourceName    string
	Rows          []InterimRow
	Summary       []SummaryRow
	DateIssues    int
	CreatedAt     time.Time

	// Employees is the distinct employee count; listings fill it without
	// loading Rows.
	Employees int

	// Source holds the uploaded workbook; Part I values are re-derived from it.
	Source []byte
}

// HasSummary reports whether a monthly line-code summary was attached.
func (r *Run) HasSummary() bool { return r.Summary != nil }

// BatchRecord is the persisted outcome of one bulk generation.
type BatchRecord struct {
	ID        int64
	RunID     string
	Succeeded int
	Failures  []ItemFailure
	CreatedAt time.Time
}
