package interim

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// Normalized column names of the three input tables.
const (
	ColEmployeeID = "EmployeeID"

	ColFirstName       = "FirstName"
	ColMiddleInitial   = "MiddleInitial"
	ColLastName        = "LastName"
	ColRole            = "Role"
	ColStatusStartDate = "StatusStartDate"
	ColStatusEndDate   = "StatusEndDate"

	ColEligiblePlan         = "EligiblePlan"
	ColEligibleTier         = "EligibleTier"
	ColEligibilityStartDate = "EligibilityStartDate"
	ColEligibilityEndDate   = "EligibilityEndDate"

	ColPlanCode            = "PlanCode"
	ColTier                = "Tier"
	ColEnrollmentStartDate = "EnrollmentStartDate"
	ColEnrollmentEndDate   = "EnrollmentEndDate"
)

var (
	demographicColumns = []string{
		ColEmployeeID, ColFirstName, ColMiddleInitial, ColLastName,
		ColRole, ColStatusStartDate, ColStatusEndDate,
	}
	eligibilityColumns = []string{
		ColEmployeeID, ColEligiblePlan, ColEligibleTier,
		ColEligibilityStartDate, ColEligibilityEndDate,
	}
	enrollmentColumns = []string{
		ColEmployeeID, ColTier, ColEnrollmentStartDate, ColEnrollmentEndDate,
	}
)

// Options control one build.
type Options struct {
	Year          int
	ExcludeWaived bool
}

// Inputs are the three source tables. Column names are normalized by Build.
type Inputs struct {
	Demographics *domain.Table
	Eligibility  *domain.Table
	Enrollment   *domain.Table
}

// Result is the interim table plus the data-quality findings of the build.
type Result struct {
	Year       int
	Rows       []domain.InterimRow
	DateIssues []domain.DateIssue

	// Rows dropped by the waived filter.
	WaivedEligibility int
	WaivedEnrollment  int
}

// Builder produces interim tables. It holds no state between builds.
type Builder struct {
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// Build validates the inputs and returns one row per employee per month of
// opts.Year, employees in source order and months January to December.
// A missing table or column aborts the build; unparseable dates do not.
func (b *Builder) Build(ctx context.Context, in Inputs, opts Options) (*Result, error) {
	if opts.Year == 0 {
		opts.Year = domain.DefaultReportYear
	}
	if err := requireTable(in.Demographics, "demographics", demographicColumns); err != nil {
		return nil, err
	}
	if err := requireTable(in.Eligibility, "eligibility", eligibilityColumns); err != nil {
		return nil, err
	}
	if err := requireTable(in.Enrollment, "enrollment", enrollmentColumns); err != nil {
		return nil, err
	}

	p := &recordParser{log: b.log}
	employees, err := p.employees(in.Demographics)
	if err != nil {
		return nil, err
	}
	eligibility, err := p.eligibility(in.Eligibility)
	if err != nil {
		return nil, err
	}
	enrollment, err := p.enrollment(in.Enrollment)
	if err != nil {
		return nil, err
	}

	res := &Result{Year: opts.Year, DateIssues: p.issues}
	if opts.ExcludeWaived {
		eligibility, res.WaivedEligibility = dropWaived(eligibility)
		enrollment, res.WaivedEnrollment = dropWaived(enrollment)
	}

	res.Rows = make([]domain.InterimRow, 0, len(employees)*12)
	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := emp.DisplayName()
		for m := time.January; m <= time.December; m++ {
			res.Rows = append(res.Rows, buildRow(emp, name, opts.Year, m, eligibility, enrollment))
		}
	}

	if n := len(res.DateIssues); n > 0 {
		b.log.Warn("interim build ignored unparseable dates",
			"count", n, "year", opts.Year)
	}
	b.log.Info("interim table built",
		"year", opts.Year,
		"employees", len(employees),
		"rows", len(res.Rows),
		"waived_eligibility", res.WaivedEligibility,
		"waived_enrollment", res.WaivedEnrollment,
	)
	return res, nil
}

func buildRow(emp domain.Employee, name string, year int, m time.Month,
	eligibility []domain.EligibilityInterval, enrollment []domain.EnrollmentInterval) domain.InterimRow {

	start, end := MonthBounds(year, m)
	employed := emp.Status.Covers(start, end)
	el := ClassifyEligibility(Overlapping(eligibility, emp.ID, start, end))
	en := ClassifyEnrollment(Overlapping(enrollment, emp.ID, start, end))

	return domain.InterimRow{
		EmployeeID:           emp.ID,
		Name:                 name,
		Month:                m,
		EmployedFullMonth:    employed,
		FullTimeFullMonth:    employed && emp.Role == domain.RoleFullTime,
		PartTimeFullMonth:    employed && emp.Role == domain.RolePartTime,
		EligibleMinimumValue: el.MinimumValue,
		EmployeeEligible:     el.Employee,
		SpouseEligible:       el.Spouse,
		ChildEligible:        el.Child,
		EmployeeEnrolled:     en.Employee,
		SpouseEnrolled:       en.Spouse,
		ChildEnrolled:        en.Child,
	}
}

func requireTable(t *domain.Table, name string, cols []string) error {
	if t == nil {
		return &domain.MissingInputError{Table: name}
	}
	t.NormalizeColumns()
	return t.Require(cols...)
}

type planned interface {
	PlanCode() string
}

// IsWaived reports whether a plan code marks a waived election.
func IsWaived(plan string) bool {
	return strings.Contains(strings.ToLower(plan), "waive")
}

func dropWaived[T planned](records []T) ([]T, int) {
	kept := records[:0:0]
	for _, r := range records {
		if !IsWaived(r.PlanCode()) {
			kept = append(kept, r)
		}
	}
	return kept, len(records) - len(kept)
}
