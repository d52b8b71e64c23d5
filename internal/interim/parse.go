package interim

import (
	"log/slog"
	"time"

	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// recordParser turns table rows into typed records and collects the date
// cells it had to give up on.
type recordParser struct {
	log    *slog.Logger
	issues []domain.DateIssue
}

func (p *recordParser) employees(t *domain.Table) ([]domain.Employee, error) {
	var out []domain.Employee
	for i := range t.Rows {
		id, ok, err := p.employeeID(t, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, domain.Employee{
			ID:            id,
			FirstName:     t.Value(i, ColFirstName),
			MiddleInitial: t.Value(i, ColMiddleInitial),
			LastName:      t.Value(i, ColLastName),
			Role:          t.Value(i, ColRole),
			Status:        p.interval(t, i, ColStatusStartDate, ColStatusEndDate),
		})
	}
	return out, nil
}

func (p *recordParser) eligibility(t *domain.Table) ([]domain.EligibilityInterval, error) {
	var out []domain.EligibilityInterval
	for i := range t.Rows {
		id, ok, err := p.employeeID(t, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, domain.EligibilityInterval{
			EmployeeID: id,
			Plan:       t.Value(i, ColEligiblePlan),
			Tier:       t.Value(i, ColEligibleTier),
			Interval:   p.interval(t, i, ColEligibilityStartDate, ColEligibilityEndDate),
		})
	}
	return out, nil
}

func (p *recordParser) enrollment(t *domain.Table) ([]domain.EnrollmentInterval, error) {
	var out []domain.EnrollmentInterval
	for i := range t.Rows {
		id, ok, err := p.employeeID(t, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, domain.EnrollmentInterval{
			EmployeeID: id,
			Plan:       t.Value(i, ColPlanCode),
			Tier:       t.Value(i, ColTier),
			Interval:   p.interval(t, i, ColEnrollmentStartDate, ColEnrollmentEndDate),
		})
	}
	return out, nil
}

// employeeID returns ok=false for rows that should be skipped: fully blank
// rows and rows without an id.
func (p *recordParser) employeeID(t *domain.Table, row int) (int64, bool, error) {
	if t.BlankRow(row) {
		return 0, false, nil
	}
	raw := t.Value(row, ColEmployeeID)
	if raw == "" {
		p.log.Warn("skipping row without employee id", "table", t.Name, "row", row+1)
		return 0, false, nil
	}
	id, err := domain.ParseEmployeeID(raw)
	if err != nil {
		return 0, false, &domain.InvalidValueError{
			Table: t.Name, Row: row + 1, Column: ColEmployeeID, Value: raw,
		}
	}
	return id, true, nil
}

func (p *recordParser) interval(t *domain.Table, row int, startCol, endCol string) domain.Interval {
	start, okStart := p.date(t, row, startCol, false)
	end, okEnd := p.date(t, row, endCol, true)
	iv := domain.Interval{Start: start, End: end, Valid: okStart && okEnd}
	if iv.Valid && end.Before(start) {
		p.log.Warn("interval ends before it starts",
			"table", t.Name, "row", row+1,
			"start", start.Format(time.DateOnly), "end", end.Format(time.DateOnly))
	}
	return iv
}

// date parses one cell. A blank end date is open-ended; anything else that
// does not parse is recorded as an issue and reported as not-a-date.
func (p *recordParser) date(t *domain.Table, row int, col string, openEnded bool) (time.Time, bool) {
	raw := t.Value(row, col)
	if raw == "" && openEnded {
		return domain.FarFuture, true
	}
	if d, ok := ParseDate(raw); ok {
		return d, true
	}
	issue := domain.DateIssue{Table: t.Name, Row: row + 1, Column: col, Value: raw}
	p.issues = append(p.issues, issue)
	p.log.Warn("unparseable date", "table", t.Name, "row", row+1, "column", col, "value", raw)
	return time.Time{}, false
}
