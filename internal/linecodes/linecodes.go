// Package linecodes turns a year of monthly Line 14 / Line 16 codes into the
// field assignments printed on Form 1095-C.
package linecodes

import (
	"sort"
	"strings"

	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/fieldmap"
)

// MonthlyCodes holds one code per canonical month; "" means no code.
type MonthlyCodes [12]string

// Aggregation is the decision for one line of one employee.
type Aggregation struct {
	// Collapsed is set when all twelve months carry the same non-blank code.
	Collapsed bool
	All       string
	Months    MonthlyCodes
}

// FieldWrite is one value to put into one form field.
type FieldWrite struct {
	Field string
	Value string
}

// FromSummary buckets one employee's summary rows by canonical month.
// Unrecognized month labels fall into January. Rows are ordered by month
// first (stable), so for duplicates the later row of the input wins.
func FromSummary(rows []domain.SummaryRow) (line14, line16 MonthlyCodes) {
	sorted := make([]domain.SummaryRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return domain.MonthIndex(sorted[i].Month) < domain.MonthIndex(sorted[j].Month)
	})
	for _, r := range sorted {
		i := domain.MonthIndex(r.Month)
		line14[i] = r.Line14
		line16[i] = r.Line16
	}
	return line14, line16
}

// Aggregate applies the all-12-months rule.
func Aggregate(codes MonthlyCodes) Aggregation {
	if same, ok := allTwelveSame(codes); ok {
		return Aggregation{Collapsed: true, All: same}
	}
	return Aggregation{Months: codes}
}

func allTwelveSame(codes MonthlyCodes) (string, bool) {
	first := codes[0]
	for _, c := range codes {
		if strings.TrimSpace(c) == "" || c != first {
			return "", false
		}
	}
	return first, true
}

// Writes aggregates codes and maps the result onto a line section. A section
// with no mapping yields nothing. A collapsed line is only written to the
// "all" field when the section maps one; otherwise the months are written
// individually.
func Writes(codes MonthlyCodes, section fieldmap.LineSection) []FieldWrite {
	if section.Empty() {
		return nil
	}
	agg := Aggregate(codes)

	var out []FieldWrite
	if agg.Collapsed && section.All != "" {
		out = append(out, FieldWrite{Field: section.All, Value: agg.All})
		for i := range domain.Months {
			if f, ok := section.Months[i]; ok {
				out = append(out, FieldWrite{Field: f, Value: ""})
			}
		}
		return out
	}
	for i := range domain.Months {
		if f, ok := section.Months[i]; ok {
			out = append(out, FieldWrite{Field: f, Value: codes[i]})
		}
	}
	return out
}
