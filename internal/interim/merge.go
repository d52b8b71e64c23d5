package interim

import "github.com/csg33k/aca1095c-generator/internal/domain"

type employeeMonth struct {
	id    int64
	month int
}

// MergeLineCodes returns a copy of rows with Line14 and Line16 taken from
// the monthly summary. Summary months go through the alias table; a later
// summary row for the same employee-month wins.
func MergeLineCodes(rows []domain.InterimRow, summary []domain.SummaryRow) []domain.InterimRow {
	codes := make(map[employeeMonth]domain.SummaryRow, len(summary))
	for _, s := range summary {
		codes[employeeMonth{s.EmployeeID, domain.MonthIndex(s.Month)}] = s
	}

	out := make([]domain.InterimRow, len(rows))
	for i, r := range rows {
		if s, ok := codes[employeeMonth{r.EmployeeID, int(r.Month) - 1}]; ok {
			r.Line14 = s.Line14
			r.Line16 = s.Line16
		}
		out[i] = r
	}
	return out
}
