package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// InterimColumns is the header of an exported interim table.
var InterimColumns = []string{
	"Employee_ID", "Name", "Month",
	"Is_Employed_full_month", "Is_full_time_full_month", "Is_Part_time_full_month",
	"eligible_mv", "employee_eligible", "spouse_eligible", "child_eligible",
	"employee_enrolled", "spouse_enrolled", "child_enrolled",
	"line_14", "line_16",
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func trueFalse(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// interimRecord renders one row in InterimColumns order.
func interimRecord(r domain.InterimRow) []string {
	return []string{
		strconv.FormatInt(r.EmployeeID, 10), r.Name, r.MonthLabel(),
		yesNo(r.EmployedFullMonth), yesNo(r.FullTimeFullMonth), yesNo(r.PartTimeFullMonth),
		trueFalse(r.EligibleMinimumValue), trueFalse(r.EmployeeEligible),
		trueFalse(r.SpouseEligible), trueFalse(r.ChildEligible),
		trueFalse(r.EmployeeEnrolled), trueFalse(r.SpouseEnrolled), trueFalse(r.ChildEnrolled),
		r.Line14, r.Line16,
	}
}

// WriteInterimCSV writes rows as CSV with a header line.
func WriteInterimCSV(w io.Writer, rows []domain.InterimRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InterimColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(interimRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// InterimSheetName is the worksheet name of an exported interim table.
func InterimSheetName(year int) string {
	return fmt.Sprintf("Interim_%d", year)
}

// WriteInterimXLSX writes rows as a single-sheet workbook.
func WriteInterimXLSX(w io.Writer, year int, rows []domain.InterimRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := InterimSheetName(year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, cells(InterimColumns)); err != nil {
		return err
	}
	for i, r := range rows {
		rec := cells(interimRecord(r))
		rec[0] = r.EmployeeID
		if err := setRow(f, sheet, i+2, rec); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write interim workbook: %w", err)
	}
	return nil
}

func cells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
