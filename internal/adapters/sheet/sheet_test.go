package sheet_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/csg33k/aca1095c-generator/internal/adapters/sheet"
	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/interim"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type sheetData struct {
	name string
	rows [][]interface{}
}

// workbook builds an in-memory XLSX with the given sheets, in order.
func workbook(t *testing.T, sheets ...sheetData) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		for r, row := range s.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			row := row
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func hrWorkbook(t *testing.T, demoSheet string) *bytes.Buffer {
	return workbook(t,
		sheetData{demoSheet, [][]interface{}{
			{"EmployeeID", "FirstName", "MiddleInitial", "LastName", "Role", "StatusStartDate", "StatusEndDate", "SSN"},
			{1001, "Ann", "", "Lee", "FT", 45658, "", "123-45-6789"},
		}},
		sheetData{"Emp Eligibility", [][]interface{}{
			{"EmployeeID", "EligiblePlan", "EligibleTier", "EligibilityStartDate", "EligibilityEndDate"},
			{1001, "PlanA", "EMPFAM", 45658, ""},
		}},
		sheetData{"Emp Enrollment", [][]interface{}{
			{"EmployeeID", "PlanCode", "Tier", "EnrollmentStartDate", "EnrollmentEndDate"},
			{1001, "PlanA", "EMP", "2025-03-01", ""},
		}},
	)
}

// ---------------------------------------------------------------------------
// ReadWorkbook
// ---------------------------------------------------------------------------

func TestReadWorkbook_BuildsInterim(t *testing.T) {
	in, err := sheet.ReadWorkbook(hrWorkbook(t, "Emp Demographic"), sheet.DefaultSheetNames())
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if got := in.Demographics.Value(0, "SSN"); got != "123-45-6789" {
		t.Errorf("SSN = %q", got)
	}

	res, err := interim.NewBuilder(nil).Build(context.Background(), in, interim.Options{Year: 2025})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Rows) != 12 {
		t.Fatalf("rows = %d, want 12", len(res.Rows))
	}
	if len(res.DateIssues) != 0 {
		t.Errorf("date issues = %v", res.DateIssues)
	}
	jan, mar := res.Rows[0], res.Rows[2]
	if jan.Name != "Ann Lee" || !jan.FullTimeFullMonth || !jan.EligibleMinimumValue || !jan.ChildEligible {
		t.Errorf("January row = %+v", jan)
	}
	if jan.EmployeeEnrolled || !mar.EmployeeEnrolled {
		t.Errorf("enrollment: jan=%v mar=%v", jan.EmployeeEnrolled, mar.EmployeeEnrolled)
	}
}

func TestReadWorkbook_SheetNameIsLenient(t *testing.T) {
	if _, err := sheet.ReadWorkbook(hrWorkbook(t, " emp demographic"), sheet.DefaultSheetNames()); err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
}

func TestReadWorkbook_MissingSheet(t *testing.T) {
	_, err := sheet.ReadWorkbook(hrWorkbook(t, "Employees"), sheet.DefaultSheetNames())
	var missing *domain.MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want MissingInputError", err)
	}
	if missing.Sheet != "Emp Demographic" || missing.Table != "demographics" {
		t.Errorf("missing = %+v", missing)
	}
}

func TestReadWorkbook_NotAWorkbook(t *testing.T) {
	if _, err := sheet.ReadWorkbook(strings.NewReader("EmployeeID\n1\n"), sheet.DefaultSheetNames()); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadTable(t *testing.T) {
	buf := workbook(t, sheetData{"Data", [][]interface{}{{"A B", "C"}, {"1", "2"}}})
	tbl, err := sheet.ReadTable(buf, "Data")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if got := tbl.Value(0, "A_B"); got != "1" {
		t.Errorf("A_B = %q", got)
	}
}

// ---------------------------------------------------------------------------
// ReadSummary
// ---------------------------------------------------------------------------

func TestReadSummary_CSV(t *testing.T) {
	src := "\ufeffEmployee ID,Month,line 14,line 16\n1001,Sep,1A,2C\n,,,\n1001.0,January,1B,\n"
	rows, err := sheet.ReadSummary(strings.NewReader(src), "summary.CSV")
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	want := []domain.SummaryRow{
		{EmployeeID: 1001, Month: "Sept", Line14: "1A", Line16: "2C"},
		{EmployeeID: 1001, Month: "Jan", Line14: "1B", Line16: ""},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %+v", rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestReadSummary_XLSX(t *testing.T) {
	buf := workbook(t, sheetData{"Summary", [][]interface{}{
		{"Employee_ID", "Month", "line_14", "line_16"},
		{1002, "Dec", "1E", "2B"},
	}})
	rows, err := sheet.ReadSummary(buf, "summary.xlsx")
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	if len(rows) != 1 || rows[0].EmployeeID != 1002 || rows[0].Line14 != "1E" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestReadSummary_EmptyIsNotNil(t *testing.T) {
	rows, err := sheet.ReadSummary(strings.NewReader("Employee_ID,Month,line_14,line_16\n"), "s.csv")
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %#v, want empty non-nil", rows)
	}
}

func TestReadSummary_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		filename string
		check    func(error) bool
	}{
		{
			name: "missing column", src: "Employee_ID,Month,line_14\n1,Jan,1A\n", filename: "s.csv",
			check: func(err error) bool {
				var e *domain.MissingInputError
				return errors.As(err, &e) && e.Column == "line_16"
			},
		},
		{
			name: "bad employee id", src: "Employee_ID,Month,line_14,line_16\nabc,Jan,1A,2C\n", filename: "s.csv",
			check: func(err error) bool {
				var e *domain.InvalidValueError
				return errors.As(err, &e) && e.Row == 1 && e.Value == "abc"
			},
		},
		{
			name: "unsupported extension", src: "", filename: "s.json",
			check: func(err error) bool { return err != nil },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sheet.ReadSummary(strings.NewReader(tt.src), tt.filename)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

func exportRows() []domain.InterimRow {
	return []domain.InterimRow{
		{
			EmployeeID: 1001, Name: "Ann Lee", Month: time.January,
			EmployedFullMonth: true, FullTimeFullMonth: true,
			EligibleMinimumValue: true, EmployeeEligible: true,
			EmployeeEnrolled: true, Line14: "1E", Line16: "2C",
		},
		{EmployeeID: 1001, Name: "Ann Lee", Month: time.September},
	}
}

func TestWriteInterimCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sheet.WriteInterimCSV(&buf, exportRows()); err != nil {
		t.Fatalf("WriteInterimCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0] != strings.Join(sheet.InterimColumns, ",") {
		t.Errorf("header = %q", lines[0])
	}
	want1 := "1001,Ann Lee,Jan,Yes,Yes,No,True,True,False,False,True,False,False,1E,2C"
	if lines[1] != want1 {
		t.Errorf("row 1 = %q\nwant    %q", lines[1], want1)
	}
	want2 := "1001,Ann Lee,Sep,No,No,No,False,False,False,False,False,False,False,,"
	if lines[2] != want2 {
		t.Errorf("row 2 = %q\nwant    %q", lines[2], want2)
	}
}

func TestWriteInterimXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := sheet.WriteInterimXLSX(&buf, 2025, exportRows()); err != nil {
		t.Fatalf("WriteInterimXLSX: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 1 || got[0] != "Interim_2025" {
		t.Fatalf("sheets = %v", got)
	}
	rows, err := f.GetRows("Interim_2025")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][3] != "Is_Employed_full_month" || rows[1][0] != "1001" || rows[1][13] != "1E" {
		t.Errorf("unexpected contents: %v", rows[:2])
	}
}
