// Package sheet reads the HR workbook and monthly summaries, and exports
// interim tables, as XLSX (excelize) or CSV.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/interim"
)

// SheetNames names the three input worksheets.
type SheetNames struct {
	Demographics string
	Eligibility  string
	Enrollment   string
}

// DefaultSheetNames are the worksheet names of the standard HR export.
func DefaultSheetNames() SheetNames {
	return SheetNames{
		Demographics: "Emp Demographic",
		Eligibility:  "Emp Eligibility",
		Enrollment:   "Emp Enrollment",
	}
}

// Summary column names after normalization.
const (
	ColSummaryEmployeeID = "Employee_ID"
	ColSummaryMonth      = "Month"
	ColSummaryLine14     = "line_14"
	ColSummaryLine16     = "line_16"
)

// ReadWorkbook reads the three input worksheets from an XLSX stream. Cells
// are read raw, so dates arrive as Excel serial numbers.
func ReadWorkbook(r io.Reader, names SheetNames) (interim.Inputs, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return interim.Inputs{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var in interim.Inputs
	for _, s := range []struct {
		table string
		sheet string
		dst   **domain.Table
	}{
		{"demographics", names.Demographics, &in.Demographics},
		{"eligibility", names.Eligibility, &in.Eligibility},
		{"enrollment", names.Enrollment, &in.Enrollment},
	} {
		t, err := readSheet(f, s.table, s.sheet)
		if err != nil {
			return interim.Inputs{}, err
		}
		*s.dst = t
	}
	return in, nil
}

// ReadTable reads a single worksheet as a table named after the sheet.
func ReadTable(r io.Reader, sheet string) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return readSheet(f, sheet, sheet)
}

func readSheet(f *excelize.File, table, sheet string) (*domain.Table, error) {
	name, ok := findSheet(f, sheet)
	if !ok {
		return nil, &domain.MissingInputError{Table: table, Sheet: sheet}
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return toTable(table, rows), nil
}

// findSheet matches a sheet name exactly, then ignoring surrounding spaces
// and case.
func findSheet(f *excelize.File, want string) (string, bool) {
	list := f.GetSheetList()
	for _, s := range list {
		if s == want {
			return s, true
		}
	}
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(want)) {
			return s, true
		}
	}
	return "", false
}

func toTable(name string, rows [][]string) *domain.Table {
	if len(rows) == 0 {
		return domain.NewTable(name, nil, nil)
	}
	header := append([]string(nil), rows[0]...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return domain.NewTable(name, header, rows[1:])
}

// ReadCSV reads a CSV stream with a header row. Rows may be ragged.
func ReadCSV(r io.Reader, name string) (*domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s csv: %w", name, err)
	}
	return toTable(name, rows), nil
}

// ReadSummary reads a monthly line-code summary from an .xlsx (first sheet)
// or .csv file. The result is never nil, so an empty summary still counts as
// provided.
func ReadSummary(r io.Reader, filename string) ([]domain.SummaryRow, error) {
	t, err := readSummaryTable(r, filename)
	if err != nil {
		return nil, err
	}
	if err := t.Require(ColSummaryEmployeeID, ColSummaryMonth, ColSummaryLine14, ColSummaryLine16); err != nil {
		return nil, err
	}

	out := []domain.SummaryRow{}
	for i := range t.Rows {
		if t.BlankRow(i) {
			continue
		}
		raw := t.Value(i, ColSummaryEmployeeID)
		id, err := domain.ParseEmployeeID(raw)
		if err != nil {
			return nil, &domain.InvalidValueError{Table: t.Name, Row: i + 1, Column: ColSummaryEmployeeID, Value: raw}
		}
		out = append(out, domain.SummaryRow{
			EmployeeID: id,
			Month:      domain.CanonicalMonth(t.Value(i, ColSummaryMonth)),
			Line14:     t.Value(i, ColSummaryLine14),
			Line16:     t.Value(i, ColSummaryLine16),
		})
	}
	return out, nil
}

func readSummaryTable(r io.Reader, filename string) (*domain.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(r, "summary")
	case ".xlsx", ".xlsm":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open summary workbook: %w", err)
		}
		defer func() { _ = f.Close() }()
		sheet := f.GetSheetName(0)
		if sheet == "" {
			return nil, &domain.MissingInputError{Table: "summary", Sheet: "(first sheet)"}
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read summary sheet: %w", err)
		}
		return toTable("summary", rows), nil
	default:
		return nil, errors.New("summary must be a .csv or .xlsx file")
	}
}
