// Package report generates a human-readable interim status PDF.
// One page is produced per employee; each page shows the run header, the
// employee's identity, and a twelve-month grid of employment, eligibility
// and enrollment flags together with any Line 14 / Line 16 codes.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/ports"
)

// Generator implements ports.ReportGenerator.
type Generator struct{}

var _ ports.ReportGenerator = Generator{}

// GenerateInterimReport writes a multi-page PDF (one page per employee) to w.
func (Generator) GenerateInterimReport(ctx context.Context, run *domain.Run, w io.Writer) error {
	pdf := fpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(false, 14)
	pdf.AliasNbPages("{nb}")

	groups := groupByEmployee(run.Rows)
	if len(groups) == 0 {
		pdf.AddPage()
		drawHeader(pdf, run)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "No employees in this run.", "", 1, "L", false, 0, "")
	}
	for _, rows := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		pdf.AddPage()
		drawEmployeePage(pdf, run, rows)
	}

	return pdf.Output(w)
}

// groupByEmployee splits rows into per-employee blocks, keeping the order in
// which employees first appear.
func groupByEmployee(rows []domain.InterimRow) [][]domain.InterimRow {
	var groups [][]domain.InterimRow
	pos := map[int64]int{}
	for _, r := range rows {
		i, ok := pos[r.EmployeeID]
		if !ok {
			i = len(groups)
			pos[r.EmployeeID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

func drawHeader(pdf *fpdf.Fpdf, run *domain.Run) float64 {
	pageW, _ := pdf.GetPageSize()
	marginL, marginT, marginR, _ := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	// ── Header bar ───────────────────────────────────────────────────────────
	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, "FORM 1095-C  INTERIM ELIGIBILITY AND ENROLLMENT", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 7, "Page "+fmt.Sprint(pdf.PageNo())+" of {nb}", "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	y := marginT + 13

	// ── Run section ──────────────────────────────────────────────────────────
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, "RUN INFORMATION", "LRT", 1, "L", true, 0, "")
	y += 5.5

	waived := "included"
	if run.ExcludeWaived {
		waived = "excluded"
	}
	colHalf := contentW / 2
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6, "Source: "+run.SourceName, "LB", 0, "L", false, 0, "")
	pdf.CellFormat(colHalf, 6, "Reporting Year: "+strconv.Itoa(run.Year)+"   Waived plans: "+waived, "RB", 1, "L", false, 0, "")
	return y + 6 + 4
}

type column struct {
	label string
	width float64
	value func(domain.InterimRow) string
}

func flagColumn(label string, f func(domain.InterimRow) bool) column {
	return column{label: label, width: 1, value: func(r domain.InterimRow) string { return mark(f(r)) }}
}

var gridColumns = []column{
	{label: "Month", width: 1.2, value: func(r domain.InterimRow) string { return r.MonthLabel() }},
	flagColumn("Employed", func(r domain.InterimRow) bool { return r.EmployedFullMonth }),
	flagColumn("Full-time", func(r domain.InterimRow) bool { return r.FullTimeFullMonth }),
	flagColumn("Part-time", func(r domain.InterimRow) bool { return r.PartTimeFullMonth }),
	flagColumn("Min. Value", func(r domain.InterimRow) bool { return r.EligibleMinimumValue }),
	flagColumn("EE Elig.", func(r domain.InterimRow) bool { return r.EmployeeEligible }),
	flagColumn("Sp. Elig.", func(r domain.InterimRow) bool { return r.SpouseEligible }),
	flagColumn("Ch. Elig.", func(r domain.InterimRow) bool { return r.ChildEligible }),
	flagColumn("EE Enr.", func(r domain.InterimRow) bool { return r.EmployeeEnrolled }),
	flagColumn("Sp. Enr.", func(r domain.InterimRow) bool { return r.SpouseEnrolled }),
	flagColumn("Ch. Enr.", func(r domain.InterimRow) bool { return r.ChildEnrolled }),
	{label: "Line 14", width: 1, value: func(r domain.InterimRow) string { return r.Line14 }},
	{label: "Line 16", width: 1, value: func(r domain.InterimRow) string { return r.Line16 }},
}

func drawEmployeePage(pdf *fpdf.Fpdf, run *domain.Run, rows []domain.InterimRow) {
	pageW, pageH := pdf.GetPageSize()
	marginL, _, marginR, marginB := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	y := drawHeader(pdf, run)

	// ── Employee section ─────────────────────────────────────────────────────
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, "EMPLOYEE", "LRT", 1, "L", true, 0, "")
	y += 5.5

	first := rows[0]
	colHalf := contentW / 2
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6.5, first.Name, "LB", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(colHalf, 6.5, "Employee ID: "+strconv.FormatInt(first.EmployeeID, 10), "RB", 1, "R", false, 0, "")
	y += 6.5 + 5

	// ── Monthly grid ─────────────────────────────────────────────────────────
	var units float64
	for _, c := range gridColumns {
		units += c.width
	}
	unitW := contentW / units

	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	for i, c := range gridColumns {
		ln := 0
		if i == len(gridColumns)-1 {
			ln = 1
		}
		pdf.CellFormat(c.width*unitW, 7, c.label, "1", ln, "C", true, 0, "")
	}
	y += 7
	pdf.SetTextColor(0, 0, 0)

	rowH := 6.5
	for i, r := range rows {
		pdf.SetXY(marginL, y)
		// Alternating row background
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetFont("Helvetica", "", 8.5)
		for j, c := range gridColumns {
			ln := 0
			if j == len(gridColumns)-1 {
				ln = 1
			}
			align := "C"
			if j == 0 {
				align = "L"
			}
			pdf.CellFormat(c.width*unitW, rowH, c.value(r), "1", ln, align, true, 0, "")
		}
		y += rowH
	}

	// ── Footer ─────────────────────────────────────────────────────────────────
	pdf.SetXY(marginL, pageH-marginB-6)
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW/2, 5, "Generated by ACA 1095-C Generator", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Run "+run.ID+" | Year "+strconv.Itoa(run.Year), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func mark(b bool) string {
	if b {
		return "X"
	}
	return ""
}
