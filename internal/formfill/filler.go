// Package formfill writes one employee's Form 1095-C data into a blank
// fillable template, and runs that over many employees.
package formfill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/fieldmap"
	"github.com/csg33k/aca1095c-generator/internal/linecodes"
	"github.com/csg33k/aca1095c-generator/internal/ports"
)

// Request describes one form to produce.
type Request struct {
	EmployeeID   int64
	Demographics *domain.Table
	// Summary is the monthly line-code summary for all employees. When nil,
	// Part II line codes are not written at all.
	Summary []domain.SummaryRow
	// PlanStartMonth is written verbatim ("01") when non-empty and mapped.
	PlanStartMonth string
}

// Document is a filled form.
type Document struct {
	EmployeeID int64
	Filename   string
	PDF        []byte
	Warnings   []domain.FieldWarning
}

// Filename is the download name of an employee's form.
func Filename(employeeID int64) string {
	return fmt.Sprintf("1095C_%d.pdf", employeeID)
}

// Filler produces filled forms from one template and one field map. It is
// safe for concurrent use as long as the template is.
type Filler struct {
	template ports.FormTemplate
	fields   *fieldmap.FieldMap
	log      *slog.Logger
}

func NewFiller(t ports.FormTemplate, fm *fieldmap.FieldMap, log *slog.Logger) *Filler {
	if fm == nil {
		fm = &fieldmap.FieldMap{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Filler{template: t, fields: fm, log: log}
}

// Fill produces the form for req.EmployeeID. Fields missing from the
// template are reported as warnings on the document; they do not fail it.
func (f *Filler) Fill(ctx context.Context, req Request) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var summary []domain.SummaryRow
	if req.Summary != nil {
		for _, r := range req.Summary {
			if r.EmployeeID == req.EmployeeID {
				summary = append(summary, r)
			}
		}
		if len(summary) == 0 {
			return nil, &domain.NoDataForEmployeeError{EmployeeID: req.EmployeeID}
		}
	}

	doc, err := f.template.Open()
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	s := &session{doc: doc, employeeID: req.EmployeeID, log: f.log}

	doc.EnableNeedAppearances()

	part1 := DerivePart1(req.Demographics, req.EmployeeID)
	for _, key := range fieldmap.Part1Keys {
		field, mapped := f.fields.Part1[key]
		value, found := part1[key]
		if mapped && found {
			s.set(field, value)
		}
	}

	if req.Summary != nil {
		line14, line16 := linecodes.FromSummary(summary)
		s.apply(linecodes.Writes(line14, f.fields.Line14))
		s.apply(linecodes.Writes(line16, f.fields.Line16))
	}

	if planStart := strings.TrimSpace(req.PlanStartMonth); planStart != "" && f.fields.PlanStartMonth != "" {
		s.set(f.fields.PlanStartMonth, planStart)
	}

	pdf, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serialize form for employee %d: %w", req.EmployeeID, err)
	}
	return &Document{
		EmployeeID: req.EmployeeID,
		Filename:   Filename(req.EmployeeID),
		PDF:        pdf,
		Warnings:   s.warnings,
	}, nil
}

type session struct {
	doc        ports.FormDocument
	employeeID int64
	log        *slog.Logger
	warnings   []domain.FieldWarning
}

func (s *session) set(field, value string) {
	if err := s.doc.SetFieldValue(field, value); err != nil {
		s.warnings = append(s.warnings, domain.FieldWarning{Field: field, Err: err})
		s.log.Warn("form field skipped",
			"employee_id", s.employeeID,
			"field", field,
			"err", err,
		)
	}
}

func (s *session) apply(writes []linecodes.FieldWrite) {
	for _, w := range writes {
		s.set(w.Field, w.Value)
	}
}
