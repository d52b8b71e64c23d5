package formfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// BatchReport is the outcome of a bulk run. Documents and Failures are both
// in the order of the requested ids.
type BatchReport struct {
	Documents []Document
	Failures  []domain.ItemFailure
}

// Succeeded returns the number of forms produced.
func (b *BatchReport) Succeeded() int { return len(b.Documents) }

// Err summarizes the failures, or returns nil when there were none.
func (b *BatchReport) Err() error {
	if len(b.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(b.Failures))
	for i, f := range b.Failures {
		errs[i] = fmt.Errorf("employee %d: %w", f.EmployeeID, f.Err)
	}
	return fmt.Errorf("%d of %d forms failed: %w",
		len(b.Failures), len(b.Failures)+len(b.Documents), errors.Join(errs...))
}

// Runner fills forms for many employees. A failure for one employee is
// recorded and the run continues.
type Runner struct {
	filler  *Filler
	workers int
	log     *slog.Logger
}

// NewRunner returns a runner with at most workers forms in flight. Values
// below one mean one.
func NewRunner(f *Filler, workers int, log *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{filler: f, workers: workers, log: log}
}

type outcome struct {
	doc *Document
	err error
}

// Run fills one form per id, using shared for everything but the employee
// id. Once ctx is done the remaining ids are recorded as failures.
func (r *Runner) Run(ctx context.Context, ids []int64, shared Request) *BatchReport {
	results := make([]outcome, len(ids))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			results[i].err = err
			continue
		}
		g.Go(func() error {
			req := shared
			req.EmployeeID = id
			doc, err := r.filler.Fill(ctx, req)
			results[i] = outcome{doc: doc, err: err}
			return nil
		})
	}
	_ = g.Wait()

	report := &BatchReport{}
	for i, res := range results {
		if res.err != nil {
			r.log.Error("form generation failed", "employee_id", ids[i], "err", res.err)
			report.Failures = append(report.Failures, domain.ItemFailure{EmployeeID: ids[i], Err: res.err})
			continue
		}
		report.Documents = append(report.Documents, *res.doc)
	}
	r.log.Info("bulk generation finished",
		"requested", len(ids),
		"succeeded", report.Succeeded(),
		"failed", len(report.Failures),
	)
	return report
}

// EmployeeIDs returns the distinct employee ids of rows in ascending order.
func EmployeeIDs(rows []domain.InterimRow) []int64 {
	ids := make([]int64, 0, len(rows)/12+1)
	for _, r := range rows {
		ids = append(ids, r.EmployeeID)
	}
	return UniqueIDs(ids)
}

// UniqueIDs sorts ids and drops duplicates, in place.
func UniqueIDs(ids []int64) []int64 {
	slices.Sort(ids)
	return slices.Compact(ids)
}
