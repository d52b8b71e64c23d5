package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csg33k/aca1095c-generator/internal/adapters/report"
	"github.com/csg33k/aca1095c-generator/internal/adapters/sheet"
	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/interim"
)

type buildFlags struct {
	year          int
	excludeWaived bool
	includeWaived bool
	summary       string
}

func (b *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&b.year, "year", 0, "reporting year (default REPORT_YEAR)")
	cmd.Flags().BoolVar(&b.excludeWaived, "exclude-waived", false, "drop waived plans (default EXCLUDE_WAIVED)")
	cmd.Flags().BoolVar(&b.includeWaived, "include-waived", false, "keep waived plans")
	cmd.Flags().StringVar(&b.summary, "summary", "", "monthly line 14/16 summary (.csv or .xlsx)")
	cmd.MarkFlagsMutuallyExclusive("exclude-waived", "include-waived")
}

func (b *buildFlags) options() interim.Options {
	opts := interim.Options{Year: cfg.ReportYear, ExcludeWaived: cfg.ExcludeWaived}
	if b.year != 0 {
		opts.Year = b.year
	}
	switch {
	case b.excludeWaived:
		opts.ExcludeWaived = true
	case b.includeWaived:
		opts.ExcludeWaived = false
	}
	return opts
}

// build reads the workbook, builds the interim table and merges the summary
// line codes when one is given.
func (b *buildFlags) build(cmd *cobra.Command, workbook string) (*domain.Run, *interim.Result, error) {
	in, err := readInputs(workbook)
	if err != nil {
		return nil, nil, err
	}
	opts := b.options()
	res, err := interim.NewBuilder(nil).Build(cmd.Context(), in, opts)
	if err != nil {
		return nil, nil, err
	}
	summary, err := readSummary(b.summary)
	if err != nil {
		return nil, nil, err
	}
	run := &domain.Run{
		ID:            "local",
		Year:          res.Year,
		ExcludeWaived: opts.ExcludeWaived,
		SourceName:    filepath.Base(workbook),
		Rows:          res.Rows,
		Summary:       summary,
		DateIssues:    len(res.DateIssues),
	}
	if run.HasSummary() {
		run.Rows = interim.MergeLineCodes(run.Rows, summary)
	}
	return run, res, nil
}

func interimCmd() *cobra.Command {
	var (
		bf  buildFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "interim WORKBOOK",
		Short: "Build the monthly interim eligibility and enrollment table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, res, err := bf.build(cmd, args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("interim_%d.csv", run.Year)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if strings.EqualFold(filepath.Ext(out), ".xlsx") {
				err = sheet.WriteInterimXLSX(f, run.Year, run.Rows)
			} else {
				err = sheet.WriteInterimCSV(f, run.Rows)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			lines := []string{
				kv("Year", run.Year),
				kv("Rows", len(run.Rows)),
				kv("Waived dropped", fmt.Sprintf("%d eligibility / %d enrollment", res.WaivedEligibility, res.WaivedEnrollment)),
				kv("Line codes", run.HasSummary()),
				kv("Output", out),
			}
			fmt.Println(panel("INTERIM TABLE", lines...))
			for _, issue := range res.DateIssues {
				fmt.Println(warnStyle.Render("  ! " + issue.String()))
			}
			fmt.Println(successStyle.Render("✓ wrote " + out))
			return nil
		},
	}
	bf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, .csv or .xlsx (default interim_<year>.csv)")
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		bf  buildFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "report WORKBOOK",
		Short: "Render the interim table as a printable PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, _, err := bf.build(cmd, args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("1095C_interim_%d.pdf", run.Year)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			err = report.Generator{}.GenerateInterimReport(cmd.Context(), run, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Println(successStyle.Render("✓ wrote " + out))
			return nil
		},
	}
	bf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PDF (default 1095C_interim_<year>.pdf)")
	return cmd
}
