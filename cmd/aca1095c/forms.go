package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/csg33k/aca1095c-generator/internal/adapters/archive"
	"github.com/csg33k/aca1095c-generator/internal/adapters/pdfform"
	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/fieldmap"
	"github.com/csg33k/aca1095c-generator/internal/formfill"
)

type formFlags struct {
	template  string
	fieldMap  string
	summary   string
	planStart string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.template, "template", "", "blank fillable 1095-C PDF (default PDF_TEMPLATE)")
	cmd.Flags().StringVar(&f.fieldMap, "fieldmap", "", "field map JSON/YAML (default FIELD_MAP)")
	cmd.Flags().StringVar(&f.summary, "summary", "", "monthly line 14/16 summary; Part II is left blank without one")
	cmd.Flags().StringVar(&f.planStart, "plan-start", "", "plan start month written to Part II, e.g. 01")
}

func (f *formFlags) filler() (*formfill.Filler, error) {
	path := f.template
	if path == "" {
		path = cfg.PDFTemplate
	}
	tmpl, err := pdfform.Load(path)
	if err != nil {
		return nil, err
	}
	fm := &fieldmap.FieldMap{}
	mapPath := f.fieldMap
	if mapPath == "" {
		mapPath = cfg.FieldMap
	}
	if mapPath != "" {
		if fm, err = fieldmap.Load(mapPath); err != nil {
			return nil, err
		}
	}
	for _, name := range tmpl.Missing(fm.FieldNames()) {
		fmt.Println(warnStyle.Render("  ! field map names unknown field " + name))
	}
	return formfill.NewFiller(tmpl, fm, nil), nil
}

func (f *formFlags) request(workbook string) (formfill.Request, error) {
	in, err := readInputs(workbook)
	if err != nil {
		return formfill.Request{}, err
	}
	in.Demographics.NormalizeColumns()
	summary, err := readSummary(f.summary)
	if err != nil {
		return formfill.Request{}, err
	}
	return formfill.Request{
		Demographics:   in.Demographics,
		Summary:        summary,
		PlanStartMonth: f.planStart,
	}, nil
}

func fillCmd() *cobra.Command {
	var (
		ff       formFlags
		employee int64
		outDir   string
	)
	cmd := &cobra.Command{
		Use:   "fill WORKBOOK",
		Short: "Fill the Form 1095-C of one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filler, err := ff.filler()
			if err != nil {
				return err
			}
			req, err := ff.request(args[0])
			if err != nil {
				return err
			}
			req.EmployeeID = employee
			doc, err := filler.Fill(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := filepath.Join(outDir, doc.Filename)
			if err := os.WriteFile(out, doc.PDF, 0o644); err != nil {
				return err
			}
			for _, w := range doc.Warnings {
				fmt.Println(warnStyle.Render("  ! " + w.String()))
			}
			fmt.Println(successStyle.Render("✓ wrote " + out))
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().Int64Var(&employee, "employee", 0, "employee id")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func bulkCmd() *cobra.Command {
	var (
		ff      formFlags
		year    int
		workers int
		out     string
	)
	cmd := &cobra.Command{
		Use:   "bulk WORKBOOK",
		Short: "Fill the Forms 1095-C of every employee into one ZIP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filler, err := ff.filler()
			if err != nil {
				return err
			}
			req, err := ff.request(args[0])
			if err != nil {
				return err
			}
			if year == 0 {
				year = cfg.ReportYear
			}
			if workers == 0 {
				workers = cfg.BulkWorkers
			}
			if out == "" {
				out = archive.BundleName(year)
			}

			ids := employeeIDs(req)
			rep := formfill.NewRunner(filler, workers, nil).Run(cmd.Context(), ids, req)

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			err = archive.WriteZip(f, rep)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			fmt.Println(panel("BULK FORMS",
				kv("Employees", len(ids)),
				kv("Filled", rep.Succeeded()),
				kv("Failed", len(rep.Failures)),
				kv("Output", out),
			))
			for _, fail := range rep.Failures {
				fmt.Println(errorStyle.Render("  ✗ " + fail.String()))
			}
			if len(rep.Failures) > 0 {
				return rep.Err()
			}
			fmt.Println(successStyle.Render("✓ wrote " + out))
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "year in the archive name (default REPORT_YEAR)")
	cmd.Flags().IntVar(&workers, "workers", 0, "forms filled concurrently (default BULK_WORKERS)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output ZIP (default 1095C_ALL_<year>.zip)")
	return cmd
}

// employeeIDs lists the employees to fill: those of the summary when one is
// given, otherwise everyone in the demographics table.
func employeeIDs(req formfill.Request) []int64 {
	if req.Summary != nil {
		ids := make([]int64, 0, len(req.Summary))
		for _, r := range req.Summary {
			ids = append(ids, r.EmployeeID)
		}
		return formfill.UniqueIDs(ids)
	}
	var ids []int64
	for i := range req.Demographics.Rows {
		if id, err := domain.ParseEmployeeID(req.Demographics.Value(i, "EmployeeID")); err == nil {
			ids = append(ids, id)
		}
	}
	return formfill.UniqueIDs(ids)
}

func fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields TEMPLATE",
		Short: "List the fillable fields of a PDF template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := pdfform.Load(args[0])
			if err != nil {
				return err
			}
			for _, name := range tmpl.FieldNames() {
				fmt.Println(name)
			}
			return nil
		},
	}
}
