package main

import (
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"

	"github.com/csg33k/aca1095c-generator/internal/adapters/pdfform"
	"github.com/csg33k/aca1095c-generator/internal/adapters/report"
	sqliteadapter "github.com/csg33k/aca1095c-generator/internal/adapters/sqlite"
	"github.com/csg33k/aca1095c-generator/internal/config"
	"github.com/csg33k/aca1095c-generator/internal/fieldmap"
	"github.com/csg33k/aca1095c-generator/internal/formfill"
	"github.com/csg33k/aca1095c-generator/internal/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	repo, err := sqliteadapter.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer repo.Close()

	filler, err := loadFiller(cfg)
	if err != nil {
		log.Fatalf("failed to load form template: %v", err)
	}

	h := handlers.New(repo, report.Generator{}, filler, handlers.Options{
		Sheets:        cfg.Sheets,
		Year:          cfg.ReportYear,
		ExcludeWaived: cfg.ExcludeWaived,
		BulkWorkers:   cfg.BulkWorkers,
	})

	log.Printf("ACA 1095-C Generator running on http://localhost:%s", cfg.Port)
	log.Printf("Database: %s", cfg.DBPath)
	if filler == nil {
		log.Printf("Form template: none, form downloads disabled (set PDF_TEMPLATE)")
	} else {
		log.Printf("Form template: %s", cfg.PDFTemplate)
	}
	if err := http.ListenAndServe(":"+cfg.Port, h.Routes()); err != nil {
		log.Fatal(err)
	}
}

// loadFiller returns nil when no template is configured or the configured
// file does not exist.
func loadFiller(cfg *config.Config) (*formfill.Filler, error) {
	if cfg.PDFTemplate == "" {
		return nil, nil
	}
	tmpl, err := pdfform.Load(cfg.PDFTemplate)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("pdf template not found", "path", cfg.PDFTemplate)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fm := &fieldmap.FieldMap{}
	if cfg.FieldMap != "" {
		if fm, err = fieldmap.Load(cfg.FieldMap); err != nil {
			return nil, err
		}
	}
	if missing := tmpl.Missing(fm.FieldNames()); len(missing) > 0 {
		slog.Warn("field map names fields the template does not have", "fields", missing)
	}
	return formfill.NewFiller(tmpl, fm, nil), nil
}
