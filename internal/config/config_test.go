package config_test

import (
	"testing"

	"github.com/csg33k/aca1095c-generator/internal/config"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := config.FromEnv(env(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.Port != "8080" || c.DBPath != "aca1095c.db" || c.ReportYear != 2025 ||
		!c.ExcludeWaived || c.BulkWorkers != 1 {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.PDFTemplate != "assets/f1095c.pdf" || c.FieldMap != "assets/fieldmap.json" {
		t.Errorf("unexpected asset paths: %+v", c)
	}
	if c.Sheets.Demographics != "Emp Demographic" || c.Sheets.Enrollment != "Emp Enrollment" {
		t.Errorf("unexpected sheets: %+v", c.Sheets)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	c, err := config.FromEnv(env(map[string]string{
		"PORT":           "9090",
		"REPORT_YEAR":    "2024",
		"EXCLUDE_WAIVED": "false",
		"BULK_WORKERS":   "4",
		"ELIG_SHEET":     "Eligibility",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.Port != "9090" || c.ReportYear != 2024 || c.ExcludeWaived || c.BulkWorkers != 4 {
		t.Errorf("overrides not applied: %+v", c)
	}
	if c.Sheets.Eligibility != "Eligibility" || c.Sheets.Demographics != "Emp Demographic" {
		t.Errorf("sheets = %+v", c.Sheets)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"year", map[string]string{"REPORT_YEAR": "twenty"}},
		{"workers", map[string]string{"BULK_WORKERS": "many"}},
		{"zero workers", map[string]string{"BULK_WORKERS": "0"}},
		{"waived", map[string]string{"EXCLUDE_WAIVED": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.FromEnv(env(tt.env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
