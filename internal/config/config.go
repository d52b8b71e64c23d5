// Package config reads settings from the environment, after loading a .env
// file when one is present.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/csg33k/aca1095c-generator/internal/adapters/sheet"
	"github.com/csg33k/aca1095c-generator/internal/domain"
)

type Config struct {
	Port          string
	DBPath        string
	PDFTemplate   string
	FieldMap      string
	ReportYear    int
	ExcludeWaived bool
	BulkWorkers   int
	Sheets        sheet.SheetNames
}

// Load reads .env (a missing file is only logged) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function. Unset or blank variables
// take their defaults; malformed numbers and booleans are errors.
func FromEnv(getenv func(string) string) (*Config, error) {
	def := sheet.DefaultSheetNames()
	c := &Config{
		Port:        str(getenv, "PORT", "8080"),
		DBPath:      str(getenv, "DB_PATH", "aca1095c.db"),
		PDFTemplate: str(getenv, "PDF_TEMPLATE", "assets/f1095c.pdf"),
		FieldMap:    str(getenv, "FIELD_MAP", "assets/fieldmap.json"),
		Sheets: sheet.SheetNames{
			Demographics: str(getenv, "DEMO_SHEET", def.Demographics),
			Eligibility:  str(getenv, "ELIG_SHEET", def.Eligibility),
			Enrollment:   str(getenv, "ENR_SHEET", def.Enrollment),
		},
	}

	var err error
	if c.ReportYear, err = integer(getenv, "REPORT_YEAR", domain.DefaultReportYear); err != nil {
		return nil, err
	}
	if c.BulkWorkers, err = integer(getenv, "BULK_WORKERS", 1); err != nil {
		return nil, err
	}
	if c.BulkWorkers < 1 {
		return nil, fmt.Errorf("BULK_WORKERS must be at least 1, got %d", c.BulkWorkers)
	}
	if c.ExcludeWaived, err = boolean(getenv, "EXCLUDE_WAIVED", true); err != nil {
		return nil, err
	}
	return c, nil
}

func str(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func integer(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func boolean(getenv func(string) string, key string, def bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}
