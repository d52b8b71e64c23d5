package pdfform_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/csg33k/aca1095c-generator/internal/adapters/pdfform"
	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/fieldmap"
	"github.com/csg33k/aca1095c-generator/internal/formfill"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func pdfConfig() *model.Configuration {
	api.DisableConfigDir()
	return model.NewDefaultConfiguration()
}

// formSpec lays out a one-page form with four text fields. l14_Jan starts
// with a stale value so blanking it is observable.
const formSpec = `{
  "paper": "LetterP",
  "fonts": {
    "input": {"name": "Helvetica", "size": 10},
    "label": {"name": "Helvetica", "size": 10}
  },
  "pages": {
    "1": {
      "content": {
        "textfield": [
          {"id": "p1_emp_first", "value": "", "pos": [120, 700], "width": 150,
           "font": {"name": "$input"}, "label": {"value": "First", "width": 60, "gap": 5, "align": "right", "font": {"name": "$label"}}},
          {"id": "l14_all", "value": "", "pos": [120, 660], "width": 60,
           "font": {"name": "$input"}, "label": {"value": "All", "width": 60, "gap": 5, "align": "right", "font": {"name": "$label"}}},
          {"id": "l14_Jan", "value": "stale", "pos": [120, 620], "width": 60,
           "font": {"name": "$input"}, "label": {"value": "Jan", "width": 60, "gap": 5, "align": "right", "font": {"name": "$label"}}},
          {"id": "l14_Feb", "value": "", "pos": [120, 580], "width": 60,
           "font": {"name": "$input"}, "label": {"value": "Feb", "width": 60, "gap": 5, "align": "right", "font": {"name": "$label"}}}
        ]
      }
    }
  }
}`

// blankForm renders formSpec into a fillable PDF.
func blankForm(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := api.Create(nil, strings.NewReader(formSpec), &buf, pdfConfig()); err != nil {
		t.Fatalf("create form: %v", err)
	}
	return buf.Bytes()
}

type exportedField struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// exportFields returns the text fields of pdf keyed by name.
func exportFields(t *testing.T, pdf []byte) map[string]exportedField {
	t.Helper()
	var buf bytes.Buffer
	if err := api.ExportFormJSON(bytes.NewReader(pdf), &buf, "test", pdfConfig()); err != nil {
		t.Fatalf("export form: %v", err)
	}
	var export struct {
		Forms []struct {
			Textfield []exportedField `json:"textfield"`
		} `json:"forms"`
	}
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	out := map[string]exportedField{}
	for _, g := range export.Forms {
		for _, f := range g.Textfield {
			out[f.Name] = f
		}
	}
	return out
}

func needAppearances(t *testing.T, pdf []byte) bool {
	t.Helper()
	ctx, err := api.ReadContext(bytes.NewReader(pdf), pdfConfig())
	if err != nil {
		t.Fatalf("ReadContext: %v", err)
	}
	root, err := ctx.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	obj, ok := root.Find("AcroForm")
	if !ok {
		return false
	}
	acro, err := ctx.DereferenceDict(obj)
	if err != nil || acro == nil {
		t.Fatalf("AcroForm: %v", err)
	}
	b := acro.BooleanEntry("NeedAppearances")
	return b != nil && *b
}

// templatePath points at a real fillable 1095-C when the environment
// provides one. Tests that need a real template skip without it.
func templatePath(t *testing.T) string {
	t.Helper()
	p := os.Getenv("ACA1095C_TEST_TEMPLATE")
	if p == "" {
		p = filepath.Join("..", "..", "..", "assets", "f1095c.pdf")
	}
	if _, err := os.Stat(p); err != nil {
		t.Skipf("no pdf template at %s", p)
	}
	return p
}

// ---------------------------------------------------------------------------
// Template
// ---------------------------------------------------------------------------

func TestNew_RejectsEmpty(t *testing.T) {
	if _, err := pdfform.New(nil); err == nil {
		t.Fatal("expected error for empty template")
	}
}

func TestNew_RejectsGarbage(t *testing.T) {
	if _, err := pdfform.New([]byte("not a pdf at all")); err == nil {
		t.Fatal("expected error for non-PDF template")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := pdfform.Load(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNew_IndexesFields(t *testing.T) {
	tmpl, err := pdfform.New(blankForm(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []string{"l14_Feb", "l14_Jan", "l14_all", "p1_emp_first"}
	if got := tmpl.FieldNames(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("FieldNames = %v, want %v", got, want)
	}
	if got := tmpl.Missing([]string{"l14_all", " l14_Jan ", "l16_all"}); len(got) != 1 || got[0] != "l16_all" {
		t.Errorf("Missing = %v", got)
	}
}

// ---------------------------------------------------------------------------
// Document
// ---------------------------------------------------------------------------

func TestDocument_FillsGeneratedForm(t *testing.T) {
	blank := blankForm(t)
	tmpl, err := pdfform.New(blank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	febID := exportFields(t, blank)["l14_Feb"].ID

	doc, err := tmpl.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	doc.EnableNeedAppearances()
	for name, value := range map[string]string{"p1_emp_first": "Ann", "l14_all": "1A", "l14_Jan": ""} {
		if err := doc.SetFieldValue(name, value); err != nil {
			t.Fatalf("SetFieldValue(%q): %v", name, err)
		}
	}
	if febID != "" {
		if err := doc.SetFieldValue(febID, "1B"); err != nil {
			t.Fatalf("SetFieldValue by id %q: %v", febID, err)
		}
	}
	if err := doc.SetFieldValue("l16_all", "2C"); !errors.Is(err, domain.ErrFieldNotFound) {
		t.Errorf("unknown field: got %v, want ErrFieldNotFound", err)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	fields := exportFields(t, out)
	want := map[string]string{"p1_emp_first": "Ann", "l14_all": "1A", "l14_Jan": ""}
	if febID != "" {
		want["l14_Feb"] = "1B"
	}
	for name, v := range want {
		if got := fields[name].Value; got != v {
			t.Errorf("%s = %q, want %q", name, got, v)
		}
	}
	if !needAppearances(t, out) {
		t.Error("NeedAppearances not set")
	}

	// The template is untouched: an empty document reproduces it exactly.
	empty, _ := tmpl.Open()
	same, err := empty.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(same, blank) {
		t.Error("template bytes changed after filling")
	}
	if got := exportFields(t, same)["l14_Jan"].Value; got != "stale" {
		t.Errorf("template l14_Jan = %q after filling", got)
	}
}

func TestFiller_CollapsesIdenticalMonths(t *testing.T) {
	tmpl, err := pdfform.New(blankForm(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fm, err := fieldmap.Parse([]byte(`{
		"line14": {"all": "l14_all", "Jan": "l14_Jan", "Feb": "l14_Feb"},
		"part1": {"employee_first": "p1_emp_first"}
	}`))
	if err != nil {
		t.Fatalf("fieldmap: %v", err)
	}
	var summary []domain.SummaryRow
	for _, m := range domain.Months {
		summary = append(summary, domain.SummaryRow{EmployeeID: 7, Month: m, Line14: "1A"})
	}
	demo := domain.NewTable("demographics", []string{"EmployeeID", "FirstName"}, [][]string{{"7", "Ann"}})

	doc, err := formfill.NewFiller(tmpl, fm, nil).Fill(context.Background(), formfill.Request{
		EmployeeID:   7,
		Demographics: demo,
		Summary:      summary,
	})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if len(doc.Warnings) != 0 {
		t.Errorf("warnings = %v", doc.Warnings)
	}
	fields := exportFields(t, doc.PDF)
	for name, want := range map[string]string{"p1_emp_first": "Ann", "l14_all": "1A", "l14_Jan": "", "l14_Feb": ""} {
		if got := fields[name].Value; got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if !needAppearances(t, doc.PDF) {
		t.Error("NeedAppearances not set")
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	tmpl, err := pdfform.Load(templatePath(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	names := tmpl.FieldNames()
	if len(names) == 0 {
		t.Fatal("template has no fields")
	}

	doc, err := tmpl.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	doc.EnableNeedAppearances()
	if err := doc.SetFieldValue(names[0], "1A"); err != nil {
		t.Fatalf("SetFieldValue(%q): %v", names[0], err)
	}
	if err := doc.SetFieldValue("no such field", "x"); !errors.Is(err, domain.ErrFieldNotFound) {
		t.Errorf("unknown field: got %v, want ErrFieldNotFound", err)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty output")
	}

	// The output is itself a fillable form with the same fields.
	again, err := pdfform.New(out)
	if err != nil {
		t.Fatalf("output is not a fillable form: %v", err)
	}
	if got := again.Missing([]string{names[0]}); len(got) != 0 {
		t.Errorf("filled form lost field %q", names[0])
	}
}
