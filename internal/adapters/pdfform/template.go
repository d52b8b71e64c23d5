// Package pdfform fills AcroForm text fields of a PDF template with pdfcpu.
package pdfform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/csg33k/aca1095c-generator/internal/ports"
)

var disableConfigDir sync.Once

// newConfig returns a fresh pdfcpu configuration. pdfcpu may write into a
// configuration while processing, so one is never shared between calls.
func newConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}

// formExport mirrors the parts of pdfcpu's form JSON that carry text values.
type formExport struct {
	Forms []formGroup `json:"forms"`
}

type formGroup struct {
	Textfield []textField `json:"textfield,omitempty"`
	Datefield []textField `json:"datefield,omitempty"`
	Combobox  []textField `json:"combobox,omitempty"`
}

type textField struct {
	Pages  []int  `json:"pages"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindDate
	kindCombo
)

type templateField struct {
	kind fieldKind
	textField
}

// Template is a blank fillable form. It is read-only after construction and
// safe for concurrent use.
type Template struct {
	data   []byte
	byName map[string]*templateField
	byID   map[string]*templateField
}

var _ ports.FormTemplate = (*Template)(nil)

// Load reads a template from disk.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf template %s: %w", path, err)
	}
	return New(data)
}

// New parses a template and indexes its fillable text fields.
func New(data []byte) (*Template, error) {
	if len(data) == 0 {
		return nil, errors.New("pdf template is empty")
	}
	var buf bytes.Buffer
	if err := api.ExportFormJSON(bytes.NewReader(data), &buf, "template", newConfig()); err != nil {
		return nil, fmt.Errorf("export template fields: %w", err)
	}
	var payload formExport
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		return nil, fmt.Errorf("parse template fields: %w", err)
	}

	t := &Template{
		data:   bytes.Clone(data),
		byName: map[string]*templateField{},
		byID:   map[string]*templateField{},
	}
	for _, g := range payload.Forms {
		t.index(kindText, g.Textfield)
		t.index(kindDate, g.Datefield)
		t.index(kindCombo, g.Combobox)
	}
	if len(t.byName) == 0 {
		return nil, errors.New("pdf template does not include fillable text fields")
	}
	return t, nil
}

func (t *Template) index(kind fieldKind, fields []textField) {
	for _, f := range fields {
		tf := &templateField{kind: kind, textField: f}
		tf.Value = ""
		if _, dup := t.byName[f.Name]; !dup {
			t.byName[f.Name] = tf
		}
		if f.ID != "" {
			t.byID[f.ID] = tf
		}
	}
}

// lookup resolves a field-map name: exact name, then the trimmed name, then
// the pdfcpu field id.
func (t *Template) lookup(name string) (*templateField, bool) {
	if f, ok := t.byName[name]; ok {
		return f, true
	}
	if f, ok := t.byName[strings.TrimSpace(name)]; ok {
		return f, true
	}
	f, ok := t.byID[strings.TrimSpace(name)]
	return f, ok
}

// FieldNames returns the sorted names of every fillable field.
func (t *Template) FieldNames() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Missing returns the names in want that the template cannot resolve.
func (t *Template) Missing(want []string) []string {
	var missing []string
	for _, n := range want {
		if _, ok := t.lookup(n); !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// Open starts an empty document. Values are rendered into a fresh copy of
// the template bytes by Document.Bytes.
func (t *Template) Open() (ports.FormDocument, error) {
	return &Document{tmpl: t, values: map[*templateField]string{}}, nil
}
