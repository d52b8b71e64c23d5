package pdfform

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/ports"
)

// Document collects field values and renders them into a copy of the
// template on Bytes.
type Document struct {
	tmpl            *Template
	values          map[*templateField]string
	order           []*templateField
	needAppearances bool
}

var _ ports.FormDocument = (*Document)(nil)

func (d *Document) SetFieldValue(name, value string) error {
	f, ok := d.tmpl.lookup(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, domain.ErrFieldNotFound)
	}
	if _, seen := d.values[f]; !seen {
		d.order = append(d.order, f)
	}
	d.values[f] = value
	return nil
}

func (d *Document) EnableNeedAppearances() { d.needAppearances = true }

// Bytes fills the recorded values into the template and returns the new PDF.
func (d *Document) Bytes() ([]byte, error) {
	out := bytes.Clone(d.tmpl.data)
	if len(d.order) > 0 {
		filled, err := d.fill()
		if err != nil {
			return nil, err
		}
		out = filled
	}
	if d.needAppearances {
		return setNeedAppearances(out)
	}
	return out, nil
}

func (d *Document) fill() ([]byte, error) {
	var g formGroup
	for _, f := range d.order {
		tf := f.textField
		tf.Value = d.values[f]
		switch f.kind {
		case kindDate:
			g.Datefield = append(g.Datefield, tf)
		case kindCombo:
			g.Combobox = append(g.Combobox, tf)
		default:
			g.Textfield = append(g.Textfield, tf)
		}
	}
	payload, err := json.Marshal(formExport{Forms: []formGroup{g}})
	if err != nil {
		return nil, fmt.Errorf("serialize form values: %w", err)
	}

	var buf bytes.Buffer
	if err := api.FillForm(bytes.NewReader(d.tmpl.data), bytes.NewReader(payload), &buf, newConfig()); err != nil {
		return nil, fmt.Errorf("fill form: %w", err)
	}
	return buf.Bytes(), nil
}

// setNeedAppearances sets /NeedAppearances true in the AcroForm dictionary so
// viewers regenerate field appearances. Documents without an AcroForm are
// returned unchanged.
func setNeedAppearances(pdf []byte) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), newConfig())
	if err != nil {
		return nil, fmt.Errorf("read filled form: %w", err)
	}
	root, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	obj, found := root.Find("AcroForm")
	if !found {
		return pdf, nil
	}
	acro, err := ctx.DereferenceDict(obj)
	if err != nil {
		return nil, fmt.Errorf("read acroform: %w", err)
	}
	if acro == nil {
		return pdf, nil
	}
	acro["NeedAppearances"] = types.Boolean(true)

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("write filled form: %w", err)
	}
	return buf.Bytes(), nil
}
