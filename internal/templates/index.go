package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// Defaults pre-fill the new-run form.
type Defaults struct {
	Year          int
	ExcludeWaived bool
}

type indexData struct {
	Runs     []domain.Run
	Defaults Defaults
}

var indexTmpl = page(`
{{define "content"}}
<div style="display:grid;grid-template-columns:380px 1fr;gap:32px;align-items:start;">

<div class="card" style="padding:24px;">
  <div class="section-header">New Interim Run</div>
  <form hx-post="/runs" hx-encoding="multipart/form-data" hx-target="body">
    <div style="display:grid;gap:12px;">
      <div>
        <label class="field-label">HR Workbook (.xlsx) *</label>
        <input type="file" name="workbook" accept=".xlsx" required>
      </div>
      <div>
        <label class="field-label">Monthly Line 14/16 Summary (.xlsx / .csv)</label>
        <input type="file" name="summary" accept=".xlsx,.csv">
      </div>
      <div>
        <label class="field-label">Reporting Year</label>
        <input type="number" name="year" value="{{.Defaults.Year}}" min="2015" max="2100" class="mono">
      </div>
      <label style="display:flex;gap:8px;align-items:center;font-size:0.85rem;">
        <input type="checkbox" name="exclude_waived" value="1"{{if .Defaults.ExcludeWaived}} checked{{end}}>
        Exclude waived plans
      </label>
    </div>
    <div style="margin-top:16px;display:flex;justify-content:flex-end;gap:12px;align-items:center;">
      <span class="htmx-indicator mono" style="font-size:0.7rem;">BUILDING…</span>
      <button type="submit" class="btn btn-primary">BUILD INTERIM →</button>
    </div>
  </form>
</div>

<div>
  <div class="section-header">Runs</div>
  {{if not .Runs}}
  <div style="font-family:'IBM Plex Mono',monospace;font-size:0.8rem;color:var(--muted);padding:16px;text-align:center;">
    No runs yet.
  </div>
  {{else}}
  {{range .Runs}}
  <div class="card run-row" style="padding:14px 18px;margin-bottom:8px;display:flex;justify-content:space-between;align-items:center;">
    <div>
      <div style="font-family:'IBM Plex Mono',monospace;font-weight:600;font-size:0.9rem;">{{.SourceName}}</div>
      <div style="font-size:0.75rem;color:var(--muted);margin-top:2px;">
        Year {{.Year}} · {{.Employees}} employee(s) · {{date .CreatedAt}}
        {{if .DateIssues}} · <span style="color:var(--accent);">{{.DateIssues}} unparseable date(s)</span>{{end}}
      </div>
    </div>
    <a href="/runs/{{.ID}}" class="btn btn-primary btn-small">OPEN →</a>
  </div>
  {{end}}
  {{end}}
</div>

</div>
{{end}}`)

// Index renders the run list and the upload form.
func Index(runs []domain.Run, d Defaults) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return indexTmpl.ExecuteTemplate(w, "base", indexData{Runs: runs, Defaults: d})
	})
}
