package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// MaxDetailRows caps the interim rows shown on a run page.
const MaxDetailRows = 500

// Employee is one line of the per-employee form list.
type Employee struct {
	ID   int64
	Name string
}

// Detail is everything the run page shows.
type Detail struct {
	Run          *domain.Run
	Rows         []domain.InterimRow
	Employees    []Employee
	Batches      []domain.BatchRecord
	FormsEnabled bool
}

// Truncated reports whether only the first MaxDetailRows rows are shown.
func (d Detail) Truncated() bool { return len(d.Run.Rows) > len(d.Rows) }

var detailTmpl = page(`
{{define "title"}}1095-C · {{.Run.SourceName}}{{end}}
{{define "content"}}
<div style="display:flex;justify-content:space-between;align-items:flex-start;margin-bottom:24px;">
  <div>
    <a href="/" style="font-family:'IBM Plex Mono',monospace;font-size:0.75rem;color:var(--muted);text-decoration:none;">← ALL RUNS</a>
    <h2 style="font-family:'IBM Plex Mono',monospace;font-size:1.3rem;font-weight:600;margin:8px 0 0;">{{.Run.SourceName}}</h2>
    <div style="font-size:0.85rem;color:var(--muted);margin-top:4px;">
      Year <strong>{{.Run.Year}}</strong> · {{.Run.Employees}} employee(s) · {{len .Run.Rows}} row(s)
      · waived plans {{if .Run.ExcludeWaived}}excluded{{else}}included{{end}}
      {{if .Run.DateIssues}} · <span style="color:var(--accent);">{{.Run.DateIssues}} unparseable date(s) ignored</span>{{end}}
      {{if .Run.HasSummary}} · line codes attached{{end}}
    </div>
  </div>
  <div style="display:flex;gap:10px;">
    <a class="btn btn-primary" href="/runs/{{.Run.ID}}/interim.csv">CSV</a>
    <a class="btn btn-primary" href="/runs/{{.Run.ID}}/interim.xlsx">XLSX</a>
    <a class="btn btn-primary" href="/runs/{{.Run.ID}}/report.pdf">REPORT PDF</a>
    <button class="btn btn-danger" hx-delete="/runs/{{.Run.ID}}" hx-confirm="Delete this run?">DELETE</button>
  </div>
</div>

<div style="display:grid;grid-template-columns:340px 1fr;gap:28px;align-items:start;">

<div>
  <div class="card" style="padding:20px;margin-bottom:20px;">
    <div class="section-header">Monthly Line Codes</div>
    <form hx-post="/runs/{{.Run.ID}}/summary" hx-encoding="multipart/form-data" hx-target="body">
      <label class="field-label">Summary (.xlsx / .csv) *</label>
      <input type="file" name="summary" accept=".xlsx,.csv" required>
      <div style="margin-top:12px;display:flex;justify-content:flex-end;">
        <button type="submit" class="btn btn-primary btn-small">{{if .Run.HasSummary}}REPLACE{{else}}ATTACH{{end}}</button>
      </div>
    </form>
  </div>

  {{if .FormsEnabled}}
  <div class="card" style="padding:20px;margin-bottom:20px;">
    <div class="section-header">Forms 1095-C</div>
    <form method="get" action="/runs/{{.Run.ID}}/1095c.zip">
      <label class="field-label">Plan Start Month (optional, e.g. 01)</label>
      <input type="text" name="plan_start" maxlength="2" class="mono">
      <div style="margin-top:12px;display:flex;justify-content:flex-end;">
        <button type="submit" class="btn btn-success btn-small">⬇ ALL FORMS (ZIP)</button>
      </div>
    </form>
    <div style="margin-top:16px;max-height:320px;overflow-y:auto;">
      {{range .Employees}}
      <div class="run-row" style="display:flex;justify-content:space-between;padding:4px 0;font-size:0.8rem;">
        <span><span class="mono">{{.ID}}</span> {{.Name}}</span>
        <a href="/runs/{{$.Run.ID}}/employees/{{itoa .ID}}/1095c.pdf" class="mono" style="color:var(--accent2);">PDF</a>
      </div>
      {{end}}
    </div>
  </div>
  {{end}}

  {{if .Batches}}
  <div class="card" style="padding:20px;">
    <div class="section-header">Bulk Batches</div>
    {{range .Batches}}
    <div class="run-row" style="padding:6px 0;font-size:0.75rem;">
      <div>{{date .CreatedAt}} · {{.Succeeded}} form(s){{if .Failures}} · <span style="color:var(--accent);">{{len .Failures}} failed</span>{{end}}</div>
      {{range .Failures}}<div class="mono" style="color:var(--muted);">{{.String}}</div>{{end}}
    </div>
    {{end}}
  </div>
  {{end}}
</div>

<div>
  <div class="section-header">Interim Table{{if .Truncated}} (first {{len .Rows}} rows){{end}}</div>
  <div style="overflow-x:auto;">
  <table class="grid">
    <tr>
      <th>ID</th><th>Name</th><th>Month</th><th>Emp</th><th>FT</th><th>PT</th>
      <th>MV</th><th>EE El</th><th>Sp El</th><th>Ch El</th><th>EE En</th><th>Sp En</th><th>Ch En</th>
      <th>L14</th><th>L16</th>
    </tr>
    {{range .Rows}}
    <tr>
      <td class="mono">{{.EmployeeID}}</td><td class="left">{{.Name}}</td><td>{{month .}}</td>
      <td>{{mark .EmployedFullMonth}}</td><td>{{mark .FullTimeFullMonth}}</td><td>{{mark .PartTimeFullMonth}}</td>
      <td>{{mark .EligibleMinimumValue}}</td><td>{{mark .EmployeeEligible}}</td><td>{{mark .SpouseEligible}}</td><td>{{mark .ChildEligible}}</td>
      <td>{{mark .EmployeeEnrolled}}</td><td>{{mark .SpouseEnrolled}}</td><td>{{mark .ChildEnrolled}}</td>
      <td class="mono">{{.Line14}}</td><td class="mono">{{.Line16}}</td>
    </tr>
    {{end}}
  </table>
  </div>
</div>

</div>
{{end}}`)

// RunDetail renders one run.
func RunDetail(d Detail) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return detailTmpl.ExecuteTemplate(w, "base", d)
	})
}
