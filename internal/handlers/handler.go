package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/csg33k/aca1095c-generator/internal/adapters/archive"
	"github.com/csg33k/aca1095c-generator/internal/adapters/sheet"
	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/formfill"
	"github.com/csg33k/aca1095c-generator/internal/interim"
	"github.com/csg33k/aca1095c-generator/internal/ports"
	"github.com/csg33k/aca1095c-generator/internal/templates"
)

const maxUpload = 32 << 20

// Options carry the server-wide defaults.
type Options struct {
	Sheets        sheet.SheetNames
	Year          int
	ExcludeWaived bool
	BulkWorkers   int
	Logger        *slog.Logger
}

type Handler struct {
	repo    ports.RunRepository
	report  ports.ReportGenerator
	builder *interim.Builder
	filler  *formfill.Filler
	runner  *formfill.Runner
	opts    Options
	log     *slog.Logger
}

// New wires the handlers. filler may be nil when no form template is
// configured; the form routes then answer 503.
func New(repo ports.RunRepository, report ports.ReportGenerator, filler *formfill.Filler, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Year == 0 {
		opts.Year = domain.DefaultReportYear
	}
	h := &Handler{
		repo:    repo,
		report:  report,
		builder: interim.NewBuilder(opts.Logger),
		filler:  filler,
		opts:    opts,
		log:     opts.Logger,
	}
	if filler != nil {
		h.runner = formfill.NewRunner(filler, opts.BulkWorkers, opts.Logger)
	}
	return h
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("POST /runs", h.createRun)
	mux.HandleFunc("GET /runs/{id}", h.viewRun)
	mux.HandleFunc("DELETE /runs/{id}", h.deleteRun)
	mux.HandleFunc("POST /runs/{id}/summary", h.attachSummary)
	mux.HandleFunc("GET /runs/{id}/interim.csv", h.interimCSV)
	mux.HandleFunc("GET /runs/{id}/interim.xlsx", h.interimXLSX)
	mux.HandleFunc("GET /runs/{id}/report.pdf", h.reportPDF)
	mux.HandleFunc("GET /runs/{id}/employees/{eid}/1095c.pdf", h.employeeForm)
	mux.HandleFunc("GET /runs/{id}/1095c.zip", h.allForms)
	return mux
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	runs, err := h.repo.ListRuns(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	render(w, r, templates.Index(runs, templates.Defaults{
		Year:          h.opts.Year,
		ExcludeWaived: h.opts.ExcludeWaived,
	}))
}

func (h *Handler) createRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	year := h.opts.Year
	if v := strings.TrimSpace(r.FormValue("year")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid year", 400)
			return
		}
		year = n
	}

	source, name, err := formFile(r, "workbook")
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	in, err := sheet.ReadWorkbook(bytes.NewReader(source), h.opts.Sheets)
	if err != nil {
		h.reject(w, err)
		return
	}
	exclude := r.FormValue("exclude_waived") != ""
	res, err := h.builder.Build(r.Context(), in, interim.Options{Year: year, ExcludeWaived: exclude})
	if err != nil {
		h.fail(w, err)
		return
	}

	run := &domain.Run{
		Year:          res.Year,
		ExcludeWaived: exclude,
		SourceName:    name,
		Source:        source,
		Rows:          res.Rows,
		DateIssues:    len(res.DateIssues),
	}
	if data, fname, err := formFile(r, "summary"); err == nil {
		summary, err := sheet.ReadSummary(bytes.NewReader(data), fname)
		if err != nil {
			h.reject(w, err)
			return
		}
		run.Summary = summary
	} else if !errors.Is(err, http.ErrMissingFile) {
		http.Error(w, err.Error(), 400)
		return
	}

	if err := h.repo.CreateRun(r.Context(), run); err != nil {
		h.fail(w, err)
		return
	}
	h.log.Info("run created", "run_id", run.ID, "source", name,
		"year", run.Year, "employees", run.Employees, "summary", run.HasSummary())
	redirect(w, r, "/runs/"+run.ID)
}

func (h *Handler) viewRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.repo.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	batches, err := h.repo.ListBatches(r.Context(), run.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	rows := interimRows(run)
	d := templates.Detail{
		Run:          run,
		Rows:         rows[:min(len(rows), templates.MaxDetailRows)],
		Employees:    employees(rows),
		Batches:      batches,
		FormsEnabled: h.filler != nil,
	}
	render(w, r, templates.RunDetail(d))
}

func (h *Handler) deleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteRun(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	redirect(w, r, "/")
}

func (h *Handler) attachSummary(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	data, name, err := formFile(r, "summary")
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	summary, err := sheet.ReadSummary(bytes.NewReader(data), name)
	if err != nil {
		h.reject(w, err)
		return
	}
	id := r.PathValue("id")
	if err := h.repo.SaveSummary(r.Context(), id, summary); err != nil {
		h.fail(w, err)
		return
	}
	redirect(w, r, "/runs/"+id)
}

func (h *Handler) interimCSV(w http.ResponseWriter, r *http.Request) {
	run, err := h.repo.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := sheet.WriteInterimCSV(&buf, interimRows(run)); err != nil {
		h.fail(w, err)
		return
	}
	download(w, "text/csv; charset=utf-8", fmt.Sprintf("interim_%d.csv", run.Year), buf.Bytes())
}

func (h *Handler) interimXLSX(w http.ResponseWriter, r *http.Request) {
	run, err := h.repo.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := sheet.WriteInterimXLSX(&buf, run.Year, interimRows(run)); err != nil {
		h.fail(w, err)
		return
	}
	download(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fmt.Sprintf("interim_%d.xlsx", run.Year), buf.Bytes())
}

func (h *Handler) reportPDF(w http.ResponseWriter, r *http.Request) {
	run, err := h.repo.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	run.Rows = interimRows(run)
	var buf bytes.Buffer
	if err := h.report.GenerateInterimReport(r.Context(), run, &buf); err != nil {
		h.fail(w, err)
		return
	}
	filename := fmt.Sprintf("1095C_interim_%d_%s.pdf", run.Year, time.Now().Format("20060102"))
	download(w, "application/pdf", filename, buf.Bytes())
}

func (h *Handler) employeeForm(w http.ResponseWriter, r *http.Request) {
	if h.filler == nil {
		http.Error(w, "no form template configured", http.StatusServiceUnavailable)
		return
	}
	eid, err := pathID(r, "eid")
	if err != nil {
		http.Error(w, "invalid employee id", 400)
		return
	}
	req, _, err := h.formRequest(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	req.EmployeeID = eid
	doc, err := h.filler.Fill(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	download(w, "application/pdf", doc.Filename, doc.PDF)
}

func (h *Handler) allForms(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		http.Error(w, "no form template configured", http.StatusServiceUnavailable)
		return
	}
	req, run, err := h.formRequest(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	report := h.runner.Run(r.Context(), formfill.EmployeeIDs(run.Rows), req)

	var buf bytes.Buffer
	if err := archive.WriteZip(&buf, report); err != nil {
		h.fail(w, err)
		return
	}
	rec := &domain.BatchRecord{RunID: run.ID, Succeeded: report.Succeeded(), Failures: report.Failures}
	if err := h.repo.RecordBatch(r.Context(), rec); err != nil {
		h.log.Error("record batch", "run_id", run.ID, "err", err)
	}
	download(w, "application/zip", archive.BundleName(run.Year), buf.Bytes())
}

// formRequest loads the run and rebuilds the form inputs shared by every
// employee: the demographics of the stored workbook and the summary.
func (h *Handler) formRequest(r *http.Request) (formfill.Request, *domain.Run, error) {
	run, err := h.repo.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		return formfill.Request{}, nil, err
	}
	in, err := sheet.ReadWorkbook(bytes.NewReader(run.Source), h.opts.Sheets)
	if err != nil {
		return formfill.Request{}, nil, err
	}
	in.Demographics.NormalizeColumns()
	return formfill.Request{
		Demographics:   in.Demographics,
		Summary:        run.Summary,
		PlanStartMonth: r.URL.Query().Get("plan_start"),
	}, run, nil
}

// fail maps domain errors onto status codes; anything else is a 500.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.respond(w, err, http.StatusInternalServerError)
}

// reject is fail for errors caused by an uploaded file, which default to 400.
func (h *Handler) reject(w http.ResponseWriter, err error) {
	h.respond(w, err, http.StatusBadRequest)
}

func (h *Handler) respond(w http.ResponseWriter, err error, status int) {
	var (
		missing *domain.MissingInputError
		invalid *domain.InvalidValueError
		fmErr   *domain.FieldMapError
		noData  *domain.NoDataForEmployeeError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &invalid), errors.As(err, &fmErr):
		status = 400
	case errors.Is(err, domain.ErrRunNotFound), errors.As(err, &noData):
		status = 404
	}
	if status >= 500 {
		h.log.Error("request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

// interimRows returns the run's rows with the attached line codes merged in.
func interimRows(run *domain.Run) []domain.InterimRow {
	if !run.HasSummary() {
		return run.Rows
	}
	return interim.MergeLineCodes(run.Rows, run.Summary)
}

func employees(rows []domain.InterimRow) []templates.Employee {
	var out []templates.Employee
	seen := map[int64]bool{}
	for _, r := range rows {
		if !seen[r.EmployeeID] {
			seen[r.EmployeeID] = true
			out = append(out, templates.Employee{ID: r.EmployeeID, Name: r.Name})
		}
	}
	return out
}

func formFile(r *http.Request, key string) ([]byte, string, error) {
	f, hdr, err := r.FormFile(key)
	if err != nil {
		return nil, "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(f)
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%s: empty upload", key)
	}
	return data, filepath.Base(hdr.Filename), nil
}

// redirect sends htmx clients an HX-Redirect and everyone else a 303.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func download(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(data)
}

// render writes a templ component to the response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.PathValue(key), 10, 64)
}
