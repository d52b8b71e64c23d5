package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/ports"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Repository struct {
	db *sql.DB
}

var _ ports.RunRepository = (*Repository)(nil)

// New opens the SQLite database and applies any pending migrations.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

// Migrate applies the embedded migrations and returns how many ran.
func Migrate(db *sql.DB) (int, error) {
	src := &migrate.EmbedFileSystemMigrationSource{FileSystem: migrations, Root: "migrations"}
	n, err := migrate.Exec(db, "sqlite3", src, migrate.Up)
	if err != nil {
		return n, fmt.Errorf("apply migrations: %w", err)
	}
	return n, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// ── Runs ──────────────────────────────────────────────────────────────────────

// CreateRun stores a run with its interim rows and, when present, its
// summary. A missing ID is assigned.
func (r *Repository) CreateRun(ctx context.Context, run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, year, exclude_waived, source_name, source, date_issues, has_summary, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		run.ID, run.Year, boolToInt(run.ExcludeWaived), run.SourceName, run.Source,
		run.DateIssues, boolToInt(run.HasSummary()), run.CreatedAt,
	); err != nil {
		return err
	}
	if err := insertInterimRows(ctx, tx, run.ID, run.Rows); err != nil {
		return err
	}
	if err := insertSummaryRows(ctx, tx, run.ID, run.Summary); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	run.Employees = countEmployees(run.Rows)
	return nil
}

func insertInterimRows(ctx context.Context, tx *sql.Tx, runID string, rows []domain.InterimRow) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO interim_rows (
			run_id, seq, employee_id, name, month,
			employed, full_time, part_time,
			eligible_mv, employee_eligible, spouse_eligible, child_eligible,
			employee_enrolled, spouse_enrolled, child_enrolled,
			line_14, line_16
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			runID, i, row.EmployeeID, row.Name, int(row.Month),
			boolToInt(row.EmployedFullMonth), boolToInt(row.FullTimeFullMonth), boolToInt(row.PartTimeFullMonth),
			boolToInt(row.EligibleMinimumValue), boolToInt(row.EmployeeEligible),
			boolToInt(row.SpouseEligible), boolToInt(row.ChildEligible),
			boolToInt(row.EmployeeEnrolled), boolToInt(row.SpouseEnrolled), boolToInt(row.ChildEnrolled),
			row.Line14, row.Line16,
		); err != nil {
			return err
		}
	}
	return nil
}

func insertSummaryRows(ctx context.Context, tx *sql.Tx, runID string, rows []domain.SummaryRow) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO summary_rows (run_id, seq, employee_id, month, line_14, line_16)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, runID, i, row.EmployeeID, row.Month, row.Line14, row.Line16); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	run := &domain.Run{}
	var excludeWaived, hasSummary int
	err := r.db.QueryRowContext(ctx, `
		SELECT id, year, exclude_waived, source_name, source, date_issues, has_summary, created_at
		FROM runs WHERE id=?`, id).Scan(
		&run.ID, &run.Year, &excludeWaived, &run.SourceName, &run.Source,
		&run.DateIssues, &hasSummary, &run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	run.ExcludeWaived = excludeWaived == 1

	if run.Rows, err = r.interimRows(ctx, id); err != nil {
		return nil, err
	}
	run.Employees = countEmployees(run.Rows)
	if hasSummary == 1 {
		if run.Summary, err = r.summaryRows(ctx, id); err != nil {
			return nil, err
		}
	}
	return run, nil
}

func (r *Repository) interimRows(ctx context.Context, runID string) ([]domain.InterimRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT employee_id, name, month,
		       employed, full_time, part_time,
		       eligible_mv, employee_eligible, spouse_eligible, child_eligible,
		       employee_enrolled, spouse_enrolled, child_enrolled,
		       line_14, line_16
		FROM interim_rows WHERE run_id=? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InterimRow
	for rows.Next() {
		var (
			row   domain.InterimRow
			month int
			flags [10]int
		)
		if err := rows.Scan(
			&row.EmployeeID, &row.Name, &month,
			&flags[0], &flags[1], &flags[2],
			&flags[3], &flags[4], &flags[5], &flags[6],
			&flags[7], &flags[8], &flags[9],
			&row.Line14, &row.Line16,
		); err != nil {
			return nil, err
		}
		row.Month = time.Month(month)
		row.EmployedFullMonth = flags[0] == 1
		row.FullTimeFullMonth = flags[1] == 1
		row.PartTimeFullMonth = flags[2] == 1
		row.EligibleMinimumValue = flags[3] == 1
		row.EmployeeEligible = flags[4] == 1
		row.SpouseEligible = flags[5] == 1
		row.ChildEligible = flags[6] == 1
		row.EmployeeEnrolled = flags[7] == 1
		row.SpouseEnrolled = flags[8] == 1
		row.ChildEnrolled = flags[9] == 1
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repository) summaryRows(ctx context.Context, runID string) ([]domain.SummaryRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT employee_id, month, line_14, line_16
		FROM summary_rows WHERE run_id=? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.SummaryRow{}
	for rows.Next() {
		var s domain.SummaryRow
		if err := rows.Scan(&s.EmployeeID, &s.Month, &s.Line14, &s.Line16); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListRuns returns run headers, newest first. Rows, Summary and Source are
// not loaded.
func (r *Repository) ListRuns(ctx context.Context) ([]domain.Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, year, exclude_waived, source_name, date_issues, created_at,
		       (SELECT COUNT(DISTINCT employee_id) FROM interim_rows WHERE run_id = runs.id)
		FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Run
	for rows.Next() {
		var run domain.Run
		var excludeWaived int
		if err := rows.Scan(&run.ID, &run.Year, &excludeWaived, &run.SourceName,
			&run.DateIssues, &run.CreatedAt, &run.Employees); err != nil {
			return nil, err
		}
		run.ExcludeWaived = excludeWaived == 1
		list = append(list, run)
	}
	return list, rows.Err()
}

func (r *Repository) DeleteRun(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SaveSummary replaces the monthly summary of a run.
func (r *Repository) SaveSummary(ctx context.Context, runID string, rows []domain.SummaryRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE runs SET has_summary=1 WHERE id=?`, runID)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM summary_rows WHERE run_id=?`, runID); err != nil {
		return err
	}
	if err := insertSummaryRows(ctx, tx, runID, rows); err != nil {
		return err
	}
	return tx.Commit()
}

// ── Batches ───────────────────────────────────────────────────────────────────

func (r *Repository) RecordBatch(ctx context.Context, b *domain.BatchRecord) error {
	b.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO batches (run_id, succeeded, created_at) VALUES (?,?,?)`,
		b.RunID, b.Succeeded, b.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, f := range b.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO batch_failures (batch_id, seq, employee_id, error) VALUES (?,?,?,?)`,
			id, i, f.EmployeeID, msg); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	b.ID = id
	return nil
}

// ListBatches returns a run's batches, newest first, with their failures.
func (r *Repository) ListBatches(ctx context.Context, runID string) ([]domain.BatchRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, succeeded, created_at
		FROM batches WHERE run_id=? ORDER BY id DESC`, runID)
	if err != nil {
		return nil, err
	}
	var list []domain.BatchRecord
	index := map[int64]int{}
	for rows.Next() {
		var b domain.BatchRecord
		if err := rows.Scan(&b.ID, &b.RunID, &b.Succeeded, &b.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		index[b.ID] = len(list)
		list = append(list, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	frows, err := r.db.QueryContext(ctx, `
		SELECT f.batch_id, f.employee_id, f.error
		FROM batch_failures f JOIN batches b ON b.id = f.batch_id
		WHERE b.run_id=? ORDER BY f.batch_id, f.seq`, runID)
	if err != nil {
		return nil, err
	}
	defer frows.Close()
	for frows.Next() {
		var batchID int64
		var f domain.ItemFailure
		var msg string
		if err := frows.Scan(&batchID, &f.EmployeeID, &msg); err != nil {
			return nil, err
		}
		f.Err = errors.New(msg)
		if i, ok := index[batchID]; ok {
			list[i].Failures = append(list[i].Failures, f)
		}
	}
	return list, frows.Err()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

func countEmployees(rows []domain.InterimRow) int {
	seen := map[int64]struct{}{}
	for _, r := range rows {
		seen[r.EmployeeID] = struct{}{}
	}
	return len(seen)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
