package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqliteadapter "github.com/csg33k/aca1095c-generator/internal/adapters/sqlite"
	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func openRepo(t *testing.T) *sqliteadapter.Repository {
	t.Helper()
	repo, err := sqliteadapter.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleRun() *domain.Run {
	var rows []domain.InterimRow
	for _, id := range []int64{1001, 1002} {
		for m := time.January; m <= time.December; m++ {
			rows = append(rows, domain.InterimRow{
				EmployeeID:        id,
				Name:              "Employee",
				Month:             m,
				EmployedFullMonth: true,
				FullTimeFullMonth: id == 1001,
				PartTimeFullMonth: id == 1002,
				SpouseEligible:    m >= time.June,
				ChildEnrolled:     m == time.December,
			})
		}
	}
	return &domain.Run{
		Year:          2025,
		ExcludeWaived: true,
		SourceName:    "census.xlsx",
		Source:        []byte("PK\x03\x04workbook"),
		Rows:          rows,
		DateIssues:    3,
	}
}

// ---------------------------------------------------------------------------
// Runs
// ---------------------------------------------------------------------------

func TestCreateAndGetRun(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	run := sampleRun()
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.ID == "" || run.CreatedAt.IsZero() {
		t.Fatalf("CreateRun did not assign id/timestamp: %+v", run)
	}
	if run.Employees != 2 {
		t.Errorf("Employees = %d, want 2", run.Employees)
	}

	got, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Year != 2025 || !got.ExcludeWaived || got.SourceName != "census.xlsx" || got.DateIssues != 3 {
		t.Errorf("header mismatch: %+v", got)
	}
	if string(got.Source) != string(run.Source) {
		t.Errorf("Source = %q", got.Source)
	}
	if got.HasSummary() {
		t.Error("run without summary reports HasSummary")
	}
	if len(got.Rows) != len(run.Rows) {
		t.Fatalf("rows = %d, want %d", len(got.Rows), len(run.Rows))
	}
	for i := range run.Rows {
		if got.Rows[i] != run.Rows[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got.Rows[i], run.Rows[i])
		}
	}
}

func TestGetRun_NotFound(t *testing.T) {
	_, err := openRepo(t).GetRun(context.Background(), "nope")
	if !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("got %v, want ErrRunNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	first, second := sampleRun(), sampleRun()
	second.Rows = second.Rows[:12]
	for _, r := range []*domain.Run{first, second} {
		if err := repo.CreateRun(ctx, r); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	list, err := repo.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != second.ID || list[0].Employees != 1 || list[1].Employees != 2 {
		t.Errorf("unexpected listing: %+v", list)
	}
	if list[0].Rows != nil || list[0].Source != nil {
		t.Error("listing loaded row data")
	}
}

func TestDeleteRun(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	run := sampleRun()
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := repo.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if _, err := repo.GetRun(ctx, run.ID); !errors.Is(err, domain.ErrRunNotFound) {
		t.Errorf("GetRun after delete: %v", err)
	}
	if err := repo.DeleteRun(ctx, run.ID); !errors.Is(err, domain.ErrRunNotFound) {
		t.Errorf("second DeleteRun: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Summaries
// ---------------------------------------------------------------------------

func TestSaveSummary(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	run := sampleRun()
	run.Summary = []domain.SummaryRow{{EmployeeID: 1001, Month: "Jan", Line14: "1A"}}
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	replacement := []domain.SummaryRow{
		{EmployeeID: 1002, Month: "Sept", Line14: "1E", Line16: "2C"},
		{EmployeeID: 1002, Month: "Dec", Line14: "1H", Line16: "2A"},
	}
	if err := repo.SaveSummary(ctx, run.ID, replacement); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	got, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Summary) != 2 || got.Summary[0] != replacement[0] || got.Summary[1] != replacement[1] {
		t.Errorf("Summary = %+v", got.Summary)
	}
}

func TestSaveSummary_EmptyStillCounts(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	run := sampleRun()
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := repo.SaveSummary(ctx, run.ID, nil); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}
	got, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.HasSummary() || len(got.Summary) != 0 {
		t.Errorf("Summary = %#v", got.Summary)
	}
}

func TestSaveSummary_UnknownRun(t *testing.T) {
	err := openRepo(t).SaveSummary(context.Background(), "nope", nil)
	if !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("got %v, want ErrRunNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Batches
// ---------------------------------------------------------------------------

func TestRecordAndListBatches(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	run := sampleRun()
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	clean := &domain.BatchRecord{RunID: run.ID, Succeeded: 2}
	failed := &domain.BatchRecord{RunID: run.ID, Succeeded: 1, Failures: []domain.ItemFailure{
		{EmployeeID: 1002, Err: &domain.NoDataForEmployeeError{EmployeeID: 1002}},
	}}
	for _, b := range []*domain.BatchRecord{clean, failed} {
		if err := repo.RecordBatch(ctx, b); err != nil {
			t.Fatalf("RecordBatch: %v", err)
		}
	}
	if clean.ID == 0 || failed.ID <= clean.ID {
		t.Fatalf("ids not assigned: %d, %d", clean.ID, failed.ID)
	}

	list, err := repo.ListBatches(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(list) != 2 || list[0].ID != failed.ID {
		t.Fatalf("unexpected batches: %+v", list)
	}
	if len(list[0].Failures) != 1 || list[0].Failures[0].EmployeeID != 1002 {
		t.Fatalf("failures = %+v", list[0].Failures)
	}
	if got := list[0].Failures[0].Err.Error(); got != "no monthly rows found for employee 1002" {
		t.Errorf("failure message = %q", got)
	}
	if len(list[1].Failures) != 0 {
		t.Errorf("clean batch has failures: %+v", list[1].Failures)
	}

	if err := repo.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if list, _ := repo.ListBatches(ctx, run.ID); len(list) != 0 {
		t.Errorf("batches survived run deletion: %+v", list)
	}
}

func TestRecordBatch_ErrorsLeaveIDUnset(t *testing.T) {
	repo := openRepo(t)

	orphan := &domain.BatchRecord{RunID: "no-such-run", Succeeded: 1, Failures: []domain.ItemFailure{
		{EmployeeID: 7, Err: errors.New("boom")},
	}}
	if err := repo.RecordBatch(context.Background(), orphan); err == nil {
		t.Fatal("expected foreign key error for unknown run")
	}
	if orphan.ID != 0 {
		t.Errorf("ID = %d after failed insert", orphan.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &domain.BatchRecord{RunID: "no-such-run"}
	if err := repo.RecordBatch(ctx, b); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if b.ID != 0 {
		t.Errorf("ID = %d after cancelled insert", b.ID)
	}
}
