package ports

import (
	"context"
	"io"

	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// RunRepository defines persistence operations for interim runs and the
// bulk batches generated from them.
type RunRepository interface {
	CreateRun(ctx context.Context, r *domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context) ([]domain.Run, error)
	DeleteRun(ctx context.Context, id string) error
	SaveSummary(ctx context.Context, runID string, rows []domain.SummaryRow) error

	RecordBatch(ctx context.Context, b *domain.BatchRecord) error
	ListBatches(ctx context.Context, runID string) ([]domain.BatchRecord, error)
}

// FormTemplate is a blank fillable form. Open returns an independent
// document; the template itself is never modified.
type FormTemplate interface {
	Open() (FormDocument, error)
}

// FormDocument is one in-progress filled form.
type FormDocument interface {
	// SetFieldValue writes a text value. Unknown fields return an error
	// wrapping domain.ErrFieldNotFound.
	SetFieldValue(name, value string) error
	// EnableNeedAppearances asks viewers to regenerate field appearances.
	EnableNeedAppearances()
	// Bytes serializes the filled document.
	Bytes() ([]byte, error)
}

// ReportGenerator defines the human-readable interim report output port.
type ReportGenerator interface {
	GenerateInterimReport(ctx context.Context, run *domain.Run, w io.Writer) error
}
