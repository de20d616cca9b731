package repositories

import (
	"context"
	"io"

	"github.com/coopbank/cashdesk_app/internal/core/domain"
)

// ReconciliationRunRepository persists reconciliation runs and the records
// they produce. Records are immutable once saved; a new run writes new rows.
type ReconciliationRunRepository interface {
	// SaveRun persists a completed run together with its records.
	SaveRun(ctx context.Context, run domain.ReconciliationRun, records []domain.ReconciliationRecord) error

	// FindRunByID retrieves a run with its summary.
	FindRunByID(ctx context.Context, runID string) (*domain.ReconciliationRun, error)

	// ListRecordsByRunID retrieves the records one run produced.
	ListRecordsByRunID(ctx context.Context, runID string) ([]domain.ReconciliationRecord, error)
}

// SettlementFeedReader parses an external settlement feed. It returns the
// entries it could parse plus the count of lines it had to skip; only an
// unreadable stream is an error.
type SettlementFeedReader interface {
	ReadEntries(ctx context.Context, r io.Reader) ([]domain.ExternalSettlementEntry, int, error)
}
