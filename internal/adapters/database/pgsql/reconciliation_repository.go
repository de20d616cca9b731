package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portsrepo "github.com/coopbank/cashdesk_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReconciliationRepository struct {
	pool *pgxpool.Pool
}

// NewPgxReconciliationRepository creates the repository for reconciliation
// runs and their records.
func NewPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRunRepository {
	return &PgxReconciliationRepository{pool: pool}
}

// SaveRun persists a completed run together with its records in one
// database transaction. Records are append-only.
func (r *PgxReconciliationRepository) SaveRun(ctx context.Context, run domain.ReconciliationRun, records []domain.ReconciliationRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reconciliation save: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	runQuery := `
		INSERT INTO reconciliation_runs (run_id, feed_name, period_start, period_end, status, summary, started_at, completed_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, runQuery,
		run.RunID,
		run.FeedName,
		run.PeriodStart,
		run.PeriodEnd,
		string(run.Status),
		summaryJSON,
		run.StartedAt,
		run.CompletedAt,
		run.CreatedAt,
		run.CreatedBy,
		run.LastUpdatedAt,
		run.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save reconciliation run %s: %w", run.RunID, err)
	}

	recordQuery := `
		INSERT INTO reconciliation_records (run_id, transaction_id, reference_number, payment_amount, transaction_date, external_file_amount, match_status, discrepancy_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, rec := range records {
		_, err := tx.Exec(ctx, recordQuery,
			run.RunID,
			rec.TransactionID,
			rec.ReferenceNumber,
			rec.PaymentAmount,
			rec.TransactionDate,
			rec.ExternalFileAmount,
			string(rec.MatchStatus),
			rec.DiscrepancyAmount,
			rec.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to save reconciliation record %s: %w", rec.ReferenceNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reconciliation save: %w", err)
	}
	return nil
}

// FindRunByID retrieves a run with its summary.
func (r *PgxReconciliationRepository) FindRunByID(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	query := `
		SELECT run_id, feed_name, period_start, period_end, status, summary, started_at, completed_at, created_at, created_by, last_updated_at, last_updated_by
		FROM reconciliation_runs
		WHERE run_id = $1;
	`
	var run domain.ReconciliationRun
	var status string
	var summaryJSON []byte
	err := r.pool.QueryRow(ctx, query, runID).Scan(
		&run.RunID,
		&run.FeedName,
		&run.PeriodStart,
		&run.PeriodEnd,
		&status,
		&summaryJSON,
		&run.StartedAt,
		&run.CompletedAt,
		&run.CreatedAt,
		&run.CreatedBy,
		&run.LastUpdatedAt,
		&run.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reconciliation run %s: %w", runID, err)
	}
	run.Status = domain.ReconciliationRunStatus(status)
	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary of run %s: %w", runID, err)
	}
	return &run, nil
}

// ListRecordsByRunID retrieves the records one run produced.
func (r *PgxReconciliationRepository) ListRecordsByRunID(ctx context.Context, runID string) ([]domain.ReconciliationRecord, error) {
	query := `
		SELECT transaction_id, reference_number, payment_amount, transaction_date, external_file_amount, match_status, discrepancy_amount, notes
		FROM reconciliation_records
		WHERE run_id = $1
		ORDER BY reference_number;
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation records: %w", err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReconciliationRecord, error) {
		var rec domain.ReconciliationRecord
		var status string
		err := row.Scan(
			&rec.TransactionID,
			&rec.ReferenceNumber,
			&rec.PaymentAmount,
			&rec.TransactionDate,
			&rec.ExternalFileAmount,
			&status,
			&rec.DiscrepancyAmount,
			&rec.Notes,
		)
		rec.MatchStatus = domain.MatchStatus(status)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect reconciliation record rows: %w", err)
	}
	return records, nil
}
