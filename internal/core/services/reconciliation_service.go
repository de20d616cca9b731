package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portsrepo "github.com/coopbank/cashdesk_app/internal/core/ports/repositories"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// matchTolerance is the one-cent allowance guarding against floating
// rounding in externally supplied amounts, not business disagreement.
var matchTolerance = decimal.New(1, -2)

type reconciliationService struct {
	payments     portsrepo.PaymentReader
	runs         portsrepo.ReconciliationRunRepository
	feed         portsrepo.SettlementFeedReader
	refValidator domain.ReferenceValidator
}

// NewReconciliationService creates the reconciliation matcher. The reference
// validator is pluggable; production wiring uses the 30-digit numeric format
// of the current biller integration.
func NewReconciliationService(payments portsrepo.PaymentReader, runs portsrepo.ReconciliationRunRepository, feed portsrepo.SettlementFeedReader, refValidator domain.ReferenceValidator) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		payments:     payments,
		runs:         runs,
		feed:         feed,
		refValidator: refValidator,
	}
}

// Match classifies every internal record against the external entries.
// Internal records the feed never mentions stay Pending; NotFound is
// reserved for external references we cannot resolve internally. Malformed
// references are counted as parse errors and skipped, not treated as
// NotFound. The batch is cancellable between entries and has no side
// effects of its own.
func (s *reconciliationService) Match(ctx context.Context, internalRecords []domain.PaymentRecord, externalEntries []domain.ExternalSettlementEntry) ([]domain.ReconciliationRecord, int, error) {
	byReference := make(map[string]int, len(internalRecords))
	records := make([]domain.ReconciliationRecord, 0, len(internalRecords))
	for i, p := range internalRecords {
		byReference[p.ReferenceNumber] = i
		records = append(records, domain.ReconciliationRecord{
			TransactionID:   p.TransactionID,
			ReferenceNumber: p.ReferenceNumber,
			PaymentAmount:   p.PaymentAmount,
			TransactionDate: p.TransactionDate,
			MatchStatus:     domain.MatchPending,
		})
	}

	parseErrors := 0
	for _, entry := range externalEntries {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if err := s.refValidator.Validate(entry.ReferenceNumber); err != nil {
			parseErrors++
			continue
		}

		idx, ok := byReference[entry.ReferenceNumber]
		if !ok {
			external := entry.Amount
			records = append(records, domain.ReconciliationRecord{
				ReferenceNumber:    entry.ReferenceNumber,
				PaymentAmount:      decimal.Zero,
				ExternalFileAmount: &external,
				MatchStatus:        domain.MatchNotFound,
				Notes:              fmt.Sprintf("external feed references %s for %s, no internal record", entry.ReferenceNumber, external.String()),
			})
			continue
		}

		record := &records[idx]
		external := entry.Amount
		record.ExternalFileAmount = &external
		difference := record.PaymentAmount.Sub(external).Abs()
		if difference.LessThanOrEqual(matchTolerance) {
			record.MatchStatus = domain.MatchMatched
			record.DiscrepancyAmount = nil
			record.Notes = ""
		} else {
			record.MatchStatus = domain.MatchDiscrepancy
			record.DiscrepancyAmount = &difference
			record.Notes = fmt.Sprintf("internal amount %s, external amount %s", record.PaymentAmount.String(), external.String())
		}
	}
	return records, parseErrors, nil
}

// Summarize aggregates one run's records. It is a pure recomputation and
// never a source of truth.
func (s *reconciliationService) Summarize(records []domain.ReconciliationRecord) domain.ReconciliationSummary {
	summary := domain.ReconciliationSummary{
		TotalTransactions:     len(records),
		TotalAmount:           decimal.Zero,
		MatchedAmount:         decimal.Zero,
		DiscrepancyAmount:     decimal.Zero,
		ReconciliationRatePct: decimal.Zero,
	}
	for _, r := range records {
		summary.TotalAmount = summary.TotalAmount.Add(r.PaymentAmount)
		switch r.MatchStatus {
		case domain.MatchMatched:
			summary.MatchedTransactions++
			summary.MatchedAmount = summary.MatchedAmount.Add(r.PaymentAmount)
		case domain.MatchPending:
			summary.PendingTransactions++
		case domain.MatchDiscrepancy:
			summary.DiscrepancyTransactions++
			if r.DiscrepancyAmount != nil {
				summary.DiscrepancyAmount = summary.DiscrepancyAmount.Add(*r.DiscrepancyAmount)
			}
		case domain.MatchNotFound:
			summary.NotFoundTransactions++
		}
	}
	if summary.TotalTransactions > 0 {
		summary.ReconciliationRatePct = decimal.NewFromInt(int64(summary.MatchedTransactions)).
			Div(decimal.NewFromInt(int64(summary.TotalTransactions))).
			Mul(oneHundred).Round(currencyScale)
	}
	return summary
}

// RunReconciliation ingests one settlement feed, matches it against the
// internal payments for the period and persists the run with its records.
// Per-line feed problems and per-entry mismatches are data outcomes carried
// in the result; only an unreadable feed fails the run.
func (s *reconciliationService) RunReconciliation(ctx context.Context, feedName string, feed io.Reader, periodStart, periodEnd time.Time, runBy string) (*domain.ReconciliationRun, error) {
	entries, skippedLines, err := s.feed.ReadEntries(ctx, feed)
	if err != nil {
		return nil, fmt.Errorf("failed to read settlement feed %s: %w", feedName, err)
	}

	internalRecords, err := s.payments.ListPaymentsByDateRange(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list internal payments for reconciliation: %w", err)
	}

	records, parseErrors, err := s.Match(ctx, internalRecords, entries)
	if err != nil {
		return nil, fmt.Errorf("reconciliation matching aborted: %w", err)
	}

	summary := s.Summarize(records)
	summary.ParseErrors = parseErrors + skippedLines

	now := time.Now().UTC()
	run := domain.ReconciliationRun{
		RunID:       uuid.NewString(),
		FeedName:    feedName,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      domain.RunCompleted,
		Summary:     summary,
		StartedAt:   now,
		CompletedAt: &now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     runBy,
			LastUpdatedAt: now,
			LastUpdatedBy: runBy,
		},
	}

	if err := s.runs.SaveRun(ctx, run, records); err != nil {
		return nil, fmt.Errorf("failed to persist reconciliation run: %w", err)
	}
	return &run, nil
}

// GetRun fetches a previously persisted run with its summary.
func (s *reconciliationService) GetRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	run, err := s.runs.FindRunByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation run %s: %w", runID, err)
	}
	return run, nil
}

// ListRunRecords fetches the records produced by one run.
func (s *reconciliationService) ListRunRecords(ctx context.Context, runID string) ([]domain.ReconciliationRecord, error) {
	records, err := s.runs.ListRecordsByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for run %s: %w", runID, err)
	}
	return records, nil
}
