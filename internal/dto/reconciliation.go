package dto

import (
	"time"

	"github.com/coopbank/cashdesk_app/internal/core/domain"
)

// ReconciliationRunResponse is a persisted run with its summary.
type ReconciliationRunResponse struct {
	RunID       string                       `json:"runID"`
	FeedName    string                       `json:"feedName"`
	PeriodStart time.Time                    `json:"periodStart"`
	PeriodEnd   time.Time                    `json:"periodEnd"`
	Status      string                       `json:"status"`
	Summary     domain.ReconciliationSummary `json:"summary"`
	StartedAt   time.Time                    `json:"startedAt"`
	CompletedAt *time.Time                   `json:"completedAt,omitempty"`
}

// ToReconciliationRunResponse converts a domain run for the wire.
func ToReconciliationRunResponse(run *domain.ReconciliationRun) ReconciliationRunResponse {
	return ReconciliationRunResponse{
		RunID:       run.RunID,
		FeedName:    run.FeedName,
		PeriodStart: run.PeriodStart,
		PeriodEnd:   run.PeriodEnd,
		Status:      string(run.Status),
		Summary:     run.Summary,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
}
