package domain

import (
	"fmt"
	"time"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MatchStatus classifies one internal payment against the external
// settlement feed.
type MatchStatus string

const (
	// MatchMatched means the external amount agrees within tolerance.
	MatchMatched MatchStatus = "MATCHED"
	// MatchPending means the internal payment has not yet appeared in any
	// external feed. Pending is never downgraded to NotFound.
	MatchPending MatchStatus = "PENDING"
	// MatchDiscrepancy means the external amount disagrees beyond tolerance.
	MatchDiscrepancy MatchStatus = "DISCREPANCY"
	// MatchNotFound means the external feed referenced a payment we do not
	// recognise. Reserved strictly for that direction.
	MatchNotFound MatchStatus = "NOT_FOUND"
)

// PaymentRecord is an internally recorded payment as the reconciliation
// matcher sees it.
type PaymentRecord struct {
	TransactionID    string          `json:"transactionID"` // Primary Key (e.g., UUID)
	ReferenceNumber  string          `json:"referenceNumber"`
	ServiceCode      string          `json:"serviceCode"`
	PaymentAmount    decimal.Decimal `json:"paymentAmount"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	TotalPayable     decimal.Decimal `json:"totalPayable"`
	TransactionDate  time.Time       `json:"transactionDate"`
	AuditFields
}

// ExternalSettlementEntry is one parsed line of the external settlement feed.
type ExternalSettlementEntry struct {
	ReferenceNumber string          `json:"referenceNumber"`
	Amount          decimal.Decimal `json:"amount"`
	Date            string          `json:"date"`
	Status          string          `json:"status"` // free-text external status, unused for matching
}

// ReconciliationRecord is the classification of one comparison. Records are
// immutable once produced; a new run produces new records.
type ReconciliationRecord struct {
	TransactionID      string           `json:"transactionID"`
	ReferenceNumber    string           `json:"referenceNumber"`
	PaymentAmount      decimal.Decimal  `json:"paymentAmount"`
	TransactionDate    time.Time        `json:"transactionDate"`
	ExternalFileAmount *decimal.Decimal `json:"externalFileAmount,omitempty"`
	MatchStatus        MatchStatus      `json:"matchStatus"`
	DiscrepancyAmount  *decimal.Decimal `json:"discrepancyAmount,omitempty"`
	Notes              string           `json:"notes,omitempty"`
}

// ReconciliationSummary holds aggregate counts and amounts over one run's
// records. Always recomputable from the records, never a source of truth.
type ReconciliationSummary struct {
	TotalTransactions       int             `json:"totalTransactions"`
	MatchedTransactions     int             `json:"matchedTransactions"`
	PendingTransactions     int             `json:"pendingTransactions"`
	DiscrepancyTransactions int             `json:"discrepancyTransactions"`
	NotFoundTransactions    int             `json:"notFoundTransactions"`
	ParseErrors             int             `json:"parseErrors"`
	TotalAmount             decimal.Decimal `json:"totalAmount"`
	MatchedAmount           decimal.Decimal `json:"matchedAmount"`
	DiscrepancyAmount       decimal.Decimal `json:"discrepancyAmount"`
	// ReconciliationRatePct is Matched / Total × 100, zero when there are
	// no records.
	ReconciliationRatePct decimal.Decimal `json:"reconciliationRatePct"`
}

// ReconciliationRunStatus is the lifecycle state of one batch run.
type ReconciliationRunStatus string

const (
	RunInProgress ReconciliationRunStatus = "IN_PROGRESS"
	RunCompleted  ReconciliationRunStatus = "COMPLETED"
	RunFailed     ReconciliationRunStatus = "FAILED"
)

// ReconciliationRun records one batch comparison of internal payments
// against an external settlement feed.
type ReconciliationRun struct {
	RunID       string                  `json:"runID"` // Primary Key (e.g., UUID)
	FeedName    string                  `json:"feedName"`
	PeriodStart time.Time               `json:"periodStart"`
	PeriodEnd   time.Time               `json:"periodEnd"`
	Status      ReconciliationRunStatus `json:"status"`
	Summary     ReconciliationSummary   `json:"summary"`
	StartedAt   time.Time               `json:"startedAt"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
	AuditFields
}

// ReferenceValidator checks that a reference number is well-formed for the
// biller integration before it is used for lookup. The 30-digit numeric
// format is specific to one integration, so the validator is pluggable.
type ReferenceValidator interface {
	Validate(reference string) error
}

// NumericReferenceValidator accepts references of exactly Length digits.
type NumericReferenceValidator struct {
	Length int
}

// Validate checks length and the all-digit constraint.
func (v NumericReferenceValidator) Validate(reference string) error {
	if len(reference) != v.Length {
		return fmt.Errorf("%w: reference %q must be %d digits, got %d", apperrors.ErrMalformedReference, reference, v.Length, len(reference))
	}
	for _, r := range reference {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: reference %q contains non-digit characters", apperrors.ErrMalformedReference, reference)
		}
	}
	return nil
}
