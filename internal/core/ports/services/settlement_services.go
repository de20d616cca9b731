package services

import (
	"context"
	"io"
	"time"

	"github.com/coopbank/cashdesk_app/internal/core/domain"
	"github.com/coopbank/cashdesk_app/internal/dto"
	"github.com/shopspring/decimal"
)

// ChangeMakerSvc defines the change-making engine. Implementations are pure:
// they never mutate the inventory they are handed, so the caller can apply
// the returned breakdown as a batch decrement inside the settlement commit.
type ChangeMakerSvc interface {
	// MakeChange computes an exact denomination breakdown of targetAmount
	// from the on-hand inventory, or reports which denominations fell short.
	MakeChange(ctx context.Context, targetAmount decimal.Decimal, inventory domain.DenominationInventory) ([]domain.DenominationEntry, error)

	// RecordDeposit validates cash-received entries against an expected
	// total and returns a new inventory with the deposit applied.
	RecordDeposit(ctx context.Context, entries []domain.DenominationEntry, expectedTotal decimal.Decimal, inventory domain.DenominationInventory) (domain.DenominationInventory, error)
}

// ChangeMakerSvcFacade is the change-making engine as handlers consume it.
// Kept as a facade so a bounded-search variant can replace the greedy engine
// without touching callers.
type ChangeMakerSvcFacade interface {
	ChangeMakerSvc
}

// BatchCommissionInput is one payment in a batch commission computation.
type BatchCommissionInput struct {
	PaymentAmount       decimal.Decimal
	Config              domain.ServiceCommissionConfig
	HasFeeWaiverAccount bool
}

// CommissionSvc defines the commission engine.
type CommissionSvc interface {
	// ComputeCommission applies the configured rule to one payment.
	ComputeCommission(ctx context.Context, paymentAmount decimal.Decimal, config domain.ServiceCommissionConfig, hasFeeWaiverAccount bool) (*domain.CommissionResult, error)

	// ValidateCommission sanity-checks a computed result against the
	// allowed rate cap. Run once per config load, not per transaction.
	ValidateCommission(ctx context.Context, result domain.CommissionResult, maxAllowedRate decimal.Decimal) error

	// ComputeBatchCommissions maps ComputeCommission across payments and
	// aggregates totals plus the average effective rate.
	ComputeBatchCommissions(ctx context.Context, payments []BatchCommissionInput) (*domain.BatchCommissionResult, error)
}

// CommissionSvcFacade combines all commission service interfaces.
type CommissionSvcFacade interface {
	CommissionSvc
}

// CreditLimitSvc defines the credit/daily-limit validator. It keeps no
// memory of past calls; the orchestrator supplies up-to-date usage figures
// from the ledger before each call.
type CreditLimitSvc interface {
	CheckLimit(ctx context.Context, totalCreditUsed, creditLimit, dailyUsed, dailyLimit, requestedAmount decimal.Decimal) domain.CreditLimitStatus
}

// CreditLimitSvcFacade combines all credit limit service interfaces.
type CreditLimitSvcFacade interface {
	CreditLimitSvc
}

// ReconciliationSvc defines the reconciliation matcher and its batch runs.
type ReconciliationSvc interface {
	// Match classifies internal records against external feed entries,
	// returning the records plus the count of malformed references skipped.
	Match(ctx context.Context, internalRecords []domain.PaymentRecord, externalEntries []domain.ExternalSettlementEntry) ([]domain.ReconciliationRecord, int, error)

	// Summarize aggregates a record set.
	Summarize(records []domain.ReconciliationRecord) domain.ReconciliationSummary

	// RunReconciliation ingests one feed, matches it against internal
	// payments for the period and persists the run.
	RunReconciliation(ctx context.Context, feedName string, feed io.Reader, periodStart, periodEnd time.Time, runBy string) (*domain.ReconciliationRun, error)

	// GetRun retrieves a persisted run with its summary.
	GetRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error)

	// ListRunRecords retrieves the records one run produced.
	ListRunRecords(ctx context.Context, runID string) ([]domain.ReconciliationRecord, error)
}

// ReconciliationSvcFacade combines all reconciliation service interfaces.
type ReconciliationSvcFacade interface {
	ReconciliationSvc
}

// SettlementSvc is the orchestrator sequencing commission, limit check and
// change making for one transaction, then committing atomically.
type SettlementSvc interface {
	// ProcessCashSettlement runs the full settlement for one payment.
	ProcessCashSettlement(ctx context.Context, req dto.ProcessSettlementRequest, cashierID string) (*domain.SettlementResult, error)

	// QuoteChange computes a change breakdown against a drawer's current
	// inventory without committing anything.
	QuoteChange(ctx context.Context, drawerID string, amount decimal.Decimal) ([]domain.DenominationEntry, error)

	// DepositFloat applies a validated denomination deposit to a drawer,
	// used for opening-float seeding and change top-ups.
	DepositFloat(ctx context.Context, req dto.DepositFloatRequest, cashierID string) (domain.DenominationInventory, error)

	// GetInventory retrieves a drawer's current denomination inventory.
	GetInventory(ctx context.Context, drawerID string) (domain.DenominationInventory, error)

	// QuoteCommission computes the commission for one payment using the
	// catalog's configuration, without settling anything.
	QuoteCommission(ctx context.Context, req dto.QuoteCommissionRequest) (*domain.CommissionResult, error)

	// QuoteBatchCommissions computes commissions across several payments.
	QuoteBatchCommissions(ctx context.Context, req dto.BatchCommissionRequest) (*domain.BatchCommissionResult, error)
}

// SettlementSvcFacade combines all settlement service interfaces.
type SettlementSvcFacade interface {
	SettlementSvc
}
