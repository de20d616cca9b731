package repositories

import (
	"context"
	"time"

	"github.com/coopbank/cashdesk_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PaymentReader defines read operations for recorded payments and the
// credit-usage ledger of limited-line services.
type PaymentReader interface {
	// FindPaymentByReference retrieves a payment by its biller reference.
	FindPaymentByReference(ctx context.Context, referenceNumber string) (*domain.PaymentRecord, error)

	// ListPaymentsByDateRange retrieves the payments recorded within a
	// period, used by reconciliation runs.
	ListPaymentsByDateRange(ctx context.Context, from, to time.Time) ([]domain.PaymentRecord, error)

	// FindCreditUsage retrieves the cumulative and per-day usage for a
	// limited-line service. Day is truncated to the calendar date.
	FindCreditUsage(ctx context.Context, serviceCode string, day time.Time) (*domain.CreditUsage, error)
}

// PaymentTransactionSupport defines the writes that participate in a
// settlement's all-or-nothing commit.
type PaymentTransactionSupport interface {
	// SavePaymentInTx persists a payment within a transaction.
	SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.PaymentRecord) error

	// AddCreditUsageInTx records a limited-line usage delta within a
	// transaction, incrementing both the total and the day's usage.
	AddCreditUsageInTx(ctx context.Context, tx pgx.Tx, serviceCode string, amount decimal.Decimal, day time.Time) error
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentTransactionSupport
}

// PaymentRepositoryWithTx extends PaymentRepositoryFacade with transaction
// capabilities.
type PaymentRepositoryWithTx interface {
	PaymentRepositoryFacade
	TransactionManager
}
