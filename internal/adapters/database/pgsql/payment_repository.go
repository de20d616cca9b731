package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portsrepo "github.com/coopbank/cashdesk_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPgxPaymentRepository creates a new repository for payment records and
// the credit-usage ledger.
func NewPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryWithTx {
	return &PgxPaymentRepository{pool: pool}
}

// Begin starts a new database transaction.
func (r *PgxPaymentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Commit commits a transaction.
func (r *PgxPaymentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

// Rollback rolls back a transaction. Safe to call after commit.
func (r *PgxPaymentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

const paymentColumns = `transaction_id, reference_number, service_code, payment_amount, commission_amount, total_payable, transaction_date, created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (*domain.PaymentRecord, error) {
	var p domain.PaymentRecord
	err := row.Scan(
		&p.TransactionID,
		&p.ReferenceNumber,
		&p.ServiceCode,
		&p.PaymentAmount,
		&p.CommissionAmount,
		&p.TotalPayable,
		&p.TransactionDate,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePaymentInTx persists a payment within the settlement transaction.
func (r *PgxPaymentRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.PaymentRecord) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		payment.TransactionID,
		payment.ReferenceNumber,
		payment.ServiceCode,
		payment.PaymentAmount,
		payment.CommissionAmount,
		payment.TotalPayable,
		payment.TransactionDate,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment %s: %w", payment.TransactionID, err)
	}
	return nil
}

// FindPaymentByReference retrieves a payment by its biller reference.
func (r *PgxPaymentRepository) FindPaymentByReference(ctx context.Context, referenceNumber string) (*domain.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE reference_number = $1;
	`
	payment, err := scanPayment(r.pool.QueryRow(ctx, query, referenceNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment by reference %s: %w", referenceNumber, err)
	}
	return payment, nil
}

// ListPaymentsByDateRange retrieves the payments recorded within a period.
func (r *PgxPaymentRepository) ListPaymentsByDateRange(ctx context.Context, from, to time.Time) ([]domain.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE transaction_date >= $1 AND transaction_date < $2
		ORDER BY transaction_date;
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PaymentRecord, error) {
		p, err := scanPayment(row)
		if err != nil {
			return domain.PaymentRecord{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect payment rows: %w", err)
	}
	return payments, nil
}

// FindCreditUsage retrieves the cumulative and per-day usage for a
// limited-line service. A service with no usage rows yet reads as zero.
func (r *PgxPaymentRepository) FindCreditUsage(ctx context.Context, serviceCode string, day time.Time) (*domain.CreditUsage, error) {
	query := `
		SELECT
			COALESCE(SUM(amount), 0) AS total_used,
			COALESCE(SUM(amount) FILTER (WHERE usage_day = $2), 0) AS daily_used
		FROM credit_usage
		WHERE service_code = $1;
	`
	usage := domain.CreditUsage{ServiceCode: serviceCode, Day: day}
	err := r.pool.QueryRow(ctx, query, serviceCode, day).Scan(&usage.TotalCreditUsed, &usage.DailyUsed)
	if err != nil {
		return nil, fmt.Errorf("failed to find credit usage for %s: %w", serviceCode, err)
	}
	return &usage, nil
}

// AddCreditUsageInTx records a limited-line usage delta within the
// settlement transaction.
func (r *PgxPaymentRepository) AddCreditUsageInTx(ctx context.Context, tx pgx.Tx, serviceCode string, amount decimal.Decimal, day time.Time) error {
	query := `
		INSERT INTO credit_usage (service_code, usage_day, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (service_code, usage_day) DO UPDATE SET
			amount = credit_usage.amount + EXCLUDED.amount;
	`
	if _, err := tx.Exec(ctx, query, serviceCode, day, amount); err != nil {
		return fmt.Errorf("failed to add credit usage for %s: %w", serviceCode, err)
	}
	return nil
}
