package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portsrepo "github.com/coopbank/cashdesk_app/internal/core/ports/repositories"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/coopbank/cashdesk_app/internal/dto"
	"github.com/coopbank/cashdesk_app/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LimitExceededError carries the full limit status so the terminal can tell
// the cashier which ceiling was breached and by how much.
type LimitExceededError struct {
	Status domain.CreditLimitStatus
}

func (e *LimitExceededError) Error() string {
	return e.Status.Message
}

func (e *LimitExceededError) Unwrap() error {
	return apperrors.ErrLimitExceeded
}

// settlementService sequences commission -> limit check -> change making for
// one transaction and commits every mutation in a single database
// transaction. The engines it calls are pure, so an error at any step leaves
// the drawer and the ledger untouched.
type settlementService struct {
	drawerRepo  portsrepo.DrawerRepositoryWithTx
	paymentRepo portsrepo.PaymentRepositoryFacade
	catalogRepo portsrepo.ServiceCatalogRepository
	changeMaker portssvc.ChangeMakerSvcFacade
	commission  portssvc.CommissionSvcFacade
	creditLimit portssvc.CreditLimitSvcFacade
}

// NewSettlementService creates the settlement orchestrator.
func NewSettlementService(
	drawerRepo portsrepo.DrawerRepositoryWithTx,
	paymentRepo portsrepo.PaymentRepositoryFacade,
	catalogRepo portsrepo.ServiceCatalogRepository,
	changeMaker portssvc.ChangeMakerSvcFacade,
	commission portssvc.CommissionSvcFacade,
	creditLimit portssvc.CreditLimitSvcFacade,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		drawerRepo:  drawerRepo,
		paymentRepo: paymentRepo,
		catalogRepo: catalogRepo,
		changeMaker: changeMaker,
		commission:  commission,
		creditLimit: creditLimit,
	}
}

// ProcessCashSettlement runs the full settlement for one cash payment.
// Commission and limit checks happen before any mutation; the drawer delta,
// the payment row and the credit-usage delta then commit atomically or not
// at all.
func (s *settlementService) ProcessCashSettlement(ctx context.Context, req dto.ProcessSettlementRequest, cashierID string) (*domain.SettlementResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	serviceCfg, err := s.catalogRepo.FindServiceConfig(ctx, req.ServiceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load service config for %s: %w", req.ServiceCode, err)
	}

	commissionResult, err := s.commission.ComputeCommission(ctx, req.PaymentAmount, serviceCfg.Commission, req.HasFeeWaiverAccount)
	if err != nil {
		return nil, fmt.Errorf("commission computation failed: %w", err)
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	var limitStatus *domain.CreditLimitStatus
	if serviceCfg.LimitedLine {
		usage, err := s.paymentRepo.FindCreditUsage(ctx, req.ServiceCode, day)
		if err != nil {
			return nil, fmt.Errorf("failed to load credit usage for %s: %w", req.ServiceCode, err)
		}
		status := s.creditLimit.CheckLimit(ctx, usage.TotalCreditUsed, serviceCfg.CreditLimit, usage.DailyUsed, serviceCfg.DailyLimit, req.PaymentAmount)
		limitStatus = &status
		if !status.CanProcess {
			logger.Warn("Settlement rejected by limit check",
				slog.String("service_code", req.ServiceCode),
				slog.String("reason", status.Message))
			return nil, &LimitExceededError{Status: status}
		}
	}

	cashReceived := dto.ToDenominationEntries(req.CashReceived)
	cashTotal := domain.EntriesTotal(cashReceived)
	if cashTotal.LessThan(commissionResult.TotalPayable) {
		return nil, fmt.Errorf("%w: cash received %s is below total payable %s", apperrors.ErrInvalidAmount, cashTotal.String(), commissionResult.TotalPayable.String())
	}
	changeDue := cashTotal.Sub(commissionResult.TotalPayable)

	tx, err := s.drawerRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer func() {
		// Rollback is a no-op after a successful commit.
		_ = s.drawerRepo.Rollback(ctx, tx)
	}()

	inventory, err := s.drawerRepo.FindInventoryForUpdate(ctx, tx, req.DrawerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock drawer %s inventory: %w", req.DrawerID, err)
	}

	// Validate the counted cash and stage the deposit; change is then made
	// from the drawer as it stands after the cash goes in.
	deposited, err := s.changeMaker.RecordDeposit(ctx, cashReceived, cashTotal, inventory)
	if err != nil {
		return nil, err
	}

	var changeBreakdown []domain.DenominationEntry
	if changeDue.GreaterThan(decimal.Zero) {
		changeBreakdown, err = s.changeMaker.MakeChange(ctx, changeDue, deposited)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidAmount) {
				// A payable total need not land on the ladder: 2% of 1015
				// gives 1035.30 against a 0.50 smallest note.
				return nil, fmt.Errorf("change of %s on total payable %s cannot be paid out in cash denominations: %w", changeDue.String(), commissionResult.TotalPayable.String(), err)
			}
			return nil, err
		}
	}

	deltas := make(map[string]int64)
	for _, e := range cashReceived {
		deltas[e.Denomination.String()] += e.Quantity
	}
	for _, e := range changeBreakdown {
		deltas[e.Denomination.String()] -= e.Quantity
	}

	now := time.Now().UTC()
	if err := s.drawerRepo.ApplyInventoryDeltaInTx(ctx, tx, req.DrawerID, deltas, cashierID, now); err != nil {
		return nil, fmt.Errorf("failed to apply drawer delta: %w", err)
	}

	payment := domain.PaymentRecord{
		TransactionID:    uuid.NewString(),
		ReferenceNumber:  req.ReferenceNumber,
		ServiceCode:      req.ServiceCode,
		PaymentAmount:    req.PaymentAmount,
		CommissionAmount: commissionResult.CommissionAmount,
		TotalPayable:     commissionResult.TotalPayable,
		TransactionDate:  now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     cashierID,
			LastUpdatedAt: now,
			LastUpdatedBy: cashierID,
		},
	}
	if err := s.paymentRepo.SavePaymentInTx(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	if serviceCfg.LimitedLine {
		if err := s.paymentRepo.AddCreditUsageInTx(ctx, tx, req.ServiceCode, req.PaymentAmount, day); err != nil {
			return nil, fmt.Errorf("failed to record credit usage: %w", err)
		}
	}

	if err := s.drawerRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	logger.Info("Settlement committed",
		slog.String("transaction_id", payment.TransactionID),
		slog.String("service_code", req.ServiceCode),
		slog.String("total_payable", commissionResult.TotalPayable.String()),
		slog.String("change_due", changeDue.String()))

	return &domain.SettlementResult{
		TransactionID:   payment.TransactionID,
		ReferenceNumber: req.ReferenceNumber,
		ServiceCode:     req.ServiceCode,
		Commission:      *commissionResult,
		LimitStatus:     limitStatus,
		CashReceived:    cashReceived,
		ChangeBreakdown: changeBreakdown,
		ChangeDue:       changeDue,
		TransactionDate: now,
	}, nil
}

// QuoteChange computes a change breakdown against the drawer's current
// inventory without committing anything. The engine's purity makes this a
// free dry run for the terminal UI.
func (s *settlementService) QuoteChange(ctx context.Context, drawerID string, amount decimal.Decimal) ([]domain.DenominationEntry, error) {
	inventory, err := s.drawerRepo.FindInventory(ctx, drawerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load drawer %s inventory: %w", drawerID, err)
	}
	return s.changeMaker.MakeChange(ctx, amount, inventory)
}

// GetInventory retrieves a drawer's current denomination inventory.
func (s *settlementService) GetInventory(ctx context.Context, drawerID string) (domain.DenominationInventory, error) {
	inventory, err := s.drawerRepo.FindInventory(ctx, drawerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load drawer %s inventory: %w", drawerID, err)
	}
	return inventory, nil
}

// QuoteCommission computes the commission for one payment using the
// catalog's configuration, without settling anything.
func (s *settlementService) QuoteCommission(ctx context.Context, req dto.QuoteCommissionRequest) (*domain.CommissionResult, error) {
	serviceCfg, err := s.catalogRepo.FindServiceConfig(ctx, req.ServiceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load service config for %s: %w", req.ServiceCode, err)
	}
	return s.commission.ComputeCommission(ctx, req.PaymentAmount, serviceCfg.Commission, req.HasFeeWaiverAccount)
}

// QuoteBatchCommissions computes commissions across several payments,
// resolving each payment's configuration from the catalog.
func (s *settlementService) QuoteBatchCommissions(ctx context.Context, req dto.BatchCommissionRequest) (*domain.BatchCommissionResult, error) {
	inputs := make([]portssvc.BatchCommissionInput, len(req.Payments))
	for i, p := range req.Payments {
		serviceCfg, err := s.catalogRepo.FindServiceConfig(ctx, p.ServiceCode)
		if err != nil {
			return nil, fmt.Errorf("failed to load service config for %s: %w", p.ServiceCode, err)
		}
		inputs[i] = portssvc.BatchCommissionInput{
			PaymentAmount:       p.PaymentAmount,
			Config:              serviceCfg.Commission,
			HasFeeWaiverAccount: p.HasFeeWaiverAccount,
		}
	}
	return s.commission.ComputeBatchCommissions(ctx, inputs)
}

// DepositFloat applies a validated denomination deposit to a drawer, used
// for opening-float seeding and change top-ups.
func (s *settlementService) DepositFloat(ctx context.Context, req dto.DepositFloatRequest, cashierID string) (domain.DenominationInventory, error) {
	inventory, err := s.drawerRepo.FindInventory(ctx, req.DrawerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load drawer %s inventory: %w", req.DrawerID, err)
	}

	updated, err := s.changeMaker.RecordDeposit(ctx, dto.ToDenominationEntries(req.Entries), req.ExpectedTotal, inventory)
	if err != nil {
		return nil, err
	}

	if err := s.drawerRepo.SaveInventory(ctx, req.DrawerID, updated, cashierID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to save drawer %s inventory: %w", req.DrawerID, err)
	}
	return updated, nil
}
