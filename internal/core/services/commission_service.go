package services

import (
	"context"
	"fmt"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portsrepo "github.com/coopbank/cashdesk_app/internal/core/ports/repositories"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// currencyScale is the display precision for monetary outputs. Each field of
// a commission result is rounded independently (half away from zero) so the
// breakdown a cashier sees sums consistently within rounding tolerance.
const currencyScale = 2

var oneHundred = decimal.NewFromInt(100)

type commissionService struct{}

// NewCommissionService creates the stateless commission engine.
func NewCommissionService() portssvc.CommissionSvcFacade {
	return &commissionService{}
}

// ComputeCommission applies the configured commission rule to a payment.
// A fee-waiver account short-circuits to a fully waived, zero-commission
// result before any other rule is evaluated.
func (s *commissionService) ComputeCommission(ctx context.Context, paymentAmount decimal.Decimal, config domain.ServiceCommissionConfig, hasFeeWaiverAccount bool) (*domain.CommissionResult, error) {
	if paymentAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount %s must be positive", apperrors.ErrInvalidAmount, paymentAmount.String())
	}

	base := paymentAmount.Round(currencyScale)
	if hasFeeWaiverAccount {
		return &domain.CommissionResult{
			CommissionAmount: decimal.Zero,
			CommissionRate:   decimal.Zero,
			FixedAmount:      decimal.Zero,
			TotalPayable:     base,
			Breakdown: domain.CommissionBreakdown{
				BaseAmount:      base,
				TotalCommission: decimal.Zero,
				Waived:          true,
				WaiverReason:    "fee waiver account",
			},
		}, nil
	}

	var percentagePart, fixedPart decimal.Decimal
	switch config.CommissionType {
	case domain.CommissionPercentage, domain.CommissionTiered:
		// Tiered uses the single rate the catalog resolved for this tier.
		percentagePart = paymentAmount.Mul(config.CommissionRate)
	case domain.CommissionFixed:
		fixedPart = config.FixedCommission
	case domain.CommissionCombined:
		percentagePart = paymentAmount.Mul(config.CommissionRate)
		fixedPart = config.FixedCommission
	default:
		return nil, fmt.Errorf("%w: unknown commission type %q", apperrors.ErrConfiguration, config.CommissionType)
	}

	commission := percentagePart.Add(fixedPart)

	// Clamp after the type formula, before rounding.
	if config.MinCommission != nil && commission.LessThan(*config.MinCommission) {
		commission = *config.MinCommission
	}
	if config.MaxCommission != nil && commission.GreaterThan(*config.MaxCommission) {
		commission = *config.MaxCommission
	}

	commissionRounded := commission.Round(currencyScale)
	return &domain.CommissionResult{
		CommissionAmount: commissionRounded,
		CommissionRate:   config.CommissionRate,
		FixedAmount:      fixedPart.Round(currencyScale),
		TotalPayable:     paymentAmount.Add(commission).Round(currencyScale),
		Breakdown: domain.CommissionBreakdown{
			BaseAmount:           base,
			PercentageCommission: percentagePart.Round(currencyScale),
			FixedCommission:      fixedPart.Round(currencyScale),
			TotalCommission:      commissionRounded,
		},
	}, nil
}

// ValidateCommission is a sanity guard on configuration data, run once per
// config load rather than per transaction.
func (s *commissionService) ValidateCommission(ctx context.Context, result domain.CommissionResult, maxAllowedRate decimal.Decimal) error {
	if result.CommissionRate.GreaterThan(maxAllowedRate) {
		return fmt.Errorf("%w: commission rate %s exceeds allowed maximum %s", apperrors.ErrConfiguration, result.CommissionRate.String(), maxAllowedRate.String())
	}
	if result.CommissionAmount.IsNegative() {
		return fmt.Errorf("%w: commission amount %s is negative", apperrors.ErrConfiguration, result.CommissionAmount.String())
	}
	if result.TotalPayable.LessThan(result.Breakdown.BaseAmount) {
		return fmt.Errorf("%w: total payable %s is below the base amount %s", apperrors.ErrConfiguration, result.TotalPayable.String(), result.Breakdown.BaseAmount.String())
	}
	return nil
}

// catalogCheckAmount is the representative payment used to exercise each
// catalog rule during validation. The rate and sign checks do not depend on
// the specific value.
var catalogCheckAmount = decimal.NewFromInt(100)

// ValidateServiceCatalog runs the configuration sanity guard over every
// service in the catalog. Called once at boot so a bad catalog row stops the
// process before anything settles against that rule.
func ValidateServiceCatalog(ctx context.Context, catalogRepo portsrepo.ServiceCatalogRepository, commission portssvc.CommissionSvcFacade, maxAllowedRate decimal.Decimal) error {
	configs, err := catalogRepo.ListServiceConfigs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list service catalog: %w", err)
	}
	for _, svc := range configs {
		result, err := commission.ComputeCommission(ctx, catalogCheckAmount, svc.Commission, false)
		if err != nil {
			return fmt.Errorf("service %s has an unusable commission rule: %w", svc.ServiceCode, err)
		}
		if err := commission.ValidateCommission(ctx, *result, maxAllowedRate); err != nil {
			return fmt.Errorf("service %s: %w", svc.ServiceCode, err)
		}
	}
	return nil
}

// ComputeBatchCommissions maps ComputeCommission across a list of payments
// and aggregates totals plus the average effective rate.
func (s *commissionService) ComputeBatchCommissions(ctx context.Context, payments []portssvc.BatchCommissionInput) (*domain.BatchCommissionResult, error) {
	batch := &domain.BatchCommissionResult{
		Results:          make([]domain.CommissionResult, 0, len(payments)),
		TotalPayments:    decimal.Zero,
		TotalCommissions: decimal.Zero,
		TotalPayable:     decimal.Zero,
		AverageRatePct:   decimal.Zero,
	}
	for i, p := range payments {
		result, err := s.ComputeCommission(ctx, p.PaymentAmount, p.Config, p.HasFeeWaiverAccount)
		if err != nil {
			return nil, fmt.Errorf("failed to compute commission for payment %d: %w", i, err)
		}
		batch.Results = append(batch.Results, *result)
		batch.TotalPayments = batch.TotalPayments.Add(result.Breakdown.BaseAmount)
		batch.TotalCommissions = batch.TotalCommissions.Add(result.CommissionAmount)
		batch.TotalPayable = batch.TotalPayable.Add(result.TotalPayable)
	}
	if batch.TotalPayments.GreaterThan(decimal.Zero) {
		batch.AverageRatePct = batch.TotalCommissions.Div(batch.TotalPayments).Mul(oneHundred).Round(currencyScale)
	}
	return batch, nil
}
