package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// InsufficientInventoryError reports that exact change could not be made,
// naming the denominations that ran out so the cashier can request a float
// top-up instead of seeing a generic failure.
type InsufficientInventoryError struct {
	Remaining decimal.Decimal
	Exhausted []decimal.Decimal
}

func (e *InsufficientInventoryError) Error() string {
	names := make([]string, 0, len(e.Exhausted))
	for _, d := range e.Exhausted {
		names = append(names, d.String())
	}
	return fmt.Sprintf("insufficient drawer inventory: %s remaining after exhausting denominations [%s]", e.Remaining.String(), strings.Join(names, ", "))
}

func (e *InsufficientInventoryError) Unwrap() error {
	return apperrors.ErrInsufficientInventory
}

// changeMakingService computes exact denomination breakdowns against a
// drawer inventory. It is pure: it never mutates the inventory it is given.
type changeMakingService struct {
	catalog domain.DenominationCatalog
}

// NewChangeMakingService creates the change-making engine for one
// denomination catalog.
func NewChangeMakingService(catalog domain.DenominationCatalog) portssvc.ChangeMakerSvcFacade {
	return &changeMakingService{catalog: catalog}
}

// MakeChange computes a breakdown of targetAmount from the on-hand
// inventory using a greedy descent over denominations sorted descending.
// The ladder in use is canonical, so greedy finds an exact breakdown
// whenever no individual denomination shortage blocks it; when a shortage
// does block it the error conservatively names the exhausted denominations
// rather than searching for an alternate split.
func (s *changeMakingService) MakeChange(ctx context.Context, targetAmount decimal.Decimal, inventory domain.DenominationInventory) ([]domain.DenominationEntry, error) {
	if targetAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: change amount %s must be positive", apperrors.ErrInvalidAmount, targetAmount.String())
	}
	smallest := s.catalog.Smallest()
	if !targetAmount.Mod(smallest).IsZero() {
		return nil, fmt.Errorf("%w: change amount %s is not a multiple of the smallest denomination %s", apperrors.ErrInvalidAmount, targetAmount.String(), smallest.String())
	}

	remaining := targetAmount
	breakdown := make([]domain.DenominationEntry, 0, len(s.catalog.Values()))
	var exhausted []decimal.Decimal

	for _, denom := range s.catalog.Values() {
		if remaining.IsZero() {
			break
		}
		wanted := remaining.Div(denom).Floor().IntPart()
		if wanted == 0 {
			continue
		}
		available := inventory.Quantity(denom)
		take := wanted
		if available < wanted {
			take = available
			exhausted = append(exhausted, denom)
		}
		if take == 0 {
			continue
		}
		entry := domain.NewDenominationEntry(denom, take)
		breakdown = append(breakdown, entry)
		remaining = remaining.Sub(entry.Amount)
	}

	if remaining.GreaterThan(decimal.Zero) {
		return nil, &InsufficientInventoryError{Remaining: remaining, Exhausted: exhausted}
	}
	return breakdown, nil
}

// RecordDeposit validates the declared cash-received entries against the
// expected total and returns a new inventory with the deposit applied. The
// input inventory is left untouched; the caller commits the returned copy
// atomically alongside the rest of the transaction.
func (s *changeMakingService) RecordDeposit(ctx context.Context, entries []domain.DenominationEntry, expectedTotal decimal.Decimal, inventory domain.DenominationInventory) (domain.DenominationInventory, error) {
	total := decimal.Zero
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if !s.catalog.Contains(e.Denomination) {
			return nil, fmt.Errorf("%w: %s is not a legal denomination", apperrors.ErrValidation, e.Denomination.String())
		}
		total = total.Add(e.Amount)
	}
	if !total.Equal(expectedTotal) {
		return nil, fmt.Errorf("%w: entries sum to %s, expected %s", apperrors.ErrAmountMismatch, total.String(), expectedTotal.String())
	}

	updated := inventory.Clone()
	for _, e := range entries {
		updated.Deposit(e.Denomination, e.Quantity)
	}
	return updated, nil
}
