package services

import (
	"context"
	"fmt"

	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

type creditLimitService struct{}

// NewCreditLimitService creates the stateless credit/daily-limit validator.
// The caller supplies up-to-date usage figures from the ledger on every call
// and records the requested amount only after the whole transaction commits.
func NewCreditLimitService() portssvc.CreditLimitSvcFacade {
	return &creditLimitService{}
}

// CheckLimit evaluates both ceilings boundary-inclusive: a request landing
// exactly on a ceiling is accepted, one cent over is rejected. When both
// ceilings are breached the total-credit message takes precedence.
func (s *creditLimitService) CheckLimit(ctx context.Context, totalCreditUsed, creditLimit, dailyUsed, dailyLimit, requestedAmount decimal.Decimal) domain.CreditLimitStatus {
	status := domain.CreditLimitStatus{
		CreditLimit:         creditLimit,
		TotalCreditUsed:     totalCreditUsed,
		DailyLimit:          dailyLimit,
		DailyUsed:           dailyUsed,
		RemainingCredit:     creditLimit.Sub(totalCreditUsed),
		RemainingDailyLimit: dailyLimit.Sub(dailyUsed),
	}

	withinCredit := status.RemainingCredit.GreaterThanOrEqual(requestedAmount)
	withinDaily := dailyUsed.Add(requestedAmount).LessThanOrEqual(dailyLimit)
	status.CanProcess = withinCredit && withinDaily

	if !withinCredit {
		status.Message = fmt.Sprintf("credit limit exceeded: %s remaining of %s, requested %s", status.RemainingCredit.String(), creditLimit.String(), requestedAmount.String())
	} else if !withinDaily {
		status.Message = fmt.Sprintf("daily limit exceeded: %s remaining of %s, requested %s", status.RemainingDailyLimit.String(), dailyLimit.String(), requestedAmount.String())
	}
	return status
}
