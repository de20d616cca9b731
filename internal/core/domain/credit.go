package domain

import "github.com/shopspring/decimal"

// CreditLimitStatus is the outcome of a credit/daily-limit check for a
// limited-line payment product. Derived fields are always recomputed from
// the inputs, never persisted.
type CreditLimitStatus struct {
	CreditLimit         decimal.Decimal `json:"creditLimit"`
	TotalCreditUsed     decimal.Decimal `json:"totalCreditUsed"`
	DailyLimit          decimal.Decimal `json:"dailyLimit"`
	DailyUsed           decimal.Decimal `json:"dailyUsed"`
	RemainingCredit     decimal.Decimal `json:"remainingCredit"`     // CreditLimit − TotalCreditUsed
	RemainingDailyLimit decimal.Decimal `json:"remainingDailyLimit"` // DailyLimit − DailyUsed
	CanProcess          bool            `json:"canProcess"`
	// Message names the breached ceiling when CanProcess is false; empty
	// otherwise. The total-credit message takes precedence when both
	// ceilings are breached.
	Message string `json:"message,omitempty"`
}
