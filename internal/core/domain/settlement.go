package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceConfig is one payable service as the catalog describes it:
// commission rule plus, for limited-line products, the financed ceilings.
type ServiceConfig struct {
	ServiceCode string                  `json:"serviceCode"` // Primary Key
	Name        string                  `json:"name"`
	Commission  ServiceCommissionConfig `json:"commission"`
	// LimitedLine marks products backed by a financed credit facility,
	// which must pass the credit/daily-limit check before settlement.
	LimitedLine bool            `json:"limitedLine"`
	CreditLimit decimal.Decimal `json:"creditLimit"` // only meaningful when LimitedLine
	DailyLimit  decimal.Decimal `json:"dailyLimit"`  // only meaningful when LimitedLine
	AuditFields
}

// CreditUsage is the cumulative usage the ledger holds for one limited-line
// service: total across the credit line's lifetime and usage for one day.
type CreditUsage struct {
	ServiceCode     string          `json:"serviceCode"`
	TotalCreditUsed decimal.Decimal `json:"totalCreditUsed"`
	DailyUsed       decimal.Decimal `json:"dailyUsed"`
	Day             time.Time       `json:"day"` // calendar day DailyUsed belongs to
}

// SettlementResult is everything a committed cash transaction produced:
// the commission computation, the optional limit check, the cash taken in
// and the change handed back. Consumed by receipt and audit emitters.
type SettlementResult struct {
	TransactionID   string              `json:"transactionID"`
	ReferenceNumber string              `json:"referenceNumber"`
	ServiceCode     string              `json:"serviceCode"`
	Commission      CommissionResult    `json:"commission"`
	LimitStatus     *CreditLimitStatus  `json:"limitStatus,omitempty"` // nil for unlimited products
	CashReceived    []DenominationEntry `json:"cashReceived"`
	ChangeBreakdown []DenominationEntry `json:"changeBreakdown"`
	ChangeDue       decimal.Decimal     `json:"changeDue"`
	TransactionDate time.Time           `json:"transactionDate"`
}
