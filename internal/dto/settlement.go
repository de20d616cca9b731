package dto

import (
	"time"

	"github.com/coopbank/cashdesk_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DenominationEntryRequest is one counted stack of a single face value as
// entered by the cashier.
type DenominationEntryRequest struct {
	Denomination decimal.Decimal `json:"denomination" binding:"required"`
	Quantity     int64           `json:"quantity" binding:"required,gt=0"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// ProcessSettlementRequest carries everything needed to settle one cash
// payment at a terminal.
type ProcessSettlementRequest struct {
	DrawerID            string                     `json:"drawerID" binding:"required"`
	ServiceCode         string                     `json:"serviceCode" binding:"required"`
	ReferenceNumber     string                     `json:"referenceNumber" binding:"required"`
	PaymentAmount       decimal.Decimal            `json:"paymentAmount" binding:"required"`
	HasFeeWaiverAccount bool                       `json:"hasFeeWaiverAccount"`
	CashReceived        []DenominationEntryRequest `json:"cashReceived" binding:"required,min=1,dive"`
}

// DepositFloatRequest seeds or tops up a drawer's denomination inventory.
// ExpectedTotal guards against miscounted stacks.
type DepositFloatRequest struct {
	DrawerID      string                     `json:"drawerID" binding:"required"`
	Entries       []DenominationEntryRequest `json:"entries" binding:"required,min=1,dive"`
	ExpectedTotal decimal.Decimal            `json:"expectedTotal" binding:"required"`
}

// QuoteChangeRequest asks for a dry-run change breakdown.
type QuoteChangeRequest struct {
	DrawerID string          `json:"drawerID" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// DenominationEntryResponse mirrors one breakdown entry.
type DenominationEntryResponse struct {
	Denomination decimal.Decimal `json:"denomination"`
	Quantity     int64           `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
}

// SettlementResponse is the committed settlement as receipt emitters see it.
type SettlementResponse struct {
	TransactionID   string                      `json:"transactionID"`
	ReferenceNumber string                      `json:"referenceNumber"`
	ServiceCode     string                      `json:"serviceCode"`
	Commission      CommissionResponse          `json:"commission"`
	LimitStatus     *domain.CreditLimitStatus   `json:"limitStatus,omitempty"`
	CashReceived    []DenominationEntryResponse `json:"cashReceived"`
	ChangeBreakdown []DenominationEntryResponse `json:"changeBreakdown"`
	ChangeDue       decimal.Decimal             `json:"changeDue"`
	TransactionDate time.Time                   `json:"transactionDate"`
}

// ToDenominationEntries converts request entries to domain entries. Derived
// amounts are validated downstream, not trusted from the wire.
func ToDenominationEntries(reqs []DenominationEntryRequest) []domain.DenominationEntry {
	entries := make([]domain.DenominationEntry, len(reqs))
	for i, r := range reqs {
		entries[i] = domain.DenominationEntry{
			Denomination: r.Denomination,
			Quantity:     r.Quantity,
			Amount:       r.Amount,
		}
	}
	return entries
}

// ToDenominationEntryResponses converts domain entries for the wire.
func ToDenominationEntryResponses(entries []domain.DenominationEntry) []DenominationEntryResponse {
	responses := make([]DenominationEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = DenominationEntryResponse{
			Denomination: e.Denomination,
			Quantity:     e.Quantity,
			Amount:       e.Amount,
		}
	}
	return responses
}

// ToSettlementResponse converts a domain settlement result for the wire.
func ToSettlementResponse(result *domain.SettlementResult) SettlementResponse {
	return SettlementResponse{
		TransactionID:   result.TransactionID,
		ReferenceNumber: result.ReferenceNumber,
		ServiceCode:     result.ServiceCode,
		Commission:      ToCommissionResponse(&result.Commission),
		LimitStatus:     result.LimitStatus,
		CashReceived:    ToDenominationEntryResponses(result.CashReceived),
		ChangeBreakdown: ToDenominationEntryResponses(result.ChangeBreakdown),
		ChangeDue:       result.ChangeDue,
		TransactionDate: result.TransactionDate,
	}
}

// InventoryResponse is a drawer inventory as the terminal displays it.
type InventoryResponse struct {
	DrawerID string           `json:"drawerID"`
	Entries  map[string]int64 `json:"entries"` // face value -> quantity
	Total    decimal.Decimal  `json:"total"`
}

// ToInventoryResponse converts a drawer inventory for the wire.
func ToInventoryResponse(drawerID string, inventory domain.DenominationInventory) InventoryResponse {
	return InventoryResponse{
		DrawerID: drawerID,
		Entries:  inventory,
		Total:    inventory.Total(),
	}
}
