package dto

import (
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// QuoteCommissionRequest asks for a commission computation without settling.
type QuoteCommissionRequest struct {
	ServiceCode         string          `json:"serviceCode" binding:"required"`
	PaymentAmount       decimal.Decimal `json:"paymentAmount" binding:"required"`
	HasFeeWaiverAccount bool            `json:"hasFeeWaiverAccount"`
}

// BatchCommissionPayment is one payment in a batch quote.
type BatchCommissionPayment struct {
	ServiceCode         string          `json:"serviceCode" binding:"required"`
	PaymentAmount       decimal.Decimal `json:"paymentAmount" binding:"required"`
	HasFeeWaiverAccount bool            `json:"hasFeeWaiverAccount"`
}

// BatchCommissionRequest asks for commissions across several payments.
type BatchCommissionRequest struct {
	Payments []BatchCommissionPayment `json:"payments" binding:"required,min=1,dive"`
}

// CommissionResponse is one commission computation for the wire.
type CommissionResponse struct {
	CommissionAmount decimal.Decimal            `json:"commissionAmount"`
	CommissionRate   decimal.Decimal            `json:"commissionRate"`
	FixedAmount      decimal.Decimal            `json:"fixedAmount"`
	TotalPayable     decimal.Decimal            `json:"totalPayable"`
	Breakdown        domain.CommissionBreakdown `json:"breakdown"`
}

// BatchCommissionResponse aggregates a batch quote.
type BatchCommissionResponse struct {
	Results          []CommissionResponse `json:"results"`
	TotalPayments    decimal.Decimal      `json:"totalPayments"`
	TotalCommissions decimal.Decimal      `json:"totalCommissions"`
	TotalPayable     decimal.Decimal      `json:"totalPayable"`
	AverageRatePct   decimal.Decimal      `json:"averageRatePct"`
}

// ToCommissionResponse converts a domain commission result for the wire.
func ToCommissionResponse(result *domain.CommissionResult) CommissionResponse {
	return CommissionResponse{
		CommissionAmount: result.CommissionAmount,
		CommissionRate:   result.CommissionRate,
		FixedAmount:      result.FixedAmount,
		TotalPayable:     result.TotalPayable,
		Breakdown:        result.Breakdown,
	}
}

// ToBatchCommissionResponse converts a domain batch result for the wire.
func ToBatchCommissionResponse(batch *domain.BatchCommissionResult) BatchCommissionResponse {
	results := make([]CommissionResponse, len(batch.Results))
	for i := range batch.Results {
		results[i] = ToCommissionResponse(&batch.Results[i])
	}
	return BatchCommissionResponse{
		Results:          results,
		TotalPayments:    batch.TotalPayments,
		TotalCommissions: batch.TotalCommissions,
		TotalPayable:     batch.TotalPayable,
		AverageRatePct:   batch.AverageRatePct,
	}
}
