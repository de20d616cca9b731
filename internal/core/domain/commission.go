package domain

import "github.com/shopspring/decimal"

// CommissionType selects the formula used to compute a service commission.
type CommissionType string

const (
	CommissionPercentage CommissionType = "PERCENTAGE"
	CommissionFixed      CommissionType = "FIXED"
	CommissionCombined   CommissionType = "COMBINED"
	// CommissionTiered applies the single rate supplied by the catalog; the
	// tier-to-rate resolution itself lives in the service catalog, not here.
	CommissionTiered CommissionType = "TIERED"
)

// ServiceCommissionConfig is the commission rule for one service, supplied by
// the service catalog. Immutable per computation call.
type ServiceCommissionConfig struct {
	CommissionType  CommissionType   `json:"commissionType"`
	CommissionRate  decimal.Decimal  `json:"commissionRate"`            // fraction, 0..1
	FixedCommission decimal.Decimal  `json:"fixedCommission"`           // 0 when unset
	MinCommission   *decimal.Decimal `json:"minCommission,omitempty"`   // clamp floor, optional
	MaxCommission   *decimal.Decimal `json:"maxCommission,omitempty"`   // clamp ceiling, optional
}

// CommissionBreakdown itemises how a commission was arrived at, for receipts
// and audit. Each monetary field is rounded independently.
type CommissionBreakdown struct {
	BaseAmount           decimal.Decimal `json:"baseAmount"`
	PercentageCommission decimal.Decimal `json:"percentageCommission"`
	FixedCommission      decimal.Decimal `json:"fixedCommission"`
	TotalCommission      decimal.Decimal `json:"totalCommission"`
	Waived               bool            `json:"waived"`
	WaiverReason         string          `json:"waiverReason,omitempty"`
}

// CommissionResult is the outcome of a single commission computation.
type CommissionResult struct {
	CommissionAmount decimal.Decimal     `json:"commissionAmount"`
	CommissionRate   decimal.Decimal     `json:"commissionRate"`
	FixedAmount      decimal.Decimal     `json:"fixedAmount"`
	TotalPayable     decimal.Decimal     `json:"totalPayable"` // BaseAmount + CommissionAmount
	Breakdown        CommissionBreakdown `json:"breakdown"`
}

// IsWaived reports whether the commission was waived outright.
func (r CommissionResult) IsWaived() bool {
	return r.Breakdown.Waived
}

// BatchCommissionResult aggregates per-payment commission results.
type BatchCommissionResult struct {
	Results          []CommissionResult `json:"results"`
	TotalPayments    decimal.Decimal    `json:"totalPayments"`
	TotalCommissions decimal.Decimal    `json:"totalCommissions"`
	TotalPayable     decimal.Decimal    `json:"totalPayable"`
	// AverageRatePct is TotalCommissions / TotalPayments × 100, zero when
	// there were no payments.
	AverageRatePct decimal.Decimal `json:"averageRatePct"`
}
