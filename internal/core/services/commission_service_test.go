package services_test

import (
	"context"
	"testing"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	"github.com/coopbank/cashdesk_app/internal/core/services"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestComputeCommission_Percentage(t *testing.T) {
	engine := services.NewCommissionService()
	ctx := context.Background()

	config := domain.ServiceCommissionConfig{
		CommissionType: domain.CommissionPercentage,
		CommissionRate: dec("0.02"),
	}

	result, err := engine.ComputeCommission(ctx, dec("1000"), config, false)
	require.NoError(t, err)
	assert.True(t, result.CommissionAmount.Equal(dec("20.00")), "got %s", result.CommissionAmount)
	assert.True(t, result.TotalPayable.Equal(dec("1020.00")), "got %s", result.TotalPayable)
	assert.True(t, result.Breakdown.BaseAmount.Equal(dec("1000")))
	assert.False(t, result.IsWaived())
}

func TestComputeCommission_Fixed(t *testing.T) {
	engine := services.NewCommissionService()
	ctx := context.Background()

	config := domain.ServiceCommissionConfig{
		CommissionType:  domain.CommissionFixed,
		FixedCommission: dec("15"),
	}

	result, err := engine.ComputeCommission(ctx, dec("250"), config, false)
	require.NoError(t, err)
	assert.True(t, result.CommissionAmount.Equal(dec("15.00")))
	assert.True(t, result.FixedAmount.Equal(dec("15.00")))
	assert.True(t, result.TotalPayable.Equal(dec("265.00")))
}

func TestComputeCommission_Combined(t *testing.T) {
	engine := services.NewCommissionService()
	ctx := context.Background()

	config := domain.ServiceCommissionConfig{
		CommissionType:  domain.CommissionCombined,
		CommissionRate:  dec("0.015"),
		FixedCommission: dec("5"),
	}

	result, err := engine.ComputeCommission(ctx, dec("1000"), config, false)
	require.NoError(t, err)
	assert.True(t, result.Breakdown.PercentageCommission.Equal(dec("15.00")))
	assert.True(t, result.Breakdown.FixedCommission.Equal(dec("5.00")))
	assert.True(t, result.CommissionAmount.Equal(dec("20.00")))
	assert.True(t, result.TotalPayable.Equal(dec("1020.00")))
}

func TestComputeCommission_WaiverShortCircuits(t *testing.T) {
	engine := services.NewCommissionService()
	ctx := context.Background()

	// Even a config with a minimum commission yields zero for waived accounts.
	config := domain.ServiceCommissionConfig{
		CommissionType: domain.CommissionPercentage,
		CommissionRate: dec("0.02"),
		MinCommission:  decPtr("10"),
	}

	result, err := engine.ComputeCommission(ctx, dec("1000"), config, true)
	require.NoError(t, err)
	assert.True(t, result.IsWaived())
	assert.True(t, result.CommissionAmount.IsZero())
	assert.True(t, result.TotalPayable.Equal(dec("1000.00")))
	assert.Equal(t, "fee waiver account", result.Breakdown.WaiverReason)
}

func TestComputeCommission_Clamping(t *testing.T) {
	engine := services.NewCommissionService()
	ctx := context.Background()

	tests := []struct {
		name       string
		amount     string
		config     domain.ServiceCommissionConfig
		commission string
		payable    string
	}{
		{
			name:   "minimum floor applies",
			amount: "100",
			config: domain.ServiceCommissionConfig{
				CommissionType: domain.CommissionPercentage,
				CommissionRate: dec("0.01"),
				MinCommission:  decPtr("5"),
			},
			commission: "5.00",
			payable:    "105.00",
		},
		{
			name:   "maximum ceiling applies",
			amount: "100000",
			config: domain.ServiceCommissionConfig{
				CommissionType: domain.CommissionPercentage,
				CommissionRate: dec("0.02"),
				MaxCommission:  decPtr("500"),
			},
			commission: "500.00",
			payable:    "100500.00",
		},
		{
			name:   "within bounds stays untouched",
			amount: "1000",
			config: domain.ServiceCommissionConfig{
				CommissionType: domain.CommissionPercentage,
				CommissionRate: dec("0.02"),
				MinCommission:  decPtr("5"),
				MaxCommission:  decPtr("500"),
			},
			commission: "20.00",
			payable:    "1020.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.ComputeCommission(ctx, dec(tt.amount), tt.config, false)
			require.NoError(t, err)
			assert.True(t, result.CommissionAmount.Equal(dec(tt.commission)), "commission: got %s want %s", result.CommissionAmount, tt.commission)
			assert.True(t, result.TotalPayable.Equal(dec(tt.payable)), "payable: got %s want %s", result.TotalPayable, tt.payable)
		})
	}
}

func TestComputeCommission_RoundsHalfAwayFromZero(t *testing.T) {
	engine := services.NewCommissionService()
	ctx := context.Background()

	// 333.33 * 0.015 = 4.99995 -> 5.00 under half-away-from-zero.
	config := domain.ServiceCommissionConfig{
		CommissionType: domain.CommissionPercentage,
		CommissionRate: dec("0.015"),
	}
	result, err := engine.ComputeCommission(ctx, dec("333.33"), config, false)
	require.NoError(t, err)
	assert.True(t, result.CommissionAmount.Equal(dec("5.00")), "got %s", result.CommissionAmount)

	// A textbook half case: 1.125 rounds to 1.13, not 1.12.
	config = domain.ServiceCommissionConfig{
		CommissionType:  domain.CommissionFixed,
		FixedCommission: dec("1.125"),
	}
	result, err = engine.ComputeCommission(ctx, dec("10"), config, false)
	require.NoError(t, err)
	assert.True(t, result.CommissionAmount.Equal(dec("1.13")), "got %s", result.CommissionAmount)
}

func TestComputeCommission_InvalidInputs(t *testing.T) {
	engine := services.NewCommissionService()
	ctx := context.Background()

	_, err := engine.ComputeCommission(ctx, dec("0"), domain.ServiceCommissionConfig{CommissionType: domain.CommissionFixed}, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = engine.ComputeCommission(ctx, dec("-10"), domain.ServiceCommissionConfig{CommissionType: domain.CommissionFixed}, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = engine.ComputeCommission(ctx, dec("100"), domain.ServiceCommissionConfig{CommissionType: "BARTER"}, false)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestValidateCommission(t *testing.T) {
	engine := services.NewCommissionService()
	ctx := context.Background()
	maxRate := dec("0.10")

	valid := domain.CommissionResult{
		CommissionAmount: dec("20.00"),
		CommissionRate:   dec("0.02"),
		TotalPayable:     dec("1020.00"),
		Breakdown:        domain.CommissionBreakdown{BaseAmount: dec("1000.00")},
	}
	assert.NoError(t, engine.ValidateCommission(ctx, valid, maxRate))

	rateTooHigh := valid
	rateTooHigh.CommissionRate = dec("0.11")
	assert.ErrorIs(t, engine.ValidateCommission(ctx, rateTooHigh, maxRate), apperrors.ErrConfiguration)

	negative := valid
	negative.CommissionAmount = dec("-1")
	assert.ErrorIs(t, engine.ValidateCommission(ctx, negative, maxRate), apperrors.ErrConfiguration)

	payableBelowBase := valid
	payableBelowBase.TotalPayable = dec("999.00")
	assert.ErrorIs(t, engine.ValidateCommission(ctx, payableBelowBase, maxRate), apperrors.ErrConfiguration)
}

func TestValidateServiceCatalog(t *testing.T) {
	mockCatalog := new(MockCatalogRepository)
	mockCatalog.On("ListServiceConfigs", mock.Anything).
		Return([]domain.ServiceConfig{*electricityConfig(), *limitedTelecomConfig()}, nil).Once()

	err := services.ValidateServiceCatalog(context.Background(), mockCatalog, services.NewCommissionService(), dec("0.10"))

	assert.NoError(t, err)
	mockCatalog.AssertExpectations(t)
}

func TestValidateServiceCatalog_RejectsExcessiveRate(t *testing.T) {
	overpriced := domain.ServiceConfig{
		ServiceCode: "WATR",
		Name:        "Water Utility",
		Commission: domain.ServiceCommissionConfig{
			CommissionType: domain.CommissionPercentage,
			CommissionRate: dec("0.50"),
		},
	}
	mockCatalog := new(MockCatalogRepository)
	mockCatalog.On("ListServiceConfigs", mock.Anything).
		Return([]domain.ServiceConfig{*electricityConfig(), overpriced}, nil).Once()

	err := services.ValidateServiceCatalog(context.Background(), mockCatalog, services.NewCommissionService(), dec("0.10"))

	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Contains(t, err.Error(), "WATR")
}

func TestValidateServiceCatalog_RejectsBrokenRule(t *testing.T) {
	broken := domain.ServiceConfig{
		ServiceCode: "BART",
		Name:        "Barter Exchange",
		Commission: domain.ServiceCommissionConfig{
			CommissionType: domain.CommissionType("BARTER"),
		},
	}
	mockCatalog := new(MockCatalogRepository)
	mockCatalog.On("ListServiceConfigs", mock.Anything).
		Return([]domain.ServiceConfig{broken}, nil).Once()

	err := services.ValidateServiceCatalog(context.Background(), mockCatalog, services.NewCommissionService(), dec("0.10"))

	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Contains(t, err.Error(), "BART")
}

func TestValidateServiceCatalog_ListFailurePropagates(t *testing.T) {
	mockCatalog := new(MockCatalogRepository)
	mockCatalog.On("ListServiceConfigs", mock.Anything).Return(nil, assert.AnError).Once()

	err := services.ValidateServiceCatalog(context.Background(), mockCatalog, services.NewCommissionService(), dec("0.10"))

	assert.ErrorIs(t, err, assert.AnError)
}

func TestComputeBatchCommissions(t *testing.T) {
	engine := services.NewCommissionService()
	ctx := context.Background()

	pct := domain.ServiceCommissionConfig{
		CommissionType: domain.CommissionPercentage,
		CommissionRate: dec("0.02"),
	}

	batch, err := engine.ComputeBatchCommissions(ctx, []portssvc.BatchCommissionInput{
		{PaymentAmount: dec("1000"), Config: pct},
		{PaymentAmount: dec("500"), Config: pct},
		{PaymentAmount: dec("2000"), Config: pct, HasFeeWaiverAccount: true},
	})
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)
	assert.True(t, batch.TotalPayments.Equal(dec("3500.00")), "got %s", batch.TotalPayments)
	assert.True(t, batch.TotalCommissions.Equal(dec("30.00")), "got %s", batch.TotalCommissions)
	assert.True(t, batch.TotalPayable.Equal(dec("3530.00")), "got %s", batch.TotalPayable)
	// 30 / 3500 * 100 = 0.857... -> 0.86
	assert.True(t, batch.AverageRatePct.Equal(dec("0.86")), "got %s", batch.AverageRatePct)
}

func TestComputeBatchCommissions_EmptyBatch(t *testing.T) {
	engine := services.NewCommissionService()

	batch, err := engine.ComputeBatchCommissions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, batch.Results)
	assert.True(t, batch.AverageRatePct.IsZero())
}

func TestComputeBatchCommissions_PropagatesFailure(t *testing.T) {
	engine := services.NewCommissionService()

	_, err := engine.ComputeBatchCommissions(context.Background(), []portssvc.BatchCommissionInput{
		{PaymentAmount: dec("-1"), Config: domain.ServiceCommissionConfig{CommissionType: domain.CommissionFixed}},
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}
