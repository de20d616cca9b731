package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/coopbank/cashdesk_app/internal/core/services"
	"github.com/coopbank/cashdesk_app/internal/dto"
	"github.com/coopbank/cashdesk_app/internal/handlers"
	"github.com/coopbank/cashdesk_app/internal/middleware"
	"github.com/coopbank/cashdesk_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock SettlementService ---
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) ProcessCashSettlement(ctx context.Context, req dto.ProcessSettlementRequest, cashierID string) (*domain.SettlementResult, error) {
	args := m.Called(ctx, req, cashierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementResult), args.Error(1)
}

func (m *MockSettlementService) QuoteChange(ctx context.Context, drawerID string, amount decimal.Decimal) ([]domain.DenominationEntry, error) {
	args := m.Called(ctx, drawerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DenominationEntry), args.Error(1)
}

func (m *MockSettlementService) DepositFloat(ctx context.Context, req dto.DepositFloatRequest, cashierID string) (domain.DenominationInventory, error) {
	args := m.Called(ctx, req, cashierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.DenominationInventory), args.Error(1)
}

func (m *MockSettlementService) GetInventory(ctx context.Context, drawerID string) (domain.DenominationInventory, error) {
	args := m.Called(ctx, drawerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.DenominationInventory), args.Error(1)
}

func (m *MockSettlementService) QuoteCommission(ctx context.Context, req dto.QuoteCommissionRequest) (*domain.CommissionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionResult), args.Error(1)
}

func (m *MockSettlementService) QuoteBatchCommissions(ctx context.Context, req dto.BatchCommissionRequest) (*domain.BatchCommissionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchCommissionResult), args.Error(1)
}

var _ portssvc.SettlementSvcFacade = (*MockSettlementService)(nil)

// --- Mock ReconciliationService (routes need one; these tests never call it) ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) Match(ctx context.Context, internalRecords []domain.PaymentRecord, externalEntries []domain.ExternalSettlementEntry) ([]domain.ReconciliationRecord, int, error) {
	args := m.Called(ctx, internalRecords, externalEntries)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReconciliationRecord), args.Int(1), args.Error(2)
}

func (m *MockReconciliationService) Summarize(records []domain.ReconciliationRecord) domain.ReconciliationSummary {
	args := m.Called(records)
	return args.Get(0).(domain.ReconciliationSummary)
}

func (m *MockReconciliationService) RunReconciliation(ctx context.Context, feedName string, feed io.Reader, periodStart, periodEnd time.Time, runBy string) (*domain.ReconciliationRun, error) {
	args := m.Called(ctx, feedName, feed, periodStart, periodEnd, runBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationRun), args.Error(1)
}

func (m *MockReconciliationService) GetRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationRun), args.Error(1)
}

func (m *MockReconciliationService) ListRunRecords(ctx context.Context, runID string) ([]domain.ReconciliationRecord, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationRecord), args.Error(1)
}

var _ portssvc.ReconciliationSvcFacade = (*MockReconciliationService)(nil)

// --- Test Suite ---
type SettlementHandlerTestSuite struct {
	suite.Suite
	router         *gin.Engine
	mockSettlement *MockSettlementService
	mockRecon      *MockReconciliationService
}

func (suite *SettlementHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockSettlement = new(MockSettlementService)
	suite.mockRecon = new(MockReconciliationService)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{}, &portssvc.ServiceContainer{
		Settlement:     suite.mockSettlement,
		Reconciliation: suite.mockRecon,
	})
}

func (suite *SettlementHandlerTestSuite) performJSON(method, path string, body any, cashierID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cashierID != "" {
		req.Header.Set(middleware.CashierIDHeader, cashierID)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func validSettlementRequest() dto.ProcessSettlementRequest {
	d1000 := decimal.NewFromInt(1000)
	d20 := decimal.NewFromInt(20)
	return dto.ProcessSettlementRequest{
		DrawerID:        "drawer-1",
		ServiceCode:     "ELEC",
		ReferenceNumber: "100000000000000000000000000001",
		PaymentAmount:   decimal.NewFromInt(1000),
		CashReceived: []dto.DenominationEntryRequest{
			{Denomination: d1000, Quantity: 1, Amount: d1000},
			{Denomination: d20, Quantity: 1, Amount: d20},
		},
	}
}

func (suite *SettlementHandlerTestSuite) TestProcessSettlement_Success() {
	req := validSettlementRequest()
	result := &domain.SettlementResult{
		TransactionID:   "txn-1",
		ReferenceNumber: req.ReferenceNumber,
		ServiceCode:     "ELEC",
		ChangeDue:       decimal.Zero,
		TransactionDate: time.Now().UTC(),
	}

	suite.mockSettlement.On("ProcessCashSettlement", mock.Anything, mock.MatchedBy(func(r dto.ProcessSettlementRequest) bool {
		return r.ServiceCode == "ELEC" && r.ReferenceNumber == req.ReferenceNumber
	}), "cashier-42").Return(result, nil).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/settlements", req, "cashier-42")

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.SettlementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("txn-1", resp.TransactionID)
	suite.mockSettlement.AssertExpectations(suite.T())
}

func (suite *SettlementHandlerTestSuite) TestProcessSettlement_MissingCashierHeader() {
	w := suite.performJSON(http.MethodPost, "/api/v1/settlements", validSettlementRequest(), "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockSettlement.AssertNotCalled(suite.T(), "ProcessCashSettlement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementHandlerTestSuite) TestProcessSettlement_LimitExceeded() {
	status := domain.CreditLimitStatus{
		CanProcess: false,
		Message:    "credit limit exceeded: 500 remaining of 100000, requested 600",
	}
	suite.mockSettlement.On("ProcessCashSettlement", mock.Anything, mock.Anything, "cashier-42").
		Return(nil, &services.LimitExceededError{Status: status}).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/settlements", validSettlementRequest(), "cashier-42")

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp map[string]json.RawMessage
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(string(resp["error"]), "credit limit exceeded")
	suite.NotEmpty(resp["limitStatus"])
}

func (suite *SettlementHandlerTestSuite) TestProcessSettlement_InsufficientInventory() {
	suite.mockSettlement.On("ProcessCashSettlement", mock.Anything, mock.Anything, "cashier-42").
		Return(nil, &services.InsufficientInventoryError{Remaining: decimal.NewFromInt(200)}).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/settlements", validSettlementRequest(), "cashier-42")

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *SettlementHandlerTestSuite) TestProcessSettlement_UnknownService() {
	suite.mockSettlement.On("ProcessCashSettlement", mock.Anything, mock.Anything, "cashier-42").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/settlements", validSettlementRequest(), "cashier-42")

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *SettlementHandlerTestSuite) TestProcessSettlement_MalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CashierIDHeader, "cashier-42")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockSettlement.AssertNotCalled(suite.T(), "ProcessCashSettlement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementHandlerTestSuite) TestQuoteCommission_Success() {
	result := &domain.CommissionResult{
		CommissionAmount: decimal.RequireFromString("20.00"),
		CommissionRate:   decimal.RequireFromString("0.02"),
		TotalPayable:     decimal.RequireFromString("1020.00"),
		Breakdown: domain.CommissionBreakdown{
			BaseAmount:      decimal.RequireFromString("1000.00"),
			TotalCommission: decimal.RequireFromString("20.00"),
		},
	}
	suite.mockSettlement.On("QuoteCommission", mock.Anything, mock.MatchedBy(func(r dto.QuoteCommissionRequest) bool {
		return r.ServiceCode == "ELEC"
	})).Return(result, nil).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/commissions/quote", dto.QuoteCommissionRequest{
		ServiceCode:   "ELEC",
		PaymentAmount: decimal.NewFromInt(1000),
	}, "cashier-42")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CommissionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.TotalPayable.Equal(decimal.RequireFromString("1020.00")))
}

func (suite *SettlementHandlerTestSuite) TestGetInventory() {
	suite.mockSettlement.On("GetInventory", mock.Anything, "drawer-1").
		Return(domain.DenominationInventory{"100": 5}, nil).Once()

	w := suite.performJSON(http.MethodGet, "/api/v1/tills/drawer-1/inventory", nil, "cashier-42")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.InventoryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("drawer-1", resp.DrawerID)
}

func (suite *SettlementHandlerTestSuite) TestGetInventory_NotFound() {
	suite.mockSettlement.On("GetInventory", mock.Anything, "missing").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.performJSON(http.MethodGet, "/api/v1/tills/missing/inventory", nil, "cashier-42")

	suite.Equal(http.StatusNotFound, w.Code)
}

func TestSettlementHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementHandlerTestSuite))
}
