package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/coopbank/cashdesk_app/internal/core/services"
	"github.com/coopbank/cashdesk_app/internal/dto"
	"github.com/coopbank/cashdesk_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settlementHandler handles HTTP requests for cash settlements and
// commission quotes.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

func newSettlementHandler(ss portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{settlementService: ss}
}

// registerSettlementRoutes registers the settlement and commission routes.
func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(settlementService)

	settlements := rg.Group("/settlements")
	{
		settlements.POST("", h.processSettlement)
	}

	commissions := rg.Group("/commissions")
	{
		commissions.POST("/quote", h.quoteCommission)
		commissions.POST("/quote-batch", h.quoteBatchCommissions)
	}
}

func (h *settlementHandler) processSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ProcessSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ProcessSettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cashierID, ok := middleware.GetCashierIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cashier ID missing"})
		return
	}

	logger = logger.With(
		slog.String("service_code", req.ServiceCode),
		slog.String("reference_number", req.ReferenceNumber),
		slog.String("cashier_id", cashierID),
	)
	logger.Info("Received settlement request", slog.String("payment_amount", req.PaymentAmount.String()))

	result, err := h.settlementService.ProcessCashSettlement(c.Request.Context(), req, cashierID)
	if err != nil {
		var limitErr *services.LimitExceededError
		switch {
		case errors.As(err, &limitErr):
			// The full status goes back so the terminal can show which
			// ceiling was breached and the remaining headroom.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": limitErr.Status.Message, "limitStatus": limitErr.Status})
		case errors.Is(err, apperrors.ErrInsufficientInventory):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrAmountMismatch), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Service or drawer not found"})
		default:
			logger.Error("Failed to process settlement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process settlement"})
		}
		return
	}

	logger.Info("Settlement processed", slog.String("transaction_id", result.TransactionID))
	c.JSON(http.StatusCreated, dto.ToSettlementResponse(result))
}

func (h *settlementHandler) quoteCommission(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.QuoteCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for QuoteCommission", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.settlementService.QuoteCommission(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrConfiguration):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to quote commission", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to quote commission"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToCommissionResponse(result))
}

func (h *settlementHandler) quoteBatchCommissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BatchCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for QuoteBatchCommissions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	batch, err := h.settlementService.QuoteBatchCommissions(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrConfiguration):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to quote batch commissions", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to quote batch commissions"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToBatchCommissionResponse(batch))
}
