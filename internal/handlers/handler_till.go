package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/coopbank/cashdesk_app/internal/dto"
	"github.com/coopbank/cashdesk_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// tillHandler handles HTTP requests for drawer inventory operations.
type tillHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

func newTillHandler(ss portssvc.SettlementSvcFacade) *tillHandler {
	return &tillHandler{settlementService: ss}
}

// registerTillRoutes registers routes related to drawers and change quotes.
func registerTillRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newTillHandler(settlementService)

	tills := rg.Group("/tills")
	{
		tills.GET("/:drawerID/inventory", h.getInventory)
		tills.POST("/:drawerID/deposits", h.depositFloat)
		tills.POST("/:drawerID/change-quotes", h.quoteChange)
	}
}

func (h *tillHandler) getInventory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	drawerID := c.Param("drawerID")

	inventory, err := h.settlementService.GetInventory(c.Request.Context(), drawerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Drawer not found"})
			return
		}
		logger.Error("Failed to get drawer inventory", slog.String("drawer_id", drawerID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get drawer inventory"})
		return
	}
	c.JSON(http.StatusOK, dto.ToInventoryResponse(drawerID, inventory))
}

func (h *tillHandler) depositFloat(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DepositFloatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for DepositFloat", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.DrawerID = c.Param("drawerID")

	cashierID, ok := middleware.GetCashierIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cashier ID missing"})
		return
	}

	inventory, err := h.settlementService.DepositFloat(c.Request.Context(), req, cashierID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAmountMismatch), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Drawer not found"})
		default:
			logger.Error("Failed to deposit float", slog.String("drawer_id", req.DrawerID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deposit float"})
		}
		return
	}

	logger.Info("Float deposited", slog.String("drawer_id", req.DrawerID), slog.String("total", req.ExpectedTotal.String()))
	c.JSON(http.StatusOK, dto.ToInventoryResponse(req.DrawerID, inventory))
}

func (h *tillHandler) quoteChange(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.QuoteChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for QuoteChange", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.DrawerID = c.Param("drawerID")

	breakdown, err := h.settlementService.QuoteChange(c.Request.Context(), req.DrawerID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientInventory):
			// 422: the request is well-formed, the drawer just cannot
			// cover it. The message names the denominations that ran out.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Drawer not found"})
		default:
			logger.Error("Failed to quote change", slog.String("drawer_id", req.DrawerID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to quote change"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": dto.ToDenominationEntryResponses(breakdown)})
}
