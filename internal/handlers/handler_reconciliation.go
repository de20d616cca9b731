package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/coopbank/cashdesk_app/internal/dto"
	"github.com/coopbank/cashdesk_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reconciliationHandler handles HTTP requests for reconciliation runs.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconciliationService: rs}
}

// registerReconciliationRoutes registers the reconciliation routes.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	runs := rg.Group("/reconciliation/runs")
	{
		runs.POST("", h.runReconciliation)
		runs.GET("/:runID", h.getRun)
		runs.GET("/:runID/records", h.listRunRecords)
	}
}

// runReconciliation starts a batch run. The settlement feed arrives as a
// multipart file named "feed"; run parameters travel as form fields.
func (h *reconciliationHandler) runReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	fileHeader, err := c.FormFile("feed")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing settlement feed file: " + err.Error()})
		return
	}
	periodStart, err := time.Parse(time.DateOnly, c.PostForm("periodStart"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid periodStart, expected YYYY-MM-DD"})
		return
	}
	periodEnd, err := time.Parse(time.DateOnly, c.PostForm("periodEnd"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid periodEnd, expected YYYY-MM-DD"})
		return
	}
	if !periodEnd.After(periodStart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periodEnd must be after periodStart"})
		return
	}

	cashierID, ok := middleware.GetCashierIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cashier ID missing"})
		return
	}

	feed, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded feed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open settlement feed file"})
		return
	}
	defer feed.Close()

	logger.Info("Starting reconciliation run", slog.String("feed_name", fileHeader.Filename))
	run, err := h.reconciliationService.RunReconciliation(c.Request.Context(), fileHeader.Filename, feed, periodStart, periodEnd, cashierID)
	if err != nil {
		if errors.Is(err, apperrors.ErrParse) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Reconciliation run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation run failed"})
		return
	}

	logger.Info("Reconciliation run completed",
		slog.String("run_id", run.RunID),
		slog.Int("total", run.Summary.TotalTransactions),
		slog.Int("matched", run.Summary.MatchedTransactions))
	c.JSON(http.StatusCreated, dto.ToReconciliationRunResponse(run))
}

func (h *reconciliationHandler) getRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	runID := c.Param("runID")

	run, err := h.reconciliationService.GetRun(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reconciliation run not found"})
			return
		}
		logger.Error("Failed to get reconciliation run", slog.String("run_id", runID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reconciliation run"})
		return
	}
	c.JSON(http.StatusOK, dto.ToReconciliationRunResponse(run))
}

func (h *reconciliationHandler) listRunRecords(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	runID := c.Param("runID")

	records, err := h.reconciliationService.ListRunRecords(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reconciliation run not found"})
			return
		}
		logger.Error("Failed to list reconciliation records", slog.String("run_id", runID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reconciliation records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
