package handlers

import (
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/coopbank/cashdesk_app/internal/middleware"
	"github.com/coopbank/cashdesk_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Every terminal request must carry the cashier session header; the
	// branch gateway in front of this service owns authentication.
	v1 := r.Group("/api/v1", middleware.CashierSessionMiddleware())

	registerTillRoutes(v1, services.Settlement)
	registerSettlementRoutes(v1, services.Settlement)
	registerReconciliationRoutes(v1, services.Reconciliation)
}
