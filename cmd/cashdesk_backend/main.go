package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/coopbank/cashdesk_app/internal/adapters/database/pgsql"
	"github.com/coopbank/cashdesk_app/internal/adapters/settlementfeed"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portssvc "github.com/coopbank/cashdesk_app/internal/core/ports/services"
	"github.com/coopbank/cashdesk_app/internal/core/services"
	"github.com/coopbank/cashdesk_app/internal/handlers"
	"github.com/coopbank/cashdesk_app/internal/middleware"
	"github.com/coopbank/cashdesk_app/internal/platform/config"
	"github.com/coopbank/cashdesk_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	catalog, err := domain.NewDenominationCatalog(cfg.Denominations)
	if err != nil {
		logger.Error("Invalid denomination ladder", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wire repositories and services
	drawerRepo := pgsql.NewPgxDrawerRepository(dbPool)
	paymentRepo := pgsql.NewPgxPaymentRepository(dbPool)
	catalogRepo := pgsql.NewPgxCatalogRepository(dbPool)
	reconciliationRepo := pgsql.NewPgxReconciliationRepository(dbPool)

	changeMaker := services.NewChangeMakingService(catalog)
	commission := services.NewCommissionService()
	creditLimit := services.NewCreditLimitService()

	// Refuse to serve with a catalog row whose commission rule is broken or
	// priced beyond the allowed ceiling.
	if err := services.ValidateServiceCatalog(context.Background(), catalogRepo, commission, cfg.MaxCommissionRate); err != nil {
		logger.Error("Service catalog failed validation", slog.String("error", err.Error()))
		os.Exit(1)
	}

	settlement := services.NewSettlementService(drawerRepo, paymentRepo, catalogRepo, changeMaker, commission, creditLimit)
	reconciliation := services.NewReconciliationService(
		paymentRepo,
		reconciliationRepo,
		settlementfeed.NewReader(),
		domain.NumericReferenceValidator{Length: cfg.ReferenceLength},
	)

	container := &portssvc.ServiceContainer{
		Settlement:     settlement,
		ChangeMaker:    changeMaker,
		Commission:     commission,
		CreditLimit:    creditLimit,
		Reconciliation: reconciliation,
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	rateLimiter := limiter.New(limitermemory.NewStore(), limiter.Rate{
		Period: time.Minute,
		Limit:  cfg.RateLimitPerMinute,
	})

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.Default(),
		middleware.RateLimit(rateLimiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations from the migrations
// directory using a standalone database/sql connection.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Using pgx/v5/stdlib driver to be compatible with the main pool
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		_ = migrationDB.Close()
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
