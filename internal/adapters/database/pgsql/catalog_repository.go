package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portsrepo "github.com/coopbank/cashdesk_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxCatalogRepository struct {
	pool *pgxpool.Pool
}

// NewPgxCatalogRepository creates the read-only service catalog repository.
func NewPgxCatalogRepository(pool *pgxpool.Pool) portsrepo.ServiceCatalogRepository {
	return &PgxCatalogRepository{pool: pool}
}

const catalogColumns = `service_code, name, commission_type, commission_rate, fixed_commission, min_commission, max_commission, limited_line, credit_limit, daily_limit, created_at, created_by, last_updated_at, last_updated_by`

func scanServiceConfig(row pgx.Row) (*domain.ServiceConfig, error) {
	var cfg domain.ServiceConfig
	var commissionType string
	var minCommission, maxCommission *decimal.Decimal
	err := row.Scan(
		&cfg.ServiceCode,
		&cfg.Name,
		&commissionType,
		&cfg.Commission.CommissionRate,
		&cfg.Commission.FixedCommission,
		&minCommission,
		&maxCommission,
		&cfg.LimitedLine,
		&cfg.CreditLimit,
		&cfg.DailyLimit,
		&cfg.CreatedAt,
		&cfg.CreatedBy,
		&cfg.LastUpdatedAt,
		&cfg.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	cfg.Commission.CommissionType = domain.CommissionType(commissionType)
	cfg.Commission.MinCommission = minCommission
	cfg.Commission.MaxCommission = maxCommission
	return &cfg, nil
}

// FindServiceConfig retrieves one service's configuration by code.
func (r *PgxCatalogRepository) FindServiceConfig(ctx context.Context, serviceCode string) (*domain.ServiceConfig, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM service_catalog
		WHERE service_code = $1;
	`
	cfg, err := scanServiceConfig(r.pool.QueryRow(ctx, query, serviceCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service config %s: %w", serviceCode, err)
	}
	return cfg, nil
}

// ListServiceConfigs retrieves all configured services.
func (r *PgxCatalogRepository) ListServiceConfigs(ctx context.Context) ([]domain.ServiceConfig, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM service_catalog
		ORDER BY service_code;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query service catalog: %w", err)
	}
	defer rows.Close()

	configs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ServiceConfig, error) {
		cfg, err := scanServiceConfig(row)
		if err != nil {
			return domain.ServiceConfig{}, err
		}
		return *cfg, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect service catalog rows: %w", err)
	}
	return configs, nil
}
