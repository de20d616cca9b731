package repositories

import (
	"context"

	"github.com/coopbank/cashdesk_app/internal/core/domain"
)

// ServiceCatalogRepository is the read-only catalog supplying commission
// configuration and credit/daily limits per service. The core never writes
// to it.
type ServiceCatalogRepository interface {
	// FindServiceConfig retrieves one service's configuration by code.
	FindServiceConfig(ctx context.Context, serviceCode string) (*domain.ServiceConfig, error)

	// ListServiceConfigs retrieves all configured services.
	ListServiceConfigs(ctx context.Context) ([]domain.ServiceConfig, error)
}
