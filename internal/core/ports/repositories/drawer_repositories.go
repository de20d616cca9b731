package repositories

import (
	"context"
	"time"

	"github.com/coopbank/cashdesk_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// DrawerReader defines read operations for drawers and their inventories.
type DrawerReader interface {
	// FindDrawerByID retrieves a drawer by its unique identifier.
	FindDrawerByID(ctx context.Context, drawerID string) (*domain.Drawer, error)

	// FindInventory retrieves the current denomination inventory of a drawer.
	FindInventory(ctx context.Context, drawerID string) (domain.DenominationInventory, error)
}

// DrawerWriter defines write operations for drawers.
type DrawerWriter interface {
	// SaveDrawer persists a new drawer.
	SaveDrawer(ctx context.Context, drawer domain.Drawer) error

	// SaveInventory replaces a drawer's inventory outside a settlement
	// transaction (used for float seeding and deposits).
	SaveInventory(ctx context.Context, drawerID string, inventory domain.DenominationInventory, userID string, now time.Time) error
}

// DrawerTransactionSupport defines the inventory operations that participate
// in a settlement's all-or-nothing commit.
type DrawerTransactionSupport interface {
	// FindInventoryForUpdate selects a drawer's inventory and locks it for
	// update within a transaction.
	FindInventoryForUpdate(ctx context.Context, tx pgx.Tx, drawerID string) (domain.DenominationInventory, error)

	// ApplyInventoryDeltaInTx applies per-denomination quantity deltas
	// (positive for deposits, negative for dispensed change) within a
	// transaction. The resulting quantities must never go negative.
	ApplyInventoryDeltaInTx(ctx context.Context, tx pgx.Tx, drawerID string, deltas map[string]int64, userID string, now time.Time) error
}

// DrawerRepositoryFacade combines all drawer repository interfaces.
type DrawerRepositoryFacade interface {
	DrawerReader
	DrawerWriter
	DrawerTransactionSupport
}

// DrawerRepositoryWithTx extends DrawerRepositoryFacade with transaction
// capabilities.
type DrawerRepositoryWithTx interface {
	DrawerRepositoryFacade
	TransactionManager
}
