package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/coopbank/cashdesk_app/internal/core/domain"
	portsrepo "github.com/coopbank/cashdesk_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDrawerRepository struct {
	pool *pgxpool.Pool
}

// NewPgxDrawerRepository creates a new repository for drawers and their
// denomination inventories.
func NewPgxDrawerRepository(pool *pgxpool.Pool) portsrepo.DrawerRepositoryWithTx {
	return &PgxDrawerRepository{pool: pool}
}

// Begin starts a new database transaction.
func (r *PgxDrawerRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Commit commits a transaction.
func (r *PgxDrawerRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

// Rollback rolls back a transaction. Safe to call after commit.
func (r *PgxDrawerRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// SaveDrawer persists a new drawer.
func (r *PgxDrawerRepository) SaveDrawer(ctx context.Context, drawer domain.Drawer) error {
	query := `
		INSERT INTO drawers (drawer_id, branch_code, cashier_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		drawer.DrawerID,
		drawer.BranchCode,
		drawer.CashierID,
		drawer.CreatedAt,
		drawer.CreatedBy,
		drawer.LastUpdatedAt,
		drawer.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save drawer %s: %w", drawer.DrawerID, err)
	}
	return nil
}

// FindDrawerByID retrieves a drawer by its unique identifier.
func (r *PgxDrawerRepository) FindDrawerByID(ctx context.Context, drawerID string) (*domain.Drawer, error) {
	query := `
		SELECT drawer_id, branch_code, cashier_id, created_at, created_by, last_updated_at, last_updated_by
		FROM drawers
		WHERE drawer_id = $1;
	`
	var drawer domain.Drawer
	err := r.pool.QueryRow(ctx, query, drawerID).Scan(
		&drawer.DrawerID,
		&drawer.BranchCode,
		&drawer.CashierID,
		&drawer.CreatedAt,
		&drawer.CreatedBy,
		&drawer.LastUpdatedAt,
		&drawer.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find drawer %s: %w", drawerID, err)
	}
	return &drawer, nil
}

// FindInventory retrieves the current denomination inventory of a drawer.
func (r *PgxDrawerRepository) FindInventory(ctx context.Context, drawerID string) (domain.DenominationInventory, error) {
	return r.findInventory(ctx, r.pool, drawerID, false)
}

// FindInventoryForUpdate selects a drawer's inventory and locks its rows for
// the duration of the settlement transaction.
func (r *PgxDrawerRepository) FindInventoryForUpdate(ctx context.Context, tx pgx.Tx, drawerID string) (domain.DenominationInventory, error) {
	return r.findInventory(ctx, tx, drawerID, true)
}

// querier covers both pool and transaction query surfaces.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PgxDrawerRepository) findInventory(ctx context.Context, q querier, drawerID string, forUpdate bool) (domain.DenominationInventory, error) {
	query := `
		SELECT denomination, quantity
		FROM drawer_denominations
		WHERE drawer_id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}
	rows, err := q.Query(ctx, query, drawerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory for drawer %s: %w", drawerID, err)
	}
	defer rows.Close()

	inventory := make(domain.DenominationInventory)
	for rows.Next() {
		var denomination string
		var quantity int64
		if err := rows.Scan(&denomination, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row for drawer %s: %w", drawerID, err)
		}
		inventory[denomination] = quantity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inventory rows for drawer %s: %w", drawerID, err)
	}
	return inventory, nil
}

// SaveInventory upserts a drawer's full inventory outside a settlement
// transaction, used for float seeding and deposits.
func (r *PgxDrawerRepository) SaveInventory(ctx context.Context, drawerID string, inventory domain.DenominationInventory, userID string, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin inventory save: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO drawer_denominations (drawer_id, denomination, quantity, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (drawer_id, denomination) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	for denomination, quantity := range inventory {
		if _, err := tx.Exec(ctx, query, drawerID, denomination, quantity, now, userID); err != nil {
			return fmt.Errorf("failed to save denomination %s for drawer %s: %w", denomination, drawerID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit inventory save: %w", err)
	}
	return nil
}

// ApplyInventoryDeltaInTx applies per-denomination quantity deltas within a
// settlement transaction. The quantity check constraint on the table is the
// final guard against a negative count.
func (r *PgxDrawerRepository) ApplyInventoryDeltaInTx(ctx context.Context, tx pgx.Tx, drawerID string, deltas map[string]int64, userID string, now time.Time) error {
	query := `
		INSERT INTO drawer_denominations (drawer_id, denomination, quantity, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (drawer_id, denomination) DO UPDATE SET
			quantity = drawer_denominations.quantity + EXCLUDED.quantity,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	for denomination, delta := range deltas {
		if delta == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, query, drawerID, denomination, delta, now, userID); err != nil {
			return fmt.Errorf("failed to apply delta %d to denomination %s of drawer %s: %w", delta, denomination, drawerID, err)
		}
	}
	return nil
}
