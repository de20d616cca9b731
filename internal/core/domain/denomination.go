package domain

import (
	"fmt"
	"sort"

	"github.com/coopbank/cashdesk_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DenominationCatalog is the set of legal face values (coins and bills) for
// the currency in use, held sorted descending. It is injected configuration,
// not a package constant, so alternate ladders can be exercised in tests.
type DenominationCatalog struct {
	values []decimal.Decimal // sorted descending, no duplicates
}

// NewDenominationCatalog builds a catalog from the given face values.
// Values must be positive; duplicates are rejected.
func NewDenominationCatalog(values []decimal.Decimal) (DenominationCatalog, error) {
	if len(values) == 0 {
		return DenominationCatalog{}, fmt.Errorf("%w: denomination catalog cannot be empty", apperrors.ErrConfiguration)
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GreaterThan(sorted[j]) })
	for i, v := range sorted {
		if v.LessThanOrEqual(decimal.Zero) {
			return DenominationCatalog{}, fmt.Errorf("%w: denomination %s must be positive", apperrors.ErrConfiguration, v.String())
		}
		if i > 0 && v.Equal(sorted[i-1]) {
			return DenominationCatalog{}, fmt.Errorf("%w: duplicate denomination %s", apperrors.ErrConfiguration, v.String())
		}
	}
	return DenominationCatalog{values: sorted}, nil
}

// Values returns the face values sorted descending. The caller must not
// mutate the returned slice.
func (c DenominationCatalog) Values() []decimal.Decimal {
	return c.values
}

// Smallest returns the smallest legal face value. Every dispensable amount
// must be an exact multiple of it.
func (c DenominationCatalog) Smallest() decimal.Decimal {
	return c.values[len(c.values)-1]
}

// Contains reports whether d is a legal face value of this catalog.
func (c DenominationCatalog) Contains(d decimal.Decimal) bool {
	for _, v := range c.values {
		if v.Equal(d) {
			return true
		}
	}
	return false
}

// DenominationEntry is a count of one face value, with its derived amount.
// Amount is always Denomination × Quantity and is never stored independently.
type DenominationEntry struct {
	Denomination decimal.Decimal `json:"denomination"`
	Quantity     int64           `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewDenominationEntry builds an entry with its amount derived from the
// denomination and quantity.
func NewDenominationEntry(denomination decimal.Decimal, quantity int64) DenominationEntry {
	return DenominationEntry{
		Denomination: denomination,
		Quantity:     quantity,
		Amount:       denomination.Mul(decimal.NewFromInt(quantity)),
	}
}

// Validate checks the entry's internal consistency: a non-negative quantity,
// a positive denomination and a derived amount equal to their product.
func (e DenominationEntry) Validate() error {
	if e.Denomination.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: denomination %s must be positive", apperrors.ErrValidation, e.Denomination.String())
	}
	if e.Quantity < 0 {
		return fmt.Errorf("%w: quantity %d must not be negative", apperrors.ErrValidation, e.Quantity)
	}
	expected := e.Denomination.Mul(decimal.NewFromInt(e.Quantity))
	if !e.Amount.Equal(expected) {
		return fmt.Errorf("%w: entry amount %s does not equal %s x %d", apperrors.ErrValidation, e.Amount.String(), e.Denomination.String(), e.Quantity)
	}
	return nil
}

// EntriesTotal sums the derived amounts of a breakdown.
func EntriesTotal(entries []DenominationEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// DenominationInventory is the on-hand cash of one drawer, keyed by the
// canonical string form of the face value. An inventory is exclusively owned
// by one cashier session; quantities never go negative.
type DenominationInventory map[string]int64

// Quantity returns the on-hand count for a face value.
func (inv DenominationInventory) Quantity(denomination decimal.Decimal) int64 {
	return inv[denomination.String()]
}

// Deposit increments the on-hand count for a face value.
func (inv DenominationInventory) Deposit(denomination decimal.Decimal, quantity int64) {
	inv[denomination.String()] += quantity
}

// Dispense decrements the on-hand count for a face value. It fails rather
// than let a quantity go negative.
func (inv DenominationInventory) Dispense(denomination decimal.Decimal, quantity int64) error {
	key := denomination.String()
	if inv[key] < quantity {
		return fmt.Errorf("%w: cannot dispense %d x %s, only %d on hand", apperrors.ErrInsufficientInventory, quantity, key, inv[key])
	}
	inv[key] -= quantity
	return nil
}

// Total returns the monetary value of everything in the inventory.
func (inv DenominationInventory) Total() decimal.Decimal {
	total := decimal.Zero
	for key, qty := range inv {
		face, err := decimal.NewFromString(key)
		if err != nil {
			// Keys are written via decimal.String, so this is unreachable
			// for inventories built through this package.
			continue
		}
		total = total.Add(face.Mul(decimal.NewFromInt(qty)))
	}
	return total
}

// Clone returns an independent copy of the inventory.
func (inv DenominationInventory) Clone() DenominationInventory {
	out := make(DenominationInventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}

// Drawer is the physical till assigned to one cashier session.
type Drawer struct {
	DrawerID   string `json:"drawerID"`   // Primary Key (e.g., UUID)
	BranchCode string `json:"branchCode"` // Owning branch
	CashierID  string `json:"cashierID"`  // Session owner; one drawer per session
	AuditFields
}
