/*
store.go - Persistence interface for the movement ledger

PURPOSE:
  Defines what the ledger core needs from storage. The sqlite package
  implements this; tests use the same implementation with ":memory:".

DESIGN:
  The store only persists and returns rows. All aggregation (stock
  levels, statement totals) happens in the balance calculator by
  replaying the returned row sets, so the derived views are computed
  the same way no matter which engine backs the store.

ATOMICITY:
  InsertMovement is the ONLY write operation and must be all-or-nothing:
  a failure after the header insert must roll the header back too.
  There is no update or delete path for transactions.
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROW TYPES - Joined projections returned by the store
// =============================================================================

// Row is one detail line joined to its header, as consumed by the
// stock replay. UnitPrice/Subtotal are null for transfer lines.
type Row struct {
	HeaderID  int64
	Date      time.Time
	Kind      Kind
	SKU       string
	Quantity  int
	UnitPrice decimal.NullDecimal
	Subtotal  decimal.NullDecimal
}

// StatementRow is one detail line of a client's headers joined to the
// header's total and status, as consumed by the statement replay.
type StatementRow struct {
	HeaderID    int64
	Date        time.Time
	ShipmentRef string
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	HeaderTotal decimal.Decimal
	Status      Status
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the persistence contract for the movement ledger.
type Store interface {
	// InsertMovement writes one header and its detail lines as a single
	// atomic unit and returns the generated header id. The Total and
	// per-line Subtotal values must already be computed by the caller;
	// the store does not recompute or verify them.
	InsertMovement(ctx context.Context, h Header, details []Detail) (int64, error)

	// Rows returns every detail line joined to its header, ordered by
	// (sku, detail id). Read-only.
	Rows(ctx context.Context) ([]Row, error)

	// ClientRows returns the detail lines of the given client's headers,
	// ordered by (date, header id, detail id). Read-only.
	ClientRows(ctx context.Context, clientID string) ([]StatementRow, error)

	// Headers returns headers filtered to the given kinds (none = all),
	// ordered by header id. Read-only.
	Headers(ctx context.Context, kinds ...Kind) ([]Header, error)

	// Details returns detail lines whose header matches the given kinds
	// (none = all), ordered by detail id. Read-only.
	Details(ctx context.Context, kinds ...Kind) ([]Detail, error)
}
