package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coimpex/inventory-ledger/ledger"
	"github.com/coimpex/inventory-ledger/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var date = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

func saleHeader(clientID string, total string) ledger.Header {
	return ledger.Header{
		Date:          date,
		Kind:          ledger.KindSale,
		ShipmentRef:   "ENV-17",
		SaleType:      "Venta al crédito",
		PaymentMethod: "Pendiente de pago",
		Warehouse1:    "Roosevelt",
		ClientID:      clientID,
		Total:         dec(total),
	}
}

func line(sku string, qty int, unitPrice string) ledger.Detail {
	p := dec(unitPrice)
	return ledger.Detail{
		Date:      date,
		SKU:       sku,
		Quantity:  qty,
		UnitPrice: decimal.NewNullDecimal(p),
		Subtotal:  decimal.NewNullDecimal(p.Mul(decimal.NewFromInt(int64(qty)))),
	}
}

// =============================================================================
// ATOMICITY
// =============================================================================

func TestInsertMovement_RollbackOnDetailFailure(t *testing.T) {
	// GIVEN: A header plus a detail line that violates the storage-level
	//        CHECK constraint (cantidad = 0), bypassing writer validation
	// WHEN: InsertMovement fails after the header insert
	// THEN: The header row is absent after rollback - no orphan header

	store := newStore(t)
	ctx := context.Background()

	details := []ledger.Detail{
		line("A001", 2, "10"),
		{Date: date, SKU: "A002", Quantity: 0}, // violates CHECK (cantidad > 0)
	}

	_, err := store.InsertMovement(ctx, saleHeader("CL001", "20"), details)
	require.Error(t, err)
	assert.True(t, ledger.IsPersistence(err), "storage failure surfaces as PersistenceError")

	headers, err := store.Headers(ctx)
	require.NoError(t, err)
	assert.Empty(t, headers, "header must be rolled back with its details")

	rows, err := store.Rows(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestInsertMovement_SucceedsAfterFailedAttempt(t *testing.T) {
	// A rolled-back attempt must not poison the connection.
	store := newStore(t)
	ctx := context.Background()

	_, err := store.InsertMovement(ctx, saleHeader("CL001", "0"),
		[]ledger.Detail{{Date: date, SKU: "A001", Quantity: 0}})
	require.Error(t, err)

	id, err := store.InsertMovement(ctx, saleHeader("CL001", "10"),
		[]ledger.Detail{line("A001", 1, "10")})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
}

// =============================================================================
// ROUNDTRIP FIDELITY
// =============================================================================

func TestInsertMovement_HeaderRoundtrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.InsertMovement(ctx, saleHeader("CL001", "20"),
		[]ledger.Detail{line("A001", 2, "10")})
	require.NoError(t, err)

	headers, err := store.Headers(ctx)
	require.NoError(t, err)
	require.Len(t, headers, 1)

	h := headers[0]
	assert.Equal(t, id, h.ID)
	assert.Equal(t, "2025-06-02", h.Date.Format("2006-01-02"))
	assert.Equal(t, ledger.KindSale, h.Kind)
	assert.Equal(t, "ENV-17", h.ShipmentRef)
	assert.Equal(t, "Venta al crédito", h.SaleType)
	assert.Equal(t, "Pendiente de pago", h.PaymentMethod)
	assert.Equal(t, "Roosevelt", h.Warehouse1)
	assert.Equal(t, "", h.Warehouse2)
	assert.Equal(t, "CL001", h.ClientID)
	assert.True(t, h.Total.Equal(dec("20")))
	assert.Equal(t, ledger.Status(""), h.Status, "writer never sets estado")
}

func TestRows_JoinAndOrder(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.InsertMovement(ctx, saleHeader("CL001", "30"),
		[]ledger.Detail{line("B002", 1, "10"), line("A001", 2, "10")})
	require.NoError(t, err)

	rows, err := store.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A001", rows[0].SKU, "rows ordered by sku")
	assert.Equal(t, "B002", rows[1].SKU)
	assert.Equal(t, ledger.KindSale, rows[0].Kind, "kind joined from the header")
}

func TestHeaders_KindFilter(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.InsertMovement(ctx, saleHeader("CL001", "10"),
		[]ledger.Detail{line("A001", 1, "10")})
	require.NoError(t, err)
	_, err = store.InsertMovement(ctx,
		ledger.Header{Date: date, Kind: ledger.KindPurchase, Supplier: "Frutera SA", Total: dec("5")},
		[]ledger.Detail{line("A001", 1, "5")})
	require.NoError(t, err)

	sales, err := store.Headers(ctx, ledger.KindSale)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, ledger.KindSale, sales[0].Kind)

	both, err := store.Headers(ctx, ledger.KindSale, ledger.KindPurchase)
	require.NoError(t, err)
	assert.Len(t, both, 2)

	all, err := store.Headers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// STATUS MAINTENANCE
// =============================================================================

func TestMarkStatus(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.InsertMovement(ctx, saleHeader("CL001", "10"),
		[]ledger.Detail{line("A001", 1, "10")})
	require.NoError(t, err)

	require.NoError(t, store.MarkStatus(ctx, id, ledger.StatusPaid))

	rows, err := store.ClientRows(ctx, "CL001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ledger.StatusPaid, rows[0].Status)
}

func TestMarkStatus_UnknownHeader(t *testing.T) {
	store := newStore(t)
	err := store.MarkStatus(context.Background(), 999, ledger.StatusPaid)
	assert.Error(t, err)
}
