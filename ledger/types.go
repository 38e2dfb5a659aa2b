/*
Package ledger provides the inventory movement ledger core.

PURPOSE:
  This package contains the domain types and algorithms for recording
  inventory movements (sales, purchases, transfers) and deriving stock
  levels and client account balances from them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Kind: The three movement kinds and their legacy numeric codes
  - Header/Detail: The persisted transaction schema (one header, 1+ lines)
  - Movement: A tagged union over the three kinds, each carrying only
    the fields that are meaningful for it
  - Item: One SKU/quantity(/price) entry collected by the caller

DESIGN PRINCIPLES:
  1. Derived, never stored: Stock and account balances are recomputed
     from the detail set on every query. There is no balance column.
  2. Precision: Uses decimal.Decimal for all monetary amounts.
  3. Sparse union: Header is the flat persisted record; Movement is the
     typed view callers construct. The writer flattens one into the other.
  4. No update path: A header+details group is written once. Corrections
     are out of scope.

SEE ALSO:
  - writer.go: Validates and atomically persists a Movement
  - balance.go: Stock and account statement replays
  - store.go: Persistence interface
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KIND - Movement kind with legacy numeric codes
// =============================================================================

// Kind identifies the movement kind. The numeric values are the codes
// persisted in the transaccion column and must not be renumbered.
type Kind int

const (
	KindSale     Kind = 1
	KindPurchase Kind = 2
	KindTransfer Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindSale:
		return "Venta"
	case KindPurchase:
		return "Compra"
	case KindTransfer:
		return "Transferencia"
	default:
		return "Desconocido"
	}
}

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool {
	return k == KindSale || k == KindPurchase || k == KindTransfer
}

// =============================================================================
// STATUS - Payment status of a sale header
// =============================================================================

// Status is the payment status of a sale header. The string values are
// the legacy display strings stored in the estado column; existing data
// reads back unchanged. The writer never sets a status - it is maintained
// externally and only consumed by the account statement filter.
type Status string

const (
	StatusPaid          Status = "Pagada"
	StatusPending       Status = "Pendiente de pago"
	StatusPartiallyPaid Status = "Pagada parcialmente"
	StatusVoided        Status = "Anulada"
)

// =============================================================================
// ITEM - One pending detail line, as collected by the caller
// =============================================================================

// Item is one SKU/quantity(/price) entry in a pending movement. For
// transfers the unit price is ignored.
type Item struct {
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity x unit price.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// =============================================================================
// HEADER / DETAIL - Persisted transaction schema
// =============================================================================

// Header is one persisted transaction record. It is the flat, sparse
// union over the three kinds: which optional fields are meaningful is
// determined by Kind and never changes once the header exists.
type Header struct {
	ID            int64
	Date          time.Time
	Kind          Kind
	ShipmentRef   string // no_envio
	SaleType      string // tipo_venta, sales only
	PaymentMethod string // metodo_pago, sales only
	Warehouse1    string // bodega1: single warehouse for sale/purchase, entry warehouse for transfers
	Warehouse2    string // bodega2: exit warehouse, transfers only
	ClientID      string // sales only
	Supplier      string // purchases only
	Total         decimal.Decimal
	Status        Status // sales only, externally maintained; empty means not set
}

// Detail is one persisted line belonging to exactly one header. The date
// is a denormalized copy of the header date. UnitPrice and Subtotal are
// null for transfer lines.
type Detail struct {
	ID        int64
	HeaderID  int64
	Date      time.Time
	SKU       string
	Quantity  int
	UnitPrice decimal.NullDecimal
	Subtotal  decimal.NullDecimal
}

// =============================================================================
// MOVEMENT - Tagged union over the three kinds
// =============================================================================

// Movement is a pending transaction as submitted by the caller: an
// ordered list of items plus the header fields relevant to its kind.
// The three concrete types below are the only implementations; the
// unexported method seals the union.
type Movement interface {
	Kind() Kind
	Date() time.Time
	Items() []Item

	// header flattens the movement into the persisted record, with the
	// total already computed by the writer.
	header(total decimal.Decimal) Header
}

// SaleMovement is an outbound sale to a client.
type SaleMovement struct {
	MovementDate  time.Time
	ShipmentRef   string
	SaleType      string // "Venta al contado" / "Venta al crédito"
	PaymentMethod string
	Warehouse     string // point of sale
	ClientID      string
	Lines         []Item
}

func (m SaleMovement) Kind() Kind      { return KindSale }
func (m SaleMovement) Date() time.Time { return m.MovementDate }
func (m SaleMovement) Items() []Item   { return m.Lines }

func (m SaleMovement) header(total decimal.Decimal) Header {
	return Header{
		Date:          m.MovementDate,
		Kind:          KindSale,
		ShipmentRef:   m.ShipmentRef,
		SaleType:      m.SaleType,
		PaymentMethod: m.PaymentMethod,
		Warehouse1:    m.Warehouse,
		ClientID:      m.ClientID,
		Total:         total,
	}
}

// PurchaseMovement is an inbound purchase from a supplier.
type PurchaseMovement struct {
	MovementDate time.Time
	ShipmentRef  string
	Warehouse    string
	Supplier     string
	Lines        []Item
}

func (m PurchaseMovement) Kind() Kind      { return KindPurchase }
func (m PurchaseMovement) Date() time.Time { return m.MovementDate }
func (m PurchaseMovement) Items() []Item   { return m.Lines }

func (m PurchaseMovement) header(total decimal.Decimal) Header {
	return Header{
		Date:        m.MovementDate,
		Kind:        KindPurchase,
		ShipmentRef: m.ShipmentRef,
		Warehouse1:  m.Warehouse,
		Supplier:    m.Supplier,
		Total:       total,
	}
}

// TransferMovement moves units between two warehouses. Its lines carry
// no prices; the header total is the unit count, not a monetary amount.
type TransferMovement struct {
	MovementDate time.Time
	ShipmentRef  string
	WarehouseIn  string // bodega de entrada
	WarehouseOut string // bodega de salida
	Lines        []Item
}

func (m TransferMovement) Kind() Kind      { return KindTransfer }
func (m TransferMovement) Date() time.Time { return m.MovementDate }
func (m TransferMovement) Items() []Item   { return m.Lines }

func (m TransferMovement) header(total decimal.Decimal) Header {
	return Header{
		Date:        m.MovementDate,
		Kind:        KindTransfer,
		ShipmentRef: m.ShipmentRef,
		Warehouse1:  m.WarehouseIn,
		Warehouse2:  m.WarehouseOut,
		Total:       total,
	}
}
