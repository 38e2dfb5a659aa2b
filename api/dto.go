/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain model from the external contract.

VALIDATION:
  Request DTOs carry validator/v10 struct tags. This is the boundary
  check (shape, presence, ranges); the writer re-validates its own
  preconditions authoritatively before anything is persisted.

MONEY:
  Monetary amounts in responses are fixed two-decimal strings, not
  floats - clients display them, they don't do arithmetic on them.
*/
package api

// RecordMovementRequest is the one write operation's request body. It
// is the flat wire form of the movement union: which optional fields
// matter is decided by kind, mirroring the form the UI renders.
type RecordMovementRequest struct {
	Kind          int           `json:"kind" validate:"required,oneof=1 2 3"`
	Date          string        `json:"date" validate:"required,datetime=2006-01-02"`
	ShipmentRef   string        `json:"shipment_ref,omitempty"`
	SaleType      string        `json:"sale_type,omitempty"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	Warehouse     string        `json:"warehouse,omitempty"`     // sale/purchase
	WarehouseIn   string        `json:"warehouse_in,omitempty"`  // transfer
	WarehouseOut  string        `json:"warehouse_out,omitempty"` // transfer
	ClientID      string        `json:"client_id,omitempty"`     // sale
	Supplier      string        `json:"supplier,omitempty"`      // purchase
	Items         []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ItemRequest is one pending detail line.
type ItemRequest struct {
	SKU       string  `json:"sku" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// RecordMovementResponse carries the confirmation reference.
type RecordMovementResponse struct {
	ID int64 `json:"id"`
}

// StockLineDTO is one row of the stock view.
type StockLineDTO struct {
	SKU         string `json:"sku"`
	Product     string `json:"producto"`
	Entradas    int    `json:"entradas"`
	Salidas     int    `json:"salidas"`
	StockActual int    `json:"stock_actual"`
}

// StatementLineDTO is one row of an account statement.
type StatementLineDTO struct {
	Date      string `json:"fecha"`
	HeaderID  int64  `json:"id_transaccion"`
	Product   string `json:"producto"`
	Quantity  int    `json:"cantidad"`
	UnitPrice string `json:"precio"`
	Subtotal  string `json:"subtotal"`
	Status    string `json:"estado,omitempty"`
}

// StatementDTO is the account statement view.
type StatementDTO struct {
	ClientID       string             `json:"client_id"`
	ClientName     string             `json:"cliente"`
	Lines          []StatementLineDTO `json:"lines"`
	TotalComprado  string             `json:"total_comprado"`
	TotalPagado    string             `json:"total_pagado"`
	TotalPendiente string             `json:"total_pendiente"`
}

// HeaderDTO is one transaction header in the raw listing.
type HeaderDTO struct {
	ID            int64  `json:"id_transaccion"`
	Date          string `json:"fecha"`
	Kind          int    `json:"transaccion"`
	KindName      string `json:"tipo_movimiento"`
	ShipmentRef   string `json:"no_envio,omitempty"`
	SaleType      string `json:"tipo_venta,omitempty"`
	PaymentMethod string `json:"metodo_pago,omitempty"`
	Warehouse1    string `json:"bodega1,omitempty"`
	Warehouse2    string `json:"bodega2,omitempty"`
	ClientID      string `json:"id_cliente,omitempty"`
	Supplier      string `json:"proveedor,omitempty"`
	Total         string `json:"total"`
	Status        string `json:"estado,omitempty"`
}

// DetailDTO is one detail line in the raw listing.
type DetailDTO struct {
	ID        int64  `json:"id_detalle"`
	HeaderID  int64  `json:"id_transaccion"`
	Date      string `json:"fecha"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"cantidad"`
	UnitPrice string `json:"precio,omitempty"`
	Subtotal  string `json:"subtotal,omitempty"`
}

// MovementsResponse is the raw filtered header/detail listing.
type MovementsResponse struct {
	Headers []HeaderDTO `json:"headers"`
	Details []DetailDTO `json:"details"`
}

// ProductDTO is one catalog product, for form population.
type ProductDTO struct {
	SKU  string `json:"sku"`
	Name string `json:"producto"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
