/*
Package catalog loads the read-only reference data (clients, suppliers,
products) from the business workbook.

The workbook carries three named sheets - Clientes, Proveedores,
Productos - each a header row plus records with an identifying key and
a display name. Everything is read into memory once; Reload re-reads
the same path on demand. A lookup miss is not an error: callers get the
raw key back and render it as-is.
*/
package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

const (
	sheetClients   = "Clientes"
	sheetSuppliers = "Proveedores"
	sheetProducts  = "Productos"
)

// Product is one catalog product. The legacy workbook keys products by
// display name only; when no SKU column exists the name doubles as SKU.
type Product struct {
	SKU  string
	Name string
}

// Catalog is the in-memory reference data.
type Catalog struct {
	mu        sync.RWMutex
	path      string
	products  []Product
	bySKU     map[string]string
	clients   map[string]string
	suppliers map[string]string
}

// Load reads the workbook at path into a new Catalog.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the workbook from disk, replacing the cached data.
func (c *Catalog) Reload() error {
	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return fmt.Errorf("open catalog workbook: %w", err)
	}
	defer f.Close()

	products, bySKU, err := readProducts(f)
	if err != nil {
		return err
	}
	clients, err := readNamed(f, sheetClients)
	if err != nil {
		return err
	}
	suppliers, err := readNamed(f, sheetSuppliers)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = products
	c.bySKU = bySKU
	c.clients = clients
	c.suppliers = suppliers
	return nil
}

// Products returns the product list in sheet order, for form population.
func (c *Catalog) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// ProductName returns the display name for a SKU, or the SKU itself
// when the catalog has no entry.
func (c *Catalog) ProductName(sku string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.bySKU[sku]; ok {
		return name
	}
	return sku
}

// ClientName returns the display name for a client id, or the id itself.
func (c *Catalog) ClientName(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.clients[id]; ok {
		return name
	}
	return id
}

// SupplierName returns the display name for a supplier id, or the id itself.
func (c *Catalog) SupplierName(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.suppliers[id]; ok {
		return name
	}
	return id
}

// readProducts reads the Productos sheet. The name column must be
// present (header "Producto", case-insensitive, as in the legacy
// workbook); a SKU column is optional and falls back to the name.
func readProducts(f *excelize.File) ([]Product, map[string]string, error) {
	rows, err := f.GetRows(sheetProducts)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheetProducts, err)
	}
	if len(rows) == 0 {
		return nil, map[string]string{}, nil
	}

	nameCol, skuCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "producto":
			nameCol = i
		case "sku":
			skuCol = i
		}
	}
	if nameCol < 0 {
		return nil, nil, fmt.Errorf("sheet %s has no 'Producto' column", sheetProducts)
	}

	var products []Product
	bySKU := make(map[string]string)
	for _, row := range rows[1:] {
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		sku := name
		if skuCol >= 0 {
			if v := cell(row, skuCol); v != "" {
				sku = v
			}
		}
		products = append(products, Product{SKU: sku, Name: name})
		bySKU[sku] = name
	}
	return products, bySKU, nil
}

// readNamed reads a two-column id/name sheet (Clientes, Proveedores).
// The first column is the key, the second the display name.
func readNamed(f *excelize.File, sheet string) (map[string]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	out := make(map[string]string)
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		id := cell(row, 0)
		if id == "" {
			continue
		}
		name := cell(row, 1)
		if name == "" {
			name = id
		}
		out[id] = name
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
