package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock derivados de la cantidad frente al nivel de reorden.
const (
	StockStatusInStock    = "IN_STOCK"
	StockStatusLowStock   = "LOW_STOCK"
	StockStatusOutOfStock = "OUT_OF_STOCK"
)

// Product representa un producto de una sucursal (outlet) de un negocio.
// Quantity solo se modifica a través del StockGuard; Status se recalcula en la misma sentencia.
type Product struct {
	ID           string
	BusinessID   string
	OutletID     string
	SKU          string
	Name         string
	Price        decimal.Decimal // precio de venta vigente
	Quantity     int64           // siempre >= 0
	ReorderLevel int64
	Status       string // IN_STOCK, LOW_STOCK, OUT_OF_STOCK
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeriveStockStatus calcula el estado del producto a partir de su cantidad.
func DeriveStockStatus(quantity, reorderLevel int64) string {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= reorderLevel:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
