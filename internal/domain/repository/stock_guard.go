package repository

import (
	"context"

	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
)

// StockGuard único camino permitido para modificar products.quantity.
// Cada primitiva es una sola sentencia condicional sobre la transacción del llamador,
// de modo que un fallo posterior revierte todas las mutaciones previas de la operación.
// Devuelven la fila ya actualizada (cantidad y estado recalculado).
type StockGuard interface {
	// Decrement resta amount solo si quantity >= amount.
	// Errores: domain.ErrNotFound, domain.ErrInsufficientStock.
	Decrement(ctx context.Context, productID string, amount int64) (*entity.Product, error)
	// Increment suma amount sin condición (devoluciones).
	Increment(ctx context.Context, productID string, amount int64) (*entity.Product, error)
	// SetAbsolute sobrescribe la cantidad (reconciliación).
	SetAbsolute(ctx context.Context, productID string, quantity int64) (*entity.Product, error)
}
