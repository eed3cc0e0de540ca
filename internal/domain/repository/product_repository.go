package repository

import (
	"context"

	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
)

// ProductRepository define el puerto de lectura de productos (DIP).
// La cantidad nunca se escribe por aquí: ver StockGuard.
type ProductRepository interface {
	// Create alta de producto (lo usa el seed; la gestión de catálogo es externa).
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve domain.ErrNotFound si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListByOutlet(ctx context.Context, outletID string) ([]*entity.Product, error)
}
