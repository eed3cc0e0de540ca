package repository

import (
	"context"
	"time"

	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/scope"
)

// SalesRepository define el puerto de persistencia para ventas y sus líneas.
type SalesRepository interface {
	// Create inserta cabecera y líneas. Debe correr dentro de la tx del ledger.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve la venta con sus líneas; domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate igual que GetByID pero bloquea la fila de cabecera (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// MarkReturned pasa la venta a RETURNED solo si sigue COMPLETED; si no, domain.ErrConflict.
	MarkReturned(ctx context.Context, id string, at time.Time) error
	// List aplica el predicado de alcance AND los filtros, con paginación.
	List(ctx context.Context, pred scope.Predicate, f SaleFilter, page PageQuery) ([]*entity.Sale, int, error)
}
