package inventory

import (
	"context"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad de la reconciliación: todas las líneas o ninguna.
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(
		products repository.ProductRepository,
		stock repository.StockGuard,
		inventories repository.InventoryRepository,
	) error) error
}

// SheetExporter genera la planilla de conteo de un inventario.
type SheetExporter interface {
	ExportCountSheet(ctx context.Context, inv *dto.InventoryResponse) ([]byte, error)
}
