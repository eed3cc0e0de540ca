package repository

import (
	"context"
	"time"

	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/scope"
)

// InventoryRepository define el puerto de persistencia para conteos físicos.
type InventoryRepository interface {
	Create(ctx context.Context, inv *entity.Inventory) error
	// GetByID domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Inventory, error)
	// GetForUpdate bloquea el registro hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Inventory, error)
	// Complete PENDING -> COMPLETED; domain.ErrConflict si el estado ya cambió.
	Complete(ctx context.Context, id string, at time.Time) error
	// SaveReconciliation persiste líneas, estado RECONCILED, reconciled_by y reconciled_at.
	// Condicional a que el registro no esté RECONCILED; si lo está, domain.ErrConflict.
	SaveReconciliation(ctx context.Context, inv *entity.Inventory) error
	List(ctx context.Context, pred scope.Predicate, f InventoryFilter, page PageQuery) ([]*entity.Inventory, int, error)
}

// AuditLogRepository sink de auditoría.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
}
