package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/scope"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const inventoryColumns = `i.id, i.business_id, i.outlet_id, i.actioner_id, i.status, i.products,
	COALESCE(i.reconciled_by, ''), i.completed_at, i.reconciled_at, i.created_at, i.updated_at`

// InventoryRepo conteos físicos; las líneas viven en una columna JSONB.
type InventoryRepo struct {
	q Querier
}

func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

func (r *InventoryRepo) Create(ctx context.Context, inv *entity.Inventory) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventories (id, business_id, outlet_id, actioner_id, status, products, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.BusinessID, inv.OutletID, inv.ActionerID, string(inv.Status), inv.Products, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Newf(domain.KindConflict, "inventario %s ya existe", inv.ID)
		}
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.get(ctx, id, "")
}

func (r *InventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *InventoryRepo) get(ctx context.Context, id, lock string) (*entity.Inventory, error) {
	inv, err := scanInventory(r.q.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventories i WHERE i.id = $1`+lock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Newf(domain.KindNotFound, "inventario %s no encontrado", id)
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return inv, nil
}

func (r *InventoryRepo) Complete(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventories SET status = $2, completed_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4`,
		id, string(entity.InventoryStatusCompleted), at, string(entity.InventoryStatusPending))
	if err != nil {
		return fmt.Errorf("complete inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, id, "el inventario %s no está PENDING")
	}
	return nil
}

func (r *InventoryRepo) SaveReconciliation(ctx context.Context, inv *entity.Inventory) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventories
		SET status = $2, products = $3, reconciled_by = $4, reconciled_at = $5, updated_at = $6
		WHERE id = $1 AND status <> $2`,
		inv.ID, string(entity.InventoryStatusReconciled), inv.Products, nullIfEmpty(inv.ReconciledBy), inv.ReconciledAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save reconciliation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, inv.ID, "el inventario %s ya fue reconciliado")
	}
	return nil
}

// missingOr distingue NOT_FOUND del CONFLICT de un update condicional sin filas.
func (r *InventoryRepo) missingOr(ctx context.Context, id, conflictMsg string) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventories WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check inventory: %w", err)
	}
	if !exists {
		return domain.Newf(domain.KindNotFound, "inventario %s no encontrado", id)
	}
	return domain.Newf(domain.KindConflict, conflictMsg, id)
}

func (r *InventoryRepo) List(ctx context.Context, pred scope.Predicate, f repository.InventoryFilter, page repository.PageQuery) ([]*entity.Inventory, int, error) {
	var w whereBuilder
	w.scoped(pred, "i", false)
	w.eqIf("i.outlet_id", f.OutletID)
	w.eqIf("i.business_id", f.BusinessID)
	w.eqIf("i.actioner_id", f.ActionerID)
	w.eqIf("i.status", f.Status)
	if f.From != nil {
		w.add("i.created_at >= %s", *f.From)
	}
	if f.To != nil {
		w.add("i.created_at < %s", *f.To)
	}
	if f.Search != "" {
		w.add(`EXISTS (SELECT 1 FROM jsonb_array_elements(i.products) e WHERE e->>'name' ILIKE %s)`, likePattern(f.Search))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventories i`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventories: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM inventories i%s ORDER BY i.%s %s, i.id %s LIMIT %s OFFSET %s`,
		inventoryColumns, w.sql(), page.SortBy, page.SortOrder, page.SortOrder,
		w.next(page.Limit), w.next(page.Offset()))
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventories: %w", err)
	}
	defer rows.Close()

	list := []*entity.Inventory{}
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

func scanInventory(row pgx.Row) (*entity.Inventory, error) {
	var inv entity.Inventory
	var status string
	err := row.Scan(&inv.ID, &inv.BusinessID, &inv.OutletID, &inv.ActionerID, &status, &inv.Products,
		&inv.ReconciledBy, &inv.CompletedAt, &inv.ReconciledAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.Status = entity.InventoryStatus(status)
	return &inv, nil
}
