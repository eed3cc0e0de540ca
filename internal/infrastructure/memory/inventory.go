package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/scope"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo conteos físicos en memoria.
type InventoryRepo struct{ repo }

func copyInventory(inv entity.Inventory) *entity.Inventory {
	inv.Products = slices.Clone(inv.Products)
	for i := range inv.Products {
		if q := inv.Products[i].ReconciledQuantity; q != nil {
			v := *q
			inv.Products[i].ReconciledQuantity = &v
		}
	}
	return &inv
}

func (r *InventoryRepo) Create(_ context.Context, inv *entity.Inventory) error {
	return r.with(func(st *state) error {
		if _, ok := st.inventories[inv.ID]; ok {
			return domain.Newf(domain.KindConflict, "inventario %s ya existe", inv.ID)
		}
		st.inventories[inv.ID] = *copyInventory(*inv)
		return nil
	})
}

func (r *InventoryRepo) GetByID(_ context.Context, id string) (*entity.Inventory, error) {
	var out *entity.Inventory
	err := r.with(func(st *state) error {
		inv, ok := st.inventories[id]
		if !ok {
			return domain.Newf(domain.KindNotFound, "inventario %s no encontrado", id)
		}
		out = copyInventory(inv)
		return nil
	})
	return out, err
}

func (r *InventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.GetByID(ctx, id)
}

func (r *InventoryRepo) Complete(_ context.Context, id string, at time.Time) error {
	return r.with(func(st *state) error {
		inv, ok := st.inventories[id]
		if !ok {
			return domain.Newf(domain.KindNotFound, "inventario %s no encontrado", id)
		}
		if !inv.Status.CanAdvanceTo(entity.InventoryStatusCompleted) {
			return domain.Newf(domain.KindConflict, "el inventario %s no está PENDING", id)
		}
		inv.Status = entity.InventoryStatusCompleted
		inv.CompletedAt = &at
		inv.UpdatedAt = at
		st.inventories[id] = inv
		return nil
	})
}

func (r *InventoryRepo) SaveReconciliation(_ context.Context, inv *entity.Inventory) error {
	return r.with(func(st *state) error {
		cur, ok := st.inventories[inv.ID]
		if !ok {
			return domain.Newf(domain.KindNotFound, "inventario %s no encontrado", inv.ID)
		}
		if !cur.Status.CanAdvanceTo(entity.InventoryStatusReconciled) {
			return domain.Newf(domain.KindConflict, "el inventario %s ya fue reconciliado", inv.ID)
		}
		st.inventories[inv.ID] = *copyInventory(*inv)
		return nil
	})
}

func (r *InventoryRepo) List(_ context.Context, pred scope.Predicate, f repository.InventoryFilter, page repository.PageQuery) ([]*entity.Inventory, int, error) {
	var matched []*entity.Inventory
	err := r.with(func(st *state) error {
		for _, inv := range st.inventories {
			if !pred.MatchesInventory(inv.BusinessID, inv.OutletID) || !inventoryMatches(inv, f) {
				continue
			}
			matched = append(matched, copyInventory(inv))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(matched, func(a, b *entity.Inventory) int {
		var c int
		if page.SortBy == "status" {
			c = cmp.Compare(a.Status, b.Status)
		} else {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if page.SortOrder == "DESC" {
			return -c
		}
		return c
	})
	return paginate(matched, page), len(matched), nil
}

func inventoryMatches(inv entity.Inventory, f repository.InventoryFilter) bool {
	switch {
	case f.OutletID != "" && inv.OutletID != f.OutletID,
		f.BusinessID != "" && inv.BusinessID != f.BusinessID,
		f.ActionerID != "" && inv.ActionerID != f.ActionerID,
		f.Status != "" && string(inv.Status) != f.Status,
		f.From != nil && inv.CreatedAt.Before(*f.From),
		f.To != nil && !inv.CreatedAt.Before(*f.To):
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, l := range inv.Products {
		if strings.Contains(strings.ToLower(l.Name), needle) {
			return true
		}
	}
	return false
}
