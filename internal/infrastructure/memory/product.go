package memory

import (
	"context"
	"math"
	"slices"
	"strings"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.StockGuard        = (*StockGuard)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ repo }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.with(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.Newf(domain.KindConflict, "producto %s ya existe", p.ID)
		}
		cp := *p
		cp.Status = entity.DeriveStockStatus(cp.Quantity, cp.ReorderLevel)
		st.products[p.ID] = cp
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.Newf(domain.KindNotFound, "producto %s no encontrado", id)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *ProductRepo) ListByOutlet(_ context.Context, outletID string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.with(func(st *state) error {
		for _, p := range st.products {
			if p.OutletID == outletID {
				out = append(out, &p)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Product) int { return strings.Compare(a.Name, b.Name) })
	return out, err
}

// StockGuard cada primitiva verifica y escribe bajo el mismo candado, sin ventana entre ambas.
type StockGuard struct{ repo }

func (g *StockGuard) Decrement(_ context.Context, productID string, amount int64) (*entity.Product, error) {
	if amount <= 0 {
		return nil, domain.Invalidf("la cantidad a descontar debe ser mayor a 0")
	}
	return g.apply(productID, func(p *entity.Product) error {
		if p.Quantity < amount {
			return domain.Newf(domain.KindInsufficientStock, "stock insuficiente para %s: disponible %d, solicitado %d", p.Name, p.Quantity, amount)
		}
		p.Quantity -= amount
		return nil
	})
}

func (g *StockGuard) Increment(_ context.Context, productID string, amount int64) (*entity.Product, error) {
	if amount <= 0 {
		return nil, domain.Invalidf("la cantidad a reponer debe ser mayor a 0")
	}
	return g.apply(productID, func(p *entity.Product) error {
		if p.Quantity > math.MaxInt64-amount {
			return domain.Invalidf("la reposición de %s excede la cantidad máxima admitida", p.Name)
		}
		p.Quantity += amount
		return nil
	})
}

func (g *StockGuard) SetAbsolute(_ context.Context, productID string, quantity int64) (*entity.Product, error) {
	if quantity < 0 {
		return nil, domain.Invalidf("la cantidad no puede ser negativa")
	}
	return g.apply(productID, func(p *entity.Product) error {
		p.Quantity = quantity
		return nil
	})
}

func (g *StockGuard) apply(productID string, mutate func(p *entity.Product) error) (*entity.Product, error) {
	var out *entity.Product
	err := g.with(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.Newf(domain.KindNotFound, "producto %s no encontrado", productID)
		}
		if err := mutate(&p); err != nil {
			return err
		}
		p.Status = entity.DeriveStockStatus(p.Quantity, p.ReorderLevel)
		p.UpdatedAt = g.store.now()
		st.products[productID] = p
		out = &p
		return nil
	})
	return out, err
}
