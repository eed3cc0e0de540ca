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

var _ repository.SalesRepository = (*SalesRepo)(nil)

// SalesRepo ventas en memoria.
type SalesRepo struct{ repo }

func copySale(s entity.Sale) *entity.Sale {
	s.Lines = slices.Clone(s.Lines)
	if s.Customer != nil {
		c := *s.Customer
		s.Customer = &c
	}
	return &s
}

func (r *SalesRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.with(func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return domain.Newf(domain.KindConflict, "venta %s ya existe", sale.ID)
		}
		st.sales[sale.ID] = *copySale(*sale)
		return nil
	})
}

func (r *SalesRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.with(func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return domain.Newf(domain.KindNotFound, "venta %s no encontrada", id)
		}
		out = copySale(s)
		return nil
	})
	return out, err
}

// GetForUpdate las transacciones ya están serializadas por el store.
func (r *SalesRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SalesRepo) MarkReturned(_ context.Context, id string, at time.Time) error {
	return r.with(func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return domain.Newf(domain.KindNotFound, "venta %s no encontrada", id)
		}
		if s.Status != entity.SaleStatusCompleted {
			return domain.Newf(domain.KindConflict, "la venta %s no está COMPLETED", id)
		}
		s.Status = entity.SaleStatusReturned
		s.ReturnedAt = &at
		s.UpdatedAt = at
		st.sales[id] = s
		return nil
	})
}

func (r *SalesRepo) List(_ context.Context, pred scope.Predicate, f repository.SaleFilter, page repository.PageQuery) ([]*entity.Sale, int, error) {
	var matched []*entity.Sale
	err := r.with(func(st *state) error {
		for _, s := range st.sales {
			if !pred.MatchesSale(s.BusinessID, s.OutletID, s.SalesPersonID) || !saleMatches(s, f) {
				continue
			}
			matched = append(matched, copySale(s))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	slices.SortFunc(matched, func(a, b *entity.Sale) int {
		c := compareSale(a, b, page.SortBy)
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

func saleMatches(s entity.Sale, f repository.SaleFilter) bool {
	switch {
	case f.OutletID != "" && s.OutletID != f.OutletID,
		f.BusinessID != "" && s.BusinessID != f.BusinessID,
		f.SalesPersonID != "" && s.SalesPersonID != f.SalesPersonID,
		f.Status != "" && string(s.Status) != f.Status,
		f.PaymentChannel != "" && s.PaymentChannel != f.PaymentChannel,
		f.From != nil && s.CreatedAt.Before(*f.From),
		f.To != nil && !s.CreatedAt.Before(*f.To):
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	if s.Customer != nil && strings.Contains(strings.ToLower(s.Customer.Name), needle) {
		return true
	}
	for _, l := range s.Lines {
		if strings.Contains(strings.ToLower(l.ProductName), needle) {
			return true
		}
	}
	return false
}

func compareSale(a, b *entity.Sale, col string) int {
	switch col {
	case "total_amount":
		return a.TotalAmount.Cmp(b.TotalAmount)
	case "amount_paid":
		return a.AmountPaid.Cmp(b.AmountPaid)
	case "status":
		return cmp.Compare(a.Status, b.Status)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func paginate[T any](rows []T, page repository.PageQuery) []T {
	start := page.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := min(start+page.Limit, len(rows))
	return rows[start:end]
}
