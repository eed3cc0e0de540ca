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

var _ repository.SalesRepository = (*SalesRepo)(nil)

const saleColumns = `s.id, s.business_id, s.outlet_id, s.sales_person_id, s.total_amount, s.discount,
	s.amount_paid, s.remaining_to_pay, s.payment_channel, s.status,
	s.customer_name, s.customer_phone, s.customer_email, s.returned_at, s.created_at, s.updated_at`

// SalesRepo implementación de SalesRepository (tablas sales y sales_products).
type SalesRepo struct {
	q Querier
}

func NewSalesRepository(q Querier) *SalesRepo {
	return &SalesRepo{q: q}
}

// Create inserta cabecera y líneas; line_no conserva el orden de la solicitud.
func (r *SalesRepo) Create(ctx context.Context, s *entity.Sale) error {
	var name, phone, email string
	if s.Customer != nil {
		name, phone, email = s.Customer.Name, s.Customer.Phone, s.Customer.Email
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, business_id, outlet_id, sales_person_id, total_amount, discount,
			amount_paid, remaining_to_pay, payment_channel, status,
			customer_name, customer_phone, customer_email, returned_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		s.ID, s.BusinessID, s.OutletID, s.SalesPersonID, s.TotalAmount, s.Discount,
		s.AmountPaid, s.RemainingToPay, s.PaymentChannel, string(s.Status),
		nullIfEmpty(name), nullIfEmpty(phone), nullIfEmpty(email), s.ReturnedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Newf(domain.KindConflict, "venta %s ya existe", s.ID)
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	for i, l := range s.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sales_products (id, sales_id, product_id, line_no, product_name, quantity, price_at_sale)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, s.ID, l.ProductID, i+1, l.ProductName, l.Quantity, l.PriceAtSale,
		)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

func (r *SalesRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, "")
}

func (r *SalesRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *SalesRepo) get(ctx context.Context, id, lock string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales s WHERE s.id = $1`+lock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Newf(domain.KindNotFound, "venta %s no encontrada", id)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// MarkReturned condicional a COMPLETED; una segunda devolución concurrente no afecta filas.
func (r *SalesRepo) MarkReturned(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales SET status = $2, returned_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4`,
		id, string(entity.SaleStatusReturned), at, string(entity.SaleStatusCompleted))
	if err != nil {
		return fmt.Errorf("mark sale returned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Newf(domain.KindConflict, "la venta %s no está COMPLETED", id)
	}
	return nil
}

func (r *SalesRepo) List(ctx context.Context, pred scope.Predicate, f repository.SaleFilter, page repository.PageQuery) ([]*entity.Sale, int, error) {
	var w whereBuilder
	w.scoped(pred, "s", true)
	w.eqIf("s.outlet_id", f.OutletID)
	w.eqIf("s.business_id", f.BusinessID)
	w.eqIf("s.sales_person_id", f.SalesPersonID)
	w.eqIf("s.status", f.Status)
	w.eqIf("s.payment_channel", f.PaymentChannel)
	if f.From != nil {
		w.add("s.created_at >= %s", *f.From)
	}
	if f.To != nil {
		w.add("s.created_at < %s", *f.To)
	}
	if f.Search != "" {
		w.add(`(s.customer_name ILIKE %[1]s OR EXISTS (
			SELECT 1 FROM sales_products sp WHERE sp.sales_id = s.id AND sp.product_name ILIKE %[1]s))`,
			likePattern(f.Search))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales s`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	// SortBy y SortOrder ya vienen validados contra la lista blanca.
	query := fmt.Sprintf(`SELECT %s FROM sales s%s ORDER BY s.%s %s, s.id %s LIMIT %s OFFSET %s`,
		saleColumns, w.sql(), page.SortBy, page.SortOrder, page.SortOrder,
		w.next(page.Limit), w.next(page.Offset()))
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	list := []*entity.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	if err := r.loadLines(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// loadLines completa las líneas de varias ventas en una sola consulta.
func (r *SalesRepo) loadLines(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Sale, len(sales))
	ids := make([]string, 0, len(sales))
	for _, s := range sales {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sales_id, product_id, product_name, quantity, price_at_sale
		FROM sales_products WHERE sales_id = ANY($1) ORDER BY sales_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SalesID, &l.ProductID, &l.ProductName, &l.Quantity, &l.PriceAtSale); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		if s := byID[l.SalesID]; s != nil {
			s.Lines = append(s.Lines, l)
		}
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var status string
	var name, phone, email *string
	err := row.Scan(&s.ID, &s.BusinessID, &s.OutletID, &s.SalesPersonID, &s.TotalAmount, &s.Discount,
		&s.AmountPaid, &s.RemainingToPay, &s.PaymentChannel, &status,
		&name, &phone, &email, &s.ReturnedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Status = entity.SaleStatus(status)
	if name != nil || phone != nil || email != nil {
		s.Customer = &entity.Customer{Name: deref(name), Phone: deref(phone), Email: deref(email)}
	}
	return &s, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
