package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
)

var _ repository.StockGuard = (*StockGuard)(nil)

// StockGuard cada primitiva es un único UPDATE ... RETURNING: la condición y la escritura
// ocurren en la misma sentencia bajo el bloqueo de fila, sin lectura previa.
type StockGuard struct {
	q Querier
}

func NewStockGuard(q Querier) *StockGuard {
	return &StockGuard{q: q}
}

// statusFor expresión SQL equivalente a entity.DeriveStockStatus para la nueva cantidad.
func statusFor(newQty string) string {
	return fmt.Sprintf(`CASE WHEN %[1]s <= 0 THEN '%[2]s' WHEN %[1]s <= reorder_level THEN '%[3]s' ELSE '%[4]s' END`,
		newQty, entity.StockStatusOutOfStock, entity.StockStatusLowStock, entity.StockStatusInStock)
}

var (
	decrementSQL = `UPDATE products
		SET quantity = quantity - $2, status = ` + statusFor("quantity - $2") + `, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
		RETURNING ` + productColumns
	incrementSQL = `UPDATE products
		SET quantity = quantity + $2, status = ` + statusFor("quantity + $2") + `, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns
	setAbsoluteSQL = `UPDATE products
		SET quantity = $2, status = ` + statusFor("$2::bigint") + `, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns
)

func (g *StockGuard) Decrement(ctx context.Context, productID string, amount int64) (*entity.Product, error) {
	if amount <= 0 {
		return nil, domain.Invalidf("la cantidad a descontar debe ser mayor a 0")
	}
	p, err := scanProduct(g.q.QueryRow(ctx, decrementSQL, productID, amount))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	// Cero filas: el producto no existe o no alcanza.
	var name string
	var available int64
	err = g.q.QueryRow(ctx, `SELECT name, quantity FROM products WHERE id = $1`, productID).Scan(&name, &available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Newf(domain.KindNotFound, "producto %s no encontrado", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("check stock: %w", err)
	}
	return nil, domain.Newf(domain.KindInsufficientStock,
		"stock insuficiente para %s: disponible %d, solicitado %d", name, available, amount)
}

func (g *StockGuard) Increment(ctx context.Context, productID string, amount int64) (*entity.Product, error) {
	if amount <= 0 {
		return nil, domain.Invalidf("la cantidad a reponer debe ser mayor a 0")
	}
	return g.exec(ctx, "increment stock", incrementSQL, productID, amount)
}

func (g *StockGuard) SetAbsolute(ctx context.Context, productID string, quantity int64) (*entity.Product, error) {
	if quantity < 0 {
		return nil, domain.Invalidf("la cantidad no puede ser negativa")
	}
	return g.exec(ctx, "set stock", setAbsoluteSQL, productID, quantity)
}

func (g *StockGuard) exec(ctx context.Context, op, sql, productID string, n int64) (*entity.Product, error) {
	p, err := scanProduct(g.q.QueryRow(ctx, sql, productID, n))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Newf(domain.KindNotFound, "producto %s no encontrado", productID)
		}
		if isOutOfRange(err) {
			return nil, domain.Invalidf("la cantidad de %s excede el máximo admitido", productID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
