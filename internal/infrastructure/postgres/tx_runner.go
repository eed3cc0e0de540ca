package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brobot64/shopmasterback-v1/internal/application/inventory"
	"github.com/Brobot64/shopmasterback-v1/internal/application/sales"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
)

var (
	_ sales.TxRunner     = (*TxRunner)(nil)
	_ inventory.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run abre la tx, ejecuta fn y hace Commit; cualquier error (o panic) deja la tx en Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSales repos del ledger atados a una misma tx (recordSale, devolución).
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	products repository.ProductRepository,
	stock repository.StockGuard,
	sales repository.SalesRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewProductRepository(q), NewStockGuard(q), NewSalesRepository(q))
	})
}

// RunInventory repos de conteo y stock atados a una misma tx.
func (r *TxRunner) RunInventory(ctx context.Context, fn func(
	products repository.ProductRepository,
	stock repository.StockGuard,
	inventories repository.InventoryRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewProductRepository(q), NewStockGuard(q), NewInventoryRepository(q))
	})
}
