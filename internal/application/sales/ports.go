package sales

import (
	"context"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, con repositorios atados a esa tx.
// Si fn devuelve error (o el contexto expira) se revierte todo, incluidas las mutaciones de stock.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		products repository.ProductRepository,
		stock repository.StockGuard,
		sales repository.SalesRepository,
	) error) error
}

// ReceiptGenerator puerto de salida para el comprobante de venta.
type ReceiptGenerator interface {
	GenerateReceipt(ctx context.Context, sale *dto.SaleResponse) ([]byte, error)
}
