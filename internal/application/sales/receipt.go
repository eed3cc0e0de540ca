package sales

import (
	"context"
	"fmt"

	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
)

// ReceiptUseCase genera el comprobante PDF de una venta visible para el actor.
type ReceiptUseCase struct {
	ledger    *LedgerUseCase
	generator ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(ledger *LedgerUseCase, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{ledger: ledger, generator: generator}
}

// DownloadReceipt devuelve (pdf, nombre de archivo). Misma política de alcance que GetSaleByID.
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, actor entity.Actor, saleID string) ([]byte, string, error) {
	sale, err := uc.ledger.GetSaleByID(ctx, actor, saleID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateReceipt(ctx, sale)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("venta_%s.pdf", sale.ID), nil
}
