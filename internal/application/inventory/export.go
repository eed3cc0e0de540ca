package inventory

import (
	"context"
	"fmt"

	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
)

// ExportUseCase descarga la planilla de conteo en XLSX.
type ExportUseCase struct {
	reconciliation *ReconciliationUseCase
	exporter       SheetExporter
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(reconciliation *ReconciliationUseCase, exporter SheetExporter) *ExportUseCase {
	return &ExportUseCase{reconciliation: reconciliation, exporter: exporter}
}

// ExportCountSheet devuelve (xlsx, nombre de archivo).
func (uc *ExportUseCase) ExportCountSheet(ctx context.Context, actor entity.Actor, id string) ([]byte, string, error) {
	inv, err := uc.reconciliation.GetInventoryByID(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.exporter.ExportCountSheet(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("export: generar planilla: %w", err)
	}
	return data, fmt.Sprintf("inventario_%s.xlsx", inv.ID), nil
}
