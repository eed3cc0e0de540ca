// Package excel exporta planillas de conteo físico en formato XLSX.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/application/inventory"
)

var _ inventory.SheetExporter = (*CountSheetExporter)(nil)

const sheetName = "Conteo"

var headers = []string{"Producto ID", "Producto", "Contado", "En sistema", "Diferencia", "Reconciliado", "Cantidad final"}

// CountSheetExporter implementa inventory.SheetExporter con excelize.
type CountSheetExporter struct{}

func NewCountSheetExporter() *CountSheetExporter { return &CountSheetExporter{} }

// ExportCountSheet una hoja con cabecera del inventario (filas 1-4) y una fila por producto contado.
func (e *CountSheetExporter) ExportCountSheet(_ context.Context, inv *dto.InventoryResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#00467F"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}
	negative, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "#AA1E1E"}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}

	meta := [][]any{
		{"Inventario", inv.ID},
		{"Sucursal", inv.OutletID},
		{"Estado", inv.Status},
		{"Registrado", inv.CreatedAt.Format("2006-01-02 15:04")},
	}
	for i, m := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetName, cell, &m); err != nil {
			return nil, fmt.Errorf("excel: cabecera: %w", err)
		}
		_ = f.SetCellStyle(sheetName, cell, cell, bold)
	}

	const firstRow = 6
	start, _ := excelize.CoordinatesToCellName(1, firstRow)
	end, _ := excelize.CoordinatesToCellName(len(headers), firstRow)
	if err := f.SetSheetRow(sheetName, start, &headers); err != nil {
		return nil, fmt.Errorf("excel: títulos: %w", err)
	}
	_ = f.SetCellStyle(sheetName, start, end, header)

	for i, l := range inv.Products {
		r := firstRow + 1 + i
		final := any("-")
		if l.ReconciledQuantity != nil {
			final = *l.ReconciledQuantity
		}
		reconciled := "No"
		if l.Reconciled {
			reconciled = "Sí"
		}
		values := []any{l.ProductID, l.Name, l.Counted, l.AmountInDB, l.Variance, reconciled, final}
		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", r, err)
		}
		if l.Variance < 0 {
			v, _ := excelize.CoordinatesToCellName(5, r)
			_ = f.SetCellStyle(sheetName, v, v, negative)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "B", 32)
	_ = f.SetColWidth(sheetName, "C", "G", 14)
	_ = f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: firstRow, TopLeftCell: fmt.Sprintf("A%d", firstRow+1), ActivePane: "bottomLeft",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
