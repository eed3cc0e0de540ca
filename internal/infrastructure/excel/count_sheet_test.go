package excel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
)

func TestExportCountSheet(t *testing.T) {
	final := int64(8)
	inv := &dto.InventoryResponse{
		ID: "inv-1", OutletID: "o1", Status: "RECONCILED",
		CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Products: []dto.InventoryLineResponse{
			{ProductID: "p1", Name: "Arroz", Counted: 8, AmountInDB: 10, Variance: -2, Reconciled: true, ReconciledQuantity: &final},
			{ProductID: "p2", Name: "Sal", Counted: 4, AmountInDB: 4},
		},
	}

	out, err := NewCountSheetExporter().ExportCountSheet(context.Background(), inv)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"Inventario", "inv-1"}, rows[0])
	assert.Equal(t, headers, rows[5])
	assert.Equal(t, []string{"p1", "Arroz", "8", "10", "-2", "Sí", "8"}, rows[6])
	assert.Equal(t, []string{"p2", "Sal", "4", "4", "0", "No", "-"}, rows[7])
}
