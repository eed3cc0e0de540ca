package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
)

func TestGenerateReceipt_ProducePDF(t *testing.T) {
	g := NewReceiptGenerator("Tienda Centro", language.Spanish)
	sale := &dto.SaleResponse{
		ID:             "0b6f8a8e-1c3d-4a55-9d1e-3f1b2c4d5e6f",
		OutletID:       "o1",
		SalesPersonID:  "u1",
		TotalAmount:    decimal.RequireFromString("12.50"),
		Discount:       decimal.Zero,
		AmountPaid:     decimal.RequireFromString("20.00"),
		RemainingToPay: decimal.RequireFromString("-7.50"),
		PaymentChannel: "CASH",
		Status:         "COMPLETED",
		Customer:       &dto.CustomerDTO{Name: "Ana"},
		Lines: []dto.SaleLineResponse{
			{ProductName: "Arroz", Quantity: 2, PriceAtSale: decimal.RequireFromString("5.00"), Subtotal: decimal.RequireFromString("10.00")},
			{ProductName: "Sal", Quantity: 1, PriceAtSale: decimal.RequireFromString("2.50"), Subtotal: decimal.RequireFromString("2.50")},
		},
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	out, err := g.GenerateReceipt(context.Background(), sale)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestAmount_SeparadoresPorIdioma(t *testing.T) {
	en := NewReceiptGenerator("x", language.English)
	assert.Equal(t, "$1,234,567.50", en.amount(decimal.RequireFromString("1234567.5")))

	es := NewReceiptGenerator("x", language.Spanish)
	assert.Equal(t, "$1.234.567,50", es.amount(decimal.RequireFromString("1234567.5")))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "#abc", shortID("abc"))
	assert.Equal(t, "#0b6f8a8e", shortID("0b6f8a8e-1c3d"))
}
