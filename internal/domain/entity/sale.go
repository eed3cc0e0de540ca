package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus estado de una venta. Solo COMPLETED -> RETURNED está implementado.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusReturned  SaleStatus = "RETURNED"
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// Valid indica si el estado pertenece al conjunto cerrado.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusReturned, SaleStatusPending, SaleStatusCancelled:
		return true
	}
	return false
}

// Canales de pago aceptados.
const (
	PaymentChannelCash     = "CASH"
	PaymentChannelCard     = "CARD"
	PaymentChannelTransfer = "TRANSFER"
	PaymentChannelPOS      = "POS"
)

// ValidPaymentChannel indica si el canal pertenece al conjunto cerrado.
func ValidPaymentChannel(ch string) bool {
	switch ch {
	case PaymentChannelCash, PaymentChannelCard, PaymentChannelTransfer, PaymentChannelPOS:
		return true
	}
	return false
}

// Customer copia de los datos del cliente al momento de la venta.
type Customer struct {
	Name  string
	Phone string
	Email string
}

// Sale cabecera de una venta. Se crea una sola vez; después solo cambia Status.
type Sale struct {
	ID             string
	BusinessID     string
	OutletID       string
	SalesPersonID  string
	TotalAmount    decimal.Decimal // Σ(qty × priceAtSale) − discount
	Discount       decimal.Decimal
	AmountPaid     decimal.Decimal
	RemainingToPay decimal.Decimal // TotalAmount − AmountPaid
	PaymentChannel string
	Status         SaleStatus
	Customer       *Customer
	Lines          []SaleLine
	ReturnedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SaleLine línea de venta (tabla sales_products). Inmutable después de creada:
// ProductName y PriceAtSale son copias que no cambian si el producto se edita luego.
type SaleLine struct {
	ID          string
	SalesID     string
	ProductID   string
	ProductName string
	Quantity    int64
	PriceAtSale decimal.Decimal
}

// Subtotal cantidad × precio de la línea.
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.PriceAtSale.Mul(decimal.NewFromInt(l.Quantity))
}

// LinesSubtotal suma los subtotales de las líneas.
func LinesSubtotal(lines []SaleLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// ComputeTotals devuelve (totalAmount, remainingToPay) redondeados a 2 decimales.
func ComputeTotals(lines []SaleLine, discount, amountPaid decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	total := LinesSubtotal(lines).Sub(discount).Round(2)
	return total, total.Sub(amountPaid).Round(2)
}
