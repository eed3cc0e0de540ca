package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea solicitada en POST /api/sales.
type SaleLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// CustomerDTO datos del cliente (copia al momento de la venta).
type CustomerDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// RecordSaleRequest body para POST /api/sales. El precio no se acepta del cliente:
// se toma del producto dentro de la transacción.
type RecordSaleRequest struct {
	Lines          []SaleLineRequest `json:"lines"`
	Discount       *decimal.Decimal  `json:"discount,omitempty"`
	AmountPaid     *decimal.Decimal  `json:"amount_paid"`
	PaymentChannel string            `json:"payment_channel"`
	Customer       *CustomerDTO      `json:"customer,omitempty"`
}

// UpdateSaleStatusRequest body para PATCH /api/sales/:id/status.
type UpdateSaleStatusRequest struct {
	Status string `json:"status"`
}

// SaleLineResponse línea de venta.
type SaleLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta con sus líneas.
type SaleResponse struct {
	ID             string             `json:"id"`
	BusinessID     string             `json:"business_id"`
	OutletID       string             `json:"outlet_id"`
	SalesPersonID  string             `json:"sales_person_id"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Discount       decimal.Decimal    `json:"discount"`
	AmountPaid     decimal.Decimal    `json:"amount_paid"`
	RemainingToPay decimal.Decimal    `json:"remaining_to_pay"`
	PaymentChannel string             `json:"payment_channel"`
	Status         string             `json:"status"`
	Customer       *CustomerDTO       `json:"customer,omitempty"`
	Lines          []SaleLineResponse `json:"lines"`
	ReturnedAt     *time.Time         `json:"returned_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// SaleListQuery filtros propios (query string) de GET /api/sales.
type SaleListQuery struct {
	// paginación, rango de fechas y búsqueda van en ListQuery
	OutletID       string `query:"outletId"`
	BusinessID     string `query:"businessId"`
	SalesPersonID  string `query:"salesPersonId"`
	Status         string `query:"status"`
	PaymentChannel string `query:"paymentChannel"`
}
