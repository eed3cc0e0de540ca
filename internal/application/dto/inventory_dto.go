package dto

import "time"

// InventoryCountRequest producto contado.
type InventoryCountRequest struct {
	ProductID string `json:"product_id"`
	Counted   int64  `json:"counted"`
}

// RecordInventoryRequest body para POST /api/inventories.
type RecordInventoryRequest struct {
	OutletID string                  `json:"outlet_id"`
	Counts   []InventoryCountRequest `json:"counts"`
}

// ReconcileCountRequest cantidad definitiva para un producto del conteo.
type ReconcileCountRequest struct {
	ProductID          string `json:"product_id"`
	ReconciledQuantity int64  `json:"reconciled_quantity"`
}

// ReconcileInventoryRequest body para POST /api/inventories/:id/reconcile.
type ReconcileInventoryRequest struct {
	Counts []ReconcileCountRequest `json:"counts"`
}

// InventoryLineResponse línea del conteo. Variance = counted − amount_in_db.
type InventoryLineResponse struct {
	ProductID          string `json:"product_id"`
	Name               string `json:"name"`
	Counted            int64  `json:"counted"`
	AmountInDB         int64  `json:"amount_in_db"`
	Variance           int64  `json:"variance"`
	Reconciled         bool   `json:"reconciled"`
	ReconciledQuantity *int64 `json:"reconciled_quantity,omitempty"`
}

// InventoryResponse conteo físico.
type InventoryResponse struct {
	ID           string                  `json:"id"`
	BusinessID   string                  `json:"business_id"`
	OutletID     string                  `json:"outlet_id"`
	ActionerID   string                  `json:"actioner_id"`
	Status       string                  `json:"status"`
	Products     []InventoryLineResponse `json:"products"`
	ReconciledBy string                  `json:"reconciled_by,omitempty"`
	CompletedAt  *time.Time              `json:"completed_at,omitempty"`
	ReconciledAt *time.Time              `json:"reconciled_at,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// InventoryListQuery filtros propios (query string) de GET /api/inventories.
type InventoryListQuery struct {
	// paginación, rango de fechas y búsqueda van en ListQuery
	OutletID   string `query:"outletId"`
	BusinessID string `query:"businessId"`
	ActionerID string `query:"actionerId"`
	Status     string `query:"status"`
}
