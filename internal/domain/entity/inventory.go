package entity

import "time"

// InventoryStatus estado de un conteo físico. Solo avanza: PENDING -> COMPLETED -> RECONCILED.
type InventoryStatus string

const (
	InventoryStatusPending    InventoryStatus = "PENDING"
	InventoryStatusCompleted  InventoryStatus = "COMPLETED"
	InventoryStatusReconciled InventoryStatus = "RECONCILED"
)

func (s InventoryStatus) rank() int {
	switch s {
	case InventoryStatusPending:
		return 1
	case InventoryStatusCompleted:
		return 2
	case InventoryStatusReconciled:
		return 3
	}
	return 0
}

// Valid indica si el estado pertenece al conjunto cerrado.
func (s InventoryStatus) Valid() bool { return s.rank() > 0 }

// CanAdvanceTo indica si la transición es hacia adelante (nunca hacia atrás ni al mismo estado).
func (s InventoryStatus) CanAdvanceTo(next InventoryStatus) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

// InventoryLine producto contado. AmountInDB es la foto del stock al registrar, no el valor vivo.
type InventoryLine struct {
	ProductID          string `json:"product_id"`
	Name               string `json:"name"`
	Counted            int64  `json:"counted"`
	AmountInDB         int64  `json:"amount_in_db"`
	Reconciled         bool   `json:"reconciled"`
	ReconciledQuantity *int64 `json:"reconciled_quantity,omitempty"`
}

// Variance diferencia entre lo contado y lo registrado al momento del conteo.
func (l InventoryLine) Variance() int64 {
	return l.Counted - l.AmountInDB
}

// Inventory conteo físico de una sucursal.
type Inventory struct {
	ID           string
	BusinessID   string
	OutletID     string
	ActionerID   string
	Status       InventoryStatus
	Products     []InventoryLine
	ReconciledBy string
	CompletedAt  *time.Time
	ReconciledAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LineIndex devuelve la posición de la línea del producto, o -1.
func (inv *Inventory) LineIndex(productID string) int {
	for i, l := range inv.Products {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
