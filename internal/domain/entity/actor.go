package entity

import "time"

// Role rol del actor autenticado. La jerarquía es ADMIN > OWNER > STORE_EXECUTIVE > SALES_REP.
type Role string

// Roles válidos.
const (
	RoleAdmin          Role = "ADMIN"
	RoleOwner          Role = "OWNER"
	RoleStoreExecutive Role = "STORE_EXECUTIVE"
	RoleSalesRep       Role = "SALES_REP"
)

// Valid indica si el rol pertenece al conjunto cerrado.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleStoreExecutive, RoleSalesRep:
		return true
	}
	return false
}

// Actor quien ejecuta la operación. Se deriva del token de sesión; no se persiste.
type Actor struct {
	UserID     string
	Role       Role
	BusinessID string // vacío para ADMIN
	OutletID   string // solo STORE_EXECUTIVE y SALES_REP
}

// HasRole indica si el actor tiene alguno de los roles dados.
func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// AuditLog registro de auditoría de una operación del ledger.
type AuditLog struct {
	ID           string
	ActorID      string
	Action       string
	Description  string
	ResourceType string
	ResourceID   string
	BusinessID   string
	OutletID     string
	CreatedAt    time.Time
}

// Acciones auditadas.
const (
	AuditSaleRecorded        = "SALE_RECORDED"
	AuditSaleReturned        = "SALE_RETURNED"
	AuditInventoryRecorded   = "INVENTORY_RECORDED"
	AuditInventoryCompleted  = "INVENTORY_COMPLETED"
	AuditInventoryReconciled = "INVENTORY_RECONCILED"
)
