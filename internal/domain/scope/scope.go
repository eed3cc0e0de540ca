// Package scope traduce el actor autenticado en el predicado de visibilidad
// que filtra toda lectura y escritura del ledger.
package scope

import (
	"strings"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
)

// Predicate restricción de visibilidad. Un campo vacío no restringe.
//
//	ADMIN           -> sin restricción
//	OWNER           -> business_id
//	STORE_EXECUTIVE -> outlet_id
//	SALES_REP       -> outlet_id (+ sales_person_id solo para ventas)
type Predicate struct {
	Unrestricted  bool
	BusinessID    string
	OutletID      string
	SalesPersonID string
}

// Resolve construye el predicado. Roles desconocidos o actores sin el ancla
// que su rol exige se rechazan con FORBIDDEN.
func Resolve(actor entity.Actor) (Predicate, error) {
	switch actor.Role {
	case entity.RoleAdmin:
		return Predicate{Unrestricted: true}, nil
	case entity.RoleOwner:
		if actor.BusinessID == "" {
			return Predicate{}, domain.Newf(domain.KindForbidden, "el propietario no tiene negocio asignado")
		}
		return Predicate{BusinessID: actor.BusinessID}, nil
	case entity.RoleStoreExecutive:
		if actor.OutletID == "" {
			return Predicate{}, domain.Newf(domain.KindForbidden, "el usuario no tiene sucursal asignada")
		}
		return Predicate{BusinessID: actor.BusinessID, OutletID: actor.OutletID}, nil
	case entity.RoleSalesRep:
		if actor.OutletID == "" {
			return Predicate{}, domain.Newf(domain.KindForbidden, "el usuario no tiene sucursal asignada")
		}
		return Predicate{BusinessID: actor.BusinessID, OutletID: actor.OutletID, SalesPersonID: actor.UserID}, nil
	default:
		return Predicate{}, domain.Newf(domain.KindForbidden, "rol no reconocido: %q", actor.Role)
	}
}

// MatchesProduct indica si un producto (o inventario) de ese negocio/sucursal es visible.
func (p Predicate) MatchesProduct(businessID, outletID string) bool {
	if p.Unrestricted {
		return true
	}
	if p.BusinessID != "" && p.BusinessID != businessID {
		return false
	}
	if p.OutletID != "" && p.OutletID != outletID {
		return false
	}
	return true
}

// MatchesInventory mismo criterio que productos: el actioner no restringe.
func (p Predicate) MatchesInventory(businessID, outletID string) bool {
	return p.MatchesProduct(businessID, outletID)
}

// MatchesSale agrega la restricción por vendedor.
func (p Predicate) MatchesSale(businessID, outletID, salesPersonID string) bool {
	if !p.MatchesProduct(businessID, outletID) {
		return false
	}
	return p.SalesPersonID == "" || p.SalesPersonID == salesPersonID
}

// CoversBusiness indica si un filtro explícito por negocio cae dentro del predicado.
func (p Predicate) CoversBusiness(businessID string) bool {
	if p.Unrestricted || businessID == "" {
		return true
	}
	if p.BusinessID != "" {
		return p.BusinessID == businessID
	}
	// actores anclados solo a sucursal sin negocio conocido
	return false
}

// CoversOutlet indica si una sucursal explícita cae dentro del predicado.
// Para OWNER la pertenencia de la sucursal al negocio se verifica contra los datos.
func (p Predicate) CoversOutlet(outletID string) bool {
	if p.Unrestricted || outletID == "" {
		return true
	}
	if p.OutletID != "" {
		return p.OutletID == outletID
	}
	return true
}

// Key identificador estable del predicado, para claves de caché.
// Incluye cada campo no vacío: dos predicados distintos nunca comparten clave.
func (p Predicate) Key() string {
	if p.Unrestricted {
		return "all"
	}
	parts := make([]string, 0, 6)
	if p.BusinessID != "" {
		parts = append(parts, "business", p.BusinessID)
	}
	if p.OutletID != "" {
		parts = append(parts, "outlet", p.OutletID)
	}
	if p.SalesPersonID != "" {
		parts = append(parts, "rep", p.SalesPersonID)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ":")
}

// TagLevel nivel (all, business:<id>, outlet:<id>) con que se etiquetan las lecturas en caché.
func (p Predicate) TagLevel() string {
	switch {
	case p.Unrestricted:
		return "all"
	case p.OutletID != "":
		return "outlet:" + p.OutletID
	default:
		return "business:" + p.BusinessID
	}
}
