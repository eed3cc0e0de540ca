package repository

import (
	"slices"
	"strings"
	"time"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
)

// Límites de paginación.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Columnas de orden permitidas por listado.
var (
	SaleSortColumns      = []string{"created_at", "total_amount", "amount_paid", "status"}
	InventorySortColumns = []string{"created_at", "status"}
)

// PageQuery paginación por offset con orden.
type PageQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // ASC | DESC
}

// Normalize aplica valores por defecto y valida contra la lista blanca de columnas.
// Cero significa "no enviado"; valores negativos o fuera de rango son VALIDATION.
func (q PageQuery) Normalize(sortable []string) (PageQuery, error) {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Page < 1 {
		return q, domain.Invalidf("page debe ser >= 1")
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return q, domain.Invalidf("limit debe estar entre 1 y %d", MaxLimit)
	}
	if q.SortBy == "" {
		q.SortBy = "created_at"
	}
	if !slices.Contains(sortable, q.SortBy) {
		return q, domain.Invalidf("no se puede ordenar por %q", q.SortBy)
	}
	switch strings.ToUpper(q.SortOrder) {
	case "":
		q.SortOrder = "DESC"
	case "ASC", "DESC":
		q.SortOrder = strings.ToUpper(q.SortOrder)
	default:
		return q, domain.Invalidf("sortOrder debe ser ASC o DESC")
	}
	return q, nil
}

// Offset filas a saltar.
func (q PageQuery) Offset() int { return (q.Page - 1) * q.Limit }

// TotalPages número de páginas para total filas.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// SaleFilter filtros de listSales. Se aplican después (AND) del predicado de alcance.
type SaleFilter struct {
	OutletID       string
	BusinessID     string
	SalesPersonID  string
	Status         string
	PaymentChannel string
	From           *time.Time
	To             *time.Time
	Search         string // nombre de cliente o de producto vendido
}

// InventoryFilter filtros de listInventories.
type InventoryFilter struct {
	OutletID   string
	BusinessID string
	ActionerID string
	Status     string
	From       *time.Time
	To         *time.Time
	Search     string // nombre de producto contado
}
