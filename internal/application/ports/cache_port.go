package ports

import (
	"context"
	"time"
)

// Cache define el puerto de salida hacia la caché de lecturas.
// Es un canal lateral: nunca decide si una mutación de stock procede,
// y sus errores se registran y se ignoran en la capa de aplicación.
type Cache interface {
	// Get devuelve (valor, true, nil) en hit; (nil, false, nil) en miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set guarda el valor asociado a las etiquetas dadas.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error
	// InvalidateByTag borra todas las claves asociadas a la etiqueta.
	InvalidateByTag(ctx context.Context, tag string) error
	// InvalidateByPattern borra claves por patrón glob (ej. "sales:*").
	InvalidateByPattern(ctx context.Context, pattern string) error
}

// CacheTag taxonomía cerrada de etiquetas. Ninguna ruta de escritura arma cadenas a mano.
type CacheTag string

const (
	TagProducts  CacheTag = "PRODUCTS"
	TagSales     CacheTag = "SALES"
	TagInventory CacheTag = "INVENTORY"
	TagDashboard CacheTag = "DASHBOARD"
)

// All etiqueta de nivel global.
func (t CacheTag) All() string { return string(t) + ":all" }

// Business etiqueta de nivel negocio.
func (t CacheTag) Business(id string) string { return string(t) + ":business:" + id }

// Outlet etiqueta de nivel sucursal.
func (t CacheTag) Outlet(id string) string { return string(t) + ":outlet:" + id }

// Level etiqueta para un nivel ya calculado ("all", "business:<id>", "outlet:<id>").
func (t CacheTag) Level(level string) string { return string(t) + ":" + level }

// WriteTags etiquetas a invalidar tras una escritura en la sucursal/negocio dados:
// los tres niveles por cada etiqueta, para que lectores de cualquier alcance vean el cambio.
func WriteTags(businessID, outletID string, tags ...CacheTag) []string {
	out := make([]string, 0, len(tags)*3)
	for _, t := range tags {
		out = append(out, t.All())
		if businessID != "" {
			out = append(out, t.Business(businessID))
		}
		if outletID != "" {
			out = append(out, t.Outlet(outletID))
		}
	}
	return out
}
