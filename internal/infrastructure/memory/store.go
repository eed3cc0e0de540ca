// Package memory store en proceso que implementa los mismos puertos que el adaptador PostgreSQL.
// Se usa en tests y con STORE_DRIVER=memory; solo sirve para una instancia.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	appinventory "github.com/Brobot64/shopmasterback-v1/internal/application/inventory"
	appsales "github.com/Brobot64/shopmasterback-v1/internal/application/sales"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
)

var (
	_ appsales.TxRunner     = (*Store)(nil)
	_ appinventory.TxRunner = (*Store)(nil)
)

type state struct {
	products    map[string]entity.Product
	sales       map[string]entity.Sale
	inventories map[string]entity.Inventory
	audit       []entity.AuditLog
}

func newState() *state {
	return &state{
		products:    make(map[string]entity.Product),
		sales:       make(map[string]entity.Sale),
		inventories: make(map[string]entity.Inventory),
	}
}

// clone copia los mapas; los valores guardados nunca se mutan en sitio, siempre se reemplazan.
func (s *state) clone() *state {
	return &state{
		products:    maps.Clone(s.products),
		sales:       maps.Clone(s.sales),
		inventories: maps.Clone(s.inventories),
		audit:       slices.Clone(s.audit),
	}
}

// Store las transacciones se serializan con mu y trabajan sobre una copia del estado,
// que reemplaza al original solo si fn termina sin error y el contexto sigue vivo.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// repo base: tx != nil dentro de una transacción (mu ya tomado por el runner).
type repo struct {
	store *Store
	tx    *state
}

func (r repo) with(fn func(st *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.st)
}

func (s *Store) run(ctx context.Context, fn func(r repo) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	if err := fn(repo{store: s, tx: tx}); err != nil {
		return err
	}
	// timeout del request: se descarta todo, igual que un rollback
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// RunSales implementa sales.TxRunner.
func (s *Store) RunSales(ctx context.Context, fn func(
	products repository.ProductRepository,
	stock repository.StockGuard,
	sales repository.SalesRepository,
) error) error {
	return s.run(ctx, func(r repo) error {
		return fn(&ProductRepo{r}, &StockGuard{r}, &SalesRepo{r})
	})
}

// RunInventory implementa inventory.TxRunner.
func (s *Store) RunInventory(ctx context.Context, fn func(
	products repository.ProductRepository,
	stock repository.StockGuard,
	inventories repository.InventoryRepository,
) error) error {
	return s.run(ctx, func(r repo) error {
		return fn(&ProductRepo{r}, &StockGuard{r}, &InventoryRepo{r})
	})
}

// Products repositorio fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{repo{store: s}} }

// Sales repositorio de lectura fuera de transacción.
func (s *Store) Sales() *SalesRepo { return &SalesRepo{repo{store: s}} }

// Inventories repositorio de lectura fuera de transacción.
func (s *Store) Inventories() *InventoryRepo { return &InventoryRepo{repo{store: s}} }

// AuditLogs sink de auditoría.
func (s *Store) AuditLogs() *AuditLogRepo { return &AuditLogRepo{repo{store: s}} }

// Guard fuera de transacción (cada llamada es su propia unidad atómica).
func (s *Store) Guard() *StockGuard { return &StockGuard{repo{store: s}} }

// PutProduct alta o reemplazo directo (tests y seed).
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Status == "" {
		p.Status = entity.DeriveStockStatus(p.Quantity, p.ReorderLevel)
	}
	s.st.products[p.ID] = p
}

// Product lectura directa (tests).
func (s *Store) Product(id string) (entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	return p, ok
}

// AuditEntries copia del log de auditoría (tests).
func (s *Store) AuditEntries() []entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.audit)
}

// AuditLogRepo sink de auditoría en memoria.
type AuditLogRepo struct{ repo }

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

func (r *AuditLogRepo) Create(_ context.Context, l *entity.AuditLog) error {
	return r.with(func(st *state) error {
		st.audit = append(st.audit, *l)
		return nil
	})
}
