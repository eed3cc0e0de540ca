package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/application/ports"
	"github.com/Brobot64/shopmasterback-v1/internal/application/readcache"
	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/scope"
	"github.com/Brobot64/shopmasterback-v1/pkg/logger"
)

var rolesWrite = []entity.Role{entity.RoleStoreExecutive, entity.RoleOwner, entity.RoleAdmin}

// ReconciliationUseCase registra conteos físicos y los reconcilia contra el stock.
type ReconciliationUseCase struct {
	tx          TxRunner
	inventories repository.InventoryRepository
	reader      *readcache.Reader
	audit       ports.AuditRecorder
	log         *logger.Logger
	now         func() time.Time
}

// NewReconciliationUseCase construye el caso de uso. inventories es el repositorio de lectura.
func NewReconciliationUseCase(
	tx TxRunner,
	inventories repository.InventoryRepository,
	reader *readcache.Reader,
	audit ports.AuditRecorder,
	log *logger.Logger,
) *ReconciliationUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconciliationUseCase{
		tx:          tx,
		inventories: inventories,
		reader:      reader,
		audit:       audit,
		log:         log.Named("inventory"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RecordInventory guarda el conteo en estado PENDING con la foto del stock actual (amount_in_db).
// No modifica products.quantity.
func (uc *ReconciliationUseCase) RecordInventory(ctx context.Context, actor entity.Actor, in dto.RecordInventoryRequest) (*dto.InventoryResponse, error) {
	pred, err := uc.authorizeWrite(actor)
	if err != nil {
		return nil, err
	}
	outletID := strings.TrimSpace(in.OutletID)
	if outletID == "" {
		return nil, domain.Invalidf("outlet_id requerido")
	}
	if !pred.CoversOutlet(outletID) {
		return nil, domain.Newf(domain.KindForbidden, "la sucursal %s está fuera del alcance del usuario", outletID)
	}
	if len(in.Counts) == 0 {
		return nil, domain.Invalidf("el conteo debe incluir al menos un producto")
	}
	seen := make(map[string]struct{}, len(in.Counts))
	for i, c := range in.Counts {
		id := strings.TrimSpace(c.ProductID)
		if id == "" {
			return nil, domain.Invalidf("conteo %d: product_id requerido", i+1)
		}
		if c.Counted < 0 {
			return nil, domain.Invalidf("conteo %d: counted no puede ser negativo", i+1)
		}
		if _, dup := seen[id]; dup {
			return nil, domain.Invalidf("producto %s repetido en el conteo", id)
		}
		seen[id] = struct{}{}
	}

	now := uc.now()
	inv := &entity.Inventory{
		ID:         uuid.New().String(),
		OutletID:   outletID,
		ActionerID: actor.UserID,
		Status:     entity.InventoryStatusPending,
		Products:   make([]entity.InventoryLine, 0, len(in.Counts)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = uc.tx.RunInventory(ctx, func(products repository.ProductRepository, _ repository.StockGuard, invRepo repository.InventoryRepository) error {
		for _, c := range in.Counts {
			id := strings.TrimSpace(c.ProductID)
			p, err := products.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if p.OutletID != outletID || !pred.MatchesProduct(p.BusinessID, p.OutletID) {
				return domain.Newf(domain.KindNotFound, "producto %s no encontrado en la sucursal", id)
			}
			if inv.BusinessID == "" {
				inv.BusinessID = p.BusinessID
			}
			inv.Products = append(inv.Products, entity.InventoryLine{
				ProductID:  p.ID,
				Name:       p.Name,
				Counted:    c.Counted,
				AmountInDB: p.Quantity,
			})
		}
		return invRepo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	uc.reader.Invalidate(ctx, ports.WriteTags(inv.BusinessID, inv.OutletID, ports.TagInventory))
	uc.record(ctx, actor, inv, entity.AuditInventoryRecorded, fmt.Sprintf("conteo de %d productos", len(inv.Products)))
	return toInventoryResponse(inv), nil
}

// CompleteInventory cierra la planilla: PENDING -> COMPLETED.
func (uc *ReconciliationUseCase) CompleteInventory(ctx context.Context, actor entity.Actor, id string) (*dto.InventoryResponse, error) {
	pred, err := uc.authorizeWrite(actor)
	if err != nil {
		return nil, err
	}

	var inv *entity.Inventory
	err = uc.tx.RunInventory(ctx, func(_ repository.ProductRepository, _ repository.StockGuard, invRepo repository.InventoryRepository) error {
		cur, err := lockInScope(ctx, invRepo, pred, id)
		if err != nil {
			return err
		}
		if !cur.Status.CanAdvanceTo(entity.InventoryStatusCompleted) {
			return domain.Newf(domain.KindConflict, "el inventario está en estado %s", cur.Status)
		}
		at := uc.now()
		if err := invRepo.Complete(ctx, id, at); err != nil {
			return err
		}
		cur.Status = entity.InventoryStatusCompleted
		cur.CompletedAt = &at
		cur.UpdatedAt = at
		inv = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.reader.Invalidate(ctx, ports.WriteTags(inv.BusinessID, inv.OutletID, ports.TagInventory))
	uc.record(ctx, actor, inv, entity.AuditInventoryCompleted, "planilla de conteo cerrada")
	return toInventoryResponse(inv), nil
}

// ReconcileInventory sobrescribe el stock de cada producto indicado con la cantidad reconciliada
// (valor absoluto, no delta contra amount_in_db) y marca el inventario RECONCILED.
// Reconciliar un inventario ya RECONCILED es CONFLICT y no toca el stock.
func (uc *ReconciliationUseCase) ReconcileInventory(ctx context.Context, actor entity.Actor, id string, in dto.ReconcileInventoryRequest) (*dto.InventoryResponse, error) {
	pred, err := uc.authorizeWrite(actor)
	if err != nil {
		return nil, err
	}
	if len(in.Counts) == 0 {
		return nil, domain.Invalidf("debe indicar al menos un producto a reconciliar")
	}
	counts := make([]dto.ReconcileCountRequest, 0, len(in.Counts))
	seen := make(map[string]struct{}, len(in.Counts))
	for i, c := range in.Counts {
		c.ProductID = strings.TrimSpace(c.ProductID)
		if c.ProductID == "" {
			return nil, domain.Invalidf("línea %d: product_id requerido", i+1)
		}
		if c.ReconciledQuantity < 0 {
			return nil, domain.Invalidf("línea %d: reconciled_quantity no puede ser negativo", i+1)
		}
		if _, dup := seen[c.ProductID]; dup {
			return nil, domain.Invalidf("producto %s repetido", c.ProductID)
		}
		seen[c.ProductID] = struct{}{}
		counts = append(counts, c)
	}
	slices.SortFunc(counts, func(a, b dto.ReconcileCountRequest) int { return strings.Compare(a.ProductID, b.ProductID) })

	var inv *entity.Inventory
	err = uc.tx.RunInventory(ctx, func(_ repository.ProductRepository, stock repository.StockGuard, invRepo repository.InventoryRepository) error {
		cur, err := lockInScope(ctx, invRepo, pred, id)
		if err != nil {
			return err
		}
		if !cur.Status.CanAdvanceTo(entity.InventoryStatusReconciled) {
			return domain.Newf(domain.KindConflict, "el inventario %s ya fue reconciliado", id)
		}
		for _, c := range counts {
			if cur.LineIndex(c.ProductID) < 0 {
				return domain.Invalidf("el producto %s no pertenece a este inventario", c.ProductID)
			}
		}
		for _, c := range counts {
			if _, err := stock.SetAbsolute(ctx, c.ProductID, c.ReconciledQuantity); err != nil {
				return err
			}
			line := &cur.Products[cur.LineIndex(c.ProductID)]
			q := c.ReconciledQuantity
			line.Reconciled = true
			line.ReconciledQuantity = &q
		}
		at := uc.now()
		cur.Status = entity.InventoryStatusReconciled
		cur.ReconciledBy = actor.UserID
		cur.ReconciledAt = &at
		cur.UpdatedAt = at
		if err := invRepo.SaveReconciliation(ctx, cur); err != nil {
			return err
		}
		inv = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.reader.Invalidate(ctx, ports.WriteTags(inv.BusinessID, inv.OutletID,
		ports.TagInventory, ports.TagProducts, ports.TagDashboard))
	uc.record(ctx, actor, inv, entity.AuditInventoryReconciled, fmt.Sprintf("%d productos reconciliados", len(counts)))
	uc.log.Info().Str("inventory_id", inv.ID).Str("outlet_id", inv.OutletID).Msg("inventario reconciliado")
	return toInventoryResponse(inv), nil
}

// GetInventoryByID lectura con alcance; fuera de alcance equivale a inexistente.
func (uc *ReconciliationUseCase) GetInventoryByID(ctx context.Context, actor entity.Actor, id string) (*dto.InventoryResponse, error) {
	pred, err := scope.Resolve(actor)
	if err != nil {
		return nil, err
	}
	key := readcache.Key("inventory:id", pred, id)
	return readcache.Fetch(ctx, uc.reader, key, readcache.ReadTags(pred, ports.TagInventory), func(ctx context.Context) (*dto.InventoryResponse, error) {
		inv, err := uc.inventories.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !pred.MatchesInventory(inv.BusinessID, inv.OutletID) {
			return nil, domain.Newf(domain.KindNotFound, "inventario %s no encontrado", id)
		}
		return toInventoryResponse(inv), nil
	})
}

// ListInventories lista con alcance y filtros.
func (uc *ReconciliationUseCase) ListInventories(ctx context.Context, actor entity.Actor, f dto.InventoryListQuery, q dto.ListQuery) (*dto.Paginated[dto.InventoryResponse], error) {
	pred, err := scope.Resolve(actor)
	if err != nil {
		return nil, err
	}
	if !pred.CoversOutlet(f.OutletID) || !pred.CoversBusiness(f.BusinessID) {
		return nil, domain.Newf(domain.KindForbidden, "filtro fuera del alcance del usuario")
	}
	filter := repository.InventoryFilter{
		OutletID:   f.OutletID,
		BusinessID: f.BusinessID,
		ActionerID: f.ActionerID,
		Status:     strings.ToUpper(f.Status),
		Search:     strings.TrimSpace(q.Search),
	}
	if filter.Status != "" && !entity.InventoryStatus(filter.Status).Valid() {
		return nil, domain.Invalidf("status inválido: %q", f.Status)
	}
	if filter.From, filter.To, err = dto.ParseDateRange(q.From, q.To); err != nil {
		return nil, err
	}
	page, err := repository.PageQuery{Page: q.Page, Limit: q.Limit, SortBy: q.SortBy, SortOrder: q.SortOrder}.
		Normalize(repository.InventorySortColumns)
	if err != nil {
		return nil, err
	}

	key := readcache.Key("inventory:list", pred, struct {
		F repository.InventoryFilter
		P repository.PageQuery
	}{filter, page})
	return readcache.Fetch(ctx, uc.reader, key, readcache.ReadTags(pred, ports.TagInventory), func(ctx context.Context) (*dto.Paginated[dto.InventoryResponse], error) {
		rows, total, err := uc.inventories.List(ctx, pred, filter, page)
		if err != nil {
			return nil, err
		}
		out := &dto.Paginated[dto.InventoryResponse]{
			Data:         make([]dto.InventoryResponse, 0, len(rows)),
			TotalItems:   total,
			TotalPages:   repository.TotalPages(total, page.Limit),
			CurrentPage:  page.Page,
			ItemsPerPage: page.Limit,
		}
		for _, inv := range rows {
			out.Data = append(out.Data, *toInventoryResponse(inv))
		}
		return out, nil
	})
}

func (uc *ReconciliationUseCase) authorizeWrite(actor entity.Actor) (scope.Predicate, error) {
	if !actor.HasRole(rolesWrite...) {
		return scope.Predicate{}, domain.Newf(domain.KindForbidden, "el rol %s no puede gestionar inventarios", actor.Role)
	}
	return scope.Resolve(actor)
}

func (uc *ReconciliationUseCase) record(ctx context.Context, actor entity.Actor, inv *entity.Inventory, action, desc string) {
	uc.audit.Record(ctx, ports.AuditEntry{
		ActorID:      actor.UserID,
		Action:       action,
		Description:  desc,
		ResourceType: "inventories",
		ResourceID:   inv.ID,
		BusinessID:   inv.BusinessID,
		OutletID:     inv.OutletID,
	})
}

func lockInScope(ctx context.Context, repo repository.InventoryRepository, pred scope.Predicate, id string) (*entity.Inventory, error) {
	inv, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pred.MatchesInventory(inv.BusinessID, inv.OutletID) {
		return nil, domain.Newf(domain.KindNotFound, "inventario %s no encontrado", id)
	}
	return inv, nil
}

func toInventoryResponse(inv *entity.Inventory) *dto.InventoryResponse {
	out := &dto.InventoryResponse{
		ID:           inv.ID,
		BusinessID:   inv.BusinessID,
		OutletID:     inv.OutletID,
		ActionerID:   inv.ActionerID,
		Status:       string(inv.Status),
		ReconciledBy: inv.ReconciledBy,
		CompletedAt:  inv.CompletedAt,
		ReconciledAt: inv.ReconciledAt,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
		Products:     make([]dto.InventoryLineResponse, 0, len(inv.Products)),
	}
	for _, l := range inv.Products {
		out.Products = append(out.Products, dto.InventoryLineResponse{
			ProductID:          l.ProductID,
			Name:               l.Name,
			Counted:            l.Counted,
			AmountInDB:         l.AmountInDB,
			Variance:           l.Variance(),
			Reconciled:         l.Reconciled,
			ReconciledQuantity: l.ReconciledQuantity,
		})
	}
	return out
}
