package sales

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/application/ports"
	"github.com/Brobot64/shopmasterback-v1/internal/application/readcache"
	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/scope"
	"github.com/Brobot64/shopmasterback-v1/pkg/logger"
)

// Roles habilitados por operación.
var (
	rolesRecordSale   = []entity.Role{entity.RoleSalesRep, entity.RoleStoreExecutive}
	rolesUpdateStatus = []entity.Role{entity.RoleStoreExecutive, entity.RoleOwner, entity.RoleAdmin}
)

var writeTags = []ports.CacheTag{ports.TagSales, ports.TagProducts, ports.TagDashboard}

// LedgerUseCase registra ventas contra el stock vivo y revierte el stock en devoluciones.
type LedgerUseCase struct {
	tx     TxRunner
	sales  repository.SalesRepository
	reader *readcache.Reader
	audit  ports.AuditRecorder
	log    *logger.Logger
	now    func() time.Time
}

// NewLedgerUseCase construye el caso de uso. sales es el repositorio de lectura (fuera de tx).
func NewLedgerUseCase(
	tx TxRunner,
	sales repository.SalesRepository,
	reader *readcache.Reader,
	audit ports.AuditRecorder,
	log *logger.Logger,
) *LedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		tx:     tx,
		sales:  sales,
		reader: reader,
		audit:  audit,
		log:    log.Named("sales"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type requestedLine struct {
	productID string
	quantity  int64
}

// RecordSale valida la solicitud, descuenta stock línea por línea y persiste la venta en una sola transacción.
// Cualquier línea sin stock revierte todas las anteriores.
func (uc *LedgerUseCase) RecordSale(ctx context.Context, actor entity.Actor, in dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	if !actor.HasRole(rolesRecordSale...) {
		return nil, domain.Newf(domain.KindForbidden, "el rol %s no puede registrar ventas", actor.Role)
	}
	pred, err := scope.Resolve(actor)
	if err != nil {
		return nil, err
	}

	lines, err := mergeLines(in.Lines)
	if err != nil {
		return nil, err
	}
	discount := decimal.Zero
	if in.Discount != nil {
		discount = *in.Discount
	}
	if discount.IsNegative() {
		return nil, domain.Invalidf("discount no puede ser negativo")
	}
	if in.AmountPaid == nil {
		return nil, domain.Invalidf("amount_paid requerido")
	}
	if in.AmountPaid.IsNegative() {
		return nil, domain.Invalidf("amount_paid no puede ser negativo")
	}
	channel := strings.ToUpper(strings.TrimSpace(in.PaymentChannel))
	if !entity.ValidPaymentChannel(channel) {
		return nil, domain.Invalidf("payment_channel inválido: %q", in.PaymentChannel)
	}

	// Orden estable de bloqueo: dos ventas multi-línea nunca se esperan en ciclo.
	lockOrder := slices.Clone(lines)
	slices.SortFunc(lockOrder, func(a, b requestedLine) int { return strings.Compare(a.productID, b.productID) })

	now := uc.now()
	sale := &entity.Sale{
		ID:             uuid.New().String(),
		OutletID:       actor.OutletID,
		SalesPersonID:  actor.UserID,
		Discount:       discount.Round(2),
		AmountPaid:     in.AmountPaid.Round(2),
		PaymentChannel: channel,
		Status:         entity.SaleStatusCompleted,
		Customer:       customerFromDTO(in.Customer),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = uc.tx.RunSales(ctx, func(products repository.ProductRepository, stock repository.StockGuard, salesRepo repository.SalesRepository) error {
		snapshots := make(map[string]*entity.Product, len(lines))
		for _, l := range lockOrder {
			p, err := products.GetByID(ctx, l.productID)
			if err != nil {
				return err
			}
			if !pred.MatchesProduct(p.BusinessID, p.OutletID) {
				return domain.Newf(domain.KindNotFound, "producto %s no encontrado", l.productID)
			}
			updated, err := stock.Decrement(ctx, l.productID, l.quantity)
			if err != nil {
				return err
			}
			snapshots[l.productID] = updated
			if sale.BusinessID == "" {
				sale.BusinessID = updated.BusinessID
			}
		}

		sale.Lines = make([]entity.SaleLine, 0, len(lines))
		for _, l := range lines {
			p := snapshots[l.productID]
			sale.Lines = append(sale.Lines, entity.SaleLine{
				ID:          uuid.New().String(),
				SalesID:     sale.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    l.quantity,
				PriceAtSale: p.Price,
			})
		}

		if subtotal := entity.LinesSubtotal(sale.Lines); sale.Discount.GreaterThan(subtotal) {
			return domain.Invalidf("el descuento (%s) supera el subtotal (%s)", sale.Discount.StringFixed(2), subtotal.StringFixed(2))
		}
		sale.TotalAmount, sale.RemainingToPay = entity.ComputeTotals(sale.Lines, sale.Discount, sale.AmountPaid)
		if sale.RemainingToPay.IsNegative() {
			return domain.Invalidf("amount_paid (%s) supera el total (%s)", sale.AmountPaid.StringFixed(2), sale.TotalAmount.StringFixed(2))
		}
		return salesRepo.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	uc.reader.Invalidate(ctx, ports.WriteTags(sale.BusinessID, sale.OutletID, writeTags...))
	uc.audit.Record(ctx, ports.AuditEntry{
		ActorID:      actor.UserID,
		Action:       entity.AuditSaleRecorded,
		Description:  fmt.Sprintf("venta de %d productos por %s", len(sale.Lines), sale.TotalAmount.StringFixed(2)),
		ResourceType: "sales",
		ResourceID:   sale.ID,
		BusinessID:   sale.BusinessID,
		OutletID:     sale.OutletID,
	})
	uc.log.Info().Str("sale_id", sale.ID).Str("outlet_id", sale.OutletID).Msg("venta registrada")
	return toSaleResponse(sale), nil
}

// UpdateSaleStatus solo implementa COMPLETED -> RETURNED, para la venta completa.
// El stock de cada línea se repone en la misma transacción que el cambio de estado.
func (uc *LedgerUseCase) UpdateSaleStatus(ctx context.Context, actor entity.Actor, saleID string, in dto.UpdateSaleStatusRequest) (*dto.SaleResponse, error) {
	if !actor.HasRole(rolesUpdateStatus...) {
		return nil, domain.Newf(domain.KindForbidden, "el rol %s no puede cambiar el estado de ventas", actor.Role)
	}
	pred, err := scope.Resolve(actor)
	if err != nil {
		return nil, err
	}
	target := entity.SaleStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if target != entity.SaleStatusReturned {
		return nil, domain.Invalidf("transición no soportada hacia %q: solo RETURNED", in.Status)
	}
	if saleID == "" {
		return nil, domain.Invalidf("id de venta requerido")
	}

	var sale *entity.Sale
	err = uc.tx.RunSales(ctx, func(_ repository.ProductRepository, stock repository.StockGuard, salesRepo repository.SalesRepository) error {
		s, err := salesRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if !pred.MatchesSale(s.BusinessID, s.OutletID, s.SalesPersonID) {
			return domain.Newf(domain.KindNotFound, "venta %s no encontrada", saleID)
		}
		switch s.Status {
		case entity.SaleStatusCompleted:
		case entity.SaleStatusReturned:
			return domain.Newf(domain.KindConflict, "la venta %s ya fue devuelta", saleID)
		default:
			return domain.Newf(domain.KindConflict, "una venta en estado %s no se puede devolver", s.Status)
		}

		restock := slices.Clone(s.Lines)
		slices.SortFunc(restock, func(a, b entity.SaleLine) int { return strings.Compare(a.ProductID, b.ProductID) })
		for _, l := range restock {
			if _, err := stock.Increment(ctx, l.ProductID, l.Quantity); err != nil {
				return err
			}
		}

		at := uc.now()
		if err := salesRepo.MarkReturned(ctx, saleID, at); err != nil {
			return err
		}
		s.Status = entity.SaleStatusReturned
		s.ReturnedAt = &at
		s.UpdatedAt = at
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.reader.Invalidate(ctx, ports.WriteTags(sale.BusinessID, sale.OutletID, writeTags...))
	uc.audit.Record(ctx, ports.AuditEntry{
		ActorID:      actor.UserID,
		Action:       entity.AuditSaleReturned,
		Description:  fmt.Sprintf("devolución de venta por %s", sale.TotalAmount.StringFixed(2)),
		ResourceType: "sales",
		ResourceID:   sale.ID,
		BusinessID:   sale.BusinessID,
		OutletID:     sale.OutletID,
	})
	return toSaleResponse(sale), nil
}

// GetSaleByID lectura con alcance. Una venta fuera de alcance se reporta como inexistente.
func (uc *LedgerUseCase) GetSaleByID(ctx context.Context, actor entity.Actor, saleID string) (*dto.SaleResponse, error) {
	pred, err := scope.Resolve(actor)
	if err != nil {
		return nil, err
	}
	key := readcache.Key("sales:id", pred, saleID)
	return readcache.Fetch(ctx, uc.reader, key, readcache.ReadTags(pred, ports.TagSales), func(ctx context.Context) (*dto.SaleResponse, error) {
		s, err := uc.sales.GetByID(ctx, saleID)
		if err != nil {
			return nil, err
		}
		if !pred.MatchesSale(s.BusinessID, s.OutletID, s.SalesPersonID) {
			return nil, domain.Newf(domain.KindNotFound, "venta %s no encontrada", saleID)
		}
		return toSaleResponse(s), nil
	})
}

// ListSales lista ventas aplicando primero el predicado de alcance y luego los filtros.
// Un filtro explícito fuera del alcance del actor es FORBIDDEN.
func (uc *LedgerUseCase) ListSales(ctx context.Context, actor entity.Actor, f dto.SaleListQuery, q dto.ListQuery) (*dto.Paginated[dto.SaleResponse], error) {
	pred, err := scope.Resolve(actor)
	if err != nil {
		return nil, err
	}
	if !pred.CoversOutlet(f.OutletID) || !pred.CoversBusiness(f.BusinessID) {
		return nil, domain.Newf(domain.KindForbidden, "filtro fuera del alcance del usuario")
	}
	if f.SalesPersonID != "" && pred.SalesPersonID != "" && f.SalesPersonID != pred.SalesPersonID {
		return nil, domain.Newf(domain.KindForbidden, "no puede consultar ventas de otro vendedor")
	}
	filter := repository.SaleFilter{
		OutletID:       f.OutletID,
		BusinessID:     f.BusinessID,
		SalesPersonID:  f.SalesPersonID,
		Status:         strings.ToUpper(f.Status),
		PaymentChannel: strings.ToUpper(f.PaymentChannel),
		Search:         strings.TrimSpace(q.Search),
	}
	if filter.Status != "" && !entity.SaleStatus(filter.Status).Valid() {
		return nil, domain.Invalidf("status inválido: %q", f.Status)
	}
	if filter.PaymentChannel != "" && !entity.ValidPaymentChannel(filter.PaymentChannel) {
		return nil, domain.Invalidf("paymentChannel inválido: %q", f.PaymentChannel)
	}
	if filter.From, filter.To, err = dto.ParseDateRange(q.From, q.To); err != nil {
		return nil, err
	}
	page, err := repository.PageQuery{Page: q.Page, Limit: q.Limit, SortBy: q.SortBy, SortOrder: q.SortOrder}.
		Normalize(repository.SaleSortColumns)
	if err != nil {
		return nil, err
	}

	key := readcache.Key("sales:list", pred, struct {
		F repository.SaleFilter
		P repository.PageQuery
	}{filter, page})
	return readcache.Fetch(ctx, uc.reader, key, readcache.ReadTags(pred, ports.TagSales), func(ctx context.Context) (*dto.Paginated[dto.SaleResponse], error) {
		rows, total, err := uc.sales.List(ctx, pred, filter, page)
		if err != nil {
			return nil, err
		}
		out := &dto.Paginated[dto.SaleResponse]{
			Data:         make([]dto.SaleResponse, 0, len(rows)),
			TotalItems:   total,
			TotalPages:   repository.TotalPages(total, page.Limit),
			CurrentPage:  page.Page,
			ItemsPerPage: page.Limit,
		}
		for _, s := range rows {
			out.Data = append(out.Data, *toSaleResponse(s))
		}
		return out, nil
	})
}

// mergeLines valida las líneas y une productos repetidos (cantidades sumadas, orden de primera aparición).
func mergeLines(in []dto.SaleLineRequest) ([]requestedLine, error) {
	if len(in) == 0 {
		return nil, domain.Invalidf("la venta debe tener al menos una línea")
	}
	idx := make(map[string]int, len(in))
	out := make([]requestedLine, 0, len(in))
	for i, l := range in {
		id := strings.TrimSpace(l.ProductID)
		if id == "" {
			return nil, domain.Invalidf("línea %d: product_id requerido", i+1)
		}
		if l.Quantity <= 0 {
			return nil, domain.Invalidf("línea %d: quantity debe ser mayor a 0", i+1)
		}
		if j, ok := idx[id]; ok {
			if out[j].quantity > math.MaxInt64-l.Quantity {
				return nil, domain.Invalidf("línea %d: la cantidad total de %s excede el máximo admitido", i+1, id)
			}
			out[j].quantity += l.Quantity
			continue
		}
		idx[id] = len(out)
		out = append(out, requestedLine{productID: id, quantity: l.Quantity})
	}
	return out, nil
}

func customerFromDTO(c *dto.CustomerDTO) *entity.Customer {
	if c == nil || (c.Name == "" && c.Phone == "" && c.Email == "") {
		return nil
	}
	return &entity.Customer{Name: c.Name, Phone: c.Phone, Email: c.Email}
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:             s.ID,
		BusinessID:     s.BusinessID,
		OutletID:       s.OutletID,
		SalesPersonID:  s.SalesPersonID,
		TotalAmount:    s.TotalAmount,
		Discount:       s.Discount,
		AmountPaid:     s.AmountPaid,
		RemainingToPay: s.RemainingToPay,
		PaymentChannel: s.PaymentChannel,
		Status:         string(s.Status),
		ReturnedAt:     s.ReturnedAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		Lines:          make([]dto.SaleLineResponse, 0, len(s.Lines)),
	}
	if s.Customer != nil {
		out.Customer = &dto.CustomerDTO{Name: s.Customer.Name, Phone: s.Customer.Phone, Email: s.Customer.Email}
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, dto.SaleLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			PriceAtSale: l.PriceAtSale,
			Subtotal:    l.Subtotal().Round(2),
		})
	}
	return out
}
