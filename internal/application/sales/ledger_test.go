package sales_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brobot64/shopmasterback-v1/internal/application/audit"
	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/application/readcache"
	"github.com/Brobot64/shopmasterback-v1/internal/application/sales"
	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/cache"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/memory"
	"github.com/Brobot64/shopmasterback-v1/pkg/logger"
)

var (
	rep     = entity.Actor{UserID: "u-rep", Role: entity.RoleSalesRep, BusinessID: "b1", OutletID: "o1"}
	rep2    = entity.Actor{UserID: "u-rep2", Role: entity.RoleSalesRep, BusinessID: "b1", OutletID: "o1"}
	exec    = entity.Actor{UserID: "u-exec", Role: entity.RoleStoreExecutive, BusinessID: "b1", OutletID: "o1"}
	execO2  = entity.Actor{UserID: "u-exec2", Role: entity.RoleStoreExecutive, BusinessID: "b1", OutletID: "o2"}
	owner   = entity.Actor{UserID: "u-owner", Role: entity.RoleOwner, BusinessID: "b1"}
	ownerB2 = entity.Actor{UserID: "u-owner2", Role: entity.RoleOwner, BusinessID: "b2"}
	admin   = entity.Actor{UserID: "u-admin", Role: entity.RoleAdmin}
)

type fixture struct {
	store    *memory.Store
	recorder *audit.Recorder
	uc       *sales.LedgerUseCase
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	store.PutProduct(entity.Product{ID: "p-1", BusinessID: "b1", OutletID: "o1", Name: "Arroz 1kg", Price: decimal.RequireFromString("5.00"), Quantity: 10, ReorderLevel: 2})
	store.PutProduct(entity.Product{ID: "p-2", BusinessID: "b1", OutletID: "o1", Name: "Aceite", Price: decimal.RequireFromString("2.50"), Quantity: 5})
	store.PutProduct(entity.Product{ID: "p-9", BusinessID: "b1", OutletID: "o2", Name: "Sal", Price: decimal.RequireFromString("1.00"), Quantity: 50})

	rec := audit.NewRecorder(store.AuditLogs(), logger.Nop())
	reader := readcache.New(cache.NewMemoryCache(), time.Minute, logger.Nop())
	return fixture{
		store:    store,
		recorder: rec,
		uc:       sales.NewLedgerUseCase(store, store.Sales(), reader, rec, logger.Nop()),
	}
}

func (f fixture) qty(t *testing.T, id string) int64 {
	t.Helper()
	p, ok := f.store.Product(id)
	require.True(t, ok)
	return p.Quantity
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func saleReq(lines ...dto.SaleLineRequest) dto.RecordSaleRequest {
	return dto.RecordSaleRequest{Lines: lines, AmountPaid: dec("0"), PaymentChannel: entity.PaymentChannelCash}
}

// ─────────────────────────────────────────────────────────────────────────────
// RecordSale
// ─────────────────────────────────────────────────────────────────────────────

func TestRecordSale_EscenarioDescuentoYPagoCompleto(t *testing.T) {
	f := newFixture(t)
	in := saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 3})
	in.Discount = dec("2.00")
	in.AmountPaid = dec("13.00")
	in.Customer = &dto.CustomerDTO{Name: "Ana"}

	sale, err := f.uc.RecordSale(context.Background(), rep, in)
	require.NoError(t, err)

	assert.Equal(t, "13.00", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "0.00", sale.RemainingToPay.StringFixed(2))
	assert.Equal(t, string(entity.SaleStatusCompleted), sale.Status)
	assert.Equal(t, "u-rep", sale.SalesPersonID)
	assert.Equal(t, "b1", sale.BusinessID)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, "Arroz 1kg", sale.Lines[0].ProductName)
	assert.Equal(t, "5.00", sale.Lines[0].PriceAtSale.StringFixed(2))
	assert.Equal(t, int64(7), f.qty(t, "p-1"))
	assert.Equal(t, "Ana", sale.Customer.Name)
}

func TestRecordSale_StockInsuficienteNoModifica(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RecordSale(context.Background(), rep, saleReq(dto.SaleLineRequest{ProductID: "p-2", Quantity: 999}))

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), f.qty(t, "p-2"))
}

func TestRecordSale_FalloEnUnaLineaRevierteLasAnteriores(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RecordSale(context.Background(), rep, saleReq(
		dto.SaleLineRequest{ProductID: "p-1", Quantity: 2},
		dto.SaleLineRequest{ProductID: "p-2", Quantity: 6},
	))

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.qty(t, "p-1"))
	assert.Equal(t, int64(5), f.qty(t, "p-2"))

	list, err := f.uc.ListSales(context.Background(), admin, dto.SaleListQuery{}, dto.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalItems)
}

func TestRecordSale_UneProductosRepetidos(t *testing.T) {
	f := newFixture(t)

	sale, err := f.uc.RecordSale(context.Background(), exec, saleReq(
		dto.SaleLineRequest{ProductID: "p-2", Quantity: 1},
		dto.SaleLineRequest{ProductID: "p-1", Quantity: 1},
		dto.SaleLineRequest{ProductID: "p-2", Quantity: 2},
	))
	require.NoError(t, err)

	require.Len(t, sale.Lines, 2)
	assert.Equal(t, "p-2", sale.Lines[0].ProductID)
	assert.Equal(t, int64(3), sale.Lines[0].Quantity)
	assert.Equal(t, "12.50", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "12.50", sale.RemainingToPay.StringFixed(2))
	assert.Equal(t, int64(2), f.qty(t, "p-2"))
}

func TestRecordSale_CantidadesRepetidasQueDesbordan(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RecordSale(context.Background(), rep, saleReq(
		dto.SaleLineRequest{ProductID: "p-1", Quantity: math.MaxInt64},
		dto.SaleLineRequest{ProductID: "p-1", Quantity: 1},
	))

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "excede el máximo")
	assert.Equal(t, int64(10), f.qty(t, "p-1"))
}

func TestRecordSale_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ok := dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}

	cases := map[string]dto.RecordSaleRequest{
		"sin líneas":        saleReq(),
		"cantidad cero":     saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 0}),
		"sin producto":      saleReq(dto.SaleLineRequest{Quantity: 1}),
		"canal inválido":    {Lines: []dto.SaleLineRequest{ok}, AmountPaid: dec("0"), PaymentChannel: "BITCOIN"},
		"sin pago":          {Lines: []dto.SaleLineRequest{ok}, PaymentChannel: entity.PaymentChannelCash},
		"descuento negativo": func() dto.RecordSaleRequest { r := saleReq(ok); r.Discount = dec("-1"); return r }(),
		"pago negativo":     func() dto.RecordSaleRequest { r := saleReq(ok); r.AmountPaid = dec("-1"); return r }(),
		"descuento mayor al subtotal": func() dto.RecordSaleRequest {
			r := saleReq(ok)
			r.Discount = dec("5.01")
			return r
		}(),
		"pago mayor al total": func() dto.RecordSaleRequest {
			r := saleReq(ok)
			r.AmountPaid = dec("5.01")
			return r
		}(),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.RecordSale(ctx, rep, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(10), f.qty(t, "p-1"), "ninguna validación descuenta stock")
}

func TestRecordSale_ProductoDeOtraSucursalEsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RecordSale(context.Background(), rep, saleReq(dto.SaleLineRequest{ProductID: "p-9", Quantity: 1}))

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(50), f.qty(t, "p-9"))
}

func TestRecordSale_RolNoPermitido(t *testing.T) {
	f := newFixture(t)
	for _, a := range []entity.Actor{owner, admin} {
		_, err := f.uc.RecordSale(context.Background(), a, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
		assert.ErrorIs(t, err, domain.ErrForbidden, "rol %s", a.Role)
	}
}

func TestRecordSale_SnapshotInmuneACambiosDelProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.uc.RecordSale(ctx, rep, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
	require.NoError(t, err)

	p, _ := f.store.Product("p-1")
	p.Name, p.Price = "Arroz Premium", decimal.RequireFromString("9.99")
	f.store.PutProduct(p)

	got, err := f.store.Sales().GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arroz 1kg", got.Lines[0].ProductName)
	assert.Equal(t, "5.00", got.Lines[0].PriceAtSale.StringFixed(2))
}

func TestRecordSale_Auditoria(t *testing.T) {
	f := newFixture(t)
	sale, err := f.uc.RecordSale(context.Background(), rep, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
	require.NoError(t, err)
	f.recorder.Wait()

	entries := f.store.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditSaleRecorded, entries[0].Action)
	assert.Equal(t, sale.ID, entries[0].ResourceID)
	assert.Equal(t, "o1", entries[0].OutletID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Concurrencia: N ventas compiten por la última unidad
// ─────────────────────────────────────────────────────────────────────────────

func TestRecordSale_ConcurrenciaUltimaUnidad(t *testing.T) {
	f := newFixture(t)
	f.store.PutProduct(entity.Product{ID: "p-last", BusinessID: "b1", OutletID: "o1", Name: "Última", Price: decimal.NewFromInt(1), Quantity: 1})

	const n = 20
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		ok, noStock int
		unexpected  []error
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.RecordSale(context.Background(), rep, saleReq(dto.SaleLineRequest{ProductID: "p-last", Quantity: 1}))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.KindOf(err) == domain.KindInsufficientStock:
				noStock++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, noStock)
	assert.Equal(t, int64(0), f.qty(t, "p-last"))
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateSaleStatus
// ─────────────────────────────────────────────────────────────────────────────

func TestUpdateSaleStatus_DevolucionRestauraStockUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 3}, dto.SaleLineRequest{ProductID: "p-2", Quantity: 2})
	sale, err := f.uc.RecordSale(ctx, rep, in)
	require.NoError(t, err)
	require.Equal(t, int64(7), f.qty(t, "p-1"))

	returned, err := f.uc.UpdateSaleStatus(ctx, exec, sale.ID, dto.UpdateSaleStatusRequest{Status: "returned"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.SaleStatusReturned), returned.Status)
	assert.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, int64(10), f.qty(t, "p-1"))
	assert.Equal(t, int64(5), f.qty(t, "p-2"))

	_, err = f.uc.UpdateSaleStatus(ctx, exec, sale.ID, dto.UpdateSaleStatusRequest{Status: "RETURNED"})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(10), f.qty(t, "p-1"))

	got, err := f.uc.GetSaleByID(ctx, rep, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SaleStatusReturned), got.Status)
}

func TestUpdateSaleStatus_SoloRETURNED(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.uc.RecordSale(ctx, rep, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
	require.NoError(t, err)

	for _, st := range []string{"CANCELLED", "PENDING", "COMPLETED", ""} {
		_, err := f.uc.UpdateSaleStatus(ctx, owner, sale.ID, dto.UpdateSaleStatusRequest{Status: st})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, st)
	}
}

func TestUpdateSaleStatus_DevolucionQueDesbordaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.uc.RecordSale(ctx, rep, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 5}))
	require.NoError(t, err)
	_, err = f.store.Guard().SetAbsolute(ctx, "p-1", math.MaxInt64)
	require.NoError(t, err)

	_, err = f.uc.UpdateSaleStatus(ctx, exec, sale.ID, dto.UpdateSaleStatusRequest{Status: "RETURNED"})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(math.MaxInt64), f.qty(t, "p-1"))
	got, err := f.uc.GetSaleByID(ctx, exec, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SaleStatusCompleted), got.Status)
}

func TestUpdateSaleStatus_AlcanceYRol(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.uc.RecordSale(ctx, rep, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
	require.NoError(t, err)

	_, err = f.uc.UpdateSaleStatus(ctx, rep, sale.ID, dto.UpdateSaleStatusRequest{Status: "RETURNED"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.UpdateSaleStatus(ctx, execO2, sale.ID, dto.UpdateSaleStatusRequest{Status: "RETURNED"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.UpdateSaleStatus(ctx, ownerB2, sale.ID, dto.UpdateSaleStatusRequest{Status: "RETURNED"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.UpdateSaleStatus(ctx, admin, "no-existe", dto.UpdateSaleStatusRequest{Status: "RETURNED"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int64(9), f.qty(t, "p-1"))

	_, err = f.uc.UpdateSaleStatus(ctx, owner, sale.ID, dto.UpdateSaleStatusRequest{Status: "RETURNED"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.qty(t, "p-1"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Lecturas con alcance
// ─────────────────────────────────────────────────────────────────────────────

func TestListSales_AislamientoPorRol(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine, err := f.uc.RecordSale(ctx, rep, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
	require.NoError(t, err)
	_, err = f.uc.RecordSale(ctx, rep2, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
	require.NoError(t, err)

	repList, err := f.uc.ListSales(ctx, rep, dto.SaleListQuery{}, dto.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, repList.TotalItems)
	assert.Equal(t, mine.ID, repList.Data[0].ID)
	for _, s := range repList.Data {
		assert.Equal(t, rep.UserID, s.SalesPersonID)
	}

	execList, err := f.uc.ListSales(ctx, exec, dto.SaleListQuery{}, dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, execList.TotalItems)

	otherOutlet, err := f.uc.ListSales(ctx, execO2, dto.SaleListQuery{}, dto.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, otherOutlet.TotalItems)

	otherBusiness, err := f.uc.ListSales(ctx, ownerB2, dto.SaleListQuery{}, dto.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, otherBusiness.TotalItems)

	_, err = f.uc.GetSaleByID(ctx, rep2, mine.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSales_FiltrosFueraDeAlcanceSonForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.ListSales(ctx, rep, dto.SaleListQuery{SalesPersonID: rep2.UserID}, dto.ListQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.ListSales(ctx, exec, dto.SaleListQuery{OutletID: "o2"}, dto.ListQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.ListSales(ctx, owner, dto.SaleListQuery{BusinessID: "b2"}, dto.ListQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.ListSales(ctx, owner, dto.SaleListQuery{}, dto.ListQuery{SortBy: "password"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListSales_FiltrosYPaginacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.uc.RecordSale(ctx, rep, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
		require.NoError(t, err)
	}
	card := saleReq(dto.SaleLineRequest{ProductID: "p-2", Quantity: 1})
	card.PaymentChannel = "card"
	_, err := f.uc.RecordSale(ctx, rep, card)
	require.NoError(t, err)

	page, err := f.uc.ListSales(ctx, owner, dto.SaleListQuery{}, dto.ListQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Data, 1)

	byChannel, err := f.uc.ListSales(ctx, owner, dto.SaleListQuery{PaymentChannel: "CARD"}, dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, byChannel.TotalItems)

	bySearch, err := f.uc.ListSales(ctx, owner, dto.SaleListQuery{}, dto.ListQuery{Search: "aceite"})
	require.NoError(t, err)
	assert.Equal(t, 1, bySearch.TotalItems)
}

func TestListSales_CacheSeInvalidaTrasEscritura(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.uc.ListSales(ctx, owner, dto.SaleListQuery{}, dto.ListQuery{})
	require.NoError(t, err)
	require.Zero(t, before.TotalItems)

	_, err = f.uc.RecordSale(ctx, rep, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
	require.NoError(t, err)

	after, err := f.uc.ListSales(ctx, owner, dto.SaleListQuery{}, dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, after.TotalItems)
}

func TestGetSaleByID_CacheNoCruzaNegocios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	execB2 := entity.Actor{UserID: "u-exec", Role: entity.RoleStoreExecutive, BusinessID: "b2", OutletID: "o1"}
	sale, err := f.uc.RecordSale(ctx, rep, saleReq(dto.SaleLineRequest{ProductID: "p-1", Quantity: 1}))
	require.NoError(t, err)

	_, err = f.uc.GetSaleByID(ctx, execB2, sale.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.GetSaleByID(ctx, exec, sale.ID)
	require.NoError(t, err)

	_, err = f.uc.GetSaleByID(ctx, execB2, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	page, err := f.uc.ListSales(ctx, exec, dto.SaleListQuery{}, dto.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalItems)
	other, err := f.uc.ListSales(ctx, execB2, dto.SaleListQuery{}, dto.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, other.TotalItems)
}
