package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/application/sales"
	"github.com/Brobot64/shopmasterback-v1/internal/domain"
)

// SalesHandler maneja las peticiones HTTP del ledger de ventas (protegido).
type SalesHandler struct {
	ledger   *sales.LedgerUseCase
	receipts *sales.ReceiptUseCase
}

func NewSalesHandler(ledger *sales.LedgerUseCase, receipts *sales.ReceiptUseCase) *SalesHandler {
	return &SalesHandler{ledger: ledger, receipts: receipts}
}

// Record godoc
// @Summary      Registrar venta
// @Description  Descuenta stock de cada línea y persiste la venta en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecordSaleRequest  true  "lines, discount, amount_paid, payment_channel, customer"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) Record(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	var in dto.RecordSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return domain.Invalidf("cuerpo inválido")
	}
	out, err := h.ledger.RecordSale(c.UserContext(), actor, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de una venta
// @Description  Solo COMPLETED -> RETURNED; repone el stock de todas las líneas.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID de la venta"
// @Param        body  body      dto.UpdateSaleStatusRequest  true  "status"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/status [patch]
func (h *SalesHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	var in dto.UpdateSaleStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return domain.Invalidf("cuerpo inválido")
	}
	out, err := h.ledger.UpdateSaleStatus(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SalesHandler) GetByID(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	out, err := h.ledger.GetSaleByID(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Description  Limitado al alcance del actor; los filtros se combinan con AND.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        page            query     int     false  "Página (1)"
// @Param        limit           query     int     false  "Tamaño de página (10, máx. 100)"
// @Param        sortBy          query     string  false  "created_at | total_amount | amount_paid | status"
// @Param        sortOrder       query     string  false  "ASC | DESC"
// @Param        from            query     string  false  "YYYY-MM-DD o RFC3339"
// @Param        to              query     string  false  "YYYY-MM-DD (inclusivo) o RFC3339"
// @Param        search          query     string  false  "Cliente o producto"
// @Param        outletId        query     string  false  "Sucursal"
// @Param        businessId      query     string  false  "Negocio"
// @Param        salesPersonId   query     string  false  "Vendedor"
// @Param        status          query     string  false  "Estado"
// @Param        paymentChannel  query     string  false  "Canal de pago"
// @Success      200  {object}  dto.Paginated[dto.SaleResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SalesHandler) List(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return domain.Invalidf("parámetros de consulta inválidos")
	}
	var f dto.SaleListQuery
	if err := c.QueryParser(&f); err != nil {
		return domain.Invalidf("parámetros de consulta inválidos")
	}
	out, err := h.ledger.ListSales(c.UserContext(), actor, f, q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	pdf, filename, err := h.receipts.DownloadReceipt(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}
