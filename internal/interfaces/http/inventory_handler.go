package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/application/inventory"
	"github.com/Brobot64/shopmasterback-v1/internal/domain"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryHandler conteos físicos y reconciliación (protegido).
type InventoryHandler struct {
	uc     *inventory.ReconciliationUseCase
	export *inventory.ExportUseCase
}

func NewInventoryHandler(uc *inventory.ReconciliationUseCase, export *inventory.ExportUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, export: export}
}

// Record godoc
// @Summary      Registrar conteo físico
// @Description  Guarda el conteo con la foto del stock actual; no modifica cantidades.
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecordInventoryRequest  true  "outlet_id, counts"
// @Success      201   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventories [post]
func (h *InventoryHandler) Record(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	var in dto.RecordInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return domain.Invalidf("cuerpo inválido")
	}
	out, err := h.uc.RecordInventory(c.UserContext(), actor, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Complete godoc
// @Summary      Cerrar conteo (PENDING -> COMPLETED)
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del inventario"
// @Success      200  {object}  dto.InventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventories/{id}/complete [post]
func (h *InventoryHandler) Complete(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	out, err := h.uc.CompleteInventory(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reconciliar conteo
// @Description  Sobrescribe la cantidad de cada producto indicado con el valor reconciliado. Una sola vez por inventario.
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                         true  "ID del inventario"
// @Param        body  body      dto.ReconcileInventoryRequest  true  "counts"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventories/{id}/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	var in dto.ReconcileInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return domain.Invalidf("cuerpo inválido")
	}
	out, err := h.uc.ReconcileInventory(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener conteo
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del inventario"
// @Success      200  {object}  dto.InventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventories/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	out, err := h.uc.GetInventoryByID(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar conteos
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        page        query     int     false  "Página (1)"
// @Param        limit       query     int     false  "Tamaño de página (10, máx. 100)"
// @Param        sortBy      query     string  false  "created_at | status"
// @Param        sortOrder   query     string  false  "ASC | DESC"
// @Param        from        query     string  false  "YYYY-MM-DD o RFC3339"
// @Param        to          query     string  false  "YYYY-MM-DD (inclusivo) o RFC3339"
// @Param        search      query     string  false  "Nombre de producto"
// @Param        outletId    query     string  false  "Sucursal"
// @Param        businessId  query     string  false  "Negocio"
// @Param        actionerId  query     string  false  "Usuario que contó"
// @Param        status      query     string  false  "PENDING | COMPLETED | RECONCILED"
// @Success      200  {object}  dto.Paginated[dto.InventoryResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventories [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return domain.Invalidf("parámetros de consulta inválidos")
	}
	var f dto.InventoryListQuery
	if err := c.QueryParser(&f); err != nil {
		return domain.Invalidf("parámetros de consulta inválidos")
	}
	out, err := h.uc.ListInventories(c.UserContext(), actor, f, q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Planilla XLSX del conteo
// @Tags         inventories
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path      string  true  "ID del inventario"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventories/{id}/export [get]
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	data, filename, err := h.export.ExportCountSheet(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, contentTypeXLSX)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
