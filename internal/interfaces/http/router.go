package http

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/Brobot64/shopmasterback-v1/internal/application/inventory"
	"github.com/Brobot64/shopmasterback-v1/internal/application/sales"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *sales.LedgerUseCase
	Receipts       *sales.ReceiptUseCase
	Reconciliation *inventory.ReconciliationUseCase
	Export         *inventory.ExportUseCase
	JWTSecret      string
	RequestTimeout time.Duration
	Production     bool
	Log            *logger.Logger
	// Health verifica dependencias (DB, caché); nil = siempre sano.
	Health func(ctx context.Context) error
}

// NewApp construye la aplicación Fiber con middleware, manejo de errores y rutas.
func NewApp(deps RouterDeps) *fiber.App {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      "shopmaster-ledger",
		ErrorHandler: ErrorHandler(deps.Production, deps.Log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(AccessLog(deps.Log.Named("http")))

	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Shopmaster Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequestTimeout(deps.RequestTimeout))

	writers := RequireRole(entity.RoleStoreExecutive, entity.RoleOwner, entity.RoleAdmin)

	salesHandler := NewSalesHandler(deps.Ledger, deps.Receipts)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", RequireRole(entity.RoleSalesRep, entity.RoleStoreExecutive), salesHandler.Record)
	salesGroup.Get("/", salesHandler.List)
	salesGroup.Get("/:id", salesHandler.GetByID)
	salesGroup.Get("/:id/receipt", salesHandler.Receipt)
	salesGroup.Patch("/:id/status", writers, salesHandler.UpdateStatus)

	invHandler := NewInventoryHandler(deps.Reconciliation, deps.Export)
	invGroup := api.Group("/inventories")
	invGroup.Post("/", writers, invHandler.Record)
	invGroup.Get("/", invHandler.List)
	invGroup.Get("/:id", invHandler.GetByID)
	invGroup.Get("/:id/export", invHandler.Export)
	invGroup.Post("/:id/complete", writers, invHandler.Complete)
	invGroup.Post("/:id/reconcile", writers, invHandler.Reconcile)
}
