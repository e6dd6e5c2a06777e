package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jhoicas/licoreria-api/internal/application/billing"
	"github.com/jhoicas/licoreria-api/internal/application/inventory"
	"github.com/jhoicas/licoreria-api/internal/application/purchasing"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/cache"
	"github.com/jhoicas/licoreria-api/pkg/jwt"
	"github.com/jhoicas/licoreria-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName        string
	PurchaseOrders *purchasing.PurchaseOrderUseCase
	Receipts       *purchasing.ReceiptUseCase
	Stock          *inventory.StockUseCase
	Invoices       *billing.InvoiceUseCase
	Idempotency    cache.IdempotencyStore
	IdempotencyTTL time.Duration
	JWTSecret      string
	SwaggerFile    string // vacío o inexistente = sin /docs
	Log            *logger.Logger
}

// NewApp crea la app Fiber con middlewares globales y todas las rutas.
func NewApp(deps RouterDeps) *fiber.App {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	log := deps.Log.Component("http")

	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: func() string { return uuid.NewString() }}))
	app.Use(RequestLogger(log))

	// Swagger UI: http://localhost:<port>/docs
	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "Licorería API",
			}))
		} else {
			log.Warn().Str("file", deps.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Idempotency == nil {
		deps.Idempotency = cache.NewInMemoryIdempotencyStore()
	}
	if deps.IdempotencyTTL <= 0 {
		deps.IdempotencyTTL = 24 * time.Hour
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	idem := Idempotency(deps.Idempotency, deps.IdempotencyTTL, log.Component("idempotency"))

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	warehouse := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	sales := RequireRole(jwt.RoleAdmin, jwt.RoleVendedor)

	orders := NewPurchaseOrderHandler(deps.PurchaseOrders)
	receipts := NewReceiptHandler(deps.Receipts)
	compras := api.Group("/compras", warehouse)
	compras.Post("/", orders.Create)
	compras.Get("/", orders.List)
	compras.Get("/:id", orders.GetByID)
	compras.Put("/:id", orders.Update)
	compras.Post("/:id/anular", orders.Cancel)
	compras.Post("/:id/recepciones", receipts.Open)
	compras.Get("/:id/recepciones", receipts.ListByOrder)

	recepciones := api.Group("/recepciones", warehouse)
	recepciones.Get("/:id", receipts.GetByID)
	recepciones.Put("/:id/detalles", receipts.AdjustLines)
	recepciones.Post("/:id/aprobar", idem, receipts.Approve)
	recepciones.Post("/:id/anular", receipts.Cancel)

	products := NewProductHandler(deps.Stock)
	productos := api.Group("/productos", warehouse)
	productos.Post("/:id/ajustar-stock", products.AdjustStock)
	productos.Get("/:id/kardex", products.Ledger)
	productos.Get("/:id/ajustes", products.Adjustments)

	invoices := NewInvoiceHandler(deps.Invoices)
	facturas := api.Group("/facturas", sales)
	facturas.Post("/", idem, invoices.Create)
	facturas.Get("/:id", invoices.GetByID)
	facturas.Post("/:id/anular", invoices.Cancel)
}
