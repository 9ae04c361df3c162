package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-escolar/internal/application/catalog"
	"github.com/tu-usuario/almacen-escolar/internal/application/inventory"
	"github.com/tu-usuario/almacen-escolar/internal/application/loans"
	"github.com/tu-usuario/almacen-escolar/internal/application/reports"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC   *catalog.ItemUseCase
	StockUC  *inventory.StockUseCase
	LoanUC   *loans.LoanUseCase
	ReportUC *reports.DemandUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo de artículos
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Patch("/:id/threshold", itemHandler.UpdateThreshold)
	items.Delete("/:id", itemHandler.Delete)

	// Movimientos y stock proyectado
	inventoryHandler := NewInventoryHandler(deps.StockUC)
	inv := api.Group("/inventory")
	inv.Post("/adjustments", inventoryHandler.Adjust)
	inv.Post("/seed", inventoryHandler.BulkSeed)
	items.Get("/:id/stock", inventoryHandler.GetStock)
	items.Get("/:id/breakdown", inventoryHandler.GetSizeBreakdown)
	items.Get("/:id/movements", inventoryHandler.ListMovements)
	items.Get("/:id/audit", inventoryHandler.Audit)

	// Préstamos de equipo
	loansGroup := api.Group("/loans")
	loanHandler := NewLoanHandler(deps.LoanUC)
	loansGroup.Post("/", loanHandler.Create)
	loansGroup.Get("/", loanHandler.List)
	loansGroup.Get("/:id", loanHandler.GetByID)
	loansGroup.Post("/:id/transition", loanHandler.Transition)

	// Reportes
	reportsGroup := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reportsGroup.Get("/demand", reportHandler.Demand)
}
