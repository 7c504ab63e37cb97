package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/jhoicas/dairy-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.Ledger
	Purchases     *inventory.PurchaseUseCase
	Usage         *inventory.UsageUseCase
	Replenishment *inventory.ReplenishmentUseCase
	StockItemUC   *usecase.StockItemUseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token con farm_id.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(RoleOwner, RoleManager)
	anyRole := RequireRole(RoleOwner, RoleManager, RoleWorker)

	// Catálogo de insumos
	items := api.Group("/feeds/items")
	itemHandler := NewStockItemHandler(deps.StockItemUC)
	items.Get("/by-qr", anyRole, itemHandler.GetByQR)
	items.Get("/", anyRole, itemHandler.List)
	items.Post("/", managers, itemHandler.Create)
	items.Get("/:id", anyRole, itemHandler.GetByID)
	items.Put("/:id", managers, itemHandler.Update)

	// Compras y consumos: disparan el libro
	feeds := api.Group("/feeds", anyRole)
	feedHandler := NewFeedHandler(deps.Purchases, deps.Usage)
	feeds.Post("/purchases", feedHandler.CreatePurchase)
	feeds.Get("/purchases", feedHandler.ListPurchases)
	feeds.Get("/usage/today", feedHandler.UsageToday)
	feeds.Post("/usage", feedHandler.CreateUsage)
	feeds.Get("/usage", feedHandler.ListUsage)
	feeds.Post("/scan", feedHandler.Scan)

	// Saldos y movimientos
	inv := api.Group("/inventory")
	invHandler := NewInventoryHandler(deps.Ledger, deps.Replenishment)
	inv.Get("/balances", anyRole, invHandler.ListBalances)
	inv.Get("/balances/low-stock", anyRole, invHandler.LowStock)
	inv.Get("/balances/summary", anyRole, invHandler.Summary)
	inv.Get("/balances/:item_id", anyRole, invHandler.GetBalance)
	inv.Get("/balances/:item_id/verify", managers, invHandler.VerifyBalance)
	inv.Post("/adjustments", managers, invHandler.CreateAdjustment)
	inv.Get("/movements", anyRole, invHandler.ListMovements)
	inv.Get("/replenishment-list", anyRole, invHandler.GetReplenishmentList)
}
