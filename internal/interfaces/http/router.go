package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appstock "github.com/tu-usuario/erp-stock/internal/application/stock"
	"github.com/tu-usuario/erp-stock/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AdjustUC       *appstock.AdjustUseCase
	AvailabilityUC *appstock.AvailabilityChecker
	QueryUC        *appstock.QueryUseCase
	ProductUC      *usecase.ProductUseCase
	Logger         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Products (catálogo mínimo)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Stocks (núcleo de inventario)
	// Las rutas estáticas van antes de /:id para que Fiber no las capture como parámetro.
	stocks := api.Group("/stocks")
	stockHandler := NewStockHandler(deps.AdjustUC, deps.AvailabilityUC, deps.QueryUC, deps.Logger)
	stocks.Post("/", stockHandler.Create)
	stocks.Post("/inbound", stockHandler.Inbound)
	stocks.Post("/outbound", stockHandler.Outbound)
	stocks.Post("/availability", stockHandler.Availability)
	stocks.Post("/query", stockHandler.Search)
	stocks.Post("/movements/query", stockHandler.SearchMovements)
	stocks.Get("/low", stockHandler.LowStock)
	stocks.Get("/zero", stockHandler.ZeroStock)
	stocks.Get("/product/:productId/movements", stockHandler.MovementsByProduct)
	stocks.Get("/product/:productId", stockHandler.GetByProduct)
	stocks.Get("/:id", stockHandler.GetByID)
	stocks.Delete("/:id", stockHandler.Delete)
}
