package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *ledger.Engine
	Reader    *ledger.Reader
	Bulk      *ledger.BulkAdjuster
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invGroup := protected.Group("/inventory")
	handler := NewLedgerHandler(deps.Engine, deps.Reader, deps.Bulk)
	invGroup.Post("/movements", handler.RecordMovement)
	invGroup.Get("/items/:id/stock", handler.GetStock)
	invGroup.Get("/items/:id/history", handler.GetHistory)
	invGroup.Post("/adjustments/batch", handler.ApplyBatch)
}
