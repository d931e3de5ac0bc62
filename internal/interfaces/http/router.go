package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jfarias/trazabilidad-api/internal/application/indexer"
	"github.com/jfarias/trazabilidad-api/internal/application/trace"
	"github.com/jfarias/trazabilidad-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Resolver *trace.Resolver
	Index    *indexer.Index
	Log      *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Trazabilidad en línea contra el ERP
	traceGroup := api.Group("/trace")
	traceHandler := NewTraceHandler(deps.Resolver)
	traceGroup.Get("/guide/:number", traceHandler.TraceGuide)
	traceGroup.Get("/:identifier", traceHandler.Trace)

	// Índice local de movimientos
	indexGroup := api.Group("/index")
	indexHandler := NewIndexHandler(deps.Index, deps.Log)
	indexGroup.Get("/status", indexHandler.Status)
	indexGroup.Post("/rebuild", indexHandler.Rebuild)
	indexGroup.Post("/refresh", indexHandler.Refresh)
	indexGroup.Get("/package/:id/backward", indexHandler.Backward)
	indexGroup.Get("/package/:id/forward", indexHandler.Forward)
}
