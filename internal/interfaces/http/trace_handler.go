package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jfarias/trazabilidad-api/internal/application/dto"
	"github.com/jfarias/trazabilidad-api/internal/application/projection"
	"github.com/jfarias/trazabilidad-api/internal/application/trace"
	"github.com/jfarias/trazabilidad-api/internal/domain"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// TraceHandler maneja las consultas de trazabilidad contra el ERP.
type TraceHandler struct {
	resolver *trace.Resolver
}

// NewTraceHandler construye el handler.
func NewTraceHandler(resolver *trace.Resolver) *TraceHandler {
	return &TraceHandler{resolver: resolver}
}

// Trace resuelve la cadena de un paquete u orden de venta.
// GET /api/trace/:identifier?siblings=&limit=&format=raw|sankey|graph|network
func (h *TraceHandler) Trace(c *fiber.Ctx) error {
	identifier := c.Params("identifier")
	var q dto.TraceQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if !dto.ValidFormat(q.Format) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FORMAT", Message: "formato desconocido: " + q.Format})
	}

	snap, err := h.resolver.Resolve(c.Context(), identifier, trace.Options{
		MaxRecords:      q.Limit,
		IncludeSiblings: q.Siblings,
	})
	if err != nil {
		return traceError(c, err)
	}
	return renderSnapshot(c, identifier, q.Format, snap)
}

// TraceGuide resuelve la cadena a partir de un número de guía de despacho.
// GET /api/trace/guide/:number
func (h *TraceHandler) TraceGuide(c *fiber.Ctx) error {
	number := c.Params("number")
	var q dto.TraceQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if !dto.ValidFormat(q.Format) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FORMAT", Message: "formato desconocido: " + q.Format})
	}

	snap, err := h.resolver.ResolveGuide(c.Context(), number, trace.Options{
		MaxRecords:      q.Limit,
		IncludeSiblings: q.Siblings,
	})
	if err != nil {
		return traceError(c, err)
	}
	return renderSnapshot(c, number, q.Format, snap)
}

// renderSnapshot despacha al proyector pedido. Un snapshot vacío es una
// respuesta válida (200), nunca un 404.
func renderSnapshot(c *fiber.Ctx, identifier, format string, snap *entity.GraphSnapshot) error {
	switch format {
	case dto.FormatSankey:
		return c.JSON(projection.Sankey(snap))
	case dto.FormatGraph:
		return c.JSON(projection.InteractiveGraph(snap))
	case dto.FormatNetwork:
		return c.JSON(projection.Network(snap))
	default:
		return c.JSON(dto.TraceResponse{Identifier: identifier, Truncated: snap.Truncated, Graph: snap})
	}
}

func traceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "identificador inválido"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	}
	if errors.Is(err, domain.ErrUpstream) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "UPSTREAM", Message: "error consultando el ERP"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
