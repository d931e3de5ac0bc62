package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jfarias/trazabilidad-api/internal/application/dto"
	"github.com/jfarias/trazabilidad-api/internal/application/indexer"
	"github.com/jfarias/trazabilidad-api/internal/domain"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
	"github.com/jfarias/trazabilidad-api/pkg/logger"
)

// IndexHandler expone la administración del índice local de movimientos.
type IndexHandler struct {
	index *indexer.Index
	log   *logger.Logger
}

// NewIndexHandler construye el handler.
func NewIndexHandler(index *indexer.Index, log *logger.Logger) *IndexHandler {
	return &IndexHandler{index: index, log: log}
}

// Status devuelve el estado actual del índice.
// GET /api/index/status
func (h *IndexHandler) Status(c *fiber.Ctx) error {
	s := h.index.CurrentStatus()
	return c.JSON(dto.IndexStatusResponse{
		Loaded:              s.Loaded,
		Reindexing:          s.Reindexing,
		MoveLines:           s.MoveLines,
		Packages:            s.Packages,
		References:          s.References,
		ProductionLocations: s.ProductionLocations,
		LastRefresh:         s.LastRefresh,
	})
}

// Rebuild lanza una reconstrucción completa en segundo plano.
// POST /api/index/rebuild
func (h *IndexHandler) Rebuild(c *fiber.Ctx) error {
	if h.index.CurrentStatus().Reindexing {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REINDEXING", Message: "ya hay una reindexación en curso"})
	}
	// El contexto de fiber muere al responder; la reconstrucción sigue sola.
	go func() {
		if err := h.index.Rebuild(context.Background()); err != nil {
			if errors.Is(err, domain.ErrReindexing) {
				return
			}
			h.log.Error().Err(err).Msg("reindexación falló")
		}
	}()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "reindexación iniciada"})
}

// Refresh aplica un refresco incremental de forma síncrona.
// POST /api/index/refresh
func (h *IndexHandler) Refresh(c *fiber.Ctx) error {
	h.index.RefreshIncremental(c.Context())
	return c.JSON(fiber.Map{"message": "refresco aplicado"})
}

// Backward recorre la cadena hacia el origen sobre el índice local.
// GET /api/index/package/:id/backward?depth=
func (h *IndexHandler) Backward(c *fiber.Ctx) error {
	return h.traverse(c, "backward")
}

// Forward recorre la cadena hacia el destino sobre el índice local.
// GET /api/index/package/:id/forward?depth=
func (h *IndexHandler) Forward(c *fiber.Ctx) error {
	return h.traverse(c, "forward")
}

func (h *IndexHandler) traverse(c *fiber.Ctx, direction string) error {
	pkgID, err := c.ParamsInt("id")
	if err != nil || pkgID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de paquete inválido"})
	}
	if !h.index.Loaded() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "INDEX_EMPTY", Message: "el índice aún no está cargado"})
	}
	// depth 0 delega el tope al índice (TRACE_MAX_DEPTH de configuración).
	depth := c.QueryInt("depth", 0)

	var (
		moves     []entity.Movement
		truncated bool
	)
	if direction == "backward" {
		moves, truncated = h.index.TraverseBackward(int64(pkgID), depth)
	} else {
		moves, truncated = h.index.TraverseForward(int64(pkgID), depth)
	}
	kinds := make(map[string]entity.MovementKind, len(moves))
	for _, m := range moves {
		if _, ok := kinds[m.Reference]; !ok {
			kinds[m.Reference] = h.index.ReferenceKind(m.Reference)
		}
	}
	return c.JSON(dto.TraverseResponse{
		PackageID: int64(pkgID),
		Direction: direction,
		Truncated: truncated,
		Total:     len(moves),
		Movements: moves,
		Kinds:     kinds,
	})
}
