package trace

import (
	"context"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
	dtrace "github.com/jfarias/trazabilidad-api/internal/domain/trace"
)

// classifyOrigins calcula la calidad de origen de cada pallet del snapshot a
// partir de sus movimientos creadores (pallet como destino). Los movimientos
// colectados ya vienen sin referencias excluidas, así que un pallet cuyo
// único creador era una corrección interna cae en SIN_ORIGEN y se intenta la
// recuperación: reconsultar sus creadores al ERP sin ningún filtro de
// exclusión, marcando el resultado con el sufijo de recuperado.
func (r *Resolver) classifyOrigins(ctx context.Context, snap *entity.GraphSnapshot, moves []entity.Movement) {
	creators := map[string][]entity.Movement{}
	for _, m := range moves {
		if !m.DestinationPackage.IsSet() {
			continue
		}
		name := m.DestinationPackage.Label
		if name == "" {
			name = m.DestinationPackage.Key()
		}
		creators[name] = append(creators[name], m)
	}

	for name, p := range snap.Pallets {
		candidates := creators[name]
		entity.SortMovementsByDate(candidates)
		analysis := dtrace.ClassifyOrigin(candidates)

		if analysis.Quality == entity.SinOrigen {
			analysis = r.recoverOrigin(ctx, p.ID, analysis)
		}
		p.OriginQuality = analysis.Quality
	}
}

// recoverOrigin reanaliza un pallet SIN_ORIGEN consultando sus movimientos
// creadores sin la lista de exclusión. Si la recuperación encuentra
// candidatos, la calidad resultante lleva el sufijo de recuperado; si la
// consulta falla o no hay nada, queda SIN_ORIGEN.
func (r *Resolver) recoverOrigin(ctx context.Context, packageID int64, prev entity.OriginAnalysis) entity.OriginAnalysis {
	rows, err := r.erp.SearchRead(ctx, ports.CollectionMoveLines,
		ports.Filter{
			ports.C("state", "=", "done"),
			ports.C("result_package_id", "=", packageID),
		}, ports.MoveLineFields, r.cfg.FetchLimit, "date asc")
	if err != nil {
		r.log.Warn().Err(err).Int64("package_id", packageID).Msg("recuperación de origen falló")
		return prev
	}
	candidates := make([]entity.Movement, 0, len(rows))
	for _, row := range rows {
		m := ports.MovementFromRow(row)
		if m.Traceable() {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return prev
	}
	entity.SortMovementsByDate(candidates)
	recovered := dtrace.ClassifyOrigin(candidates)
	recovered.Quality = recovered.Quality.Recovered()
	return recovered
}
