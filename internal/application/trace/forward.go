package trace

import (
	"context"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// forward resolución de cadena hacia adelante: desde los paquetes semilla
// (típicamente un evento de recepción) hasta las ventas que los agotaron.
//
// Simétrica a backward, con una asimetría heredada y deliberada: al expandir
// a través de un proceso NO se restringe a las salidas que consumieron
// exactamente el paquete en cola: el linaje hacia adelante queda más ancho
// que el de vuelta. Ver DESIGN.md antes de "armonizar" esto.
func (r *Resolver) forward(ctx context.Context, seeds []int64, opts Options) (*entity.GraphSnapshot, error) {
	collected := map[int64]entity.Movement{}
	queue := toSet(seeds)
	traced := map[int64]bool{}
	truncated := false

	for iter := 0; iter < r.cfg.MaxIterations; iter++ {
		if len(queue) == 0 {
			break
		}
		queued := setValues(queue)

		moves, err := r.fetchMovesByPackages(ctx, queued, opts)
		if err != nil {
			if iter == 0 && len(collected) == 0 {
				return nil, err
			}
			r.log.Warn().Err(err).Int("iteration", iter).Msg("iteración hacia adelante falló, se continúa con lo colectado")
			truncated = true
			break
		}

		siblings, err := r.fetchSiblings(ctx, references(moves), opts)
		if err != nil {
			r.log.Warn().Err(err).Int("iteration", iter).Msg("lectura de hermanos falló")
			siblings = nil
		}

		next := map[int64]bool{}
		for _, s := range append(moves, siblings...) {
			collected[s.ID] = s
			if s.DestinationPackage.IsSet() {
				next[s.DestinationPackage.ID] = true
			}
		}

		for id := range queue {
			traced[id] = true
		}
		queue = map[int64]bool{}
		for id := range next {
			if !traced[id] {
				queue[id] = true
			}
		}
		if len(queue) > 0 && iter == r.cfg.MaxIterations-1 {
			truncated = true
		}
	}

	seen := collectedPackageIDs(collected, seeds)
	if err := r.appendReceptions(ctx, collected, seen, opts); err != nil {
		r.log.Warn().Err(err).Msg("cierre de recepciones falló")
	}
	if err := r.appendSales(ctx, collected, outputPackageIDs(collected), opts); err != nil {
		r.log.Warn().Err(err).Msg("cierre de ventas falló")
	}

	snap := r.buildSnapshot(ctx, collected, "")
	snap.Truncated = snap.Truncated || truncated

	if !opts.IncludeSiblings {
		directConnectionFilter(snap, r.seedNames(snap, seeds), "")
	}
	return snap, nil
}
