package trace

import (
	"context"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// backward resolución de cadena hacia atrás: desde los paquetes semilla hasta
// las recepciones que los originaron.
//
// Estructura en dos fases: primero se colecta como si fuera "mostrar todo"
// (cola de trabajo + hermanos por referencia), y al final, en modo conexión
// directa, una pasada BFS poda lo no alcanzable desde la semilla. saleOrigin
// no vacío restringe los nodos cliente a esa orden de venta.
func (r *Resolver) backward(ctx context.Context, seeds []int64, opts Options, saleOrigin string) (*entity.GraphSnapshot, error) {
	collected := map[int64]entity.Movement{}
	queue := toSet(seeds)
	traced := map[int64]bool{}
	truncated := false

	for iter := 0; iter < r.cfg.MaxIterations; iter++ {
		if len(queue) == 0 {
			break
		}
		queued := setValues(queue)

		// (a) movimientos que tocan los paquetes en cola
		moves, err := r.fetchMovesByPackages(ctx, queued, opts)
		if err != nil {
			if iter == 0 && len(collected) == 0 {
				// Sin datos semilla no hay resultado parcial con sentido.
				return nil, err
			}
			r.log.Warn().Err(err).Int("iteration", iter).Msg("iteración de encadenamiento falló, se continúa con lo colectado")
			truncated = true
			break
		}

		// (b) hermanos: todas las líneas que comparten referencia
		siblings, err := r.fetchSiblings(ctx, references(moves), opts)
		if err != nil {
			r.log.Warn().Err(err).Int("iteration", iter).Msg("lectura de hermanos falló")
			siblings = nil
		}

		// (c) siguiente frontera
		next := map[int64]bool{}
		for _, s := range append(moves, siblings...) {
			collected[s.ID] = s
			if !s.OriginPackage.IsSet() {
				continue
			}
			if opts.IncludeSiblings {
				// Modo "mostrar todo": cada insumo de cada proceso tocado.
				next[s.OriginPackage.ID] = true
				continue
			}
			// Modo conexión directa: solo los insumos que alimentaron
			// exactamente un paquete actualmente en cola.
			if s.DestinationPackage.IsSet() && queue[s.DestinationPackage.ID] {
				next[s.OriginPackage.ID] = true
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

	// Cierre de los dos extremos de la cadena.
	seen := collectedPackageIDs(collected, seeds)
	if err := r.appendReceptions(ctx, collected, seen, opts); err != nil {
		r.log.Warn().Err(err).Msg("cierre de recepciones falló")
	}
	if err := r.appendSales(ctx, collected, outputPackageIDs(collected), opts); err != nil {
		r.log.Warn().Err(err).Msg("cierre de ventas falló")
	}

	snap := r.buildSnapshot(ctx, collected, saleOrigin)
	snap.Truncated = snap.Truncated || truncated

	if !opts.IncludeSiblings {
		directConnectionFilter(snap, r.seedNames(snap, seeds), saleOrigin)
	}
	return snap, nil
}

// fetchSiblings todas las líneas que comparten alguna de las referencias.
func (r *Resolver) fetchSiblings(ctx context.Context, refs []string, opts Options) ([]entity.Movement, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	return r.fetchMoves(ctx, ports.Filter{ports.C("reference", "in", refs)}, opts)
}

// appendReceptions trae las recepciones (origen = ubicación de proveedores)
// que tocan cualquier paquete visto, para cerrar el extremo aguas arriba.
func (r *Resolver) appendReceptions(ctx context.Context, collected map[int64]entity.Movement, pkgIDs []int64, opts Options) error {
	if len(pkgIDs) == 0 {
		return nil
	}
	for _, field := range []string{"package_id", "result_package_id"} {
		moves, err := r.fetchMoves(ctx, ports.Filter{
			ports.C("location_id", "=", r.cfg.VendorsLocationID),
			ports.C(field, "in", pkgIDs),
		}, opts)
		if err != nil {
			return err
		}
		for _, m := range moves {
			collected[m.ID] = m
		}
	}
	return nil
}

// appendSales trae las ventas (destino = ubicación de clientes) que consumen
// cualquier paquete de salida visto, para cerrar el extremo aguas abajo.
func (r *Resolver) appendSales(ctx context.Context, collected map[int64]entity.Movement, outputIDs []int64, opts Options) error {
	if len(outputIDs) == 0 {
		return nil
	}
	moves, err := r.fetchMoves(ctx, ports.Filter{
		ports.C("location_dest_id", "=", r.cfg.CustomersLocationID),
		ports.C("package_id", "in", outputIDs),
	}, opts)
	if err != nil {
		return err
	}
	for _, m := range moves {
		collected[m.ID] = m
	}
	return nil
}

// buildSnapshot clasifica el conjunto colectado en pallets/procesos/enlaces,
// resuelve identidades y calcula calidad de origen. Las fases de
// enriquecimiento degradan a "sin ese dato" ante error; nunca abortan.
func (r *Resolver) buildSnapshot(ctx context.Context, collected map[int64]entity.Movement, saleOrigin string) *entity.GraphSnapshot {
	b := newGraphBuilder(r.locs, saleOrigin)
	b.addAll(mapValues(collected))
	snap := b.snapshot()

	r.enrich(ctx, snap)
	r.classifyOrigins(ctx, snap, b.moves)
	return snap
}

// seedNames traduce ids de paquete semilla a los nombres con que el snapshot
// llavea sus pallets.
func (r *Resolver) seedNames(snap *entity.GraphSnapshot, seeds []int64) []string {
	byID := map[int64]string{}
	for name, p := range snap.Pallets {
		byID[p.ID] = name
	}
	var names []string
	for _, id := range seeds {
		if n, ok := byID[id]; ok {
			names = append(names, n)
		}
	}
	return names
}

// ── Helpers de conjuntos ──────────────────────────────────────────────────────

func toSet(ids []int64) map[int64]bool {
	s := make(map[int64]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func setValues(s map[int64]bool) []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

func mapValues(m map[int64]entity.Movement) []entity.Movement {
	out := make([]entity.Movement, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func references(moves []entity.Movement) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range moves {
		if m.Reference != "" && !seen[m.Reference] {
			seen[m.Reference] = true
			out = append(out, m.Reference)
		}
	}
	return out
}

func collectedPackageIDs(collected map[int64]entity.Movement, seeds []int64) []int64 {
	seen := map[int64]bool{}
	var out []int64
	add := func(id int64) {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range seeds {
		add(id)
	}
	for _, m := range collected {
		add(m.OriginPackage.OrZero())
		add(m.DestinationPackage.OrZero())
	}
	return out
}

func outputPackageIDs(collected map[int64]entity.Movement) []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, m := range collected {
		if id := m.DestinationPackage.OrZero(); id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
