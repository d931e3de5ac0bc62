package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// batchSize tamaño de página para los barridos completos contra el ERP.
const batchSize = 500

// Rebuild reconstrucción completa: baja toda la población de líneas "done" y
// sus entidades relacionadas en lotes, reconstruye los dos mapas de
// adyacencia y la clasificación, y persiste el snapshot versionado.
//
// Cualquier fallo de lectura aborta el rebuild completo dejando el estado
// anterior intacto. Devuelve domain.ErrReindexing si ya hay un rebuild o
// refresh en vuelo (se descarta, no se encola).
func (ix *Index) Rebuild(ctx context.Context) error {
	if !ix.beginLoad() {
		return domain.ErrReindexing
	}
	defer ix.endLoad()

	started := time.Now()
	st := newIndexState()

	rows, err := ix.erp.SearchReadBatch(ctx, ports.CollectionMoveLines,
		ports.Filter{ports.C("state", "=", "done")}, ports.MoveLineFields, batchSize, "id asc")
	if err != nil {
		return fmt.Errorf("leer líneas de movimiento: %w", err)
	}
	moves := ports.MovementsFromRows(rows)

	related := []struct {
		collection string
		fields     []string
		into       *map[int64]ports.Row
	}{
		{ports.CollectionPackages, []string{"id", "name"}, &st.packages},
		{ports.CollectionProductions, []string{"id", "name", "date_planned_start", "product_id", "state"}, &st.productions},
		{ports.CollectionPickings, []string{"id", "name", "origin", "partner_id", "carrier_tracking_ref"}, &st.pickings},
		{ports.CollectionPartners, []string{"id", "name", "supplier_rank", "customer_rank"}, &st.partners},
		{ports.CollectionProducts, []string{"id", "name", "default_code"}, &st.products},
		{ports.CollectionLocations, []string{"id", "name", "usage"}, &st.locations},
	}
	for _, rel := range related {
		rows, err := ix.erp.SearchReadBatch(ctx, rel.collection, nil, rel.fields, batchSize, "id asc")
		if err != nil {
			return fmt.Errorf("leer %s: %w", rel.collection, err)
		}
		m := make(map[int64]ports.Row, len(rows))
		for _, r := range rows {
			m[r.Int64("id")] = r
		}
		*rel.into = m
	}

	st.discoverProductionLocations()
	locs := ix.locationsFor(st)
	for _, m := range moves {
		st.insert(m, locs)
	}
	st.lastRefresh = started

	ix.swap(st)
	ix.log.Info().
		Int("move_lines", len(st.moves)).
		Int("packages", len(st.packages)).
		Dur("elapsed", time.Since(started)).
		Msg("rebuild del índice completado")

	if err := ix.persist(ctx, st); err != nil {
		// El estado en memoria ya es válido; perder la cache solo cuesta
		// un rebuild tras el próximo reinicio.
		ix.log.Warn().Err(err).Msg("persistencia del snapshot falló")
	}
	return nil
}

func (ix *Index) persist(ctx context.Context, st *indexState) error {
	lines := make([]entity.Movement, 0, len(st.moves))
	for _, m := range st.moves {
		lines = append(lines, m)
	}
	entity.SortMovementsByDate(lines)
	snap := &IndexSnapshot{
		Version:     SchemaVersion,
		MoveLines:   lines,
		Packages:    st.packages,
		Productions: st.productions,
		Pickings:    st.pickings,
		Partners:    st.partners,
		Products:    st.products,
		Locations:   st.locations,
		LastRefresh: st.lastRefresh,
	}
	return ix.store.Save(ctx, snap)
}
