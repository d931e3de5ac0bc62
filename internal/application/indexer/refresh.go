package indexer

import (
	"context"
	"time"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// erpDateLayout formato con que el ERP compara write_date en filtros.
const erpDateLayout = "2006-01-02 15:04:05"

// RefreshIncremental trae solo las líneas escritas después del último
// refresco y las fusiona en los mapas existentes. Los fallos se registran y
// se tragan: el índice sigue sirviendo datos viejos pero válidos. Si hay un
// rebuild o refresh en vuelo la llamada es un no-op inmediato.
func (ix *Index) RefreshIncremental(ctx context.Context) {
	if !ix.beginLoad() {
		ix.log.Debug().Msg("refresh descartado: reindexación en curso")
		return
	}
	defer ix.endLoad()

	st := ix.snapshotState()
	if st == nil {
		ix.log.Warn().Msg("refresh sin índice cargado, se requiere rebuild")
		return
	}

	since := st.lastRefresh
	started := time.Now()
	rows, err := ix.erp.SearchRead(ctx, ports.CollectionMoveLines,
		ports.Filter{
			ports.C("state", "=", "done"),
			ports.C("write_date", ">", since.UTC().Format(erpDateLayout)),
		}, ports.MoveLineFields, 0, "write_date asc")
	if err != nil {
		ix.log.Warn().Err(err).Msg("refresh incremental falló, el índice sigue con datos previos")
		return
	}
	if len(rows) == 0 {
		ix.stateMu.Lock()
		st.lastRefresh = started
		ix.stateMu.Unlock()
		return
	}

	moves := ports.MovementsFromRows(rows)
	locs := ix.locationsFor(st)

	ix.stateMu.Lock()
	for _, m := range moves {
		st.replace(m, locs)
	}
	// Reclasificación de las referencias tocadas (la pegajosidad de
	// RECEPTION se recalcula desde cero sobre las líneas vigentes).
	touched := map[string]bool{}
	for _, m := range moves {
		touched[m.Reference] = true
	}
	for ref := range touched {
		delete(st.refKinds, ref)
	}
	for _, m := range st.moves {
		if !touched[m.Reference] {
			continue
		}
		kind := st.kinds[m.ID]
		if prev, ok := st.refKinds[m.Reference]; !ok || (kind == entity.KindReception && prev != entity.KindReception) {
			st.refKinds[m.Reference] = kind
		}
	}
	st.lastRefresh = started
	ix.stateMu.Unlock()

	ix.log.Info().Int("merged", len(moves)).Dur("elapsed", time.Since(started)).Msg("refresh incremental aplicado")

	if err := ix.persist(ctx, st); err != nil {
		ix.log.Warn().Err(err).Msg("persistencia tras refresh falló")
	}
}
