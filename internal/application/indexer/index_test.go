package indexer_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfarias/trazabilidad-api/internal/application/indexer"
	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
	"github.com/jfarias/trazabilidad-api/pkg/config"
	"github.com/jfarias/trazabilidad-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

// stubERP sirve tablas fijas. block, si no es nil, detiene el primer barrido
// hasta que el test lo libere (para ejercitar la guarda de vuelo único).
type stubERP struct {
	tables  map[string][]ports.Row
	block   chan struct{}
	entered chan struct{}
	once    sync.Once
}

func newStubERP() *stubERP {
	return &stubERP{tables: map[string][]ports.Row{}}
}

func (s *stubERP) SearchReadBatch(_ context.Context, collection string, _ ports.Filter, _ []string, _ int, _ string) ([]ports.Row, error) {
	if s.block != nil {
		s.once.Do(func() {
			close(s.entered)
			<-s.block
		})
	}
	return s.tables[collection], nil
}

func (s *stubERP) SearchRead(_ context.Context, collection string, filter ports.Filter, _ []string, _ int, _ string) ([]ports.Row, error) {
	var out []ports.Row
	for _, row := range s.tables[collection] {
		keep := true
		for _, c := range filter {
			if c.Field == "write_date" && c.Op == ">" {
				want, _ := c.Value.(string)
				if !(row.Str("write_date") > want) {
					keep = false
				}
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubERP) Read(context.Context, string, []int64, []string) ([]ports.Row, error) {
	return nil, nil
}

func (s *stubERP) Execute(context.Context, string, string, ...any) (any, error) {
	return nil, nil
}

// memStore guarda el snapshot en memoria.
type memStore struct {
	saved *indexer.IndexSnapshot
	seed  *indexer.IndexSnapshot // lo que Load devuelve al arrancar
}

func (m *memStore) Save(_ context.Context, snap *indexer.IndexSnapshot) error {
	m.saved = snap
	return nil
}

func (m *memStore) Load(context.Context) (*indexer.IndexSnapshot, bool, error) {
	if m.seed == nil || m.seed.Version != indexer.SchemaVersion {
		return nil, false, nil
	}
	return m.seed, true, nil
}

func (m *memStore) Close() error { return nil }

func moveLineRow(id int64, ref string, originPkg, destPkg int64, date string) ports.Row {
	row := ports.Row{
		"id":               float64(id),
		"reference":        ref,
		"state":            "done",
		"qty_done":         10.0,
		"date":             date,
		"write_date":       date,
		"location_id":      []any{float64(8), ""},
		"location_dest_id": []any{float64(8), ""},
		"product_id":       []any{float64(1000), "Manzana Fuji"},
		"lot_id":           false,
		"picking_id":       false,
	}
	if originPkg != 0 {
		row["package_id"] = []any{float64(originPkg), pkgName(originPkg)}
	} else {
		row["package_id"] = false
	}
	if destPkg != 0 {
		row["result_package_id"] = []any{float64(destPkg), pkgName(destPkg)}
	} else {
		row["result_package_id"] = false
	}
	return row
}

func pkgName(id int64) string {
	return fmt.Sprintf("PACK%04d", id)
}

func testCfg() config.TraceConfig {
	return config.TraceConfig{
		VendorsLocationID:   4,
		CustomersLocationID: 5,
		MaxDepth:            50,
		MaxIterations:       50,
		FetchLimit:          500,
	}
}

// chainERP cadena 1 → 2 → 3 más un paquete suelto.
func chainERP() *stubERP {
	erp := newStubERP()
	erp.tables[ports.CollectionMoveLines] = []ports.Row{
		moveLineRow(10, "WH/MO/00001", 1, 2, "2024-03-01 08:00:00"),
		moveLineRow(11, "WH/MO/00002", 2, 3, "2024-03-02 08:00:00"),
	}
	erp.tables[ports.CollectionPackages] = []ports.Row{
		{"id": float64(1), "name": "PACK0001"},
		{"id": float64(2), "name": "PACK0002"},
		{"id": float64(3), "name": "PACK0003"},
	}
	erp.tables[ports.CollectionLocations] = []ports.Row{
		{"id": float64(8), "name": "Stock", "usage": "internal"},
		{"id": float64(9), "name": "Producción", "usage": "production"},
	}
	return erp
}

func newTestIndex(erp ports.ERPClient, store indexer.SnapshotStore) *indexer.Index {
	return indexer.New(erp, store, logger.Nop(), testCfg())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRebuild_ConstruyeYPersiste(t *testing.T) {
	store := &memStore{}
	ix := newTestIndex(chainERP(), store)

	require.False(t, ix.Loaded())
	require.NoError(t, ix.Rebuild(context.Background()))
	require.True(t, ix.Loaded())

	s := ix.CurrentStatus()
	assert.Equal(t, 2, s.MoveLines)
	assert.Equal(t, 3, s.Packages)
	assert.Equal(t, 2, s.References)
	assert.Equal(t, 1, s.ProductionLocations, "la ubicación usage=production se descubre")
	assert.False(t, s.Reindexing)
	assert.False(t, s.LastRefresh.IsZero())

	// El snapshot quedó persistido con la versión vigente.
	require.NotNil(t, store.saved)
	assert.Equal(t, indexer.SchemaVersion, store.saved.Version)
	assert.Len(t, store.saved.MoveLines, 2)

	assert.Equal(t, entity.KindProcess, ix.ReferenceKind("WH/MO/00001"))
	assert.Equal(t, entity.KindUnclassified, ix.ReferenceKind("NO-EXISTE"))
}

func TestRebuild_UbicacionDeProduccionClasificaComoProceso(t *testing.T) {
	erp := chainERP()
	// Referencia sin marcador de fabricación, pero el destino es la
	// ubicación de producción descubierta en el rebuild.
	row := moveLineRow(12, "TRASLADO-77", 3, 4, "2024-03-03 08:00:00")
	row["location_dest_id"] = []any{float64(9), "Producción"}
	erp.tables[ports.CollectionMoveLines] = append(erp.tables[ports.CollectionMoveLines], row)

	ix := newTestIndex(erp, &memStore{})
	require.NoError(t, ix.Rebuild(context.Background()))

	assert.Equal(t, entity.KindProcess, ix.ReferenceKind("TRASLADO-77"))
}

func TestTraverse_ProfundidadPorDefectoDeConfiguracion(t *testing.T) {
	cfg := testCfg()
	cfg.MaxDepth = 1
	ix := indexer.New(chainERP(), &memStore{}, logger.Nop(), cfg)
	require.NoError(t, ix.Rebuild(context.Background()))

	// depth 0: rige TRACE_MAX_DEPTH, no la constante interna.
	moves, truncated := ix.TraverseBackward(3, 0)
	assert.True(t, truncated)
	assert.Len(t, moves, 1)
}

func TestRebuild_GuardaDeVueloUnico(t *testing.T) {
	erp := chainERP()
	erp.block = make(chan struct{})
	erp.entered = make(chan struct{})
	ix := newTestIndex(erp, &memStore{})

	done := make(chan error, 1)
	go func() { done <- ix.Rebuild(context.Background()) }()
	<-erp.entered

	// Segundo rebuild mientras el primero está en vuelo: se descarta.
	assert.ErrorIs(t, ix.Rebuild(context.Background()), domain.ErrReindexing)
	assert.True(t, ix.CurrentStatus().Reindexing)

	close(erp.block)
	require.NoError(t, <-done)
	assert.False(t, ix.CurrentStatus().Reindexing)
}

func TestTraverse_AmbasDirecciones(t *testing.T) {
	ix := newTestIndex(chainERP(), &memStore{})
	require.NoError(t, ix.Rebuild(context.Background()))

	back, truncated := ix.TraverseBackward(3, 0)
	require.False(t, truncated)
	require.Len(t, back, 2, "desde el paquete final se ve toda la cadena")
	assert.Equal(t, int64(10), back[0].ID, "ordenado por fecha ascendente")

	fwd, truncated := ix.TraverseForward(1, 0)
	require.False(t, truncated)
	assert.Len(t, fwd, 2)

	none, _ := ix.TraverseBackward(999, 0)
	assert.Empty(t, none)
}

func TestTraverse_CicloTermina(t *testing.T) {
	erp := chainERP()
	erp.tables[ports.CollectionMoveLines] = []ports.Row{
		moveLineRow(10, "REPACK-1", 1, 2, "2024-03-01 08:00:00"),
		moveLineRow(11, "REPACK-2", 2, 1, "2024-03-02 08:00:00"),
	}
	ix := newTestIndex(erp, &memStore{})
	require.NoError(t, ix.Rebuild(context.Background()))

	moves, truncated := ix.TraverseBackward(1, 0)
	assert.False(t, truncated, "el conjunto de visitados corta el ciclo")
	assert.Len(t, moves, 2)
}

func TestTraverse_ProfundidadMaximaTrunca(t *testing.T) {
	ix := newTestIndex(chainERP(), &memStore{})
	require.NoError(t, ix.Rebuild(context.Background()))

	// Profundidad 1: desde el paquete 3 solo se alcanza la línea 11; el salto
	// al paquete 2 excede el tope.
	moves, truncated := ix.TraverseBackward(3, 1)
	assert.True(t, truncated)
	assert.Len(t, moves, 1)
}

func TestTraverse_SinIndiceCargado(t *testing.T) {
	ix := newTestIndex(chainERP(), &memStore{})
	moves, truncated := ix.TraverseBackward(1, 0)
	assert.Nil(t, moves)
	assert.False(t, truncated)
}

func TestRefreshIncremental_FusionaLineasNuevas(t *testing.T) {
	erp := chainERP()
	ix := newTestIndex(erp, &memStore{})
	require.NoError(t, ix.Rebuild(context.Background()))

	// Línea nueva escrita después del rebuild: extiende la cadena 3 → 4.
	erp.tables[ports.CollectionMoveLines] = append(erp.tables[ports.CollectionMoveLines],
		moveLineRow(12, "WH/MO/00003", 3, 4, "2030-01-01 08:00:00"))

	ix.RefreshIncremental(context.Background())

	assert.Equal(t, 3, ix.CurrentStatus().MoveLines)
	back, _ := ix.TraverseBackward(4, 0)
	assert.Len(t, back, 3, "la línea nueva conecta con la cadena existente")
}

func TestRefreshIncremental_ReemplazaLineaModificada(t *testing.T) {
	erp := chainERP()
	ix := newTestIndex(erp, &memStore{})
	require.NoError(t, ix.Rebuild(context.Background()))

	// La línea 11 fue corregida en el ERP: ahora produce el paquete 5.
	erp.tables[ports.CollectionMoveLines] = []ports.Row{
		erp.tables[ports.CollectionMoveLines][0],
		moveLineRow(11, "WH/MO/00002", 2, 5, "2030-01-01 08:00:00"),
	}

	ix.RefreshIncremental(context.Background())

	assert.Equal(t, 2, ix.CurrentStatus().MoveLines, "reemplazo, no duplicado")
	old, _ := ix.TraverseBackward(3, 0)
	assert.Empty(t, old, "la adyacencia vieja se retira")
	updated, _ := ix.TraverseBackward(5, 0)
	assert.Len(t, updated, 2)
}

func TestRefreshIncremental_SinIndiceEsNoOp(t *testing.T) {
	ix := newTestIndex(chainERP(), &memStore{})
	ix.RefreshIncremental(context.Background())
	assert.False(t, ix.Loaded())
}

func TestLoad_RestauraDesdeElSnapshot(t *testing.T) {
	// Primero se construye y persiste con una instancia...
	store := &memStore{}
	first := newTestIndex(chainERP(), store)
	require.NoError(t, first.Rebuild(context.Background()))
	require.NotNil(t, store.saved)

	// ...y una instancia nueva arranca desde lo persistido, sin tocar el ERP.
	store.seed = store.saved
	second := newTestIndex(newStubERP(), store)
	require.NoError(t, second.Load(context.Background()))
	require.True(t, second.Loaded())

	assert.Equal(t, 2, second.CurrentStatus().MoveLines)
	back, _ := second.TraverseBackward(3, 0)
	assert.Len(t, back, 2)
}

func TestLoad_VersionDistintaQuedaSinCargar(t *testing.T) {
	store := &memStore{seed: &indexer.IndexSnapshot{Version: "v1"}}
	ix := newTestIndex(newStubERP(), store)

	require.NoError(t, ix.Load(context.Background()))
	assert.False(t, ix.Loaded())
}
