// Package indexer mantiene una copia materializada y consultable de todas las
// líneas de movimiento "done" del ERP, con mapas de adyacencia por paquete en
// ambas direcciones de recorrido. Es la segunda implementación de la lógica
// de trazabilidad: misma semántica de dominio que el resolutor, pero con los
// datos residentes en memoria y respaldados en disco.
package indexer

import (
	"context"
	"sync"
	"time"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
	dtrace "github.com/jfarias/trazabilidad-api/internal/domain/trace"
	"github.com/jfarias/trazabilidad-api/pkg/config"
	"github.com/jfarias/trazabilidad-api/pkg/logger"
)

// Index servicio con ciclo de vida explícito (New -> Load -> Rebuild/Refresh
// -> Close), inyectado por referencia a quien lo necesite. Los mapas internos
// son réplicas de solo lectura: ningún otro componente debe mutarlos.
type Index struct {
	erp   ports.ERPClient
	store SnapshotStore
	log   *logger.Logger
	cfg   config.TraceConfig

	mu      sync.Mutex
	loading bool // guarda de vuelo único para rebuild/refresh

	stateMu sync.RWMutex
	state   *indexState
}

// indexState estado inmutable-por-swap del índice: se construye completo y se
// intercambia bajo stateMu, de modo que un rebuild fallido deja el anterior.
type indexState struct {
	moves       map[int64]entity.Movement
	originIdx   map[int64][]int64 // paquete -> ids de líneas donde es origen
	destIdx     map[int64][]int64 // paquete -> ids de líneas donde es destino
	kinds       map[int64]entity.MovementKind
	refKinds    map[string]entity.MovementKind // clasificación pegajosa por referencia
	packages    map[int64]ports.Row
	productions map[int64]ports.Row
	pickings    map[int64]ports.Row
	partners    map[int64]ports.Row
	products    map[int64]ports.Row
	locations   map[int64]ports.Row
	prodLocs    map[int64]bool // ubicaciones de producción descubiertas
	lastRefresh time.Time
}

func newIndexState() *indexState {
	return &indexState{
		moves:       map[int64]entity.Movement{},
		originIdx:   map[int64][]int64{},
		destIdx:     map[int64][]int64{},
		kinds:       map[int64]entity.MovementKind{},
		refKinds:    map[string]entity.MovementKind{},
		packages:    map[int64]ports.Row{},
		productions: map[int64]ports.Row{},
		pickings:    map[int64]ports.Row{},
		partners:    map[int64]ports.Row{},
		products:    map[int64]ports.Row{},
		locations:   map[int64]ports.Row{},
		prodLocs:    map[int64]bool{},
	}
}

// New construye el índice vacío (sin carga).
func New(erp ports.ERPClient, store SnapshotStore, log *logger.Logger, cfg config.TraceConfig) *Index {
	return &Index{erp: erp, store: store, log: log, cfg: cfg}
}

// Load intenta restaurar el estado desde la cache en disco. Versión distinta
// o cache vacía no es error: el índice simplemente queda sin cargar.
func (ix *Index) Load(ctx context.Context) error {
	snap, ok, err := ix.store.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		ix.log.Info().Msg("cache de índice vacía o de versión distinta, se requiere rebuild")
		return nil
	}
	st := newIndexState()
	st.packages = snap.Packages
	st.productions = snap.Productions
	st.pickings = snap.Pickings
	st.partners = snap.Partners
	st.products = snap.Products
	st.locations = snap.Locations
	st.lastRefresh = snap.LastRefresh
	st.discoverProductionLocations()
	locs := ix.locationsFor(st)
	for _, m := range snap.MoveLines {
		st.insert(m, locs)
	}
	ix.swap(st)
	ix.log.Info().Int("move_lines", len(st.moves)).Time("last_refresh", st.lastRefresh).Msg("índice restaurado desde disco")
	return nil
}

// Loaded indica si el índice tiene estado servible.
func (ix *Index) Loaded() bool {
	ix.stateMu.RLock()
	defer ix.stateMu.RUnlock()
	return ix.state != nil
}

// Status resumen para el endpoint de administración.
type Status struct {
	Loaded              bool      `json:"loaded"`
	Reindexing          bool      `json:"reindexing"`
	MoveLines           int       `json:"move_lines"`
	Packages            int       `json:"packages"`
	References          int       `json:"references"`
	ProductionLocations int       `json:"production_locations"`
	LastRefresh         time.Time `json:"last_refresh"`
}

// CurrentStatus estado actual del índice.
func (ix *Index) CurrentStatus() Status {
	ix.mu.Lock()
	loading := ix.loading
	ix.mu.Unlock()

	ix.stateMu.RLock()
	defer ix.stateMu.RUnlock()
	s := Status{Reindexing: loading}
	if ix.state != nil {
		s.Loaded = true
		s.MoveLines = len(ix.state.moves)
		s.Packages = len(ix.state.packages)
		s.References = len(ix.state.refKinds)
		s.ProductionLocations = len(ix.state.prodLocs)
		s.LastRefresh = ix.state.lastRefresh
	}
	return s
}

// Close libera la cache en disco.
func (ix *Index) Close() error {
	return ix.store.Close()
}

// ── Guardas y estado ──────────────────────────────────────────────────────────

// beginLoad toma la guarda de vuelo único. false = ya hay un rebuild/refresh
// en curso (la petición se descarta, no se encola).
func (ix *Index) beginLoad() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.loading {
		return false
	}
	ix.loading = true
	return true
}

func (ix *Index) endLoad() {
	ix.mu.Lock()
	ix.loading = false
	ix.mu.Unlock()
}

func (ix *Index) swap(st *indexState) {
	ix.stateMu.Lock()
	ix.state = st
	ix.stateMu.Unlock()
}

func (ix *Index) snapshotState() *indexState {
	ix.stateMu.RLock()
	defer ix.stateMu.RUnlock()
	return ix.state
}

// locationsFor constantes configuradas más las ubicaciones de producción
// descubiertas en la réplica local del estado.
func (ix *Index) locationsFor(st *indexState) dtrace.Locations {
	return dtrace.Locations{
		VendorsID:     ix.cfg.VendorsLocationID,
		CustomersID:   ix.cfg.CustomersLocationID,
		ProductionIDs: st.prodLocs,
	}
}

// insert agrega una línea a los mapas del estado. La clasificación por
// referencia es pegajosa hacia RECEPTION: una línea posterior desde la
// ubicación de proveedores eleva toda la referencia, y nunca se revierte.
func (st *indexState) insert(m entity.Movement, locs dtrace.Locations) {
	if !m.Traceable() {
		return
	}
	if _, ok := st.moves[m.ID]; ok {
		return
	}
	st.moves[m.ID] = m
	if m.OriginPackage.IsSet() {
		st.originIdx[m.OriginPackage.ID] = append(st.originIdx[m.OriginPackage.ID], m.ID)
	}
	if m.DestinationPackage.IsSet() {
		st.destIdx[m.DestinationPackage.ID] = append(st.destIdx[m.DestinationPackage.ID], m.ID)
	}

	kind := dtrace.ClassifyMovement(m, locs)
	st.kinds[m.ID] = kind
	if prev, ok := st.refKinds[m.Reference]; !ok || (kind == entity.KindReception && prev != entity.KindReception) {
		st.refKinds[m.Reference] = kind
	}
}

// replace reemplaza una línea existente (refresco incremental) reconstruyendo
// sus entradas de adyacencia.
func (st *indexState) replace(m entity.Movement, locs dtrace.Locations) {
	if old, ok := st.moves[m.ID]; ok {
		st.originIdx[old.OriginPackage.OrZero()] = removeID(st.originIdx[old.OriginPackage.OrZero()], m.ID)
		st.destIdx[old.DestinationPackage.OrZero()] = removeID(st.destIdx[old.DestinationPackage.OrZero()], m.ID)
		delete(st.moves, m.ID)
		delete(st.kinds, m.ID)
	}
	st.insert(m, locs)
}

// discoverProductionLocations marca como producción las ubicaciones con
// usage=production presentes en la réplica local.
func (st *indexState) discoverProductionLocations() {
	st.prodLocs = map[int64]bool{}
	for id, row := range st.locations {
		if row.Str("usage") == "production" {
			st.prodLocs[id] = true
		}
	}
}

// ReferenceKind clasificación pegajosa de una referencia (UNCLASSIFIED si la
// referencia no está en el índice).
func (ix *Index) ReferenceKind(ref string) entity.MovementKind {
	st := ix.snapshotState()
	if st == nil {
		return entity.KindUnclassified
	}
	ix.stateMu.RLock()
	defer ix.stateMu.RUnlock()
	if k, ok := st.refKinds[ref]; ok {
		return k
	}
	return entity.KindUnclassified
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
