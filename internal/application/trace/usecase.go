// Package trace implementa el resolutor de trazabilidad: dado un
// identificador (orden de venta, nombre de paquete o guía de despacho),
// reconstruye el subgrafo conexo de la cadena consultando el ERP remoto.
package trace

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
	dtrace "github.com/jfarias/trazabilidad-api/internal/domain/trace"
	"github.com/jfarias/trazabilidad-api/pkg/config"
	"github.com/jfarias/trazabilidad-api/pkg/logger"
)

// Options parámetros de una resolución.
type Options struct {
	// MaxRecords límite por consulta individual al ERP (no del total).
	MaxRecords int
	// IncludeSiblings true = "mostrar todo": arrastra todas las entradas y
	// salidas de cada proceso tocado. false = "conexión directa": solo los
	// insumos que alimentaron exactamente los paquetes en cuestión, con
	// poda BFS final desde la semilla.
	IncludeSiblings bool
}

// Resolver servicio sin estado: cada resolución consulta el ERP de nuevo.
type Resolver struct {
	erp  ports.ERPClient
	log  *logger.Logger
	cfg  config.TraceConfig
	locs dtrace.Locations
}

// NewResolver construye el resolutor.
func NewResolver(erp ports.ERPClient, log *logger.Logger, cfg config.TraceConfig) *Resolver {
	return &Resolver{
		erp: erp,
		log: log,
		cfg: cfg,
		locs: dtrace.Locations{
			VendorsID:   cfg.VendorsLocationID,
			CustomersID: cfg.CustomersLocationID,
		},
	}
}

// Resolve punto de entrada principal. Clasifica el identificador por forma:
// ^S\d+$ se trata como orden de venta; cualquier otra cosa como nombre de
// paquete (búsqueda difusa). Un identificador que no calza con nada devuelve
// el snapshot vacío, nunca error.
func (r *Resolver) Resolve(ctx context.Context, identifier string, opts Options) (*entity.GraphSnapshot, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return entity.EmptySnapshot(), nil
	}
	traceID := uuid.NewString()
	log := r.log.With().Str("trace_id", traceID).Str("identifier", identifier).Logger()
	log.Info().Bool("siblings", opts.IncludeSiblings).Msg("resolviendo trazabilidad")

	if dtrace.IsSaleOrderRef(identifier) {
		return r.resolveSale(ctx, identifier, opts)
	}
	return r.resolvePackageName(ctx, identifier, opts)
}

// resolveSale modo orden de venta: documentos logísticos cuyo origin es la
// referencia, sus paquetes como semilla, y resolución hacia atrás con la
// creación de nodos cliente restringida a esa venta.
func (r *Resolver) resolveSale(ctx context.Context, saleRef string, opts Options) (*entity.GraphSnapshot, error) {
	pickings, err := r.erp.SearchRead(ctx, ports.CollectionPickings,
		ports.Filter{ports.C("origin", "=", saleRef)},
		[]string{"id", "name", "origin", "partner_id"}, r.limit(opts), "")
	if err != nil {
		return nil, err
	}
	if len(pickings) == 0 {
		return entity.EmptySnapshot(), nil
	}

	pickingIDs := make([]int64, 0, len(pickings))
	for _, p := range pickings {
		pickingIDs = append(pickingIDs, p.Int64("id"))
	}
	moves, err := r.fetchMoves(ctx, ports.Filter{ports.C("picking_id", "in", pickingIDs)}, opts)
	if err != nil {
		return nil, err
	}

	seeds := packageIDs(moves)
	if len(seeds) == 0 {
		return entity.EmptySnapshot(), nil
	}
	return r.backward(ctx, seeds, opts, saleRef)
}

// resolvePackageName modo nombre de paquete: búsqueda difusa del nombre
// (insensible a tildes), y como el paquete puede estar en medio de la cadena,
// resolución hacia atrás Y hacia adelante fusionando ambos resultados.
func (r *Resolver) resolvePackageName(ctx context.Context, name string, opts Options) (*entity.GraphSnapshot, error) {
	rows, err := r.erp.SearchRead(ctx, ports.CollectionPackages,
		ports.Filter{ports.C("name", "ilike", foldAccents(name))},
		[]string{"id", "name"}, r.limit(opts), "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return entity.EmptySnapshot(), nil
	}
	seeds := make([]int64, 0, len(rows))
	for _, row := range rows {
		seeds = append(seeds, row.Int64("id"))
	}

	back, err := r.backward(ctx, seeds, opts, "")
	if err != nil {
		return nil, err
	}
	fwd, err := r.forward(ctx, seeds, opts)
	if err != nil {
		// La mitad hacia atrás ya es un resultado útil; se degrada con log.
		r.log.Warn().Err(err).Str("package", name).Msg("resolución hacia adelante falló, se entrega solo la cadena hacia atrás")
		return back, nil
	}
	back.Merge(fwd)
	return back, nil
}

// ResolveGuide modo guía de despacho: pickings cuyo número de guía calza,
// semillas desde sus movimientos, resolución hacia atrás sin restricción de
// venta.
func (r *Resolver) ResolveGuide(ctx context.Context, guideNumber string, opts Options) (*entity.GraphSnapshot, error) {
	guideNumber = strings.TrimSpace(guideNumber)
	if guideNumber == "" {
		return entity.EmptySnapshot(), nil
	}
	pickings, err := r.erp.SearchRead(ctx, ports.CollectionPickings,
		ports.Filter{ports.C("carrier_tracking_ref", "=", guideNumber)},
		[]string{"id", "name", "origin", "partner_id"}, r.limit(opts), "")
	if err != nil {
		return nil, err
	}
	if len(pickings) == 0 {
		return entity.EmptySnapshot(), nil
	}
	pickingIDs := make([]int64, 0, len(pickings))
	for _, p := range pickings {
		pickingIDs = append(pickingIDs, p.Int64("id"))
	}
	moves, err := r.fetchMoves(ctx, ports.Filter{ports.C("picking_id", "in", pickingIDs)}, opts)
	if err != nil {
		return nil, err
	}
	seeds := packageIDs(moves)
	if len(seeds) == 0 {
		return entity.EmptySnapshot(), nil
	}
	return r.backward(ctx, seeds, opts, "")
}

// ── Consultas auxiliares ──────────────────────────────────────────────────────

// fetchMoves busca líneas de movimiento en estado done con el filtro dado,
// descartando las no trazables y las de referencia excluida.
func (r *Resolver) fetchMoves(ctx context.Context, filter ports.Filter, opts Options) ([]entity.Movement, error) {
	full := append(ports.Filter{ports.C("state", "=", "done")}, filter...)
	rows, err := r.erp.SearchRead(ctx, ports.CollectionMoveLines, full, ports.MoveLineFields, r.limit(opts), "date asc")
	if err != nil {
		return nil, err
	}
	moves := make([]entity.Movement, 0, len(rows))
	for _, row := range rows {
		m := ports.MovementFromRow(row)
		if !m.Traceable() || dtrace.IsExcluded(m.Reference, r.cfg.ExcludedRefPatterns) {
			continue
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// fetchMovesByPackages busca líneas donde cualquiera de los paquetes aparece
// como origen o como destino (dos consultas, una por campo).
func (r *Resolver) fetchMovesByPackages(ctx context.Context, pkgIDs []int64, opts Options) ([]entity.Movement, error) {
	asOrigin, err := r.fetchMoves(ctx, ports.Filter{ports.C("package_id", "in", pkgIDs)}, opts)
	if err != nil {
		return nil, err
	}
	asDest, err := r.fetchMoves(ctx, ports.Filter{ports.C("result_package_id", "in", pkgIDs)}, opts)
	if err != nil {
		return nil, err
	}
	return append(asOrigin, asDest...), nil
}

func (r *Resolver) limit(opts Options) int {
	if opts.MaxRecords > 0 {
		return opts.MaxRecords
	}
	return r.cfg.FetchLimit
}

// packageIDs ids de paquete únicos referenciados por los movimientos
// (origen y destino), en orden de aparición.
func packageIDs(moves []entity.Movement) []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, m := range moves {
		for _, rel := range []entity.Relation{m.OriginPackage, m.DestinationPackage} {
			if rel.IsSet() && !seen[rel.ID] {
				seen[rel.ID] = true
				out = append(out, rel.ID)
			}
		}
	}
	return out
}
