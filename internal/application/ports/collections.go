package ports

import "github.com/jfarias/trazabilidad-api/internal/domain/entity"

// Nombres de las colecciones remotas del ERP consumidas por la trazabilidad.
const (
	CollectionMoveLines   = "stock.move.line"
	CollectionPackages    = "stock.quant.package"
	CollectionProductions = "mrp.production"
	CollectionPickings    = "stock.picking"
	CollectionPartners    = "res.partner"
	CollectionProducts    = "product.product"
	CollectionLocations   = "stock.location"
)

// MoveLineFields campos pedidos al leer líneas de movimiento.
var MoveLineFields = []string{
	"id", "reference", "package_id", "result_package_id",
	"location_id", "location_dest_id", "product_id", "qty_done",
	"lot_id", "date", "picking_id", "write_date",
}

// MovementFromRow mapea una fila cruda de stock.move.line al hecho de dominio.
func MovementFromRow(r Row) entity.Movement {
	return entity.Movement{
		ID:                  r.Int64("id"),
		Reference:           r.Str("reference"),
		OriginPackage:       r.Rel("package_id"),
		DestinationPackage:  r.Rel("result_package_id"),
		OriginLocation:      r.Rel("location_id"),
		DestinationLocation: r.Rel("location_dest_id"),
		Product:             r.Rel("product_id"),
		Quantity:            r.Qty("qty_done"),
		Lot:                 r.Rel("lot_id"),
		Date:                r.Time("date"),
		Picking:             r.Rel("picking_id"),
		WriteDate:           r.Time("write_date"),
	}
}

// MovementsFromRows mapea un lote de filas.
func MovementsFromRows(rows []Row) []entity.Movement {
	out := make([]entity.Movement, 0, len(rows))
	for _, r := range rows {
		out = append(out, MovementFromRow(r))
	}
	return out
}
