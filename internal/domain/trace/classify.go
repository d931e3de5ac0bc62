package trace

import "github.com/jfarias/trazabilidad-api/internal/domain/entity"

// Locations ids de las ubicaciones virtuales especiales del ERP.
// ProductionIDs es opcional (nil = solo clasificación por referencia): el
// índice lo llena con las ubicaciones usage=production de su réplica local.
type Locations struct {
	VendorsID     int64
	CustomersID   int64
	ProductionIDs map[int64]bool
}

// ClassifyMovement clasifica una línea de movimiento según su rol en la
// cadena. Orden de evaluación fijo: recepción gana a venta, venta a proceso.
// Una línea que entra o sale de una ubicación de producción es proceso aunque
// su referencia no lleve marcador de fabricación.
func ClassifyMovement(m entity.Movement, locs Locations) entity.MovementKind {
	switch {
	case m.OriginLocation.OrZero() == locs.VendorsID || HasInboundRef(m.Reference):
		return entity.KindReception
	case m.DestinationLocation.OrZero() == locs.CustomersID || HasOutboundRef(m.Reference):
		return entity.KindSale
	case HasManufacturingRef(m.Reference) ||
		locs.ProductionIDs[m.OriginLocation.OrZero()] ||
		locs.ProductionIDs[m.DestinationLocation.OrZero()]:
		return entity.KindProcess
	default:
		return entity.KindAdjustment
	}
}
