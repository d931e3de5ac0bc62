package trace

import "github.com/jfarias/trazabilidad-api/internal/domain/entity"

// ClassifyOrigin aplica la heurística de calidad de origen a los movimientos
// candidatos a creadores de un pallet (líneas donde el pallet es paquete de
// destino, ya filtradas las referencias excluidas y ordenadas por fecha
// ascendente, pues el desempate "más antiguo" depende de ese orden).
//
// Reglas:
//   - 0 candidatos: SIN_ORIGEN (la recuperación sin filtros la intenta el
//     llamador, que es quien puede volver a consultar el ERP).
//   - 1 candidato: CLARO si no tiene paquete de origen (creación verdadera)
//     o si su referencia es de orden de fabricación; si no, DESCONOCIDO.
//   - N candidatos: CLARO con el primero sin paquete de origen; si no,
//     AMBIGUO con el primero cuya referencia calce el patrón de orden de
//     fabricación; si no, DESCONOCIDO eligiendo el más antiguo.
func ClassifyOrigin(candidates []entity.Movement) entity.OriginAnalysis {
	n := len(candidates)
	if n == 0 {
		return entity.OriginAnalysis{Quality: entity.SinOrigen}
	}

	if n == 1 {
		c := candidates[0]
		quality := entity.OrigenDesconocido
		if !c.OriginPackage.IsSet() || HasManufacturingRef(c.Reference) {
			quality = entity.OrigenClaro
		}
		return entity.OriginAnalysis{Quality: quality, SelectedProcess: c.Reference, Candidates: 1}
	}

	for _, c := range candidates {
		if !c.OriginPackage.IsSet() {
			return entity.OriginAnalysis{Quality: entity.OrigenClaro, SelectedProcess: c.Reference, Candidates: n}
		}
	}
	for _, c := range candidates {
		if HasManufacturingRef(c.Reference) {
			return entity.OriginAnalysis{Quality: entity.OrigenAmbiguo, SelectedProcess: c.Reference, Candidates: n}
		}
	}
	// Sin creación ni patrón: el más antiguo como mejor aproximación.
	return entity.OriginAnalysis{Quality: entity.OrigenDesconocido, SelectedProcess: candidates[0].Reference, Candidates: n}
}
