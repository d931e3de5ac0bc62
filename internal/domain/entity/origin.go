package entity

// OriginQuality nivel de confianza en la identificación del proceso creador
// de un pallet.
type OriginQuality string

const (
	// OrigenClaro candidato único, o el movimiento creador no tiene paquete
	// de origen (creación verdadera).
	OrigenClaro OriginQuality = "ORIGEN_CLARO"
	// OrigenAmbiguo varios candidatos; se eligió el primero con referencia
	// de orden de fabricación.
	OrigenAmbiguo OriginQuality = "ORIGEN_AMBIGUO"
	// OrigenDesconocido sin movimiento de creación ni patrón reconocible;
	// se eligió el candidato más antiguo.
	OrigenDesconocido OriginQuality = "ORIGEN_DESCONOCIDO"
	// SinOrigen el pallet nunca aparece como salida de un movimiento no
	// excluido: genuinamente intrazable.
	SinOrigen OriginQuality = "SIN_ORIGEN"

	// recoveredSuffix marca un reanálisis exitoso sin filtros de exclusión.
	recoveredSuffix = "_RECOVERED"
)

// Recovered devuelve la variante marcada como recuperada (reanálisis sin el
// filtro de referencias excluidas).
func (q OriginQuality) Recovered() OriginQuality {
	return q + recoveredSuffix
}

// OriginAnalysis resultado de la clasificación de origen de un pallet.
type OriginAnalysis struct {
	Quality         OriginQuality `json:"quality"`
	SelectedProcess string        `json:"selected_process,omitempty"` // referencia del proceso elegido
	Candidates      int           `json:"candidates"`
}
