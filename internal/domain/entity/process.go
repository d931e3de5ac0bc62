package entity

import "time"

// Process operación nombrada por su referencia. Varias líneas de movimiento
// con la misma referencia agregan sobre el mismo Process.
//
// Invariante: una referencia es recepción O proceso interno, nunca ambos.
// El primer movimiento observado fija el estado inicial; un movimiento
// posterior desde la ubicación de proveedores voltea IsReception a true
// (transición solo hacia arriba, nunca revierte).
type Process struct {
	Reference   string          `json:"reference"`
	Kind        MovementKind    `json:"kind"`
	Date        time.Time       `json:"date"`
	IsReception bool            `json:"is_reception"`
	Picking     Relation        `json:"picking"`
	SupplierID  int64           `json:"supplier_id,omitempty"` // solo recepciones
	LotIDs      map[int64]bool  `json:"-"`
	Product     string          `json:"product,omitempty"`   // enriquecido desde la orden de producción
	SaleCode    string          `json:"sale_code,omitempty"` // solo ventas, ej. "S00531"
}

// NewProcess process vacío para la referencia dada.
func NewProcess(reference string) *Process {
	return &Process{Reference: reference, Kind: KindUnclassified, LotIDs: map[int64]bool{}}
}

// Absorb registra una línea más bajo esta referencia.
// kind es la clasificación de la línea según la máquina de estados; la
// recepción es terminal y pegajosa, el resto solo aplica si aún no hay estado.
func (p *Process) Absorb(m Movement, kind MovementKind) {
	if p.Date.IsZero() || m.Date.Before(p.Date) {
		p.Date = m.Date
	}
	if !p.Picking.IsSet() && m.Picking.IsSet() {
		p.Picking = m.Picking
	}
	if m.Lot.IsSet() {
		p.LotIDs[m.Lot.ID] = true
	}
	if kind == KindReception {
		p.Kind = KindReception
		p.IsReception = true
		return
	}
	if p.Kind == KindUnclassified {
		p.Kind = kind
	}
}
