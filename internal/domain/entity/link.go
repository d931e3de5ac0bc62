package entity

import "github.com/shopspring/decimal"

// Tipo de nodo en los extremos de un enlace de trazabilidad.
type NodeKind string

const (
	NodeRecv     NodeKind = "RECV"    // evento de recepción
	NodePallet   NodeKind = "PALLET"  // paquete físico
	NodeProcess  NodeKind = "PROCESS" // proceso interno (orden de fabricación u otro)
	NodeCustomer NodeKind = "CUSTOMER"
)

// Link arista dirigida y tipada de la cadena de trazabilidad. MovementID es
// la línea de movimiento que originó la arista (0 en aristas sintetizadas o
// ya agregadas); es la llave de deduplicación al fusionar snapshots: dos
// líneas distintas entre el mismo par de nodos son evidencia distinta aunque
// lleven la misma cantidad.
type Link struct {
	SourceKind NodeKind        `json:"source_kind"`
	SourceID   string          `json:"source_id"`
	TargetKind NodeKind        `json:"target_kind"`
	TargetID   string          `json:"target_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	MovementID int64           `json:"movement_id,omitempty"`
}

// Identity tupla identidad del enlace (sin cantidad), para deduplicar y agregar.
type LinkIdentity struct {
	SourceKind NodeKind
	SourceID   string
	TargetKind NodeKind
	TargetID   string
}

// Identity devuelve la tupla identidad del enlace.
func (l Link) Identity() LinkIdentity {
	return LinkIdentity{l.SourceKind, l.SourceID, l.TargetKind, l.TargetID}
}

// NodeRef referencia (tipo, id) de un extremo, para los filtros BFS.
type NodeRef struct {
	Kind NodeKind
	ID   string
}

// Source y Target extremos del enlace como NodeRef.
func (l Link) Source() NodeRef { return NodeRef{l.SourceKind, l.SourceID} }
func (l Link) Target() NodeRef { return NodeRef{l.TargetKind, l.TargetID} }

// AggregateLinks colapsa enlaces paralelos entre el mismo par ordenado de
// nodos sumando cantidades. Conserva el orden de primera aparición.
func AggregateLinks(links []Link) []Link {
	byIdentity := make(map[LinkIdentity]int, len(links))
	out := make([]Link, 0, len(links))
	for _, l := range links {
		id := l.Identity()
		if idx, ok := byIdentity[id]; ok {
			out[idx].Quantity = out[idx].Quantity.Add(l.Quantity)
			// El agregado ya no corresponde a una sola línea.
			out[idx].MovementID = 0
			continue
		}
		byIdentity[id] = len(out)
		out = append(out, l)
	}
	return out
}
