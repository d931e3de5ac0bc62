package entity

// PartnerInfo identidad resuelta de un proveedor.
type PartnerInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CustomerInfo identidad resuelta de un cliente, llaveada por el código de
// la orden de venta que lo conecta a la cadena.
type CustomerInfo struct {
	SaleCode  string `json:"sale_code"`
	Name      string `json:"name"`
	PartnerID int64  `json:"partner_id,omitempty"`
}

// GraphSnapshot subgrafo conexo devuelto por el resolutor: el único contrato
// de intercambio entre el resolutor y cada proyección. Serializable a JSON
// (mapas con llave string, conjuntos como listas).
type GraphSnapshot struct {
	Pallets   map[string]*Pallet      `json:"pallets"`   // llave: nombre del paquete
	Processes map[string]*Process     `json:"processes"` // llave: referencia
	Suppliers map[string]PartnerInfo  `json:"suppliers"` // llave: id del partner
	Customers map[string]CustomerInfo `json:"customers"` // llave: código de venta
	Links     []Link                  `json:"links"`
	// Truncated true si algún recorrido alcanzó el tope de seguridad y el
	// resultado puede estar incompleto.
	Truncated bool `json:"truncated"`
}

// EmptySnapshot centinela de "sin trazabilidad": todas las colecciones vacías
// y Links como slice vacío (nunca nil) para serializar como [].
func EmptySnapshot() *GraphSnapshot {
	return &GraphSnapshot{
		Pallets:   map[string]*Pallet{},
		Processes: map[string]*Process{},
		Suppliers: map[string]PartnerInfo{},
		Customers: map[string]CustomerInfo{},
		Links:     []Link{},
	}
}

// IsEmpty indica si el snapshot no contiene ningún nodo.
func (s *GraphSnapshot) IsEmpty() bool {
	return len(s.Pallets) == 0 && len(s.Processes) == 0 &&
		len(s.Suppliers) == 0 && len(s.Customers) == 0
}

// Merge une otro snapshot sobre este (unión de mapas conservando la entrada
// existente, enlaces deduplicados por línea de movimiento de origen: la misma
// línea vista por ambos recorridos aporta una sola arista, pero dos líneas
// distintas entre el mismo par de nodos sobreviven aunque lleven la misma
// cantidad). Se usa en el modo por nombre de paquete, que corre hacia atrás
// y hacia adelante y fusiona ambos resultados.
func (s *GraphSnapshot) Merge(other *GraphSnapshot) {
	if other == nil {
		return
	}
	for k, v := range other.Pallets {
		if _, ok := s.Pallets[k]; !ok {
			s.Pallets[k] = v
		}
	}
	for k, v := range other.Processes {
		if _, ok := s.Processes[k]; !ok {
			s.Processes[k] = v
		}
	}
	for k, v := range other.Suppliers {
		if _, ok := s.Suppliers[k]; !ok {
			s.Suppliers[k] = v
		}
	}
	for k, v := range other.Customers {
		if _, ok := s.Customers[k]; !ok {
			s.Customers[k] = v
		}
	}
	seen := make(map[linkDedupKey]bool, len(s.Links)+len(other.Links))
	merged := make([]Link, 0, len(s.Links)+len(other.Links))
	for _, l := range append(s.Links, other.Links...) {
		// Sin línea de origen no hay identidad de evidencia: se conserva.
		if l.MovementID != 0 {
			k := linkDedupKey{l.Identity(), l.MovementID}
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		merged = append(merged, l)
	}
	s.Links = merged
	s.Truncated = s.Truncated || other.Truncated
}

type linkDedupKey struct {
	identity   LinkIdentity
	movementID int64
}
