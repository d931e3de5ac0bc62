package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Dirección observada de un pallet respecto a los procesos que lo tocan.
const (
	DirectionIN  = "IN"  // el pallet entró a un proceso como insumo
	DirectionOUT = "OUT" // el pallet es salida de un proceso (pegajosa: no revierte)
)

// Pallet unidad física de mercadería (paquete), materializada perezosamente
// a partir de los movimientos que la referencian. Agregado local al proceso,
// nunca se persiste como entidad propia.
type Pallet struct {
	ID            int64                      `json:"id"`
	Name          string                     `json:"name"` // código visible, ej. "PACK0048229"
	Quantity      decimal.Decimal            `json:"quantity"`
	Products      map[string]decimal.Decimal `json:"products"` // producto -> cantidad acumulada
	FirstDate     time.Time                  `json:"first_date"`
	LastDate      time.Time                  `json:"last_date"`
	Direction     string                     `json:"direction"`
	LotNames      map[string]bool            `json:"-"`
	Lots          []string                   `json:"lots"` // LotNames ordenado, para serializar
	OriginQuality OriginQuality              `json:"origin_quality,omitempty"`
}

// NewPallet estado inicial del fold de registro de movimientos.
func NewPallet(id int64, name string) Pallet {
	return Pallet{
		ID:        id,
		Name:      name,
		Quantity:  decimal.Zero,
		Products:  map[string]decimal.Decimal{},
		Direction: DirectionIN,
		LotNames:  map[string]bool{},
	}
}

// RegisterMovement pliega un movimiento sobre el estado del pallet y devuelve
// el estado nuevo (función pura: la deduplicación por id de movimiento ocurre
// aguas arriba, ver GraphBuilder).
//
// Regla de dirección: asOrigin=true significa que el pallet fue consumido por
// el proceso (IN); asOrigin=false que fue producido (OUT). OUT es pegajosa:
// una vez observado como salida, el pallet queda OUT aunque luego aparezca
// como insumo de otro proceso.
func RegisterMovement(p Pallet, m Movement, asOrigin bool) Pallet {
	out := p
	out.Quantity = p.Quantity.Add(m.Quantity)

	out.Products = make(map[string]decimal.Decimal, len(p.Products)+1)
	for k, v := range p.Products {
		out.Products[k] = v
	}
	if prod := m.Product.Label; prod != "" {
		out.Products[prod] = out.Products[prod].Add(m.Quantity)
	}

	if p.FirstDate.IsZero() || m.Date.Before(p.FirstDate) {
		out.FirstDate = m.Date
	}
	if m.Date.After(p.LastDate) {
		out.LastDate = m.Date
	}

	if !asOrigin {
		out.Direction = DirectionOUT
	}

	out.LotNames = make(map[string]bool, len(p.LotNames)+1)
	for k := range p.LotNames {
		out.LotNames[k] = true
	}
	if m.Lot.IsSet() && m.Lot.Label != "" {
		out.LotNames[m.Lot.Label] = true
	}
	out.Lots = sortedKeys(out.LotNames)

	return out
}

// TopProducts devuelve hasta n productos ordenados por cantidad descendente.
func (p Pallet) TopProducts(n int) []string {
	names := make([]string, 0, len(p.Products))
	for k := range p.Products {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		qi, qj := p.Products[names[i]], p.Products[names[j]]
		if qi.Equal(qj) {
			return names[i] < names[j]
		}
		return qi.GreaterThan(qj)
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
