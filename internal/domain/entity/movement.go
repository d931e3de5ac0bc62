package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Clasificación de un movimiento según su rol en la cadena (máquina de estados §proceso).
type MovementKind string

const (
	KindUnclassified MovementKind = "UNCLASSIFIED"
	KindReception    MovementKind = "RECEPTION"  // origen = ubicación de proveedores
	KindSale         MovementKind = "SALE"       // destino = ubicación de clientes
	KindProcess      MovementKind = "PROCESS"    // referencia de orden de fabricación
	KindAdjustment   MovementKind = "ADJUSTMENT" // resto: ajustes internos
)

// Movement línea de movimiento de bodega: el hecho atómico de trazabilidad.
// Réplica de solo lectura de la línea "done" del ERP; inmutable una vez creada.
type Movement struct {
	ID                  int64           `json:"id"`
	Reference           string          `json:"reference"` // identificador libre del proceso (puede codificar el tipo)
	OriginPackage       Relation        `json:"origin_package"`
	DestinationPackage  Relation        `json:"destination_package"`
	OriginLocation      Relation        `json:"origin_location"`
	DestinationLocation Relation        `json:"destination_location"`
	Product             Relation        `json:"product"`
	Quantity            decimal.Decimal `json:"quantity"` // no negativa
	Lot                 Relation        `json:"lot"`
	Date                time.Time       `json:"date"`    // fecha de completitud del movimiento
	Picking             Relation        `json:"picking"` // documento logístico que agrupa líneas
	WriteDate           time.Time       `json:"write_date"`
}

// Traceable indica si el movimiento aporta a la trazabilidad.
// Una línea sin paquete de origen ni de destino no conecta nada y se excluye.
func (m Movement) Traceable() bool {
	return m.OriginPackage.IsSet() || m.DestinationPackage.IsSet()
}

// SortMovementsByDate ordena in place por fecha ascendente (desempate por id
// para que "el primero observado" sea determinista con datos idénticos).
func SortMovementsByDate(moves []Movement) {
	sort.SliceStable(moves, func(i, j int) bool {
		if moves[i].Date.Equal(moves[j].Date) {
			return moves[i].ID < moves[j].ID
		}
		return moves[i].Date.Before(moves[j].Date)
	})
}
