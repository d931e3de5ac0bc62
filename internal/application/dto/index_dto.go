package dto

import (
	"time"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// IndexStatusResponse estado del índice local de movimientos.
type IndexStatusResponse struct {
	Loaded              bool      `json:"loaded"`
	Reindexing          bool      `json:"reindexing"`
	MoveLines           int       `json:"move_lines"`
	Packages            int       `json:"packages"`
	References          int       `json:"references"`
	ProductionLocations int       `json:"production_locations"`
	LastRefresh         time.Time `json:"last_refresh"`
}

// TraverseResponse cadena de movimientos recorrida sobre el índice, con la
// clasificación pegajosa de cada referencia tocada.
type TraverseResponse struct {
	PackageID int64                          `json:"package_id"`
	Direction string                         `json:"direction"`
	Truncated bool                           `json:"truncated"`
	Total     int                            `json:"total"`
	Movements []entity.Movement              `json:"movements"`
	Kinds     map[string]entity.MovementKind `json:"kinds"`
}
