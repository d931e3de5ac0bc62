package dto

import "github.com/jfarias/trazabilidad-api/internal/domain/entity"

// TraceQuery parámetros de consulta de trazabilidad.
type TraceQuery struct {
	Siblings bool   `query:"siblings"`
	Limit    int    `query:"limit" validate:"min=0"`
	Format   string `query:"format"`
}

// Formatos de salida soportados.
const (
	FormatRaw     = "raw"
	FormatSankey  = "sankey"
	FormatGraph   = "graph"
	FormatNetwork = "network"
)

// ValidFormat true si el formato pedido es conocido ("" equivale a raw).
func ValidFormat(f string) bool {
	switch f {
	case "", FormatRaw, FormatSankey, FormatGraph, FormatNetwork:
		return true
	}
	return false
}

// TraceResponse envoltura del snapshot crudo.
type TraceResponse struct {
	Identifier string                `json:"identifier"`
	Truncated  bool                  `json:"truncated"`
	Graph      *entity.GraphSnapshot `json:"graph"`
}
