// Package projection contiene las tres proyecciones puras del GraphSnapshot
// a estructuras listas para renderizar (diagrama de flujo, grafo interactivo
// y visualización de red). Sin estado compartido y sin I/O: cada una tolera
// snapshots parcialmente poblados y produce un resultado válido, posiblemente
// vacío.
package projection

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// Tipos de nodo visibles (los de entity.NodeKind más el proveedor, que se
// sintetiza en la proyección a partir del SupplierID de las recepciones).
const (
	typeSupplier = "supplier"
	typeRecv     = "reception"
	typePallet   = "pallet"
	typeProcess  = "process"
	typeCustomer = "customer"
)

// Paleta por tipo de nodo.
var nodeColors = map[string]string{
	typeSupplier: "#2E7D32",
	typeRecv:     "#66BB6A",
	typePallet:   "#FFB300",
	typeProcess:  "#1E88E5",
	typeCustomer: "#8E24AA",
}

// kindSupplier pseudo-tipo de nodo para las aristas sintetizadas
// proveedor -> recepción (el proveedor nunca es extremo de un movimiento).
const kindSupplier = entity.NodeKind("SUPPLIER")

// Color de enlace por categoría (tipo del nodo de origen).
var linkColors = map[entity.NodeKind]string{
	kindSupplier:       "#C8E6C9",
	entity.NodeRecv:    "#A5D6A7",
	entity.NodePallet:  "#FFE082",
	entity.NodeProcess: "#90CAF9",
}

// nodeID identificador único de nodo dentro de una proyección.
func nodeID(kind entity.NodeKind, id string) string {
	return string(kind) + ":" + id
}

func supplierNodeID(key string) string {
	return "SUPPLIER:" + key
}

func kindType(kind entity.NodeKind) string {
	switch kind {
	case entity.NodeRecv:
		return typeRecv
	case entity.NodePallet:
		return typePallet
	case entity.NodeProcess:
		return typeProcess
	case entity.NodeCustomer:
		return typeCustomer
	default:
		return typeProcess
	}
}

// supplierLinks sintetiza las aristas proveedor -> recepción: el snapshot no
// las trae como Link (el proveedor no es un extremo de movimiento), pero las
// proyecciones las necesitan para cerrar el grafo por la izquierda. La
// cantidad es la suma de lo que salió de esa recepción.
func supplierLinks(snap *entity.GraphSnapshot) []entity.Link {
	outBySource := map[string]decimal.Decimal{}
	for _, l := range snap.Links {
		if l.SourceKind == entity.NodeRecv {
			outBySource[l.SourceID] = outBySource[l.SourceID].Add(l.Quantity)
		}
	}
	var out []entity.Link
	for ref, proc := range snap.Processes {
		if !proc.IsReception || proc.SupplierID == 0 {
			continue
		}
		out = append(out, entity.Link{
			SourceKind: kindSupplier,
			SourceID:   supplierKey(proc.SupplierID),
			TargetKind: entity.NodeRecv,
			TargetID:   ref,
			Quantity:   outBySource[ref],
		})
	}
	return out
}

func supplierKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// qtyFloat cantidad decimal a float64 para el renderizador.
func qtyFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
