package projection

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// VisNode nodo del grafo interactivo, con bloque de contenido markdown-ish.
type VisNode struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Content string  `json:"content"`
	Group   string  `json:"group"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// VisEdge arista con ancho proporcional a la cantidad agregada.
type VisEdge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Width float64 `json:"width"`
	Label string  `json:"label,omitempty"`
}

// VisGraph estructura para el renderizador de grafo interactivo.
type VisGraph struct {
	Nodes []VisNode `json:"nodes"`
	Edges []VisEdge `json:"edges"`
}

const (
	visColumnWidth = 150.0
	visRowHeight   = 90.0
	// edgeLabelThreshold cantidad mínima para rotular la arista.
	edgeLabelThreshold = 10.0
)

// InteractiveGraph proyecta el snapshot a un grafo posicionado sobre una
// línea de tiempo izquierda-a-derecha derivada de las fechas observadas.
func InteractiveGraph(snap *entity.GraphSnapshot) VisGraph {
	out := VisGraph{Nodes: []VisNode{}, Edges: []VisEdge{}}
	if snap == nil || snap.IsEmpty() {
		return out
	}

	// Columna por fecha distinta, en orden cronológico.
	dateSet := map[string]bool{}
	for _, p := range snap.Pallets {
		if !p.FirstDate.IsZero() {
			dateSet[dateKey(p.FirstDate)] = true
		}
	}
	for _, proc := range snap.Processes {
		if !proc.Date.IsZero() {
			dateSet[dateKey(proc.Date)] = true
		}
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	column := map[string]int{}
	for i, d := range dates {
		column[d] = i + 1 // columna 0 reservada a proveedores
	}
	lastColumn := len(dates) + 1

	rows := map[int]int{} // columna -> filas ocupadas
	place := func(col int) (float64, float64) {
		row := rows[col]
		rows[col] = row + 1
		return float64(col) * visColumnWidth, float64(row) * visRowHeight
	}

	colFor := func(t time.Time) int {
		if t.IsZero() {
			return lastColumn / 2
		}
		return column[dateKey(t)]
	}

	for key, sup := range snap.Suppliers {
		x, y := place(0)
		name := sup.Name
		if name == "" {
			name = "Proveedor " + key
		}
		out.Nodes = append(out.Nodes, VisNode{
			ID: supplierNodeID(key), Label: name, Group: typeSupplier,
			Content: fmt.Sprintf("**%s**", name),
			X:       x, Y: y,
		})
	}
	for ref, proc := range snap.Processes {
		group := typeProcess
		kind := entity.NodeProcess
		if proc.IsReception {
			group = typeRecv
			kind = entity.NodeRecv
		}
		x, y := place(colFor(proc.Date))
		content := fmt.Sprintf("**%s**", ref)
		if !proc.Date.IsZero() {
			content += "\nFecha: " + dateKey(proc.Date)
		}
		if proc.Product != "" {
			content += "\nProducto: " + proc.Product
		}
		out.Nodes = append(out.Nodes, VisNode{
			ID: nodeID(kind, ref), Label: ref, Group: group, Content: content, X: x, Y: y,
		})
	}
	for name, p := range snap.Pallets {
		x, y := place(colFor(p.FirstDate))
		content := fmt.Sprintf("**%s**\nCantidad: %s", name, p.Quantity.StringFixed(2))
		if !p.FirstDate.IsZero() {
			content += "\nFecha: " + dateKey(p.FirstDate)
		}
		if top := p.TopProducts(2); len(top) > 0 {
			content += "\nProductos: " + strings.Join(top, ", ")
		}
		out.Nodes = append(out.Nodes, VisNode{
			ID: nodeID(entity.NodePallet, name), Label: name, Group: typePallet, Content: content, X: x, Y: y,
		})
	}
	for code, cust := range snap.Customers {
		x, y := place(lastColumn)
		label := cust.Name
		if label == "" {
			label = code
		}
		out.Nodes = append(out.Nodes, VisNode{
			ID: nodeID(entity.NodeCustomer, code), Label: label, Group: typeCustomer,
			Content: fmt.Sprintf("**%s**\nVenta: %s", label, code),
			X:       x, Y: y,
		})
	}

	for _, l := range entity.AggregateLinks(append(supplierLinks(snap), snap.Links...)) {
		qty := qtyFloat(l.Quantity)
		edge := VisEdge{
			From:  sankeyEndpoint(l.SourceKind, l.SourceID),
			To:    sankeyEndpoint(l.TargetKind, l.TargetID),
			Width: clamp(qty/200, 1, 4),
		}
		if qty > edgeLabelThreshold {
			edge.Label = l.Quantity.StringFixed(0)
		}
		out.Edges = append(out.Edges, edge)
	}
	return out
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
