package projection

import (
	"sort"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// NetworkNode nodo del grafo jerárquico por niveles.
type NetworkNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Type  string  `json:"type"`
	Level int     `json:"level"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// NetworkEdge arista dirigida entre nodos de la red.
type NetworkEdge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// TimelineEvent evento fechado asociado a un nodo, para la vista temporal.
type TimelineEvent struct {
	NodeID string `json:"node_id"`
	Label  string `json:"label"`
	Type   string `json:"type"`
	Date   string `json:"date"`
}

// NetworkGraph proyección jerárquica con línea de tiempo adjunta.
type NetworkGraph struct {
	Nodes    []NetworkNode   `json:"nodes"`
	Edges    []NetworkEdge   `json:"edges"`
	Timeline []TimelineEvent `json:"timeline"`
}

// Niveles jerárquicos fijos: proveedor → recepción → pallet de entrada →
// proceso → pallet de salida → cliente.
const (
	levelSupplier  = 0
	levelRecv      = 1
	levelPalletIn  = 2
	levelProcess   = 3
	levelPalletOut = 4
	levelCustomer  = 5
)

const (
	minNodeSize = 15.0
	maxNodeSize = 45.0
)

// Network proyecta el snapshot al grafo jerárquico por niveles.
func Network(snap *entity.GraphSnapshot) NetworkGraph {
	out := NetworkGraph{Nodes: []NetworkNode{}, Edges: []NetworkEdge{}, Timeline: []TimelineEvent{}}
	if snap == nil || snap.IsEmpty() {
		return out
	}

	links := entity.AggregateLinks(append(supplierLinks(snap), snap.Links...))

	// Un pallet producido por un proceso interno queda del lado de salida;
	// el que viene de recepción (o alimenta un proceso) del lado de entrada.
	fedByProcess := map[string]bool{}
	for _, l := range links {
		if l.SourceKind == entity.NodeProcess && l.TargetKind == entity.NodePallet {
			fedByProcess[l.TargetID] = true
		}
	}
	palletLevel := func(name string) int {
		if fedByProcess[name] {
			return levelPalletOut
		}
		return levelPalletIn
	}

	for key, sup := range snap.Suppliers {
		name := sup.Name
		if name == "" {
			name = "Proveedor " + key
		}
		out.Nodes = append(out.Nodes, NetworkNode{
			ID: supplierNodeID(key), Label: name, Type: typeSupplier,
			Level: levelSupplier, Size: minNodeSize, Color: nodeColors[typeSupplier],
		})
	}
	for ref, proc := range snap.Processes {
		typ, kind, level := typeProcess, entity.NodeProcess, levelProcess
		if proc.IsReception {
			typ, kind, level = typeRecv, entity.NodeRecv, levelRecv
		}
		node := NetworkNode{
			ID: nodeID(kind, ref), Label: ref, Type: typ,
			Level: level, Size: minNodeSize, Color: nodeColors[typ],
		}
		out.Nodes = append(out.Nodes, node)
		if !proc.Date.IsZero() {
			out.Timeline = append(out.Timeline, TimelineEvent{
				NodeID: node.ID, Label: ref, Type: typ, Date: dateKey(proc.Date),
			})
		}
	}
	for name, p := range snap.Pallets {
		node := NetworkNode{
			ID: nodeID(entity.NodePallet, name), Label: name, Type: typePallet,
			Level: palletLevel(name), Size: sizeForQuantity(qtyFloat(p.Quantity)),
			Color: nodeColors[typePallet],
		}
		out.Nodes = append(out.Nodes, node)
		if !p.FirstDate.IsZero() {
			out.Timeline = append(out.Timeline, TimelineEvent{
				NodeID: node.ID, Label: name, Type: typePallet, Date: dateKey(p.FirstDate),
			})
		}
	}
	for code, cust := range snap.Customers {
		label := cust.Name
		if label == "" {
			label = code
		}
		out.Nodes = append(out.Nodes, NetworkNode{
			ID: nodeID(entity.NodeCustomer, code), Label: label, Type: typeCustomer,
			Level: levelCustomer, Size: minNodeSize, Color: nodeColors[typeCustomer],
		})
	}

	for _, l := range links {
		out.Edges = append(out.Edges, NetworkEdge{
			From:  sankeyEndpoint(l.SourceKind, l.SourceID),
			To:    sankeyEndpoint(l.TargetKind, l.TargetID),
			Value: qtyFloat(l.Quantity),
			Color: linkColors[l.SourceKind],
		})
	}

	sort.Slice(out.Timeline, func(i, j int) bool {
		if out.Timeline[i].Date != out.Timeline[j].Date {
			return out.Timeline[i].Date < out.Timeline[j].Date
		}
		return out.Timeline[i].NodeID < out.Timeline[j].NodeID
	})
	return out
}

// sizeForQuantity escala la cantidad al rango visual del nodo.
func sizeForQuantity(qty float64) float64 {
	if qty <= 0 {
		return minNodeSize
	}
	return clamp(minNodeSize+qty/100, minNodeSize, maxNodeSize)
}
