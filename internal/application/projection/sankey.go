package projection

import (
	"sort"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// SankeyNode nodo del diagrama de flujo, con posición normalizada [0,1].
type SankeyNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Type  string  `json:"type"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// SankeyLink enlace agregado entre dos nodos.
type SankeyLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	Color  string  `json:"color"`
}

// SankeyDiagram estructura lista para un renderizador de flujo.
type SankeyDiagram struct {
	Nodes []SankeyNode `json:"nodes"`
	Links []SankeyLink `json:"links"`
}

// Sankey proyecta el snapshot a un diagrama de flujo: proveedores en el eje
// 0, recepciones en el 1, procesos ordenados por fecha en los ejes
// intermedios y clientes en el último. Los pallets se posicionan promediando
// a sus vecinos, empujados hacia el lado que domina sus conexiones.
func Sankey(snap *entity.GraphSnapshot) SankeyDiagram {
	out := SankeyDiagram{Nodes: []SankeyNode{}, Links: []SankeyLink{}}
	if snap == nil || snap.IsEmpty() {
		return out
	}

	links := entity.AggregateLinks(append(supplierLinks(snap), snap.Links...))

	// Rango fijo por tipo; un eje por proceso interno, en orden de fecha.
	var procRefs []string
	for ref, proc := range snap.Processes {
		if !proc.IsReception {
			procRefs = append(procRefs, ref)
		}
	}
	sort.Slice(procRefs, func(i, j int) bool {
		pi, pj := snap.Processes[procRefs[i]], snap.Processes[procRefs[j]]
		if pi.Date.Equal(pj.Date) {
			return procRefs[i] < procRefs[j]
		}
		return pi.Date.Before(pj.Date)
	})
	procRank := map[string]float64{}
	for i, ref := range procRefs {
		procRank[ref] = float64(2 + i)
	}
	lastRank := float64(2 + len(procRefs))
	if lastRank < 3 {
		lastRank = 3
	}

	rank := map[string]float64{} // nodeID -> eje
	addNode := func(id, label, typ string) {
		out.Nodes = append(out.Nodes, SankeyNode{ID: id, Label: label, Type: typ, Color: nodeColors[typ]})
	}

	for key, sup := range snap.Suppliers {
		id := supplierNodeID(key)
		label := sup.Name
		if label == "" {
			label = "Proveedor " + key
		}
		addNode(id, label, typeSupplier)
		rank[id] = 0
	}
	for ref, proc := range snap.Processes {
		if proc.IsReception {
			id := nodeID(entity.NodeRecv, ref)
			addNode(id, ref, typeRecv)
			rank[id] = 1
		} else {
			id := nodeID(entity.NodeProcess, ref)
			addNode(id, ref, typeProcess)
			rank[id] = procRank[ref]
		}
	}
	for code, cust := range snap.Customers {
		id := nodeID(entity.NodeCustomer, code)
		label := cust.Name
		if label == "" {
			label = code
		}
		addNode(id, label, typeCustomer)
		rank[id] = lastRank
	}

	// Pallets: promedio de los vecinos ya posicionados, con empuje hacia el
	// lado dominante (más consumido que producido -> hacia sus consumidores).
	type palletLinks struct {
		neighborSum float64
		neighbors   int
		produced    int // enlaces donde el pallet es destino
		consumed    int // enlaces donde el pallet es origen
	}
	stats := map[string]*palletLinks{}
	statFor := func(name string) *palletLinks {
		s, ok := stats[name]
		if !ok {
			s = &palletLinks{}
			stats[name] = s
		}
		return s
	}
	for _, l := range links {
		if l.TargetKind == entity.NodePallet {
			s := statFor(l.TargetID)
			s.produced++
			if x, ok := rank[sankeyEndpoint(l.SourceKind, l.SourceID)]; ok {
				s.neighborSum += x
				s.neighbors++
			}
		}
		if l.SourceKind == entity.NodePallet {
			s := statFor(l.SourceID)
			s.consumed++
			if x, ok := rank[sankeyEndpoint(l.TargetKind, l.TargetID)]; ok {
				s.neighborSum += x
				s.neighbors++
			}
		}
	}
	for name := range snap.Pallets {
		id := nodeID(entity.NodePallet, name)
		addNode(id, name, typePallet)
		s := stats[name]
		x := lastRank / 2
		if s != nil && s.neighbors > 0 {
			x = s.neighborSum / float64(s.neighbors)
			if s.produced > s.consumed {
				x += 0.3
			} else if s.consumed > s.produced {
				x -= 0.3
			}
		}
		rank[id] = x
	}

	// Normalización de X y reparto vertical dentro de cada eje.
	for i := range out.Nodes {
		out.Nodes[i].X = clamp(rank[out.Nodes[i].ID]/lastRank, 0, 1)
	}
	byAxis := map[int][]int{}
	for i := range out.Nodes {
		axis := int(rank[out.Nodes[i].ID] + 0.5)
		byAxis[axis] = append(byAxis[axis], i)
	}
	for _, idxs := range byAxis {
		sort.Slice(idxs, func(a, b int) bool { return out.Nodes[idxs[a]].Label < out.Nodes[idxs[b]].Label })
		for pos, i := range idxs {
			out.Nodes[i].Y = float64(pos+1) / float64(len(idxs)+1)
		}
	}

	for _, l := range links {
		out.Links = append(out.Links, SankeyLink{
			Source: sankeyEndpoint(l.SourceKind, l.SourceID),
			Target: sankeyEndpoint(l.TargetKind, l.TargetID),
			Value:  qtyFloat(l.Quantity),
			Color:  linkColors[l.SourceKind],
		})
	}
	return out
}

func sankeyEndpoint(kind entity.NodeKind, id string) string {
	if kind == kindSupplier {
		return supplierNodeID(id)
	}
	return nodeID(kind, id)
}
