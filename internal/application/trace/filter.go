package trace

import (
	"strconv"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// directConnectionFilter poda el snapshot (colectado como "mostrar todo")
// dejando solo los nodos alcanzables por BFS desde los pallets semilla.
//
// Con saleOrigin no vacío la expansión se vuelve estrictamente aguas arriba:
// desde un nodo proceso no se sale hacia sus pallets de salida (eso es lo que
// arrastraría las salidas hermanas de un proceso compartido) y los nodos
// cliente solo se atraviesan si su código de venta es el pedido. Sin
// saleOrigin la adyacencia es bidireccional completa.
func directConnectionFilter(snap *entity.GraphSnapshot, seedNames []string, saleOrigin string) {
	if len(seedNames) == 0 {
		return
	}

	adj := map[entity.NodeRef][]entity.NodeRef{}
	addEdge := func(a, b entity.NodeRef) {
		adj[a] = append(adj[a], b)
	}
	for _, l := range snap.Links {
		src, dst := l.Source(), l.Target()
		if dst.Kind == entity.NodeCustomer && saleOrigin != "" && dst.ID != saleOrigin {
			continue
		}
		if saleOrigin != "" && (src.Kind == entity.NodeProcess || src.Kind == entity.NodeRecv) && dst.Kind == entity.NodePallet {
			// Arista proceso->salida: transitable solo en reversa
			// (del pallet hacia su proceso creador).
			addEdge(dst, src)
			continue
		}
		addEdge(src, dst)
		addEdge(dst, src)
	}

	reachable := map[entity.NodeRef]bool{}
	queue := make([]entity.NodeRef, 0, len(seedNames))
	for _, name := range seedNames {
		ref := entity.NodeRef{Kind: entity.NodePallet, ID: name}
		reachable[ref] = true
		queue = append(queue, ref)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range adj[cur] {
			if !reachable[nb] {
				reachable[nb] = true
				queue = append(queue, nb)
			}
		}
	}

	// Poda de colecciones y enlaces a lo alcanzable.
	for name := range snap.Pallets {
		if !reachable[entity.NodeRef{Kind: entity.NodePallet, ID: name}] {
			delete(snap.Pallets, name)
		}
	}
	keptSuppliers := map[string]bool{}
	for ref, proc := range snap.Processes {
		kind := entity.NodeProcess
		if proc.IsReception {
			kind = entity.NodeRecv
		}
		if !reachable[entity.NodeRef{Kind: kind, ID: ref}] {
			delete(snap.Processes, ref)
			continue
		}
		if proc.SupplierID != 0 {
			keptSuppliers[strconv.FormatInt(proc.SupplierID, 10)] = true
		}
	}
	for code := range snap.Customers {
		if saleOrigin != "" && code != saleOrigin {
			delete(snap.Customers, code)
			continue
		}
		if !reachable[entity.NodeRef{Kind: entity.NodeCustomer, ID: code}] {
			delete(snap.Customers, code)
		}
	}
	// Un proveedor se conserva solo si quedó alguna recepción suya.
	for key := range snap.Suppliers {
		if !keptSuppliers[key] {
			delete(snap.Suppliers, key)
		}
	}

	kept := make([]entity.Link, 0, len(snap.Links))
	for _, l := range snap.Links {
		if reachable[l.Source()] && reachable[l.Target()] {
			if l.TargetKind == entity.NodeCustomer {
				if _, ok := snap.Customers[l.TargetID]; !ok {
					continue
				}
			}
			kept = append(kept, l)
		}
	}
	snap.Links = kept
}
