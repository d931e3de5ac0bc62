package indexer

import "github.com/jfarias/trazabilidad-api/internal/domain/entity"

// DefaultMaxDepth tope de profundidad si el llamador pasa 0 y la
// configuración no fija TRACE_MAX_DEPTH.
const DefaultMaxDepth = 50

// TraverseBackward recorre la cadena aguas arriba desde un paquete: sigue,
// en cada línea donde el paquete fue destino, el paquete de origen de esa
// línea. Devuelve las líneas encontradas ordenadas por fecha ascendente y un
// flag de truncamiento si el recorrido se cortó por el tope de profundidad.
// El conjunto de visitados protege contra datos cíclicos.
func (ix *Index) TraverseBackward(packageID int64, maxDepth int) ([]entity.Movement, bool) {
	return ix.traverse(packageID, maxDepth, true)
}

// TraverseForward recorre aguas abajo: sigue, en cada línea donde el paquete
// fue origen, el paquete de destino.
func (ix *Index) TraverseForward(packageID int64, maxDepth int) ([]entity.Movement, bool) {
	return ix.traverse(packageID, maxDepth, false)
}

func (ix *Index) traverse(packageID int64, maxDepth int, backward bool) ([]entity.Movement, bool) {
	st := ix.snapshotState()
	if st == nil {
		return nil, false
	}
	if maxDepth <= 0 {
		maxDepth = ix.cfg.MaxDepth
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	ix.stateMu.RLock()
	defer ix.stateMu.RUnlock()

	type frame struct {
		pkg   int64
		depth int
	}
	visited := map[int64]bool{packageID: true}
	collected := map[int64]entity.Movement{}
	truncated := false

	stack := []frame{{pkg: packageID, depth: 0}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var moveIDs []int64
		if backward {
			moveIDs = st.destIdx[cur.pkg]
		} else {
			moveIDs = st.originIdx[cur.pkg]
		}
		for _, id := range moveIDs {
			m, ok := st.moves[id]
			if !ok {
				continue
			}
			collected[m.ID] = m

			var next entity.Relation
			if backward {
				next = m.OriginPackage
			} else {
				next = m.DestinationPackage
			}
			if !next.IsSet() || visited[next.ID] {
				continue
			}
			if cur.depth+1 >= maxDepth {
				truncated = true
				continue
			}
			visited[next.ID] = true
			stack = append(stack, frame{pkg: next.ID, depth: cur.depth + 1})
		}
	}

	out := make([]entity.Movement, 0, len(collected))
	for _, m := range collected {
		out = append(out, m)
	}
	entity.SortMovementsByDate(out)
	return out, truncated
}
