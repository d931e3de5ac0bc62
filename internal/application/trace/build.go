package trace

import (
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
	dtrace "github.com/jfarias/trazabilidad-api/internal/domain/trace"
)

// graphBuilder convierte un conjunto de movimientos en un GraphSnapshot:
// materializa pallets (fold por movimiento), agrega procesos por referencia y
// emite los enlaces tipados. Deduplica movimientos por id antes de plegar,
// de modo que registrar dos veces la misma línea no altera los acumulados.
type graphBuilder struct {
	locs dtrace.Locations
	// saleOrigin restringe la creación de nodos cliente a esa orden de venta
	// ("" = sin restricción). Evita que resolver S00531 arrastre ventas
	// hermanas que tocan el mismo proceso.
	saleOrigin string

	seen  map[int64]bool
	moves []entity.Movement
	snap  *entity.GraphSnapshot
}

func newGraphBuilder(locs dtrace.Locations, saleOrigin string) *graphBuilder {
	return &graphBuilder{
		locs:       locs,
		saleOrigin: saleOrigin,
		seen:       map[int64]bool{},
		snap:       entity.EmptySnapshot(),
	}
}

// add pliega un movimiento en el snapshot. Los movimientos deben llegar
// ordenados por fecha ascendente para que los desempates "primero observado"
// (dirección de pallet, proceso creador) sean deterministas.
func (b *graphBuilder) add(m entity.Movement) {
	if !m.Traceable() || b.seen[m.ID] {
		return
	}
	b.seen[m.ID] = true
	b.moves = append(b.moves, m)

	kind := dtrace.ClassifyMovement(m, b.locs)

	var originName, destName string
	if m.OriginPackage.IsSet() {
		originName = b.registerPallet(m, m.OriginPackage, true)
	}
	if m.DestinationPackage.IsSet() {
		destName = b.registerPallet(m, m.DestinationPackage, false)
	}

	switch kind {
	case entity.KindSale:
		b.addSale(m, originName)
	case entity.KindReception:
		proc := b.process(m, kind)
		if destName != "" {
			b.link(entity.NodeRecv, proc.Reference, entity.NodePallet, destName, m)
		}
		// Una recepción con paquete de origen es rara pero posible
		// (reempacado en andén); se conserva la arista de consumo.
		if originName != "" {
			b.link(entity.NodePallet, originName, entity.NodeRecv, proc.Reference, m)
		}
	default: // PROCESS y ADJUSTMENT pasan por un nodo proceso
		proc := b.process(m, kind)
		if originName != "" {
			b.link(entity.NodePallet, originName, entity.NodeProcess, proc.Reference, m)
		}
		if destName != "" {
			b.link(entity.NodeProcess, proc.Reference, entity.NodePallet, destName, m)
		}
	}
}

func (b *graphBuilder) addAll(moves []entity.Movement) {
	entity.SortMovementsByDate(moves)
	for _, m := range moves {
		b.add(m)
	}
}

// addSale crea el nodo cliente llaveado por el código de venta embebido en la
// referencia. Sin nodo proceso: la venta es el término de la cadena.
func (b *graphBuilder) addSale(m entity.Movement, originName string) {
	code := dtrace.ExtractSaleCode(m.Reference)
	if code == "" {
		code = m.Reference
	}
	if b.saleOrigin != "" && code != b.saleOrigin {
		return
	}
	if _, ok := b.snap.Customers[code]; !ok {
		b.snap.Customers[code] = entity.CustomerInfo{SaleCode: code}
	}
	if originName != "" {
		b.link(entity.NodePallet, originName, entity.NodeCustomer, code, m)
	}
}

func (b *graphBuilder) registerPallet(m entity.Movement, rel entity.Relation, asOrigin bool) string {
	name := rel.Label
	if name == "" {
		name = rel.Key()
	}
	p, ok := b.snap.Pallets[name]
	if !ok {
		np := entity.NewPallet(rel.OrZero(), name)
		p = &np
	}
	folded := entity.RegisterMovement(*p, m, asOrigin)
	b.snap.Pallets[name] = &folded
	return name
}

func (b *graphBuilder) process(m entity.Movement, kind entity.MovementKind) *entity.Process {
	proc, ok := b.snap.Processes[m.Reference]
	if !ok {
		proc = entity.NewProcess(m.Reference)
		b.snap.Processes[m.Reference] = proc
	}
	proc.Absorb(m, kind)
	return proc
}

func (b *graphBuilder) link(sk entity.NodeKind, sid string, tk entity.NodeKind, tid string, m entity.Movement) {
	b.snap.Links = append(b.snap.Links, entity.Link{
		SourceKind: sk, SourceID: sid,
		TargetKind: tk, TargetID: tid,
		Quantity:   m.Quantity,
		MovementID: m.ID,
	})
}

// snapshot entrega el resultado; moves queda disponible para la clasificación
// de origen (candidatos por pallet de destino).
func (b *graphBuilder) snapshot() *entity.GraphSnapshot { return b.snap }
