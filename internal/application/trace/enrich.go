package trace

import (
	"context"
	"strconv"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// enrich resuelve identidades de proveedor/cliente desde los documentos
// logísticos y completa fecha/producto de los procesos desde las órdenes de
// producción. Cada fase degrada a "sin ese dato" ante error; ninguna aborta
// la resolución.
func (r *Resolver) enrich(ctx context.Context, snap *entity.GraphSnapshot) {
	if err := r.enrichSuppliers(ctx, snap); err != nil {
		r.log.Warn().Err(err).Msg("resolución de proveedores falló")
	}
	if err := r.enrichCustomers(ctx, snap); err != nil {
		r.log.Warn().Err(err).Msg("resolución de clientes falló")
	}
	if err := r.enrichProductions(ctx, snap); err != nil {
		r.log.Warn().Err(err).Msg("enriquecimiento de órdenes de producción falló")
	}
}

// enrichSuppliers partner del picking de cada recepción -> proveedor.
func (r *Resolver) enrichSuppliers(ctx context.Context, snap *entity.GraphSnapshot) error {
	var pickingIDs []int64
	byPicking := map[int64][]*entity.Process{}
	for _, proc := range snap.Processes {
		if !proc.IsReception || !proc.Picking.IsSet() {
			continue
		}
		id := proc.Picking.ID
		if _, ok := byPicking[id]; !ok {
			pickingIDs = append(pickingIDs, id)
		}
		byPicking[id] = append(byPicking[id], proc)
	}
	if len(pickingIDs) == 0 {
		return nil
	}

	pickings, err := r.erp.Read(ctx, ports.CollectionPickings, pickingIDs, []string{"id", "origin", "partner_id"})
	if err != nil {
		return err
	}
	var partnerIDs []int64
	partnerOf := map[int64]int64{} // picking -> partner
	for _, row := range pickings {
		partner := row.Rel("partner_id")
		if !partner.IsSet() {
			continue
		}
		partnerOf[row.Int64("id")] = partner.ID
		partnerIDs = append(partnerIDs, partner.ID)
	}
	names, err := r.partnerNames(ctx, partnerIDs)
	if err != nil {
		return err
	}

	for pickingID, procs := range byPicking {
		partnerID, ok := partnerOf[pickingID]
		if !ok {
			continue
		}
		for _, proc := range procs {
			proc.SupplierID = partnerID
		}
		key := strconv.FormatInt(partnerID, 10)
		snap.Suppliers[key] = entity.PartnerInfo{ID: partnerID, Name: names[partnerID]}
	}
	return nil
}

// enrichCustomers nombre del cliente desde el picking cuyo origin es el
// código de venta del nodo cliente.
func (r *Resolver) enrichCustomers(ctx context.Context, snap *entity.GraphSnapshot) error {
	if len(snap.Customers) == 0 {
		return nil
	}
	codes := make([]string, 0, len(snap.Customers))
	for code := range snap.Customers {
		codes = append(codes, code)
	}
	pickings, err := r.erp.SearchRead(ctx, ports.CollectionPickings,
		ports.Filter{ports.C("origin", "in", codes)},
		[]string{"id", "origin", "partner_id"}, 0, "")
	if err != nil {
		return err
	}
	var partnerIDs []int64
	partnerByCode := map[string]int64{}
	for _, row := range pickings {
		partner := row.Rel("partner_id")
		if !partner.IsSet() {
			continue
		}
		code := row.Str("origin")
		if _, ok := partnerByCode[code]; !ok {
			partnerByCode[code] = partner.ID
			partnerIDs = append(partnerIDs, partner.ID)
		}
	}
	names, err := r.partnerNames(ctx, partnerIDs)
	if err != nil {
		return err
	}
	for code, info := range snap.Customers {
		if partnerID, ok := partnerByCode[code]; ok {
			info.PartnerID = partnerID
			info.Name = names[partnerID]
			snap.Customers[code] = info
		}
	}
	return nil
}

// enrichProductions fecha y producto de la orden de producción cuando el
// nombre calza con la referencia del proceso.
func (r *Resolver) enrichProductions(ctx context.Context, snap *entity.GraphSnapshot) error {
	var refs []string
	for ref, proc := range snap.Processes {
		if proc.Kind == entity.KindProcess {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	rows, err := r.erp.SearchRead(ctx, ports.CollectionProductions,
		ports.Filter{ports.C("name", "in", refs)},
		[]string{"id", "name", "date_planned_start", "product_id"}, 0, "")
	if err != nil {
		return err
	}
	for _, row := range rows {
		proc, ok := snap.Processes[row.Str("name")]
		if !ok {
			continue
		}
		if d := row.Time("date_planned_start"); !d.IsZero() {
			proc.Date = d
		}
		if product := row.Rel("product_id"); product.IsSet() {
			proc.Product = product.Label
		}
	}
	return nil
}

func (r *Resolver) partnerNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := map[int64]string{}
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.erp.Read(ctx, ports.CollectionPartners, ids, []string{"id", "name"})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.Int64("id")] = row.Str("name")
	}
	return names, nil
}
